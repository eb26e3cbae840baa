package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/mandel/internal/export"
	"github.com/san-kum/mandel/internal/fractal"
	"github.com/san-kum/mandel/internal/logx"
)

// SnapshotPrefix starts every snapshot file name.
const SnapshotPrefix = "mandelbrot_snapshot_"

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// SnapshotMetadata describes how a snapshot was rendered.
type SnapshotMetadata struct {
	ID                string    `json:"id"`
	Index             int       `json:"index"`
	Timestamp         time.Time `json:"timestamp"`
	CenterRe          float64   `json:"center_re"`
	CenterIm          float64   `json:"center_im"`
	Size              float64   `json:"size"`
	Resolution        int       `json:"resolution"`
	MaxStepCount      uint      `json:"max_step_count"`
	IterationsPerStep uint      `json:"iterations_per_step"`
	Coloring          string    `json:"coloring"`
	Palette           string    `json:"palette"`
}

func (m *SnapshotMetadata) Viewport() fractal.Viewport {
	return fractal.Viewport{Position: complex(m.CenterRe, m.CenterIm), Size: m.Size}
}

// Snapshot bundles what a snapshot records.
type Snapshot struct {
	Image    image.Image
	Viewport fractal.Viewport
	Meta     SnapshotMetadata
}

// SaveSnapshot writes <id>.bmp, <id>.txt and <id>.json, where id uses the
// first unused index. Nothing is left behind when the image cannot be
// written.
func (s *Store) SaveSnapshot(snap Snapshot) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	n, err := s.nextIndex()
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("%s%d", SnapshotPrefix, n)
	base := filepath.Join(s.baseDir, id)

	if snap.Image != nil {
		if err := export.SaveImage(base+".bmp", snap.Image); err != nil {
			os.Remove(base + ".bmp")
			return "", err
		}
	}
	if err := SaveState(base+".txt", snap.Viewport); err != nil {
		return "", err
	}

	meta := snap.Meta
	meta.ID = id
	meta.Index = n
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.CenterRe = real(snap.Viewport.Position)
	meta.CenterIm = imag(snap.Viewport.Position)
	meta.Size = snap.Viewport.Size
	if err := export.WriteJSON(base+".json", meta); err != nil {
		return "", err
	}

	logx.Logger().Info("snapshot saved", "id", id, "dir", s.baseDir)
	return id, nil
}

// nextIndex returns the smallest index without a state file.
func (s *Store) nextIndex() (int, error) {
	for n := 0; ; n++ {
		_, err := os.Stat(filepath.Join(s.baseDir, fmt.Sprintf("%s%d.txt", SnapshotPrefix, n)))
		if errors.Is(err, fs.ErrNotExist) {
			return n, nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// List returns the metadata of every snapshot, ordered by index.
func (s *Store) List() ([]SnapshotMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SnapshotMetadata{}, nil
		}
		return nil, err
	}

	snaps := make([]SnapshotMetadata, 0)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, SnapshotPrefix) || filepath.Ext(name) != ".json" {
			continue
		}
		meta, err := s.Load(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		snaps = append(snaps, *meta)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Index < snaps[j].Index })

	return snaps, nil
}

// Load reads a snapshot's metadata.
func (s *Store) Load(id string) (*SnapshotMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id+".json"))
	if err != nil {
		return nil, err
	}

	var meta SnapshotMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadViewport reads the state file of a snapshot. The state file is
// authoritative over the metadata.
func (s *Store) LoadViewport(id string) (fractal.Viewport, error) {
	return LoadState(filepath.Join(s.baseDir, id+".txt"))
}
