// Package storage persists snapshots: the rendered image, the viewport state
// file and JSON metadata.
package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/mandel/internal/fractal"
)

// FormatState renders v as the three-line state format: center real part,
// center imaginary part and size, each with 17 significant digits so the
// values round-trip exactly.
func FormatState(v fractal.Viewport) string {
	var sb strings.Builder
	for _, f := range []float64{real(v.Position), imag(v.Position), v.Size} {
		sb.WriteString(strconv.FormatFloat(f, 'g', 17, 64))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteState writes the state format to w.
func WriteState(w io.Writer, v fractal.Viewport) error {
	_, err := io.WriteString(w, FormatState(v))
	return err
}

// ReadState parses the state format. Blank lines are skipped and anything
// after the third value is ignored.
func ReadState(r io.Reader) (fractal.Viewport, error) {
	var vals []float64
	sc := bufio.NewScanner(r)
	for sc.Scan() && len(vals) < 3 {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		f, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return fractal.Viewport{}, fmt.Errorf("storage: state line %d: %w", len(vals)+1, err)
		}
		vals = append(vals, f)
	}
	if err := sc.Err(); err != nil {
		return fractal.Viewport{}, err
	}
	if len(vals) < 3 {
		return fractal.Viewport{}, fmt.Errorf("storage: state needs 3 values, got %d", len(vals))
	}
	v := fractal.Viewport{Position: complex(vals[0], vals[1]), Size: vals[2]}
	if err := v.Validate(); err != nil {
		return fractal.Viewport{}, err
	}
	return v, nil
}

// SaveState writes the state file at path.
func SaveState(path string, v fractal.Viewport) error {
	return os.WriteFile(path, []byte(FormatState(v)), 0644)
}

// LoadState reads the state file at path.
func LoadState(path string) (fractal.Viewport, error) {
	file, err := os.Open(path)
	if err != nil {
		return fractal.Viewport{}, err
	}
	defer file.Close()

	v, err := ReadState(file)
	if err != nil {
		return fractal.Viewport{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
