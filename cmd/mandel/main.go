package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/mandel/internal/analysis"
	"github.com/san-kum/mandel/internal/app"
	"github.com/san-kum/mandel/internal/automation"
	"github.com/san-kum/mandel/internal/colorize"
	"github.com/san-kum/mandel/internal/config"
	"github.com/san-kum/mandel/internal/export"
	"github.com/san-kum/mandel/internal/gui"
	"github.com/san-kum/mandel/internal/logx"
	"github.com/san-kum/mandel/internal/palette"
	"github.com/san-kum/mandel/internal/storage"
	"github.com/san-kum/mandel/internal/tui"
)

var (
	configFile string
	dataDir    string
	verbose    bool
	logFile    string

	// view
	centerRe   float64
	centerIm   float64
	size       float64
	preset     string
	snapshotID string

	// render settings
	resolution  int
	steps       uint
	ips         uint
	paletteName string
	paletteFile string
	coloring    string
	smoothPan   bool
	backend     string

	theme    string
	outDir   string
	workers  int
	asJSON   bool
	profile  bool
	buckets  int
	fromSize float64
	toSize   float64
	frames   int
	delay    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mandel",
		Short: "interactive mandelbrot explorer",
		Long: "Explore the Mandelbrot set. The image refines over a number of steps\n" +
			"and the last finished image is reprojected while you move.",
		PersistentPreRunE: setupLogging,
		RunE:              runExplore,
		SilenceUsage:      true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "snapshot directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write logs to file")
	viewFlags(rootCmd)
	rootCmd.Flags().StringVar(&theme, "theme", "minimal", "terminal theme")

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "explore in the terminal",
		RunE:  runExplore,
	}
	viewFlags(exploreCmd)
	exploreCmd.Flags().StringVar(&theme, "theme", "minimal", "terminal theme")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "explore in a window",
		RunE:  runGUI,
	}
	viewFlags(guiCmd)
	guiCmd.Flags().StringVar(&backend, "backend", "cpu", "evaluator backend (cpu, gl)")

	renderCmd := &cobra.Command{
		Use:   "render [output]",
		Short: "render one image to completion",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRender,
	}
	viewFlags(renderCmd)

	tourCmd := &cobra.Command{
		Use:   "tour [file.yaml]",
		Short: "render every waypoint of a tour",
		Args:  cobra.ExactArgs(1),
		RunE:  runTour,
	}
	renderFlags(tourCmd)
	tourCmd.Flags().StringVar(&outDir, "out", "tour", "output directory")
	tourCmd.Flags().IntVar(&workers, "workers", 2, "renders in parallel")

	zoomCmd := &cobra.Command{
		Use:   "zoom [output.gif]",
		Short: "render a zoom sequence as an animated gif",
		Args:  cobra.ExactArgs(1),
		RunE:  runZoom,
	}
	viewFlags(zoomCmd)
	zoomCmd.Flags().Float64Var(&fromSize, "from", 3, "starting size")
	zoomCmd.Flags().Float64Var(&toSize, "to", 0.01, "final size")
	zoomCmd.Flags().IntVar(&frames, "frames", 30, "number of frames")
	zoomCmd.Flags().IntVar(&delay, "delay", 8, "delay between frames (1/100 s)")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "escape time statistics for a view",
		RunE:  runStats,
	}
	viewFlags(statsCmd)
	statsCmd.Flags().BoolVar(&asJSON, "json", false, "print as json")
	statsCmd.Flags().IntVar(&buckets, "buckets", 40, "histogram buckets")
	statsCmd.Flags().BoolVar(&profile, "profile", false, "also plot the interior fraction per step")

	snapshotsCmd := &cobra.Command{
		Use:   "snapshots [id]",
		Short: "list saved snapshots, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listSnapshots,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset locations and palettes",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default config",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(exploreCmd, guiCmd, renderCmd, tourCmd, zoomCmd, statsCmd, snapshotsCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func viewFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&centerRe, "re", config.DefaultCenterRe, "center, real part")
	cmd.Flags().Float64Var(&centerIm, "im", config.DefaultCenterIm, "center, imaginary part")
	cmd.Flags().Float64Var(&size, "size", config.DefaultSize, "viewport side length")
	cmd.Flags().StringVar(&preset, "preset", "", "start at a preset location")
	cmd.Flags().StringVar(&snapshotID, "snapshot", "", "start at a saved snapshot")
	renderFlags(cmd)
}

func renderFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&resolution, "resolution", config.DefaultResolution, "grid side, rounded up to a power of two")
	cmd.Flags().UintVar(&steps, "steps", config.DefaultMaxStepCount, "steps to completion")
	cmd.Flags().UintVar(&ips, "ips", 0, "iterations per step (0: palette size)")
	cmd.Flags().StringVar(&paletteName, "palette", "grayscale", "palette preset")
	cmd.Flags().StringVar(&paletteFile, "palette-file", "", "read the palette from an image's top row")
	cmd.Flags().StringVar(&coloring, "coloring", "simple", "coloring mode (simple, smooth)")
	cmd.Flags().BoolVar(&smoothPan, "smooth-pan", false, "bilinear resampling while the camera moves")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	if !verbose && logFile == "" {
		return nil
	}
	var w io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		w = f
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logx.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the config file, if any, and applies the flags the user
// set explicitly on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()

	if flags.Changed("re") {
		cfg.Camera.CenterRe = centerRe
	}
	if flags.Changed("im") {
		cfg.Camera.CenterIm = centerIm
	}
	if flags.Changed("size") {
		cfg.Camera.Size = size
	}
	if flags.Changed("resolution") {
		cfg.Render.Resolution = resolution
	}
	if flags.Changed("steps") {
		cfg.Render.MaxStepCount = steps
	}
	if flags.Changed("ips") {
		cfg.Render.IterationsPerStep = ips
	}
	if flags.Changed("palette") {
		cfg.Palette = config.PaletteConfig{Name: paletteName}
	}
	if flags.Changed("palette-file") {
		cfg.Palette.File = paletteFile
	}
	if flags.Changed("coloring") {
		if _, err := colorize.ParseMode(coloring); err != nil {
			return nil, err
		}
		cfg.Render.Coloring = coloring
	}
	if flags.Changed("smooth-pan") {
		cfg.Render.SmoothPan = smoothPan
	}
	if flags.Changed("backend") {
		cfg.Render.Backend = backend
	}
	if dataDir != "" {
		cfg.Snapshots.Dir = dataDir
	}

	if preset != "" {
		loc := config.FindPreset(preset)
		if loc == nil {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
		cfg.SetViewport(loc.Viewport())
		if !flags.Changed("steps") {
			cfg.Render.MaxStepCount = loc.MaxStepCount
		}
	}
	if snapshotID != "" {
		v, err := storage.New(cfg.Snapshots.Dir).LoadViewport(snapshotID)
		if err != nil {
			return nil, err
		}
		cfg.SetViewport(v)
	}

	return cfg, cfg.Validate()
}

func runExplore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	return tui.Run(ctx, theme)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return gui.Run(cfg)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := "mandel.png"
	if len(args) == 1 {
		out = args[0]
	}
	if _, err := export.FormatOf(out); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := automation.Render(ctx, cfg, automation.Job{Name: filepath.Base(out), Viewport: cfg.Viewport(), Output: out})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s and %s (%d steps, %s, %.1f%% interior)\n",
		out, automation.StatePath(out), res.Steps, res.Elapsed.Round(1e6), 100*res.Stats.InteriorFraction())
	return nil
}

func runTour(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tour, err := automation.LoadTour(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("tour %q: %d waypoints\n", tour.Name, len(tour.Waypoints))
	results, err := automation.RunTour(ctx, tour, cfg, outDir, workers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCENTER\tSIZE\tSTEPS\tINTERIOR\tTIME\tOUTPUT")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%.10g%+.10gi\t%.3g\t%d\t%.1f%%\t%s\t%s\n",
			r.Name,
			real(r.Viewport.Position), imag(r.Viewport.Position),
			r.Viewport.Size,
			r.Steps,
			100*r.Stats.InteriorFraction(),
			r.Elapsed.Round(1e6),
			r.Output,
		)
	}
	return w.Flush()
}

func runZoom(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	z := automation.ZoomSweep{
		Center:   cfg.Viewport().Position,
		FromSize: fromSize,
		ToSize:   toSize,
		Frames:   frames,
	}
	results, err := automation.RunZoom(ctx, z, cfg, args[0], delay)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames)\n", args[0], len(results))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	res, err := automation.Render(ctx, cfg, automation.Job{Name: "stats", Viewport: cfg.Viewport(), Buckets: buckets})
	if err != nil {
		return err
	}
	st := res.Stats

	if asJSON {
		return export.EncodeJSON(os.Stdout, struct {
			Viewport string         `json:"viewport"`
			Area     float64        `json:"area_estimate"`
			Stats    analysis.Stats `json:"stats"`
		}{res.Viewport.String(), st.Area(res.Viewport), st})
	}

	fmt.Println(res.Viewport)
	fmt.Println(analysis.Plot(st.HistogramSeries(), "escaped cells by lifetime", 80, 12))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "cells\t%d\n", st.Cells)
	fmt.Fprintf(w, "interior\t%d (%.2f%%)\n", st.Interior, 100*st.InteriorFraction())
	fmt.Fprintf(w, "escaped\t%d\n", st.Escaped)
	fmt.Fprintf(w, "lifetime\tmin %d  mean %.1f  max %d\n", st.MinLifetime, st.MeanLifetime, st.MaxLifetime)
	fmt.Fprintf(w, "area\t%.6g\n", st.Area(res.Viewport))
	if err := w.Flush(); err != nil {
		return err
	}

	if profile {
		series, err := automation.Profile(cfg)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(analysis.Plot(series, "interior fraction by step", 80, 10))
	}
	return nil
}

func listSnapshots(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.Snapshots.Dir)
	if len(args) == 1 {
		return showSnapshot(st, args[0])
	}
	snaps, err := st.List()
	if err != nil {
		return err
	}

	if len(snaps) == 0 {
		fmt.Println("no snapshots found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tCENTER\tSIZE\tRES\tSTEPS\tPALETTE")
	for _, s := range snaps {
		fmt.Fprintf(w, "%s\t%s\t%.10g%+.10gi\t%.3g\t%d\t%d\t%s\n",
			s.ID,
			s.Timestamp.Format("2006-01-02 15:04:05"),
			s.CenterRe, s.CenterIm,
			s.Size,
			s.Resolution,
			s.MaxStepCount,
			s.Palette,
		)
	}
	return w.Flush()
}

func showSnapshot(st *storage.Store, id string) error {
	meta, err := st.Load(id)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", id, err)
	}
	v, err := st.LoadViewport(id)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", id, err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "id\t%s\n", meta.ID)
	fmt.Fprintf(w, "time\t%s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "center\t%.17g %+.17gi\n", real(v.Position), imag(v.Position))
	fmt.Fprintf(w, "size\t%.17g\n", v.Size)
	fmt.Fprintf(w, "resolution\t%d\n", meta.Resolution)
	fmt.Fprintf(w, "steps\t%d x %d\n", meta.MaxStepCount, meta.IterationsPerStep)
	fmt.Fprintf(w, "coloring\t%s\n", meta.Coloring)
	fmt.Fprintf(w, "palette\t%s\n", meta.Palette)
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tNAME\tCENTER\tSIZE\tSTEPS")
	for _, group := range config.Groups() {
		for _, name := range config.ListPresets(group) {
			loc := config.GetPreset(group, name)
			fmt.Fprintf(w, "%s\t%s\t%.10g%+.10gi\t%.3g\t%d\n", group, name, loc.Re, loc.Im, loc.Size, loc.MaxStepCount)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()
	fmt.Println("palettes:", palette.Names())
	fmt.Println("themes:  ", tui.ThemeNames())
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "mandel.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}
