package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/whirl/internal/analysis"
	"github.com/san-kum/whirl/internal/config"
	"github.com/san-kum/whirl/internal/export"
	"github.com/san-kum/whirl/internal/metrics"
	"github.com/san-kum/whirl/internal/replay"
	"github.com/san-kum/whirl/internal/store"
	"github.com/san-kum/whirl/internal/tui"
	"github.com/san-kum/whirl/internal/wheel"
)

var (
	dataDir     string
	preset      string
	configFile  string
	optionCount int
	selected    int
	dtMs        int
	frameRate   int
	save        bool
	live        bool
	verbose     bool
	svgFile     string
)

// main registers commands and flags and launches the interactive demo
// when no subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:   "whirl",
		Short: "terminal wheel picker with gesture physics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunDemo()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".whirl", "data directory")

	traceCmd := &cobra.Command{
		Use:   "trace [script]",
		Short: "replay a scripted gesture and plot the trace",
		Args:  cobra.ExactArgs(1),
		RunE:  traceScript,
	}
	traceCmd.Flags().StringVar(&preset, "preset", "", "tuning preset")
	traceCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	traceCmd.Flags().IntVar(&optionCount, "options", 100, "number of options in the column")
	traceCmd.Flags().IntVar(&selected, "selected", 10, "initially selected index")
	traceCmd.Flags().IntVar(&dtMs, "dt", 16, "frame step in ms")
	traceCmd.Flags().IntVar(&frameRate, "fps", 30, "live render frame rate")
	traceCmd.Flags().BoolVar(&save, "save", false, "persist the run")
	traceCmd.Flags().BoolVar(&live, "live", false, "render the wheel live while replaying")
	traceCmd.Flags().BoolVar(&verbose, "verbose", false, "log gesture internals")
	traceCmd.Flags().StringVar(&svgFile, "svg", "", "write the trace to an SVG file")

	compareCmd := &cobra.Command{
		Use:   "compare [script] [preset1] [preset2] ...",
		Short: "replay one script under several presets",
		Args:  cobra.MinimumNArgs(2),
		RunE:  comparePresets,
	}
	compareCmd.Flags().IntVar(&optionCount, "options", 100, "number of options in the column")
	compareCmd.Flags().IntVar(&selected, "selected", 10, "initially selected index")
	compareCmd.Flags().IntVar(&dtMs, "dt", 16, "frame step in ms")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "write the trace to an SVG file")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a saved trace",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export full run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list tuning presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	scriptsCmd := &cobra.Command{
		Use:   "scripts",
		Short: "list built-in gesture scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range scriptNames {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(traceCmd, compareCmd, listCmd, plotCmd, analyzeCmd, exportCmd, exportJSONCmd, presetsCmd, scriptsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	return cfg, nil
}

var scriptNames = []string{"flick", "drag", "wheel", "tap", "multi"}

// buildScript assembles one of the built-in gesture recordings.
func buildScript(name string) (replay.Script, error) {
	s := replay.Script{Name: name}
	switch name {
	case "flick":
		s.Drag(0, 200, 8, -25, 10*time.Millisecond, wheel.PointerTouch)
	case "drag":
		s.Drag(0, 200, 24, -8, 20*time.Millisecond, wheel.PointerTouch)
	case "wheel":
		s.WheelBurst(0, 6, 30, 50*time.Millisecond)
	case "tap":
		s.Actions = append(s.Actions,
			replay.Action{At: 0, Kind: replay.ActionPointerDown, Y: 200, Pointer: wheel.PointerTouch},
			replay.Action{At: 60 * time.Millisecond, Kind: replay.ActionPointerUp, Y: 200})
	case "multi":
		at := s.Drag(0, 200, 8, -25, 10*time.Millisecond, wheel.PointerTouch)
		s.Drag(at+120*time.Millisecond, 200, 8, -25, 10*time.Millisecond, wheel.PointerTouch)
	default:
		return s, fmt.Errorf("unknown script: %s (available: %v)", name, scriptNames)
	}
	return s, nil
}

func makeOptions(n int) []string {
	options := make([]string, n)
	for i := range options {
		options[i] = fmt.Sprintf("%d", i)
	}
	return options
}

func newRunner(cmd *cobra.Command) (*replay.Runner, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger := zap.NewNop()
	if verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, nil, err
		}
	}

	r := replay.NewRunner(cfg, "value", makeOptions(optionCount), selected, logger)
	r.AddMetric(metrics.NewPeakVelocity())
	r.AddMetric(metrics.NewTravelDistance())
	r.AddMetric(metrics.NewSettleTime())
	r.AddMetric(metrics.NewDirectionChanges())
	return r, cfg, nil
}

func runConfig() replay.Config {
	cfg := replay.DefaultRunConfig()
	if dtMs > 0 {
		cfg.Dt = time.Duration(dtMs) * time.Millisecond
	}
	return cfg
}

func traceScript(cmd *cobra.Command, args []string) error {
	script, err := buildScript(args[0])
	if err != nil {
		return err
	}

	runner, cfg, err := newRunner(cmd)
	if err != nil {
		return err
	}

	if live {
		renderer := tui.NewLiveRenderer(script.Name, makeOptions(optionCount), cfg.Picker.ItemHeight, frameRate)
		renderer.Start()
		defer renderer.Stop()
		runner.AddObserver(renderer)
	}

	start := time.Now()
	result, err := runner.Run(context.Background(), script, runConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("script: %s\n", script.Name)
	fmt.Printf("frames: %d (%.2fs simulated, %v wall)\n", result.Frames, lastTime(result), elapsed)
	fmt.Printf("final: index %d value %q\n\n", result.FinalIndex, result.FinalValue)

	plotTrace(result.Positions, result.Velocities)

	fmt.Println("metrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.3f\n", name, val)
	}
	fmt.Printf("\nevents: %d  commits: %d  closes: %d", len(result.Events), len(result.Commits), len(result.Closes))
	if len(result.Closes) > 0 {
		fmt.Printf(" (reason: %s)", result.Closes[0].Reason)
	}
	fmt.Println()

	if save {
		st := store.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(script.Name, presetName(), runConfig(), result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if svgFile != "" {
		if err := export.WriteTraceSVG(svgFile, result.Times, result.Positions, result.Velocities); err != nil {
			return err
		}
		fmt.Printf("svg written to %s\n", svgFile)
	}

	return nil
}

func presetName() string {
	if preset == "" {
		return "default"
	}
	return preset
}

func lastTime(result *replay.Result) float64 {
	if len(result.Times) == 0 {
		return 0
	}
	return result.Times[len(result.Times)-1]
}

func plotTrace(positions, velocities []float64) {
	if len(positions) == 0 {
		return
	}

	graph := asciigraph.Plot(positions,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("position (px)"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(velocities,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("velocity (px/s)"),
	)
	fmt.Println(graph)
	fmt.Println()
}

func comparePresets(cmd *cobra.Command, args []string) error {
	script, err := buildScript(args[0])
	if err != nil {
		return err
	}

	names := args[1:]
	jobs := make([]replay.SweepJob, 0, len(names))
	for _, name := range names {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		jobs = append(jobs, replay.SweepJob{Name: name, Config: cfg})
	}

	sweep := replay.NewSweep("value", makeOptions(optionCount), selected, func() []replay.Metric {
		return []replay.Metric{
			metrics.NewPeakVelocity(),
			metrics.NewTravelDistance(),
			metrics.NewSettleTime(),
			metrics.NewDirectionChanges(),
		}
	})

	results, err := sweep.Run(context.Background(), script, jobs, runConfig())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tFINAL\tSETTLE_S\tTRAVEL_PX\tPEAK_PX/S\tWOBBLE")

	for _, name := range names {
		result := results[name]
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.0f\t%.0f\t%.0f\n",
			name,
			result.FinalIndex,
			result.Metrics["settle_time"],
			result.Metrics["travel_distance"],
			result.Metrics["peak_velocity"],
			result.Metrics["direction_changes"],
		)
	}

	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCRIPT\tPRESET\tTIME\tFRAMES\tFINAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			run.ID,
			run.Script,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.FinalValue,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	times, positions, velocities, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	if len(positions) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("script: %s (preset %s)\n", meta.Script, meta.Preset)
	fmt.Printf("samples: %d\n\n", len(positions))

	plotTrace(positions, velocities)

	if svgFile != "" {
		if err := export.WriteTraceSVG(svgFile, times, positions, velocities); err != nil {
			return err
		}
		fmt.Printf("svg written to %s\n", svgFile)
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	times, positions, _, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	spec := analysis.AnalyzeTrace(times, positions)
	if len(spec.Power) == 0 {
		return fmt.Errorf("not enough samples to analyze")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("script: %s (preset %s)\n", meta.Script, meta.Preset)
	fmt.Printf("samples: %d at %.1f Hz\n\n", len(positions), spec.SampleRateHz)

	// The interesting wobble lives in the low quarter of the spectrum.
	quarter := spec.Power[:len(spec.Power)/4+1]
	graph := asciigraph.Plot(quarter,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (low bins)"),
	)
	fmt.Println(graph)
	fmt.Println()

	if spec.DominantHz > 0 {
		fmt.Printf("dominant frequency: %.2f Hz (period %.0f ms)\n", spec.DominantHz, 1000/spec.DominantHz)
	} else {
		fmt.Println("no dominant frequency; trace is flat")
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	times, positions, velocities, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	result := &replay.Result{
		Times:      times,
		Positions:  positions,
		Velocities: velocities,
		Frames:     meta.Frames,
		FinalIndex: meta.FinalIndex,
		FinalValue: meta.FinalValue,
		Metrics:    meta.Metrics,
	}

	return store.ExportJSONStdout(meta.Script, meta.Preset, result)
}
