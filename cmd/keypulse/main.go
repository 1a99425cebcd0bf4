// Package main provides the CLI entrypoint for keypulse.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davrk/keypulse/internal/config"
	"github.com/davrk/keypulse/internal/dashboard"
	"github.com/davrk/keypulse/internal/logging"
	"github.com/davrk/keypulse/internal/model"
	"github.com/davrk/keypulse/internal/monitor"
	"github.com/davrk/keypulse/internal/source"
	"github.com/davrk/keypulse/internal/stats"
	"github.com/davrk/keypulse/internal/store"
)

var version = "dev"

const (
	defaultAnalysisWindow      = 60.0
	defaultUpdateInterval      = 1.0
	defaultDataRetention       = 3600.0
	defaultInactivityThreshold = 30.0
	defaultBaselineWPM         = 40.0
	defaultFatigueThreshold    = 70.0
	defaultHealthThreshold     = 30.0
	defaultSaveInterval        = 60.0
	defaultCurveWindow         = 20
)

var (
	monAnalysisWindow      float64
	monUpdateInterval      float64
	monDataRetention       float64
	monInactivityThreshold float64
	monBaselineWPM         float64
	monFatigueThreshold    float64
	monHealthThreshold     float64
	monSaveInterval        float64
	monLogLevel            string
	monDBPath              string
	monSeed                int64

	runOut      string
	runDuration float64

	statsSince       string
	statsLast        int
	statsCurveWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keypulse",
		Short:         "Behavioral typing and mouse metrics monitor",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}
	addMonitorFlags(rootCmd)

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func addMonitorFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&monAnalysisWindow, "analysis-window", defaultAnalysisWindow, "metrics window in seconds")
	cmd.Flags().Float64Var(&monUpdateInterval, "update-interval", defaultUpdateInterval, "analysis interval in seconds")
	cmd.Flags().Float64Var(&monDataRetention, "data-retention", defaultDataRetention, "event retention in seconds")
	cmd.Flags().Float64Var(&monInactivityThreshold, "inactivity-threshold", defaultInactivityThreshold, "inactivity threshold in seconds")
	cmd.Flags().Float64Var(&monBaselineWPM, "baseline-wpm", defaultBaselineWPM, "baseline typing speed for fatigue scoring")
	cmd.Flags().Float64Var(&monFatigueThreshold, "fatigue-threshold", defaultFatigueThreshold, "fatigue score alert threshold (0-100)")
	cmd.Flags().Float64Var(&monHealthThreshold, "health-threshold", defaultHealthThreshold, "health score alert threshold (0-100)")
	cmd.Flags().Float64Var(&monSaveInterval, "save-interval", defaultSaveInterval, "seconds between snapshot saves (0 disables history)")
	cmd.Flags().StringVar(&monLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&monDBPath, "db", "", "snapshot history database path")
	cmd.Flags().Int64Var(&monSeed, "seed", 0, "synthetic source seed (0 uses current time)")
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	// The dashboard owns the terminal; logs go to a file.
	logger, err := logging.New(logging.Options{Level: monLogLevel, Path: config.DefaultLogPath()})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer syncLogger(logger)

	st, err := openHistory()
	if err != nil {
		return err
	}
	defer closeHistory(st, logger)

	mon, err := monitor.New(monitor.Options{
		Settings:   settings,
		Source:     source.NewSynthetic(source.SyntheticOptions{Seed: monSeed}),
		Logger:     logger,
		OnSnapshot: newSnapshotSaver(st, logger, settings),
	})
	if err != nil {
		return fmt.Errorf("failed to build monitor: %w", err)
	}
	if err := mon.Start(cmd.Context()); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}
	defer mon.Stop()

	program := tea.NewProgram(dashboard.NewModel(mon), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the monitor headless until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runHeadlessCmd,
	}
	addMonitorFlags(cmd)
	cmd.Flags().StringVar(&runOut, "out", "", "write the final snapshot as JSON to this file")
	cmd.Flags().Float64Var(&runDuration, "duration", 0, "stop after this many seconds (0 runs until interrupted)")
	return cmd
}

func runHeadlessCmd(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: monLogLevel})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer syncLogger(logger)

	st, err := openHistory()
	if err != nil {
		return err
	}
	defer closeHistory(st, logger)

	mon, err := monitor.New(monitor.Options{
		Settings:   settings,
		Source:     source.NewSynthetic(source.SyntheticOptions{Seed: monSeed}),
		Logger:     logger,
		OnSnapshot: newSnapshotSaver(st, logger, settings),
	})
	if err != nil {
		return fmt.Errorf("failed to build monitor: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if runDuration > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, secondsToDuration(runDuration))
		defer timeoutCancel()
	}

	if err := mon.Start(ctx); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}
	logger.Info("monitor started",
		zap.Duration("analysis_window", settings.AnalysisWindow),
		zap.Duration("update_interval", settings.UpdateInterval))

	<-ctx.Done()
	mon.Stop()
	logger.Info("monitor stopped")

	if _, ok := mon.Current(); !ok {
		logErrln("no snapshot was published; nothing to export")
		return nil
	}
	if runOut == "" {
		return mon.Export(cmd.OutOrStdout())
	}
	out, err := os.Create(runOut)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := mon.Export(out); err != nil {
		if cerr := out.Close(); cerr != nil {
			// Best-effort close on export failure.
			_ = cerr
		}
		return fmt.Errorf("failed to export snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	logErrf("Wrote %s\n", runOut)
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show snapshot history report",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N snapshots")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&monDBPath, "db", "", "snapshot history database path")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	cfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := openHistory()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return report.Render(cmd.OutOrStdout(), cfg, 0, false)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), version); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
}

// resolveSettings merges the TOML config under the CLI flags and validates
// the result.
func resolveSettings(cmd *cobra.Command) (model.Settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "analysis-window", &monAnalysisWindow, fileCfg.Monitor.AnalysisWindow)
	applyFloatConfig(cmd, "update-interval", &monUpdateInterval, fileCfg.Monitor.UpdateInterval)
	applyFloatConfig(cmd, "data-retention", &monDataRetention, fileCfg.Monitor.DataRetention)
	applyFloatConfig(cmd, "inactivity-threshold", &monInactivityThreshold, fileCfg.Monitor.InactivityThreshold)
	applyFloatConfig(cmd, "baseline-wpm", &monBaselineWPM, fileCfg.Monitor.BaselineWPM)
	applyFloatConfig(cmd, "fatigue-threshold", &monFatigueThreshold, fileCfg.Monitor.FatigueThreshold)
	applyFloatConfig(cmd, "health-threshold", &monHealthThreshold, fileCfg.Monitor.HealthThreshold)
	applyFloatConfig(cmd, "save-interval", &monSaveInterval, fileCfg.Monitor.SaveInterval)
	applyStringConfig(cmd, "log-level", &monLogLevel, fileCfg.Monitor.LogLevel)

	settings := model.Settings{
		AnalysisWindow:      secondsToDuration(monAnalysisWindow),
		UpdateInterval:      secondsToDuration(monUpdateInterval),
		DataRetention:       secondsToDuration(monDataRetention),
		InactivityThreshold: secondsToDuration(monInactivityThreshold),
		BaselineWPM:         monBaselineWPM,
		FatigueThreshold:    monFatigueThreshold,
		HealthThreshold:     monHealthThreshold,
	}
	if err := validateSettings(settings); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

func validateSettings(s model.Settings) error {
	if s.AnalysisWindow <= 0 {
		return fmt.Errorf("--analysis-window must be > 0")
	}
	if s.UpdateInterval <= 0 {
		return fmt.Errorf("--update-interval must be > 0")
	}
	if s.DataRetention < s.AnalysisWindow {
		return fmt.Errorf("--data-retention must be >= --analysis-window")
	}
	if s.InactivityThreshold <= 0 {
		return fmt.Errorf("--inactivity-threshold must be > 0")
	}
	if s.BaselineWPM <= 0 {
		return fmt.Errorf("--baseline-wpm must be > 0")
	}
	if s.FatigueThreshold < 0 || s.FatigueThreshold > 100 {
		return fmt.Errorf("--fatigue-threshold must be between 0 and 100")
	}
	if s.HealthThreshold < 0 || s.HealthThreshold > 100 {
		return fmt.Errorf("--health-threshold must be between 0 and 100")
	}
	return nil
}

func openHistory() (*store.Store, error) {
	path := monDBPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func syncLogger(logger *zap.Logger) {
	if err := logger.Sync(); err != nil {
		// Best-effort flush; Sync commonly fails on stderr.
		_ = err
	}
}

func closeHistory(st *store.Store, logger *zap.Logger) {
	if err := st.Close(); err != nil {
		logger.Error("failed to close db", zap.Error(err))
	}
}

// newSnapshotSaver returns an OnSnapshot callback that persists one snapshot
// per save interval and prunes rows older than the retention horizon. It runs
// on the scheduler goroutine, so no locking is needed. A zero save interval
// disables history.
func newSnapshotSaver(st *store.Store, logger *zap.Logger, settings model.Settings) func(model.Snapshot) {
	if monSaveInterval <= 0 {
		return nil
	}
	interval := secondsToDuration(monSaveInterval)
	var lastSave time.Time
	return func(snap model.Snapshot) {
		if !lastSave.IsZero() && snap.Timestamp.Sub(lastSave) < interval {
			return
		}
		lastSave = snap.Timestamp
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := st.InsertSnapshot(ctx, snap); err != nil {
			logger.Error("failed to save snapshot", zap.Error(err))
			return
		}
		cutoff := snap.Timestamp.Add(-settings.DataRetention)
		if _, err := st.PruneBefore(ctx, cutoff); err != nil {
			logger.Error("failed to prune history", zap.Error(err))
		}
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keypulse configuration
# Uncomment a value to enable it. CLI flags override config values.

[monitor]
# analysis-window = %.0f       # Metrics window in seconds
# update-interval = %.0f        # Analysis interval in seconds
# data-retention = %.0f      # Event retention in seconds
# inactivity-threshold = %.0f  # Inactivity threshold in seconds
# baseline-wpm = %.0f          # Baseline typing speed for fatigue scoring
# fatigue-threshold = %.0f     # Fatigue score alert threshold (0-100)
# health-threshold = %.0f      # Health score alert threshold (0-100)
# save-interval = %.0f         # Seconds between snapshot saves (0 disables)
# log-level = "info"          # Log level (debug, info, warn, error)
`,
		defaultAnalysisWindow,
		defaultUpdateInterval,
		defaultDataRetention,
		defaultInactivityThreshold,
		defaultBaselineWPM,
		defaultFatigueThreshold,
		defaultHealthThreshold,
		defaultSaveInterval,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
