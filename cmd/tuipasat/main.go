// Package main provides the CLI entrypoint for tuipasat.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuipasat/internal/audio"
	"github.com/verte-zerg/tuipasat/internal/config"
	"github.com/verte-zerg/tuipasat/internal/export"
	"github.com/verte-zerg/tuipasat/internal/generator"
	"github.com/verte-zerg/tuipasat/internal/model"
	"github.com/verte-zerg/tuipasat/internal/psat"
	"github.com/verte-zerg/tuipasat/internal/stats"
	"github.com/verte-zerg/tuipasat/internal/statsui"
	"github.com/verte-zerg/tuipasat/internal/store"
	"github.com/verte-zerg/tuipasat/internal/tui"
)

const (
	defaultISI         = 3000
	defaultDuration    = 5
	defaultMin         = 1
	defaultMax         = 9
	defaultSound       = "bell"
	defaultCurveWindow = 10
	plainReportWidth   = 80
)

var (
	sessionISI          int
	sessionDuration     int
	sessionMin          int
	sessionMax          int
	sessionPoolFile     string
	sessionSeed         uint64
	sessionSound        string
	sessionSoundCommand string

	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	exportFormat string
	exportSince  string
	exportLast   int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuipasat",
		Short:         "TUI paced serial addition trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runSessionCmd,
	}

	rootCmd.Flags().IntVar(&sessionISI, "isi", defaultISI, "initial inter-stimulus interval in milliseconds")
	rootCmd.Flags().IntVar(&sessionDuration, "duration", defaultDuration, "session length in minutes")
	rootCmd.Flags().IntVar(&sessionMin, "min", defaultMin, "smallest stimulus value")
	rootCmd.Flags().IntVar(&sessionMax, "max", defaultMax, "largest stimulus value")
	rootCmd.Flags().StringVar(&sessionPoolFile, "pool-file", "", "file with one stimulus per line (overrides --min/--max)")
	rootCmd.Flags().Uint64Var(&sessionSeed, "seed", 0, "fixed random seed (default: clock)")
	rootCmd.Flags().StringVar(&sessionSound, "sound", defaultSound, "stimulus cue: bell, off or command")
	rootCmd.Flags().StringVar(&sessionSoundCommand, "sound-command", "", "cue command, {} is replaced with the stimulus")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

func runSessionCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := resolveConfig(cmd, fileCfg)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	pool, err := buildPool(cfg)
	if err != nil {
		return err
	}
	seed := generator.ClockSeed()
	if cfg.Seed != nil {
		seed = generator.FixedSeed(*cfg.Seed)
	}
	session, err := psat.New(psat.Config[int, int]{
		Key:      generator.SumKey,
		Pool:     pool,
		ISI:      cfg.ISI,
		Duration: cfg.Duration,
		Seed:     seed,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	mode, err := audio.ParseMode(cfg.Sound)
	if err != nil {
		return fmt.Errorf("invalid --sound value: %w", err)
	}
	player, err := audio.New(mode, os.Stderr, cfg.SoundCommand)
	if err != nil {
		return fmt.Errorf("failed to set up sound: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	program := tea.NewProgram(tui.NewModel(session, st, player), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveConfig merges file values under flags the user did not set.
func resolveConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.Config, error) {
	applyIntConfig(cmd, "isi", &sessionISI, fileCfg.Session.ISI)
	applyIntConfig(cmd, "duration", &sessionDuration, fileCfg.Session.Duration)
	applyIntConfig(cmd, "min", &sessionMin, fileCfg.Session.Min)
	applyIntConfig(cmd, "max", &sessionMax, fileCfg.Session.Max)
	applyStringConfig(cmd, "pool-file", &sessionPoolFile, fileCfg.Session.PoolFile)
	applyStringConfig(cmd, "sound", &sessionSound, fileCfg.Sound.Mode)
	applyStringConfig(cmd, "sound-command", &sessionSoundCommand, fileCfg.Sound.Command)

	cfg := model.Config{
		ISI:          sessionISI,
		Duration:     sessionDuration,
		Min:          sessionMin,
		Max:          sessionMax,
		PoolFile:     sessionPoolFile,
		Sound:        sessionSound,
		SoundCommand: sessionSoundCommand,
	}
	switch {
	case cmd.Flags().Changed("seed"):
		seed := sessionSeed
		cfg.Seed = &seed
	case fileCfg.Session.Seed != nil:
		if *fileCfg.Session.Seed < 0 {
			return model.Config{}, fmt.Errorf("config seed must be >= 0")
		}
		seed := uint64(*fileCfg.Session.Seed)
		cfg.Seed = &seed
	}
	return cfg, nil
}

func buildPool(cfg model.Config) ([]int, error) {
	if cfg.PoolFile != "" {
		pool, err := generator.LoadPool(cfg.PoolFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load stimulus pool: %w", err)
		}
		return pool, nil
	}
	pool, err := generator.Digits(cfg.Min, cfg.Max)
	if err != nil {
		return nil, fmt.Errorf("failed to build stimulus pool: %w", err)
	}
	return pool, nil
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
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI (default when stdout is not a terminal)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	since, err := parseSince(statsSince)
	if err != nil {
		return err
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	cfg := model.StatsConfig{
		Since:       since,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain || !isTerminal(os.Stdout) {
		return printStats(cmd, st, cfg)
	}

	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStats(cmd *cobra.Command, st *store.Store, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	width := 0
	if isTerminal(os.Stdout) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	} else {
		width = plainReportWidth
	}
	if err := stats.RenderReport(cmd.OutOrStdout(), report, cfg.CurveWindow, width); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export sessions with trials",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportFormat, "format", export.FormatYAML, "output format: yaml or json")
	cmd.Flags().StringVar(&exportSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&exportLast, "last", 0, "limit to last N sessions")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return fmt.Errorf("invalid --format value: %w", err)
	}
	since, err := parseSince(exportSince)
	if err != nil {
		return err
	}
	if exportLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, model.StatsConfig{Since: since, Last: exportLast})
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	if err := export.Write(cmd.OutOrStdout(), format, export.Records(report.Sessions, report.Trials)); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
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

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuipasat configuration
# Uncomment a value to enable it. CLI flags override config values.

[session]
# isi = %d              # Initial inter-stimulus interval (ms)
# duration = %d            # Session length (minutes)
# min = %d                 # Smallest stimulus
# max = %d                 # Largest stimulus
# pool-file = ""          # One stimulus per line, overrides min/max
# seed = 42               # Fixed random seed

[sound]
# mode = %q           # bell, off or command
# command = "espeak {}"   # Used when mode = "command"
`,
		defaultISI,
		defaultDuration,
		defaultMin,
		defaultMax,
		defaultSound,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.ISI <= 0 {
		return fmt.Errorf("--isi must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	if cfg.PoolFile == "" && cfg.Min > cfg.Max {
		return fmt.Errorf("--min must be <= --max")
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Sound), string(audio.ModeCommand)) && strings.TrimSpace(cfg.SoundCommand) == "" {
		return fmt.Errorf("--sound-command must be set when --sound=command")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
