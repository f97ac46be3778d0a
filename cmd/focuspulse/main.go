// Package main provides the CLI entrypoint for focuspulse.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/focuspulse/internal/app"
	"github.com/verte-zerg/focuspulse/internal/config"
	"github.com/verte-zerg/focuspulse/internal/logging"
	"github.com/verte-zerg/focuspulse/internal/model"
	"github.com/verte-zerg/focuspulse/internal/notify"
	"github.com/verte-zerg/focuspulse/internal/store"
)

var (
	rootUser      string
	rootDB        string
	rootTimezone  string
	rootLogLevel  string
	rootLogFormat string
	rootEnvFile   string
	rootNotify    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "focuspulse",
		Short:         "Local focus session tracker and weekly planner",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootUser, "user", config.DefaultUser, "user that owns sessions and blocks")
	flags.StringVar(&rootDB, "db", "", "database path (default: XDG data dir)")
	flags.StringVar(&rootTimezone, "tz", "", "IANA timezone for days and weeks (default: Local)")
	flags.StringVar(&rootLogLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")
	flags.StringVar(&rootLogFormat, "log-format", config.DefaultLogFormat, "text or json")
	flags.StringVar(&rootEnvFile, "env-file", "", "dotenv file with FOCUSPULSE_* variables (default: .env)")
	flags.BoolVar(&rootNotify, "notify", true, "send desktop notifications")

	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newPauseCmd())
	rootCmd.AddCommand(newResumeCmd())
	rootCmd.AddCommand(newEndCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newTimerCmd())
	rootCmd.AddCommand(newTodayCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// deps holds what every command needs once config is resolved.
type deps struct {
	cfg    model.Config
	svc    *app.Service
	logger logging.Logger
	st     *store.Store
}

func (r *deps) close() {
	if err := r.st.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

// loadConfig layers the config file, the environment and explicit flags.
func loadConfig(cmd *cobra.Command) (model.Config, error) {
	if _, err := config.LoadDotEnv(rootEnvFile); err != nil {
		return model.Config{}, err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg = config.ApplyEnv(fileCfg, os.Getenv)

	applyStringFlag(cmd, "user", &fileCfg.User.Name, rootUser)
	applyStringFlag(cmd, "db", &fileCfg.Storage.DBPath, rootDB)
	applyStringFlag(cmd, "tz", &fileCfg.User.Timezone, rootTimezone)
	applyStringFlag(cmd, "log-level", &fileCfg.Log.Level, rootLogLevel)
	applyStringFlag(cmd, "log-format", &fileCfg.Log.Format, rootLogFormat)
	applyBoolFlag(cmd, "notify", &fileCfg.Notify.Enabled, rootNotify)

	cfg, err := config.Resolve(fileCfg)
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openDeps(cmd *cobra.Command) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	// Validated by config.Resolve.
	level, _ := logging.ParseLevel(cfg.LogLevel)
	format, _ := logging.ParseFormat(cfg.LogFormat)
	logger := logging.New(os.Stderr, level, format)
	loc, err := config.Location(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath, store.WithLocation(loc), store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	logger.Debug("store opened", "path", cfg.DBPath, "user", cfg.User)

	opts := []app.Option{app.WithLogger(logger), app.WithLocation(loc)}
	if cfg.Notify {
		opts = append(opts, app.WithNotifier(notify.NewDesktop(false)))
	}
	return &deps{
		cfg:    cfg,
		svc:    app.New(st, cfg, opts...),
		logger: logger,
		st:     st,
	}, nil
}

// withDeps adapts a command body that needs the service.
func withDeps(fn func(cmd *cobra.Command, args []string, rt *deps) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer rt.close()
		return fn(cmd, args, rt)
	}
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
		if err := os.WriteFile(path, []byte(config.DefaultTemplate()), 0o644); err != nil {
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

func applyStringFlag(cmd *cobra.Command, name string, target **string, value string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	v := value
	*target = &v
}

func applyBoolFlag(cmd *cobra.Command, name string, target **bool, value bool) {
	if !cmd.Flags().Changed(name) {
		return
	}
	v := value
	*target = &v
}

func printf(cmd *cobra.Command, format string, args ...any) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func printLines(cmd *cobra.Command, lines []string) error {
	for _, line := range lines {
		if err := printf(cmd, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
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
