// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Defaults applied when neither flags, environment nor config set a value.
const (
	DefaultUser            = "local"
	DefaultWeeklyGoalHours = 12
	DefaultSessionTitle    = "Focus session"
	DefaultBlockMinutes    = 60
	DefaultLogLevel        = "warn"
	DefaultLogFormat       = "text"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	User    UserConfig    `toml:"user"`
	Session SessionConfig `toml:"session"`
	Planner PlannerConfig `toml:"planner"`
	Notify  NotifyConfig  `toml:"notify"`
	Log     LogConfig     `toml:"log"`
	Storage StorageConfig `toml:"storage"`
}

// UserConfig maps identity and goal settings.
type UserConfig struct {
	Name            *string `toml:"name"`
	WeeklyGoalHours *int    `toml:"weekly-goal-hours"`
	Timezone        *string `toml:"timezone"`
}

// SessionConfig maps session defaults.
type SessionConfig struct {
	DefaultTitle *string `toml:"default-title"`
}

// PlannerConfig maps planner defaults.
type PlannerConfig struct {
	DefaultDuration *int `toml:"default-duration"`
}

// NotifyConfig maps desktop notification settings.
type NotifyConfig struct {
	Enabled      *bool `toml:"enabled"`
	StreakAlerts *bool `toml:"streak-alerts"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// StorageConfig maps database settings.
type StorageConfig struct {
	DBPath *string `toml:"db-path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// DefaultTemplate returns the commented config written by `focuspulse config`.
func DefaultTemplate() string {
	return fmt.Sprintf(`# focuspulse configuration
# Uncomment a value to enable it. CLI flags and FOCUSPULSE_* variables override config values.

[user]
# name = %q                # Owner of sessions and planned blocks
# weekly-goal-hours = %d     # Weekly focus target shown by "today" (1-168)
# timezone = "Local"         # IANA zone used for days, weeks and streaks

[session]
# default-title = %q  # Title used by "start" without arguments

[planner]
# default-duration = %d      # Minutes for "plan add" without --duration (15-480)

[notify]
# enabled = true             # Desktop notification when a session ends
# streak-alerts = true       # Notify at 3, 7, 14, 30, 60 and 100 day streaks

[log]
# level = %q               # debug, info, warn or error
# format = %q              # text or json

[storage]
# db-path = "%s"
`,
		DefaultUser,
		DefaultWeeklyGoalHours,
		DefaultSessionTitle,
		DefaultBlockMinutes,
		DefaultLogLevel,
		DefaultLogFormat,
		DefaultDBPath(),
	)
}
