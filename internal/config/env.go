package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/verte-zerg/focuspulse/internal/logging"
	"github.com/verte-zerg/focuspulse/internal/model"
)

// Environment variables that override the config file.
const (
	EnvDB       = "FOCUSPULSE_DB"
	EnvUser     = "FOCUSPULSE_USER"
	EnvLogLevel = "FOCUSPULSE_LOG_LEVEL"
)

// LoadDotEnv loads variables from a .env file without overriding ones
// already set. An empty path means ".env" in the working directory.
// A missing file is not an error.
func LoadDotEnv(path string) (bool, error) {
	var err error
	if path == "" {
		err = godotenv.Load()
	} else {
		err = godotenv.Load(path)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load env file: %w", err)
	}
	return true, nil
}

// ApplyEnv overlays FOCUSPULSE_* variables onto cfg.
func ApplyEnv(cfg FileConfig, getenv func(string) string) FileConfig {
	if v := strings.TrimSpace(getenv(EnvDB)); v != "" {
		cfg.Storage.DBPath = &v
	}
	if v := strings.TrimSpace(getenv(EnvUser)); v != "" {
		cfg.User.Name = &v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = &v
	}
	return cfg
}

// Resolve fills defaults for unset values and validates the result.
func Resolve(file FileConfig) (model.Config, error) {
	cfg := model.Config{
		User:             DefaultUser,
		DBPath:           DefaultDBPath(),
		Timezone:         "Local",
		WeeklyGoalHours:  DefaultWeeklyGoalHours,
		DefaultTitle:     DefaultSessionTitle,
		DefaultBlockMins: DefaultBlockMinutes,
		Notify:           true,
		StreakAlerts:     true,
		LogLevel:         DefaultLogLevel,
		LogFormat:        DefaultLogFormat,
	}
	setString(&cfg.User, file.User.Name)
	setString(&cfg.DBPath, file.Storage.DBPath)
	setString(&cfg.Timezone, file.User.Timezone)
	setString(&cfg.DefaultTitle, file.Session.DefaultTitle)
	setString(&cfg.LogLevel, file.Log.Level)
	setString(&cfg.LogFormat, file.Log.Format)
	if file.User.WeeklyGoalHours != nil {
		cfg.WeeklyGoalHours = *file.User.WeeklyGoalHours
	}
	if file.Planner.DefaultDuration != nil {
		cfg.DefaultBlockMins = *file.Planner.DefaultDuration
	}
	if file.Notify.Enabled != nil {
		cfg.Notify = *file.Notify.Enabled
	}
	if file.Notify.StreakAlerts != nil {
		cfg.StreakAlerts = *file.Notify.StreakAlerts
	}
	return cfg, Validate(cfg)
}

// Bounds for user-editable numeric settings.
const (
	MinWeeklyGoalHours = 1
	MaxWeeklyGoalHours = 168
	MinBlockMinutes    = 15
	MaxBlockMinutes    = 480
)

// settings mirrors model.Config with validation rules.
type settings struct {
	User             string `validate:"required"`
	DBPath           string `validate:"required"`
	Timezone         string `validate:"tz"`
	WeeklyGoalHours  int    `validate:"min=1,max=168"`
	DefaultBlockMins int    `validate:"min=15,max=480"`
	LogLevel         string `validate:"loglevel"`
	LogFormat        string `validate:"logformat"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	rules := map[string]func(string) error{
		"tz": func(s string) error {
			_, err := Location(model.Config{Timezone: s})
			return err
		},
		"loglevel": func(s string) error {
			_, err := logging.ParseLevel(s)
			return err
		},
		"logformat": func(s string) error {
			_, err := logging.ParseFormat(s)
			return err
		},
	}
	for tag, check := range rules {
		check := check
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String()) == nil
		}); err != nil {
			panic(err)
		}
	}
	return v
}

// Validate checks resolved settings.
func Validate(cfg model.Config) error {
	err := validate.Struct(settings{
		User:             strings.TrimSpace(cfg.User),
		DBPath:           cfg.DBPath,
		Timezone:         cfg.Timezone,
		WeeklyGoalHours:  cfg.WeeklyGoalHours,
		DefaultBlockMins: cfg.DefaultBlockMins,
		LogLevel:         cfg.LogLevel,
		LogFormat:        cfg.LogFormat,
	})
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return describe(verrs[0], cfg)
	}
	return err
}

func describe(fe validator.FieldError, cfg model.Config) error {
	switch fe.Field() {
	case "User":
		return fmt.Errorf("user name must not be empty")
	case "DBPath":
		return fmt.Errorf("database path must not be empty")
	case "Timezone":
		return fmt.Errorf("invalid timezone %q", cfg.Timezone)
	case "WeeklyGoalHours":
		return fmt.Errorf("weekly-goal-hours must be between %d and %d", MinWeeklyGoalHours, MaxWeeklyGoalHours)
	case "DefaultBlockMins":
		return fmt.Errorf("default-duration must be between %d and %d minutes", MinBlockMinutes, MaxBlockMinutes)
	case "LogLevel":
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	case "LogFormat":
		return fmt.Errorf("invalid log format %q", cfg.LogFormat)
	default:
		return fmt.Errorf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// Location resolves the configured timezone. Empty or "Local" means time.Local.
func Location(cfg model.Config) (*time.Location, error) {
	tz := strings.TrimSpace(cfg.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

func setString(target *string, value *string) {
	if value == nil {
		return
	}
	if v := strings.TrimSpace(*value); v != "" {
		*target = v
	}
}
