package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"

	"github.com/sandeepkv93/goodmorning/internal/storage"
)

const envPrefix = "GOODMORNING_"

var ErrInvalidConfig = errors.New("config: invalid")

type RuntimeConfig struct {
	StorageBackend       string
	DataDir              string
	PostgresDSN          string
	LogLevel             string
	LogFile              string
	DesktopNotifications bool
	Notifications        bool
	SchedulerBuffer      int
	NightlySchedule      string
	MarkMissed           bool
	FitbitClientID       string
	FitbitClientSecret   string
	FitbitTokenFile      string
}

func DefaultRuntimeConfig() RuntimeConfig {
	dir := ".goodmorning"
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dir = filepath.Join(home, ".goodmorning")
	}
	return RuntimeConfig{
		StorageBackend:       storage.BackendSQLite,
		DataDir:              dir,
		LogLevel:             "info",
		LogFile:              filepath.Join(dir, "goodmorning.log"),
		DesktopNotifications: false,
		Notifications:        true,
		SchedulerBuffer:      64,
		NightlySchedule:      "5 0 * * *",
		MarkMissed:           false,
	}
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnv("STORAGE_BACKEND"); ok {
		cfg.StorageBackend = strings.ToLower(v)
	}
	if v, ok := getEnv("DATA_DIR"); ok {
		cfg.DataDir = v
		if _, set := getEnv("LOG_FILE"); !set {
			cfg.LogFile = filepath.Join(v, "goodmorning.log")
		}
	}
	if v, ok := getEnv("POSTGRES_DSN"); ok {
		cfg.PostgresDSN = v
	}
	if v, ok := getEnv("LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := getEnv("LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvBool("DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvBool("NOTIFICATIONS"); ok {
		cfg.Notifications = v
	}
	if v, ok := getEnvInt("SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnv("NIGHTLY_SCHEDULE"); ok {
		cfg.NightlySchedule = v
	}
	if v, ok := getEnvBool("MARK_MISSED"); ok {
		cfg.MarkMissed = v
	}
	if v, ok := getEnv("FITBIT_CLIENT_ID"); ok {
		cfg.FitbitClientID = v
	}
	if v, ok := getEnv("FITBIT_CLIENT_SECRET"); ok {
		cfg.FitbitClientSecret = v
	}
	if v, ok := getEnv("FITBIT_TOKEN_FILE"); ok {
		cfg.FitbitTokenFile = v
	}
	return cfg
}

func (c RuntimeConfig) Validate() error {
	if !slices.Contains(storage.Backends, c.StorageBackend) {
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.StorageBackend)
	}
	if c.StorageBackend == storage.BackendPostgres && strings.TrimSpace(c.PostgresDSN) == "" {
		return fmt.Errorf("%w: postgres backend requires %sPOSTGRES_DSN", ErrInvalidConfig, envPrefix)
	}
	if c.StorageBackend != storage.BackendMemory && c.StorageBackend != storage.BackendPostgres && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data dir is required", ErrInvalidConfig)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.SchedulerBuffer <= 0 {
		return fmt.Errorf("%w: scheduler buffer must be positive", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.NightlySchedule) != "" {
		if _, err := cron.ParseStandard(c.NightlySchedule); err != nil {
			return fmt.Errorf("%w: nightly schedule %q: %v", ErrInvalidConfig, c.NightlySchedule, err)
		}
	}
	return nil
}

// FitbitEnabled reports whether a health source can be built.
func (c RuntimeConfig) FitbitEnabled() bool {
	return c.FitbitClientID != "" && c.FitbitTokenFile != ""
}

func (c RuntimeConfig) StorageOptions() storage.Options {
	return storage.Options{
		Backend:     c.StorageBackend,
		DataDir:     c.DataDir,
		PostgresDSN: c.PostgresDSN,
	}
}

func getEnv(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(envPrefix + name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvInt(name string) (int, bool) {
	raw, ok := getEnv(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw, ok := getEnv(name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
