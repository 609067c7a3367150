package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "statecore"
	envPrefix  = "STATECORE"

	dataDirKey             = "data_dir"
	sessionTimeoutKey      = "session.timeout"
	sessionMaxPerUserKey   = "session.max_per_user"
	sessionCleanupKey      = "session.cleanup_interval"
	memoryMaxEntriesKey    = "memory.max_entries"
	memoryRetentionDaysKey = "memory.retention_days"
	memorySweepIntervalKey = "memory.sweep_interval"
	logLevelKey            = "log.level"
	logFormatKey           = "log.format"
)

// SessionConfig holds the Session Store tunables.
type SessionConfig struct {
	// Timeout is the inactivity window after which a session expires.
	Timeout time.Duration
	// MaxPerUser caps live sessions per user; creating one more evicts the
	// user's oldest session by creation time.
	MaxPerUser int
	// CleanupInterval is the period of the expiry sweeper. Zero disables
	// background sweeping (expiry still happens lazily on reads).
	CleanupInterval time.Duration
}

// MemoryConfig holds the Memory Store tunables.
type MemoryConfig struct {
	// MaxEntries caps entries per user aggregate.
	MaxEntries int
	// RetentionDays bounds entry age; older entries are dropped by sweeps.
	RetentionDays int
	// SweepInterval is the period of the retention sweeper. Zero means the
	// sweep runs at startup only.
	SweepInterval time.Duration
}

// LogConfig holds logging preferences for wiring layers that construct a
// logger from configuration.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// Config aggregates every statecore tunable.
type Config struct {
	// DataDir is the directory holding the snapshot files.
	DataDir string
	Session SessionConfig
	Memory  MemoryConfig
	Log     LogConfig
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		DataDir: "./data/memory",
		Session: SessionConfig{
			Timeout:         time.Hour,
			MaxPerUser:      5,
			CleanupInterval: 5 * time.Minute,
		},
		Memory: MemoryConfig{
			MaxEntries:    1000,
			RetentionDays: 30,
			SweepInterval: 0,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load resolves configuration through the provided viper instance (a fresh
// one when nil): defaults, then an optional statecore config file in the
// working directory, then STATECORE_* environment variables.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	def := Default()
	v.SetDefault(dataDirKey, def.DataDir)
	v.SetDefault(sessionTimeoutKey, def.Session.Timeout)
	v.SetDefault(sessionMaxPerUserKey, def.Session.MaxPerUser)
	v.SetDefault(sessionCleanupKey, def.Session.CleanupInterval)
	v.SetDefault(memoryMaxEntriesKey, def.Memory.MaxEntries)
	v.SetDefault(memoryRetentionDaysKey, def.Memory.RetentionDays)
	v.SetDefault(memorySweepIntervalKey, def.Memory.SweepInterval)
	v.SetDefault(logLevelKey, def.Log.Level)
	v.SetDefault(logFormatKey, def.Log.Format)

	v.SetConfigName(configName)
	v.AddConfigPath(".")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		DataDir: v.GetString(dataDirKey),
		Session: SessionConfig{
			Timeout:         v.GetDuration(sessionTimeoutKey),
			MaxPerUser:      v.GetInt(sessionMaxPerUserKey),
			CleanupInterval: v.GetDuration(sessionCleanupKey),
		},
		Memory: MemoryConfig{
			MaxEntries:    v.GetInt(memoryMaxEntriesKey),
			RetentionDays: v.GetInt(memoryRetentionDaysKey),
			SweepInterval: v.GetDuration(memorySweepIntervalKey),
		},
		Log: LogConfig{
			Level:  v.GetString(logLevelKey),
			Format: v.GetString(logFormatKey),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the stores cannot operate with.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.Session.Timeout <= 0 {
		return errors.New("session.timeout must be positive")
	}
	if c.Session.MaxPerUser <= 0 {
		return errors.New("session.max_per_user must be positive")
	}
	if c.Session.CleanupInterval < 0 {
		return errors.New("session.cleanup_interval must not be negative")
	}
	if c.Memory.MaxEntries <= 0 {
		return errors.New("memory.max_entries must be positive")
	}
	if c.Memory.RetentionDays <= 0 {
		return errors.New("memory.retention_days must be positive")
	}
	if c.Memory.SweepInterval < 0 {
		return errors.New("memory.sweep_interval must not be negative")
	}
	return nil
}
