package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio"
)

// Setting keys, as dotted paths into a Config.
const (
	KeyMaxQueueSize  = "max_queue_size"
	KeyHiddenStation = "hidden_station"
	KeyLogLevel      = "log_level"
	KeyMetrics       = "metrics"
	KeyTracing       = "tracing"
	KeyAuditDriver   = "audit.driver"
	KeyAuditPath     = "audit.path"
)

// EnvPrefix prefixes the environment variable of every setting.
const EnvPrefix = "EVENTSTUDIO_"

// Audit drivers.
const (
	AuditNone   = "none"
	AuditMemory = "memory"
	AuditSQLite = "sqlite"
)

// Keys lists every setting key.
var Keys = []string{
	KeyMaxQueueSize,
	KeyHiddenStation,
	KeyLogLevel,
	KeyMetrics,
	KeyTracing,
	KeyAuditDriver,
	KeyAuditPath,
}

// ErrInvalidValue indicates a setting value that cannot be used.
var ErrInvalidValue = errors.New("invalid value")

// ConfigError reports an invalid setting.
type ConfigError struct {
	// Key is the setting key.
	Key string
	// Value is the rejected value.
	Value any
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s=%v: %v", e.Key, e.Value, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// AuditSettings selects where supervisor audit records go.
type AuditSettings struct {
	Driver string
	Path   string
}

// Settings is the resolved configuration of an eventstudio deployment.
type Settings struct {
	// MaxQueueSize bounds each replay queue. Zero means unbounded.
	MaxQueueSize  int
	HiddenStation string
	LogLevel      slog.Level
	Metrics       bool
	Tracing       bool
	Audit         AuditSettings
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		MaxQueueSize:  eventstudio.DefaultQueueCapacity,
		HiddenStation: eventstudio.HiddenStation,
		LogLevel:      slog.LevelInfo,
		Audit:         AuditSettings{Driver: AuditNone},
	}
}

// FromConfig resolves settings from c on top of the defaults.
func FromConfig(c Config) (Settings, error) {
	return Defaults().Merge(c)
}

// Merge returns s overridden by the keys present in c.
func (s Settings) Merge(c Config) (Settings, error) {
	if c.Has(KeyMaxQueueSize) {
		n := c.Int(KeyMaxQueueSize, -1)
		if n < 0 {
			return s, &ConfigError{Key: KeyMaxQueueSize, Value: c.Any(KeyMaxQueueSize, nil), Err: ErrInvalidValue}
		}
		s.MaxQueueSize = n
	}
	s.HiddenStation = c.String(KeyHiddenStation, s.HiddenStation)
	if c.Has(KeyLogLevel) {
		raw := c.String(KeyLogLevel, "")
		var level slog.Level
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return s, &ConfigError{Key: KeyLogLevel, Value: c.Any(KeyLogLevel, nil), Err: err}
		}
		s.LogLevel = level
	}
	s.Metrics = c.Bool(KeyMetrics, s.Metrics)
	s.Tracing = c.Bool(KeyTracing, s.Tracing)
	s.Audit.Driver = strings.ToLower(c.String(KeyAuditDriver, s.Audit.Driver))
	s.Audit.Path = c.String(KeyAuditPath, s.Audit.Path)
	return s, s.Validate()
}

// EnvName returns the environment variable overriding key.
//
//	EnvName("audit.path") // "EVENTSTUDIO_AUDIT_PATH"
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// FromEnv returns s overridden by the EVENTSTUDIO_* variables found by lookup,
// usually os.LookupEnv.
func (s Settings) FromEnv(lookup func(string) (string, bool)) (Settings, error) {
	env := make(map[string]any)
	for _, key := range Keys {
		if v, ok := lookup(EnvName(key)); ok {
			env[key] = v
		}
	}
	return s.Merge(New(env))
}

// Validate checks that the settings can be used.
func (s Settings) Validate() error {
	if s.MaxQueueSize < 0 {
		return &ConfigError{Key: KeyMaxQueueSize, Value: s.MaxQueueSize, Err: ErrInvalidValue}
	}
	if strings.TrimSpace(s.HiddenStation) == "" {
		return &ConfigError{Key: KeyHiddenStation, Value: s.HiddenStation, Err: eventstudio.ErrBlankStationName}
	}
	if !slices.Contains([]string{AuditNone, AuditMemory, AuditSQLite}, s.Audit.Driver) {
		return &ConfigError{Key: KeyAuditDriver, Value: s.Audit.Driver, Err: ErrInvalidValue}
	}
	if s.Audit.Driver == AuditSQLite && s.Audit.Path == "" {
		return &ConfigError{Key: KeyAuditPath, Value: s.Audit.Path, Err: fmt.Errorf("%w: sqlite audit requires a path", ErrInvalidValue)}
	}
	return nil
}

// Options converts the settings to Studio options. logger may be nil.
func (s Settings) Options(logger *slog.Logger) []eventstudio.Option {
	opts := []eventstudio.Option{
		eventstudio.WithQueueCapacity(s.MaxQueueSize),
		eventstudio.WithHiddenStation(s.HiddenStation),
		eventstudio.WithMetrics(s.Metrics),
		eventstudio.WithTracing(s.Tracing),
	}
	if logger != nil {
		opts = append(opts, eventstudio.WithLogger(logger))
	}
	return opts
}

// Flatten returns the settings keyed by their dotted setting keys.
func (s Settings) Flatten() map[string]any {
	return map[string]any{
		KeyMaxQueueSize:  s.MaxQueueSize,
		KeyHiddenStation: s.HiddenStation,
		KeyLogLevel:      s.LogLevel.String(),
		KeyMetrics:       s.Metrics,
		KeyTracing:       s.Tracing,
		KeyAuditDriver:   s.Audit.Driver,
		KeyAuditPath:     s.Audit.Path,
	}
}
