package eventstudio

import (
	"log/slog"
	"strings"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio/observability"
)

// DefaultQueueCapacity is the replay queue capacity used when none is configured.
// Zero means unbounded.
const DefaultQueueCapacity = 0

// config holds the settings shared by every station of a directory.
type config struct {
	queueCapacity  int
	hiddenStation  string
	logger         *slog.Logger
	metricsEnabled bool
	tracingEnabled bool
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	onDrop         func(station string, event any)
	supervisor     func(station string) Supervisor
}

func defaultConfig() *config {
	return &config{
		queueCapacity: DefaultQueueCapacity,
		hiddenStation: HiddenStation,
		logger:        slog.Default(),
	}
}

func newConfig(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.metrics == nil {
		if cfg.metricsEnabled {
			cfg.metrics = observability.NewMetricsRecorder()
		} else {
			cfg.metrics = observability.NoopMetrics{}
		}
	}
	if cfg.spans == nil {
		if cfg.tracingEnabled {
			cfg.spans = observability.NewSpanManager()
		} else {
			cfg.spans = observability.NoopSpanManager{}
		}
	}
	return cfg
}

// Option configures a Studio or a Stations directory.
type Option func(*config)

// WithQueueCapacity bounds every replay queue to n events.
// Default: unbounded.
//
// When a queue is full, newly broadcast unlistened events are dropped and a
// warning is logged. Values of zero or less mean unbounded.
func WithQueueCapacity(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.queueCapacity = n
	}
}

// WithLogger sets the logger. Each station enriches it with its name.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
func WithMetrics(enabled bool) Option {
	return func(c *config) {
		c.metricsEnabled = enabled
	}
}

// WithTracing enables OpenTelemetry spans using the global tracer provider.
func WithTracing(enabled bool) Option {
	return func(c *config) {
		c.tracingEnabled = enabled
	}
}

// WithHiddenStation renames the station used by the Studio methods that take
// no station name. Blank names are ignored.
// Default: HiddenStation
func WithHiddenStation(name string) Option {
	return func(c *config) {
		if strings.TrimSpace(name) != "" {
			c.hiddenStation = name
		}
	}
}

// WithDropHandler registers fn to be called with every event lost to a full
// replay queue. fn runs on the broadcasting goroutine.
func WithDropHandler(fn func(station string, event any)) Option {
	return func(c *config) {
		c.onDrop = fn
	}
}

// WithDefaultSupervisor sets the factory used to build the initial supervisor
// of each new station, including stations recreated after a Clear.
// Default: Slacker
func WithDefaultSupervisor(factory func(station string) Supervisor) Option {
	return func(c *config) {
		c.supervisor = factory
	}
}

func (c *config) supervisorFor(station string) Supervisor {
	if c.supervisor != nil {
		if s := c.supervisor(station); s != nil {
			return s
		}
	}
	return Slacker
}
