package refgo

import "log/slog"

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
}

// defaultOptions is shared by every block created without options.
var defaultOptions = &options{
	metricsCollector: NoopMetricsCollector{},
	logger:           NoopLogger(),
}

// Option configures the observability of the blocks created by a factory
// or adoption. The options travel with the block and are consulted again
// when its payload is destroyed and its storage reclaimed.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for lifecycle events.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &refgo.BasicMetricsCollector{}
//	s, _ := refgo.Make(42, refgo.WithMetricsCollector(metrics))
//	_ = s.Release()
//	stats := metrics.GetStats()
//	fmt.Printf("Live blocks: %d\n", stats.LiveBlocks)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for lifecycle events.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := refgo.NewJSONLogger(slog.LevelDebug)
//	s, _ := refgo.Make(42, refgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) *options {
	if len(optFns) == 0 {
		return defaultOptions
	}
	o := *defaultOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return &o
}
