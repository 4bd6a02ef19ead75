// Package config holds the tunables for the orchestrator, event bus and
// runners, built through functional options (Option / With<Field>).
package config

import "time"

// Config collects every tunable named by the configuration table. All
// fields have sane defaults applied by New.
type Config struct {
	// PerSubscriberBuffer is the max number of undelivered events a single
	// stream subscriber may queue before it is disconnected with an
	// overflow marker.
	PerSubscriberBuffer int

	// KeepAliveInterval is the silence duration after which a subscriber
	// receives a synthetic keep_alive event.
	KeepAliveInterval time.Duration

	// RunnerDeadline bounds how long a single analyzer/predictor call may
	// run before it is cancelled and reported as a timeout.
	RunnerDeadline time.Duration

	// FusionTopK is the maximum number of candidates returned by the Fuser.
	FusionTopK int

	// PerSourceTake is the number of top candidates taken from each
	// source before fusion.
	PerSourceTake int

	// SessionReapGrace is how long a terminal session is kept addressable
	// before the EventBus removes it from its registry.
	SessionReapGrace time.Duration

	// RunnerPoolSize bounds the number of analyzer/predictor goroutines
	// running concurrently across the whole process.
	RunnerPoolSize int
}

// defaultConfig mirrors the defaults column of the configuration table.
var defaultConfig = Config{
	PerSubscriberBuffer: 256,
	KeepAliveInterval:   30 * time.Second,
	RunnerDeadline:      10 * time.Second,
	FusionTopK:          10,
	PerSourceTake:       3,
	SessionReapGrace:    5 * time.Second,
	RunnerPoolSize:      64,
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithPerSubscriberBuffer overrides the per-subscriber buffer size.
func WithPerSubscriberBuffer(n int) Option {
	return func(c *Config) { c.PerSubscriberBuffer = n }
}

// WithKeepAliveInterval overrides the keep-alive silence interval.
func WithKeepAliveInterval(d time.Duration) Option {
	return func(c *Config) { c.KeepAliveInterval = d }
}

// WithRunnerDeadline overrides the per-runner watchdog deadline.
func WithRunnerDeadline(d time.Duration) Option {
	return func(c *Config) { c.RunnerDeadline = d }
}

// WithFusionTopK overrides the max number of fused candidates.
func WithFusionTopK(k int) Option {
	return func(c *Config) { c.FusionTopK = k }
}

// WithPerSourceTake overrides the number of candidates taken per source.
func WithPerSourceTake(n int) Option {
	return func(c *Config) { c.PerSourceTake = n }
}

// WithSessionReapGrace overrides the grace period before reaping a terminal
// session.
func WithSessionReapGrace(d time.Duration) Option {
	return func(c *Config) { c.SessionReapGrace = d }
}

// WithRunnerPoolSize overrides the size of the shared runner worker pool.
func WithRunnerPoolSize(n int) Option {
	return func(c *Config) { c.RunnerPoolSize = n }
}

// New builds a Config starting from the documented defaults and applying
// opts in order.
func New(opts ...Option) Config {
	cfg := defaultConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Default returns the configuration table's defaults with no overrides.
func Default() Config {
	return defaultConfig
}
