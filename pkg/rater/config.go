package rater

import (
	"math/rand/v2"
)

const (
	DefaultMinScore = 0.0
	DefaultMaxScore = 1.0
)

type Config struct {
	MinScore  float64
	MaxScore  float64
	Rand      *rand.Rand
	Logger    Logger
	Store     Store
	SessionID string
}

type Option func(*Config)

// WithScoreRange sets the closed range accepted by Submit.
func WithScoreRange(lo, hi float64) Option {
	return func(c *Config) {
		c.MinScore = lo
		c.MaxScore = hi
	}
}

// WithSeed fixes the shuffle so queues are reproducible.
func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Rand = newRand(seed)
	}
}

func WithRand(r *rand.Rand) Option {
	return func(c *Config) {
		c.Rand = r
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

// WithStore checkpoints every judgment into store.
func WithStore(store Store) Option {
	return func(c *Config) {
		c.Store = store
	}
}

func WithSessionID(id string) Option {
	return func(c *Config) {
		c.SessionID = id
	}
}

func defaultConfig() *Config {
	return &Config{
		MinScore: DefaultMinScore,
		MaxScore: DefaultMaxScore,
	}
}

func newConfig(opts []Option) *Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Rand == nil {
		cfg.Rand = newRand(MustSeed())
	}
	return cfg
}
