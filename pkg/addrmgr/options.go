package addrmgr

import (
	"io"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

type Option func(*Manager)

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.log = logger
	}
}

// WithClock sets the clock driving address rotation and UnregisterSync
// timeouts.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithRandom sets the source of address and interval randomness. It must be
// cryptographically strong outside of tests.
func WithRandom(r io.Reader) Option {
	return func(m *Manager) {
		m.rand = r
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}
