package room

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// DefaultMaxTurn is how long an actor may sit on their turn before the
// monitor folds for them.
const DefaultMaxTurn = 2 * time.Minute

// Monitor polls rooms for expired turns and folds on behalf of absent
// players. The engine itself never watches the clock; this is the external
// scheduler reading the turn timestamp.
type Monitor struct {
	registry *Registry
	clock    quartz.Clock
	maxTurn  time.Duration
	interval time.Duration
	logger   *log.Logger
}

// NewMonitor creates a monitor over the registry. A maxTurn of zero uses
// DefaultMaxTurn.
func NewMonitor(registry *Registry, clock quartz.Clock, maxTurn time.Duration, logger *log.Logger) *Monitor {
	if maxTurn <= 0 {
		maxTurn = DefaultMaxTurn
	}
	return &Monitor{
		registry: registry,
		clock:    clock,
		maxTurn:  maxTurn,
		interval: 5 * time.Second,
		logger:   logger.WithPrefix("monitor"),
	}
}

// Run polls until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	return m.clock.TickerFunc(ctx, m.interval, func() error {
		m.Sweep()
		return nil
	}, "turn-monitor").Wait()
}

// Sweep checks every room once.
func (m *Monitor) Sweep() {
	now := m.clock.Now()
	for _, room := range m.registry.Rooms() {
		if room.ForceFoldExpired(now, m.maxTurn) {
			m.logger.Debug("forced fold applied", "room", room.ID())
		}
	}
}
