// Package room maps chat rooms to their games and serializes access to them.
//
// Each room holds one long-lived Game behind a single lock: turn advancement,
// round closing and settlement are multi-step read-modify-write sequences, so
// all mutations for a room run one at a time. Different rooms are fully
// independent.
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tablestakes/holdem/internal/game"
	"github.com/tablestakes/holdem/internal/wallet"
)

// EngineFactory builds the engine for a newly created room.
type EngineFactory func(roomID string) *game.Engine

// Registry is the shared room-id → room map. Rooms are created on first use
// and retained indefinitely.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	build   EngineFactory
	ledgers *wallet.Ledgers
	logger  *log.Logger
}

// NewRegistry creates a registry that builds room engines with the factory.
func NewRegistry(ledgers *wallet.Ledgers, build EngineFactory, logger *log.Logger) *Registry {
	return &Registry{
		rooms:   make(map[string]*Room),
		build:   build,
		ledgers: ledgers,
		logger:  logger.WithPrefix("registry"),
	}
}

// Room returns the room for id, creating it on first use.
func (r *Registry) Room(id string) *Room {
	r.mu.RLock()
	room, ok := r.rooms[id]
	r.mu.RUnlock()
	if ok {
		return room
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[id]; ok {
		return room
	}

	room = &Room{
		id:     id,
		engine: r.build(id),
		logger: r.logger.With("room", id),
	}
	r.rooms[id] = room
	r.logger.Info("room created", "room", id)
	return room
}

// Ledgers exposes the shared wallet manager, for balance and bonus paths that
// run outside any room lock.
func (r *Registry) Ledgers() *wallet.Ledgers { return r.ledgers }

// Rooms returns a snapshot of the current rooms.
func (r *Registry) Rooms() []*Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out
}

// Room serializes all engine access for one chat room.
type Room struct {
	id     string
	mu     sync.Mutex
	engine *game.Engine
	logger *log.Logger

	// halted is set when the engine reports an invariant violation; the room
	// stops processing but other rooms are unaffected.
	halted bool
}

// ID returns the room id.
func (r *Room) ID() string { return r.id }

// Seat seats a player, dealing automatically at capacity.
func (r *Room) Seat(userID, name string) error {
	return r.locked(func() error { return r.engine.Seat(userID, name) })
}

// Start deals a hand once quorum is reached.
func (r *Room) Start() error {
	return r.locked(func() error { return r.engine.Deal() })
}

// Act applies a player action.
func (r *Room) Act(userID string, action game.Action, amount game.Money) error {
	return r.locked(func() error { return r.engine.Act(userID, action, amount) })
}

// Players returns the display names of the seated players.
func (r *Room) Players() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.engine.Game()
	names := make([]string, 0, len(g.Players))
	for _, p := range g.Players {
		names = append(names, p.Name)
	}
	return names
}

// State reads the room's game state.
func (r *Room) State() game.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Game().State
}

// TurnInfo returns the awaited actor and when their turn began.
func (r *Room) TurnInfo() (userID string, since time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.CurrentTurn(), r.engine.Game().LastTurnTime
}

// ForceFoldExpired folds the current actor when their turn has outlived
// maxTurn. Returns true if a fold was applied.
func (r *Room) ForceFoldExpired(now time.Time, maxTurn time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.halted {
		return false
	}
	actor := r.engine.CurrentTurn()
	if actor == "" {
		return false
	}
	if now.Sub(r.engine.Game().LastTurnTime) < maxTurn {
		return false
	}

	r.logger.Info("turn expired, folding", "player", actor)
	if err := r.engine.ForceFold(actor); err != nil {
		r.fail(err)
		return false
	}
	return true
}

func (r *Room) locked(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.halted {
		return game.ErrUnreachableState
	}
	err := fn()
	if err != nil && errors.Is(err, game.ErrUnreachableState) {
		r.fail(err)
	}
	return err
}

// fail is called with the room lock held.
func (r *Room) fail(err error) {
	r.halted = true
	r.logger.Error("room halted on invariant violation", "error", err)
}
