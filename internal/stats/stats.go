// Package stats keeps lightweight per-player play counters in the shared
// key-value store. It is bookkeeping layered on top of the engine; losing a
// counter never affects play.
package stats

import (
	"strconv"

	"github.com/tablestakes/holdem/internal/kv"
)

// Stat names recorded by the engine.
const (
	HandsPlayed = "hands_played"
	HandsWon    = "hands_won"
	MoneyWon    = "money_won"
	Folds       = "folds"
	Checks      = "checks"
	Calls       = "calls"
	Raises      = "raises"
)

// Snapshot is a read of one player's counters.
type Snapshot struct {
	HandsPlayed int    `json:"hands_played"`
	HandsWon    int    `json:"hands_won"`
	MoneyWon    int    `json:"money_won"`
	Folds       int    `json:"folds"`
	Checks      int    `json:"checks"`
	Calls       int    `json:"calls"`
	Raises      int    `json:"raises"`
	BestHand    string `json:"best_hand,omitempty"`
}

// Recorder persists counters through the key-value store.
type Recorder struct {
	store kv.Store
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(store kv.Store) *Recorder {
	return &Recorder{store: store}
}

func key(playerID, stat string) string {
	return "stats:" + playerID + ":" + stat
}

// Increment adds delta to a player's counter.
func (r *Recorder) Increment(playerID, stat string, delta int) {
	if r == nil {
		return
	}
	_, _ = r.store.IncrBy(key(playerID, stat), int64(delta))
}

// RecordBestHand stores the label of the latest winning hand.
func (r *Recorder) RecordBestHand(playerID, label string) {
	if r == nil || label == "" {
		return
	}
	r.store.Set(key(playerID, "best_hand"), label)
}

// Get returns one counter's value.
func (r *Recorder) Get(playerID, stat string) int {
	if r == nil {
		return 0
	}
	raw, ok := r.store.Get(key(playerID, stat))
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// Player returns all counters for one player.
func (r *Recorder) Player(playerID string) Snapshot {
	s := Snapshot{
		HandsPlayed: r.Get(playerID, HandsPlayed),
		HandsWon:    r.Get(playerID, HandsWon),
		MoneyWon:    r.Get(playerID, MoneyWon),
		Folds:       r.Get(playerID, Folds),
		Checks:      r.Get(playerID, Checks),
		Calls:       r.Get(playerID, Calls),
		Raises:      r.Get(playerID, Raises),
	}
	if r != nil {
		if label, ok := r.store.Get(key(playerID, "best_hand")); ok {
			s.BestHand = label
		}
	}
	return s
}
