package server

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/tablestakes/holdem/internal/kv"
)

func TestNewServerSeedsConfiguredStake(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Rooms[0].StartingStake = 5000

	srv := New(cfg, kv.NewMemoryStore(), nil, log.New(io.Discard))

	ledgers := srv.Registry().Ledgers()
	assert.Equal(t, 5000, ledgers.Wallet("alice").Value())

	// A non-default room block never changes the shared wallet stake.
	cfg2 := DefaultConfig()
	cfg2.Rooms = append(cfg2.Rooms, RoomConfig{
		Name:          "highstakes",
		SmallBlind:    50,
		BigBlind:      100,
		StartingStake: 10000,
	})
	srv2 := New(cfg2, kv.NewMemoryStore(), nil, log.New(io.Discard))
	assert.Equal(t, 1000, srv2.Registry().Ledgers().Wallet("bob").Value())
}
