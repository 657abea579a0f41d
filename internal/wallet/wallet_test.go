package wallet

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablestakes/holdem/internal/kv"
)

func newTestLedgers(t *testing.T) (*Ledgers, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	return NewLedgers(kv.NewMemoryStore(), WithClock(clock)), clock
}

func TestWalletStartingStake(t *testing.T) {
	t.Parallel()

	ledgers, _ := newTestLedgers(t)
	w := ledgers.Wallet("alice")
	assert.Equal(t, DefaultStake, w.Value())

	custom := NewLedgers(kv.NewMemoryStore(), WithStartingStake(250))
	assert.Equal(t, 250, custom.Wallet("bob").Value())
}

func TestWalletIncNeverGoesNegative(t *testing.T) {
	t.Parallel()

	ledgers, _ := newTestLedgers(t)
	w := ledgers.Wallet("alice")

	require.NoError(t, w.Inc(-DefaultStake))
	assert.Equal(t, 0, w.Value())

	err := w.Inc(-1)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 0, w.Value())
}

func TestWalletAuthorize(t *testing.T) {
	t.Parallel()

	ledgers, _ := newTestLedgers(t)
	w := ledgers.Wallet("alice")

	require.NoError(t, w.Authorize("hand-1", 300))
	assert.Equal(t, DefaultStake-300, w.Value())
	assert.Equal(t, 300, w.AuthorizedMoney("hand-1"))

	// Escrow accumulates across streets for the same hand.
	require.NoError(t, w.Authorize("hand-1", 200))
	assert.Equal(t, 500, w.AuthorizedMoney("hand-1"))
	assert.Equal(t, 0, w.AuthorizedMoney("hand-2"))

	// The free balance bounds what can be authorized.
	err := w.Authorize("hand-1", DefaultStake)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 500, w.AuthorizedMoney("hand-1"))
	assert.Equal(t, DefaultStake-500, w.Value())
}

func TestWalletAuthorizeAll(t *testing.T) {
	t.Parallel()

	ledgers, _ := newTestLedgers(t)
	w := ledgers.Wallet("alice")
	require.NoError(t, w.Authorize("hand-1", 400))

	moved, err := w.AuthorizeAll("hand-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultStake-400, moved)
	assert.Equal(t, 0, w.Value())
	assert.Equal(t, DefaultStake, w.AuthorizedMoney("hand-1"))

	// A broke player moves nothing.
	moved, err = w.AuthorizeAll("hand-1")
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
}

func TestWalletApprove(t *testing.T) {
	t.Parallel()

	ledgers, _ := newTestLedgers(t)
	w := ledgers.Wallet("alice")
	require.NoError(t, w.Authorize("hand-1", 100))

	w.Approve("hand-1")
	assert.Equal(t, 0, w.AuthorizedMoney("hand-1"))
	// Approve never touches the free balance.
	assert.Equal(t, DefaultStake-100, w.Value())
}

func TestWalletDailyBonus(t *testing.T) {
	t.Parallel()

	ledgers, clock := newTestLedgers(t)
	w := ledgers.Wallet("alice")
	assert.False(t, w.HasDailyBonus())

	balance, err := w.AddDaily(40)
	require.NoError(t, err)
	assert.Equal(t, DefaultStake+40, balance)
	assert.True(t, w.HasDailyBonus())

	_, err = w.AddDaily(40)
	require.ErrorIs(t, err, ErrAlreadyClaimed)

	// A new calendar day resets the claim.
	clock.Advance(24 * time.Hour)
	balance, err = w.AddDaily(20)
	require.NoError(t, err)
	assert.Equal(t, DefaultStake+60, balance)
}

func TestWalletSharedLock(t *testing.T) {
	t.Parallel()

	ledgers, _ := newTestLedgers(t)
	a := ledgers.Wallet("alice")
	b := ledgers.Wallet("alice")

	done := make(chan error, 2)
	for _, w := range []*Wallet{a, b} {
		w := w
		go func() {
			for i := 0; i < 100; i++ {
				if err := w.Authorize("hand-1", 1); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}()
	}
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	assert.Equal(t, 200, a.AuthorizedMoney("hand-1"))
	assert.Equal(t, DefaultStake-200, a.Value())
}

func TestDailyBonusTable(t *testing.T) {
	t.Parallel()

	expected := []Money{5, 20, 40, 80, 160, 320}
	for roll := 1; roll <= 6; roll++ {
		assert.Equal(t, expected[roll-1], DailyBonus(roll))
	}
	assert.Equal(t, 0, DailyBonus(0))
	assert.Equal(t, 0, DailyBonus(7))
}
