package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablestakes/holdem/internal/deck"
	"github.com/tablestakes/holdem/internal/kv"
	"github.com/tablestakes/holdem/internal/stats"
	"github.com/tablestakes/holdem/internal/wallet"
)

// tieEvaluator ranks every contender into one tier, so pots chop.
type tieEvaluator struct{}

func (tieEvaluator) Evaluate(players []*Player, _ []deck.Card) []Tier {
	tier := make(Tier, 0, len(players))
	for _, p := range players {
		tier = append(tier, RankedHand{Player: p})
	}
	return []Tier{tier}
}

// fixedWinnerEvaluator puts one player in the top tier and everyone else in
// the second.
type fixedWinnerEvaluator struct{ winner string }

func (e fixedWinnerEvaluator) Evaluate(players []*Player, _ []deck.Card) []Tier {
	var top, rest Tier
	for _, p := range players {
		if p.UserID == e.winner {
			top = append(top, RankedHand{Player: p})
		} else {
			rest = append(rest, RankedHand{Player: p})
		}
	}
	return []Tier{top, rest}
}

// promptRecorder keeps the order in which seats were asked to act.
type promptRecorder struct {
	NopSink
	turns []string
}

func (r *promptRecorder) TurnPrompt(_ string, _ *Game, p *Player, _ Money, _ []Action) {
	r.turns = append(r.turns, p.UserID)
}

type engineFixture struct {
	engine   *Engine
	ledgers  *wallet.Ledgers
	recorder *stats.Recorder
}

func newEngineFixture(t *testing.T, cfg Config, eval Evaluator, opts ...EngineOption) *engineFixture {
	t.Helper()

	store := kv.NewMemoryStore()
	ledgers := wallet.NewLedgers(store)
	recorder := stats.NewRecorder(store)
	opts = append([]EngineOption{
		WithEvaluator(eval),
		WithRecorder(recorder),
		WithLogger(log.New(io.Discard)),
	}, opts...)
	engine := NewEngine("room-1", cfg, ledgers, opts...)
	return &engineFixture{engine: engine, ledgers: ledgers, recorder: recorder}
}

// totalMoney sums free balances, escrow, round rates and the pot. It must be
// invariant across every transition.
func (f *engineFixture) totalMoney(userIDs ...string) Money {
	g := f.engine.Game()
	total := g.Pot
	for _, id := range userIDs {
		total += f.ledgers.Wallet(id).Value()
		total += f.ledgers.Wallet(id).AuthorizedMoney(g.ID)
	}
	return total
}

func TestSeatValidation(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, DefaultConfig(), tieEvaluator{})

	require.NoError(t, f.engine.Seat("alice", "Alice"))
	require.ErrorIs(t, f.engine.Seat("alice", "Alice"), ErrAlreadySeated)

	// Seating requires covering both blinds.
	broke := f.ledgers.Wallet("broke")
	require.NoError(t, broke.Inc(-broke.Value()+5))
	require.ErrorIs(t, f.engine.Seat("broke", "Broke"), wallet.ErrInsufficientFunds)

	require.NoError(t, f.engine.Seat("bob", "Bob"))
	require.NoError(t, f.engine.Deal())
	require.ErrorIs(t, f.engine.Seat("carol", "Carol"), ErrHandInProgress)
}

func TestSeatAutoDealsAtCapacity(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxPlayers = 2
	f := newEngineFixture(t, cfg, tieEvaluator{})

	require.NoError(t, f.engine.Seat("alice", "Alice"))
	assert.Equal(t, StateInitial, f.engine.Game().State)

	require.NoError(t, f.engine.Seat("bob", "Bob"))
	assert.Equal(t, StatePreFlop, f.engine.Game().State)
	require.ErrorIs(t, f.engine.Seat("carol", "Carol"), ErrHandInProgress)
}

func TestDealRequiresQuorum(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, DefaultConfig(), tieEvaluator{})
	require.ErrorIs(t, f.engine.Deal(), ErrNotEnoughPlayers)

	require.NoError(t, f.engine.Seat("alice", "Alice"))
	require.ErrorIs(t, f.engine.Deal(), ErrNotEnoughPlayers)
}

func TestDealPostsBlindsAndOpensAction(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, DefaultConfig(), tieEvaluator{})
	for _, id := range []string{"p0", "p1", "p2"} {
		require.NoError(t, f.engine.Seat(id, id))
	}
	require.NoError(t, f.engine.Deal())

	g := f.engine.Game()
	assert.Equal(t, StatePreFlop, g.State)
	for _, p := range g.Players {
		assert.Len(t, p.HoleCards, 2)
	}

	sb, _ := g.SeatOf("p0")
	bb, _ := g.SeatOf("p1")
	assert.Equal(t, Money(5), sb.RoundRate)
	assert.Equal(t, Money(10), bb.RoundRate)
	assert.Equal(t, Money(10), g.MaxRoundRate)
	assert.Equal(t, Money(995), sb.Wallet.Value())
	assert.Equal(t, Money(990), bb.Wallet.Value())

	// First voluntary action is on the seat after the big blind, and the
	// round closes when it comes back to them.
	assert.Equal(t, "p2", f.engine.CurrentTurn())
	assert.Equal(t, "p2", g.TradingEndUserID)

	assert.Equal(t, Money(3000), f.totalMoney("p0", "p1", "p2"))
}

func TestHeadsUpRaiseCallToShowdownSplits(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, DefaultConfig(), tieEvaluator{})
	require.NoError(t, f.engine.Seat("alice", "Alice"))
	require.NoError(t, f.engine.Seat("bob", "Bob"))
	require.NoError(t, f.engine.Deal())

	g := f.engine.Game()
	handID := g.ID

	// Heads up the small blind acts first.
	require.Equal(t, "alice", f.engine.CurrentTurn())

	require.NoError(t, f.engine.Act("alice", ActionRaise, 15))
	assert.Equal(t, Money(2000), f.totalMoney("alice", "bob"))

	require.NoError(t, f.engine.Act("bob", ActionCall, 0))
	assert.Equal(t, StateFlop, g.State)
	assert.Equal(t, Money(50), g.Pot)
	assert.Len(t, g.CardsTable, 3)

	// Check through the flop, turn and river.
	for _, want := range []struct {
		state GameState
		board int
	}{
		{StateTurn, 4},
		{StateRiver, 5},
	} {
		require.NoError(t, f.engine.Act("alice", ActionCheck, 0))
		require.NoError(t, f.engine.Act("bob", ActionCheck, 0))
		assert.Equal(t, want.state, g.State)
		assert.Len(t, g.CardsTable, want.board)
	}
	require.NoError(t, f.engine.Act("alice", ActionCheck, 0))
	require.NoError(t, f.engine.Act("bob", ActionCheck, 0))

	// The tie chops the pot and the table resets for the next hand.
	assert.Equal(t, StateInitial, g.State)
	assert.Empty(t, g.Players)
	assert.Equal(t, Money(1000), f.ledgers.Wallet("alice").Value())
	assert.Equal(t, Money(1000), f.ledgers.Wallet("bob").Value())
	assert.Equal(t, Money(0), f.ledgers.Wallet("alice").AuthorizedMoney(handID))
	assert.Equal(t, Money(0), f.ledgers.Wallet("bob").AuthorizedMoney(handID))
	assert.NotEqual(t, handID, g.ID)

	for _, id := range []string{"alice", "bob"} {
		snap := f.recorder.Player(id)
		assert.Equal(t, 1, snap.HandsPlayed, id)
		assert.Equal(t, 1, snap.HandsWon, id)
		assert.Equal(t, 25, snap.MoneyWon, id)
	}
}

func TestShortStackAllInFastForwardsToShowdown(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, DefaultConfig(), fixedWinnerEvaluator{winner: "short"})

	short := f.ledgers.Wallet("short")
	require.NoError(t, short.Inc(-short.Value()+15))

	require.NoError(t, f.engine.Seat("short", "Short"))
	require.NoError(t, f.engine.Seat("big", "Big"))
	require.NoError(t, f.engine.Deal())

	require.NoError(t, f.engine.Act("short", ActionAllIn, 0))
	// Calling the shove leaves nobody to bet: the remaining streets run out
	// and the hand settles without further prompts.
	require.NoError(t, f.engine.Act("big", ActionCall, 0))

	g := f.engine.Game()
	assert.Equal(t, StateInitial, g.State)

	// The winner is capped at stake × seats; the rest of the pot falls back.
	assert.Equal(t, Money(30), f.ledgers.Wallet("short").Value())
	assert.Equal(t, Money(985), f.ledgers.Wallet("big").Value())
}

func TestEveryoneFoldsWalkover(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, DefaultConfig(), tieEvaluator{})
	for _, id := range []string{"p0", "p1", "p2"} {
		require.NoError(t, f.engine.Seat(id, id))
	}
	require.NoError(t, f.engine.Deal())

	require.NoError(t, f.engine.Act("p2", ActionFold, 0))
	require.NoError(t, f.engine.Act("p0", ActionFold, 0))

	// The big blind wins the blinds without a showdown.
	g := f.engine.Game()
	assert.Equal(t, StateInitial, g.State)
	assert.Equal(t, Money(995), f.ledgers.Wallet("p0").Value())
	assert.Equal(t, Money(1005), f.ledgers.Wallet("p1").Value())
	assert.Equal(t, Money(1000), f.ledgers.Wallet("p2").Value())

	assert.Equal(t, 1, f.recorder.Get("p0", stats.Folds))
	assert.Equal(t, 1, f.recorder.Get("p2", stats.Folds))
	assert.Equal(t, 1, f.recorder.Get("p1", stats.HandsWon))
}

func TestOutOfTurnActionsAreDropped(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, DefaultConfig(), tieEvaluator{})

	// No street open: every action is a no-op.
	require.NoError(t, f.engine.Act("nobody", ActionFold, 0))

	for _, id := range []string{"p0", "p1", "p2"} {
		require.NoError(t, f.engine.Seat(id, id))
	}
	require.NoError(t, f.engine.Deal())
	require.Equal(t, "p2", f.engine.CurrentTurn())

	// Acting out of turn changes nothing.
	require.NoError(t, f.engine.Act("p0", ActionFold, 0))
	g := f.engine.Game()
	p0, _ := g.SeatOf("p0")
	assert.Equal(t, PlayerActive, p0.State)
	assert.Equal(t, "p2", f.engine.CurrentTurn())

	// A raise of nothing is dropped too.
	require.NoError(t, f.engine.Act("p2", ActionRaise, 0))
	assert.Equal(t, "p2", f.engine.CurrentTurn())
}

func TestOverRaiseEscalatesToAllIn(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, DefaultConfig(), tieEvaluator{})
	for _, id := range []string{"p0", "p1", "p2"} {
		require.NoError(t, f.engine.Seat(id, id))
	}
	require.NoError(t, f.engine.Deal())

	require.NoError(t, f.engine.Act("p2", ActionRaise, 5000))

	g := f.engine.Game()
	p2, _ := g.SeatOf("p2")
	assert.Equal(t, PlayerAllIn, p2.State)
	assert.Equal(t, Money(0), p2.Wallet.Value())
	assert.Equal(t, Money(1000), g.MaxRoundRate)
	assert.Equal(t, "p0", f.engine.CurrentTurn())
}

func TestForceFoldFoldsCurrentActor(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, DefaultConfig(), tieEvaluator{})
	for _, id := range []string{"p0", "p1", "p2"} {
		require.NoError(t, f.engine.Seat(id, id))
	}
	require.NoError(t, f.engine.Deal())

	require.NoError(t, f.engine.ForceFold("p2"))

	g := f.engine.Game()
	p2, _ := g.SeatOf("p2")
	assert.Equal(t, PlayerFolded, p2.State)
	assert.Equal(t, "p0", f.engine.CurrentTurn())

	// Forcing a fold for someone who is not the actor does nothing.
	require.NoError(t, f.engine.ForceFold("p1"))
	p1, _ := g.SeatOf("p1")
	assert.Equal(t, PlayerActive, p1.State)
}

func TestTurnRotationVisitsEachEligibleSeatOnce(t *testing.T) {
	t.Parallel()

	rec := &promptRecorder{}
	f := newEngineFixture(t, DefaultConfig(), tieEvaluator{}, WithSink(rec))

	for _, id := range []string{"p0", "p1", "p2", "p3"} {
		require.NoError(t, f.engine.Seat(id, id))
	}
	require.NoError(t, f.engine.Deal())

	// Pre-flop: action starts after the big blind and closes back there.
	require.NoError(t, f.engine.Act("p2", ActionCall, 0))
	require.NoError(t, f.engine.Act("p3", ActionCall, 0))
	require.NoError(t, f.engine.Act("p0", ActionCall, 0))
	require.NoError(t, f.engine.Act("p1", ActionCheck, 0))

	// Flop: p2 drops out; later streets must skip their seat.
	require.NoError(t, f.engine.Act("p0", ActionCheck, 0))
	require.NoError(t, f.engine.Act("p1", ActionCheck, 0))
	require.NoError(t, f.engine.Act("p2", ActionFold, 0))
	require.NoError(t, f.engine.Act("p3", ActionCheck, 0))

	for street := 0; street < 2; street++ {
		require.NoError(t, f.engine.Act("p0", ActionCheck, 0))
		require.NoError(t, f.engine.Act("p1", ActionCheck, 0))
		require.NoError(t, f.engine.Act("p3", ActionCheck, 0))
	}

	assert.Equal(t, StateInitial, f.engine.Game().State)
	assert.Equal(t, []string{
		"p2", "p3", "p0", "p1", // pre-flop, seat order from after the blinds
		"p0", "p1", "p2", "p3", // flop restarts at the first seat
		"p0", "p1", "p3", // turn: folded seat skipped
		"p0", "p1", "p3", // river
	}, rec.turns)
}

func TestZeroBalanceSeatIsForcedAllInAndSkipped(t *testing.T) {
	t.Parallel()

	rec := &promptRecorder{}
	f := newEngineFixture(t, DefaultConfig(), tieEvaluator{}, WithSink(rec))

	// Only p1 can cover a re-raise over a full shove.
	require.NoError(t, f.ledgers.Wallet("p1").Inc(500))

	for _, id := range []string{"p0", "p1", "p2", "p3"} {
		require.NoError(t, f.engine.Seat(id, id))
	}
	require.NoError(t, f.engine.Deal())

	require.NoError(t, f.engine.Act("p2", ActionCall, 0))
	require.NoError(t, f.engine.Act("p3", ActionCall, 0))
	require.NoError(t, f.engine.Act("p0", ActionCall, 0))
	require.NoError(t, f.engine.Act("p1", ActionCheck, 0))

	// p0 raises their exact stack: still ACTIVE, but with nothing behind.
	require.NoError(t, f.engine.Act("p0", ActionRaise, 990))
	require.NoError(t, f.engine.Act("p1", ActionRaise, 100))
	require.NoError(t, f.engine.Act("p2", ActionFold, 0))
	require.NoError(t, f.engine.Act("p3", ActionFold, 0))

	// The rotation never prompts the empty seat again: p0 is moved to all-in
	// and the hand runs out to showdown.
	assert.Equal(t, StateInitial, f.engine.Game().State)
	assert.Equal(t, []string{
		"p2", "p3", "p0", "p1",
		"p0", "p1", "p2", "p3",
	}, rec.turns)

	assert.Equal(t, Money(1010), f.ledgers.Wallet("p0").Value())
	assert.Equal(t, Money(1510), f.ledgers.Wallet("p1").Value())
	assert.Equal(t, Money(990), f.ledgers.Wallet("p2").Value())
	assert.Equal(t, Money(990), f.ledgers.Wallet("p3").Value())
}

func TestValidActionsFollowBalanceAndMark(t *testing.T) {
	t.Parallel()

	f := newEngineFixture(t, DefaultConfig(), tieEvaluator{})
	for _, id := range []string{"p0", "p1", "p2"} {
		require.NoError(t, f.engine.Seat(id, id))
	}
	require.NoError(t, f.engine.Deal())

	g := f.engine.Game()
	p2, _ := g.SeatOf("p2")
	assert.Equal(t,
		[]Action{ActionFold, ActionCall, ActionRaise, ActionAllIn},
		g.ValidActions(p2))

	bb, _ := g.SeatOf("p1")
	assert.Contains(t, g.ValidActions(bb), ActionCheck)
	assert.NotContains(t, g.ValidActions(bb), ActionCall)
}
