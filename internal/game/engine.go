package game

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/tablestakes/holdem/internal/deck"
	"github.com/tablestakes/holdem/internal/stats"
	"github.com/tablestakes/holdem/internal/wallet"
)

// Engine drives a single room's hands: seating, blinds, streets, turn order
// and settlement. Monetary effects are delegated to the PotManager and the
// wallet ledger; hand ranking and transport are supplied from outside.
//
// Engine methods are not safe for concurrent use. The room owning the engine
// serializes all calls.
type Engine struct {
	roomID  string
	game    *Game
	pot     *PotManager
	ledgers *wallet.Ledgers

	decks    deck.Provider
	eval     Evaluator
	sink     Sink
	recorder *stats.Recorder
	clock    quartz.Clock
	logger   *log.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDeckProvider substitutes the deck source, typically a stacked deck in
// tests.
func WithDeckProvider(p deck.Provider) EngineOption {
	return func(e *Engine) { e.decks = p }
}

// WithEvaluator supplies the hand evaluator used at showdown.
func WithEvaluator(ev Evaluator) EngineOption {
	return func(e *Engine) { e.eval = ev }
}

// WithSink supplies the transport sink for engine notifications.
func WithSink(s Sink) EngineOption {
	return func(e *Engine) { e.sink = s }
}

// WithRecorder enables play-statistics recording.
func WithRecorder(r *stats.Recorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

// WithClock substitutes the clock used for turn timestamps.
func WithClock(clock quartz.Clock) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

// WithLogger sets the engine logger.
func WithLogger(logger *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger.WithPrefix("engine").With("room", e.roomID) }
}

// NewEngine creates an engine for one room.
func NewEngine(roomID string, cfg Config, ledgers *wallet.Ledgers, opts ...EngineOption) *Engine {
	e := &Engine{
		roomID:  roomID,
		game:    NewGame(cfg),
		pot:     NewPotManager(),
		ledgers: ledgers,
		decks:   deck.NewShuffledProvider(),
		sink:    NopSink{},
		clock:   quartz.NewReal(),
		logger:  log.Default().WithPrefix("engine").With("room", roomID),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Game exposes the room's game aggregate for inspection.
func (e *Engine) Game() *Game { return e.game }

// Seat adds a player to the table. Seating is only possible between hands.
// If the table reaches capacity the deal is triggered immediately.
func (e *Engine) Seat(userID, name string) error {
	g := e.game

	if g.State != StateInitial {
		return ErrHandInProgress
	}
	if len(g.Players) >= g.Config.MaxPlayers {
		return ErrGameFull
	}
	if _, ok := g.SeatOf(userID); ok {
		return ErrAlreadySeated
	}

	w := e.ledgers.Wallet(userID)
	if min := 2 * g.Config.SmallBlind; w.Value() < min {
		return fmt.Errorf("%w: seat requires at least %d", wallet.ErrInsufficientFunds, min)
	}

	g.Players = append(g.Players, &Player{
		UserID: userID,
		Name:   name,
		Wallet: w,
		State:  PlayerActive,
	})
	e.logger.Info("player seated", "player", name, "seats", len(g.Players))

	if len(g.Players) == g.Config.MaxPlayers {
		return e.Deal()
	}
	return nil
}

// Deal starts a hand: fresh deck, two private cards per seat, blinds posted
// by the first two seats, action on the seat after the big blind.
func (e *Engine) Deal() error {
	g := e.game

	if g.State != StateInitial {
		return ErrHandInProgress
	}
	if len(g.Players) < g.Config.MinPlayers || len(g.Players) < 2 {
		return ErrNotEnoughPlayers
	}

	e.logger.Info("hand started", "hand", g.ID, "players", len(g.Players))

	g.State = StatePreFlop
	g.Deck = e.decks.NewDeck()
	for _, p := range g.Players {
		p.HoleCards = g.Deck.PopN(2)
		e.sink.HoleCards(e.roomID, p, p.HoleCards)
	}

	g.CurrentPlayerIndex = 1
	if err := e.postBlind(g.Players[0], g.Config.SmallBlind); err != nil {
		return err
	}
	if err := e.postBlind(g.Players[1], g.Config.BigBlind-g.Config.SmallBlind); err != nil {
		return err
	}

	if err := e.advance(); err != nil {
		return err
	}

	// Betting comes back around to the first voluntary actor, not the big
	// blind, unless a raise moves the closing seat.
	if g.State.IsStreet() {
		g.TradingEndUserID = g.Players[2%len(g.Players)].UserID
	}
	return nil
}

func (e *Engine) postBlind(p *Player, amount Money) error {
	err := e.pot.PostBlind(e.game, p, amount)
	if err == nil {
		return nil
	}
	if !errors.Is(err, wallet.ErrInsufficientFunds) {
		return err
	}
	// The blind exceeds the player's stack: the forced bet becomes an all-in.
	if _, err := e.pot.AllIn(e.game, p); err != nil {
		return err
	}
	p.State = PlayerAllIn
	return nil
}

// Act processes a player action. Calls made out of turn or outside a betting
// street are dropped without error: they are races between concurrent inputs,
// not client failures. Call and raise requests that the wallet cannot cover
// escalate to an all-in.
func (e *Engine) Act(userID string, action Action, amount Money) error {
	g := e.game

	if !g.State.IsStreet() || len(g.Players) == 0 {
		return nil
	}
	p := g.CurrentPlayer()
	if p.UserID != userID {
		return nil
	}

	switch action {
	case ActionFold:
		p.State = PlayerFolded
		e.recorder.Increment(p.UserID, stats.Folds, 1)
		e.sink.Announce(e.roomID, p, ActionFold, 0)

	case ActionCheck, ActionCall:
		toCall := g.MaxRoundRate - p.RoundRate
		if p.Wallet.Value() <= toCall {
			return e.allIn(p)
		}
		if toCall == 0 {
			e.recorder.Increment(p.UserID, stats.Checks, 1)
			e.sink.Announce(e.roomID, p, ActionCheck, 0)
		} else {
			e.recorder.Increment(p.UserID, stats.Calls, 1)
			e.sink.Announce(e.roomID, p, ActionCall, toCall)
		}
		if err := e.pot.CallCheck(g, p); err != nil {
			return err
		}

	case ActionRaise:
		if amount <= 0 {
			return nil
		}
		if p.Wallet.Value() < amount {
			return e.allIn(p)
		}
		if err := e.pot.RaiseTo(g, p, amount); err != nil {
			if errors.Is(err, wallet.ErrInsufficientFunds) {
				return e.allIn(p)
			}
			return err
		}
		e.recorder.Increment(p.UserID, stats.Raises, 1)
		e.sink.Announce(e.roomID, p, ActionRaise, amount)

	case ActionAllIn:
		return e.allIn(p)

	default:
		return nil
	}

	return e.advance()
}

func (e *Engine) allIn(p *Player) error {
	moved, err := e.pot.AllIn(e.game, p)
	if err != nil {
		return err
	}
	p.State = PlayerAllIn
	e.recorder.Increment(p.UserID, stats.Raises, 1)
	e.sink.Announce(e.roomID, p, ActionAllIn, moved)
	return e.advance()
}

// ForceFold folds on behalf of the current actor. Used by the turn-timeout
// monitor; it is exactly an Act(FOLD) and shares its silent-drop semantics.
func (e *Engine) ForceFold(userID string) error {
	return e.Act(userID, ActionFold, 0)
}

// CurrentTurn returns the user whose action is awaited, or "" when no street
// is open.
func (e *Engine) CurrentTurn() string {
	g := e.game
	if !g.State.IsStreet() || len(g.Players) == 0 {
		return ""
	}
	return g.CurrentPlayer().UserID
}

// advance moves the turn pointer to the next seat that can act, closing
// betting rounds and dealing streets along the way. The walk is an explicit
// bounded loop; running out of steps means the seat/state bookkeeping broke
// an invariant.
func (e *Engine) advance() error {
	g := e.game

	maxSteps := len(g.Players) * (int(StateFinished) + 2)
	for step := 0; step < maxSteps; step++ {
		g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(g.Players)
		p := g.CurrentPlayer()

		// The round closes when action returns to the closing seat.
		if p.UserID == g.TradingEndUserID {
			e.pot.CloseRound(g)
			if err := e.nextStreet(); err != nil {
				return err
			}
			if !g.State.IsStreet() {
				return nil
			}
			g.CurrentPlayerIndex = 0
			p = g.CurrentPlayer()
		}

		// A seat with nothing behind it never takes a voluntary action.
		if p.State == PlayerActive && p.Wallet.Value() <= 0 {
			p.State = PlayerAllIn
		}
		if p.State != PlayerActive {
			continue
		}

		if len(g.ContendingPlayers()) == 1 {
			return e.finish()
		}

		g.LastTurnTime = e.clock.Now()
		e.sink.TurnPrompt(e.roomID, g, p, p.Wallet.Value(), g.ValidActions(p))
		return nil
	}

	return fmt.Errorf("%w: no actionable seat after %d steps in %s", ErrUnreachableState, maxSteps, g.State)
}

// nextStreet advances one street, dealing the community cards it opens. When
// betting can no longer continue (a single non-folded player is still able to
// act) the remaining streets deal out without prompts.
func (e *Engine) nextStreet() error {
	g := e.game

	// Betting is over once only one player is left who is not all-in; they
	// are committed for the rest of the hand.
	if alive := g.PlayersBy(PlayerActive); len(alive) == 1 {
		alive[0].State = PlayerAllIn
		if len(g.CardsTable) == 5 {
			return e.finish()
		}
	}

	switch g.State {
	case StatePreFlop:
		g.State = StateFlop
		e.dealTable(3)
	case StateFlop:
		g.State = StateTurn
		e.dealTable(1)
	case StateTurn:
		g.State = StateRiver
		e.dealTable(1)
	case StateRiver:
		g.State = StateFinished
		return e.finish()
	default:
		return fmt.Errorf("%w: street advance from %s", ErrUnreachableState, g.State)
	}
	return nil
}

func (e *Engine) dealTable(count int) {
	g := e.game
	g.CardsTable = append(g.CardsTable, g.Deck.PopN(count)...)
	e.sink.BoardUpdate(e.roomID, g.CardsTable, g.Pot)
}

// finish settles the hand: sweep outstanding round rates, rank the
// contenders, pay out tier by tier, clear every escrow record and reset the
// game for the next hand.
func (e *Engine) finish() error {
	g := e.game

	e.pot.CloseRound(g)

	contenders := g.ContendingPlayers()
	e.logger.Info("hand finished", "hand", g.ID, "players", len(g.Players), "pot", g.Pot)

	var tiers []Tier
	walkover := len(contenders) == 1
	switch {
	case walkover:
		tiers = []Tier{{{Player: contenders[0]}}}
	case e.eval == nil:
		return fmt.Errorf("%w: showdown with no evaluator configured", ErrUnreachableState)
	default:
		tiers = e.eval.Evaluate(contenders, g.CardsTable)
	}

	payouts := e.pot.Settle(g, tiers)
	e.sink.Showdown(e.roomID, payouts, g.CardsTable, walkover)

	for _, p := range g.Players {
		e.recorder.Increment(p.UserID, stats.HandsPlayed, 1)
	}
	for _, payout := range payouts {
		e.recorder.Increment(payout.Player.UserID, stats.HandsWon, 1)
		e.recorder.Increment(payout.Player.UserID, stats.MoneyWon, payout.Amount)
		e.recorder.RecordBestHand(payout.Player.UserID, HandLabel(payout.BestHand))
	}

	for _, p := range g.Players {
		p.Wallet.Approve(g.ID)
	}

	g.Reset()
	return nil
}
