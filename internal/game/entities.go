package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/tablestakes/holdem/internal/deck"
	"github.com/tablestakes/holdem/internal/wallet"
)

// Money is an amount of chips.
type Money = wallet.Money

// PlayerState describes what a player can still do in the current hand.
type PlayerState int

const (
	PlayerActive PlayerState = iota
	PlayerFolded
	PlayerAllIn
)

func (s PlayerState) String() string {
	switch s {
	case PlayerActive:
		return "active"
	case PlayerFolded:
		return "folded"
	case PlayerAllIn:
		return "all-in"
	default:
		return "unknown"
	}
}

// GameState is the hand's position in the street sequence.
type GameState int

const (
	StateInitial GameState = iota
	StatePreFlop
	StateFlop
	StateTurn
	StateRiver
	StateFinished
)

func (s GameState) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StatePreFlop:
		return "pre-flop"
	case StateFlop:
		return "flop"
	case StateTurn:
		return "turn"
	case StateRiver:
		return "river"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// IsStreet reports whether the state is one of the four betting rounds.
func (s GameState) IsStreet() bool {
	return s >= StatePreFlop && s <= StateRiver
}

// Action is a player's move on their turn.
type Action int

const (
	ActionFold Action = iota
	ActionCheck
	ActionCall
	ActionRaise
	ActionAllIn
)

func (a Action) String() string {
	switch a {
	case ActionFold:
		return "fold"
	case ActionCheck:
		return "check"
	case ActionCall:
		return "call"
	case ActionRaise:
		return "raise"
	case ActionAllIn:
		return "allin"
	default:
		return "unknown"
	}
}

// ParseAction maps a wire string to an Action.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "fold":
		return ActionFold, true
	case "check":
		return ActionCheck, true
	case "call":
		return ActionCall, true
	case "raise":
		return ActionRaise, true
	case "allin", "all-in":
		return ActionAllIn, true
	default:
		return 0, false
	}
}

// Player is one seat in a hand. A fresh Player is created when a user joins a
// hand and discarded when the hand resets; it is never shared across hands.
type Player struct {
	UserID string
	Name   string
	Wallet *wallet.Wallet
	State  PlayerState

	// HoleCards is empty until the deal, then exactly two cards.
	HoleCards []deck.Card

	// RoundRate is the money committed in the current betting round only.
	// It is moved into the pot and zeroed when the street closes.
	RoundRate Money
}

// Config is the stable per-room game configuration, preserved across hands.
// Starting stakes are a wallet concern: wallets are shared across rooms, so
// the ledger is seeded once at construction rather than per table.
type Config struct {
	SmallBlind Money
	BigBlind   Money
	MinPlayers int
	MaxPlayers int
}

// DefaultConfig mirrors the historical table settings.
func DefaultConfig() Config {
	return Config{
		SmallBlind: 5,
		BigBlind:   10,
		MinPlayers: 2,
		MaxPlayers: 8,
	}
}

// Validate checks the blind and seat bounds.
func (c Config) Validate() error {
	if c.SmallBlind <= 0 || c.BigBlind <= c.SmallBlind {
		return ErrUnreachableState
	}
	return nil
}

// Game is the per-room hand aggregate. One Game exists per room and lives
// across hands; Reset prepares it for the next hand while preserving the
// room configuration.
//
// Invariant: Pot + Σ player.RoundRate + unspent escrow equals the total money
// debited from seated wallets for this hand. No transition creates or
// destroys money.
type Game struct {
	ID     string
	State  GameState
	Config Config

	Players            []*Player
	Pot                Money
	MaxRoundRate       Money
	CurrentPlayerIndex int
	CardsTable         []deck.Card
	Deck               *deck.Deck

	// TradingEndUserID is the seat whose turn coming back around closes the
	// current betting round.
	TradingEndUserID string

	LastTurnTime time.Time
	CreatedAt    time.Time
}

// NewGame creates a fresh game for a room.
func NewGame(cfg Config) *Game {
	g := &Game{Config: cfg}
	g.Reset()
	return g
}

// Reset clears all per-hand state and regenerates the hand id. Room
// configuration survives.
func (g *Game) Reset() {
	g.ID = uuid.NewString()
	g.State = StateInitial
	g.Players = nil
	g.Pot = 0
	g.MaxRoundRate = 0
	g.CurrentPlayerIndex = -1
	g.CardsTable = nil
	g.Deck = nil
	g.TradingEndUserID = ""
	g.CreatedAt = time.Now()
}

// CurrentPlayer returns the seat whose turn it is.
func (g *Game) CurrentPlayer() *Player {
	i := g.CurrentPlayerIndex % len(g.Players)
	if i < 0 {
		i += len(g.Players)
	}
	return g.Players[i]
}

// PlayersBy returns the seated players whose state matches any of states.
func (g *Game) PlayersBy(states ...PlayerState) []*Player {
	var out []*Player
	for _, p := range g.Players {
		for _, s := range states {
			if p.State == s {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// ContendingPlayers returns everyone still eligible to win: active or all-in.
func (g *Game) ContendingPlayers() []*Player {
	return g.PlayersBy(PlayerActive, PlayerAllIn)
}

// SeatOf returns the seated player with the given user id, if any.
func (g *Game) SeatOf(userID string) (*Player, bool) {
	for _, p := range g.Players {
		if p.UserID == userID {
			return p, true
		}
	}
	return nil, false
}

// ValidActions lists what the player may do right now, given their balance.
func (g *Game) ValidActions(p *Player) []Action {
	actions := []Action{ActionFold}
	balance := p.Wallet.Value()
	toCall := g.MaxRoundRate - p.RoundRate

	if toCall == 0 {
		actions = append(actions, ActionCheck)
	} else if balance > toCall {
		actions = append(actions, ActionCall)
	}
	if balance > toCall {
		actions = append(actions, ActionRaise)
	}
	if balance > 0 {
		actions = append(actions, ActionAllIn)
	}
	return actions
}
