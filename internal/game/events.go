package game

import "github.com/tablestakes/holdem/internal/deck"

// Payout records one winner's slice of a settled pot.
type Payout struct {
	Player   *Player
	BestHand []deck.Card
	Amount   Money
}

// Sink receives engine notifications. These are fire-and-forget: no return
// value influences engine state, and implementations must not block the
// caller on network I/O.
type Sink interface {
	// HoleCards reveals a player's private cards to that player only.
	HoleCards(roomID string, player *Player, cards []deck.Card)

	// Announce reports a completed player action to the room.
	Announce(roomID string, player *Player, action Action, amount Money)

	// TurnPrompt tells the room whose turn it is and what they may do.
	TurnPrompt(roomID string, g *Game, player *Player, balance Money, actions []Action)

	// BoardUpdate reports newly dealt community cards and the current pot.
	BoardUpdate(roomID string, cards []deck.Card, pot Money)

	// Showdown reports the settlement. walkover is true when the hand ended
	// with a single surviving player and no cards were compared.
	Showdown(roomID string, results []Payout, board []deck.Card, walkover bool)
}

// NopSink discards all notifications.
type NopSink struct{}

func (NopSink) HoleCards(string, *Player, []deck.Card)             {}
func (NopSink) Announce(string, *Player, Action, Money)            {}
func (NopSink) TurnPrompt(string, *Game, *Player, Money, []Action) {}
func (NopSink) BoardUpdate(string, []deck.Card, Money)             {}
func (NopSink) Showdown(string, []Payout, []deck.Card, bool)       {}

// MultiSink fans notifications out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) HoleCards(roomID string, p *Player, cards []deck.Card) {
	for _, s := range m {
		s.HoleCards(roomID, p, cards)
	}
}

func (m MultiSink) Announce(roomID string, p *Player, action Action, amount Money) {
	for _, s := range m {
		s.Announce(roomID, p, action, amount)
	}
}

func (m MultiSink) TurnPrompt(roomID string, g *Game, p *Player, balance Money, actions []Action) {
	for _, s := range m {
		s.TurnPrompt(roomID, g, p, balance, actions)
	}
}

func (m MultiSink) BoardUpdate(roomID string, cards []deck.Card, pot Money) {
	for _, s := range m {
		s.BoardUpdate(roomID, cards, pot)
	}
}

func (m MultiSink) Showdown(roomID string, results []Payout, board []deck.Card, walkover bool) {
	for _, s := range m {
		s.Showdown(roomID, results, board, walkover)
	}
}
