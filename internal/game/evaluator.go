package game

import "github.com/tablestakes/holdem/internal/deck"

// RankedHand is one player's best five-card hand as judged by the evaluator.
type RankedHand struct {
	Player *Player
	Best   []deck.Card
}

// Tier is a group of players whose best hands tie at the same strength.
type Tier []RankedHand

// Evaluator ranks contending players' hole cards against the community
// cards, returning tiers from strongest to weakest. The ranking algorithm is
// supplied from outside the engine.
type Evaluator interface {
	Evaluate(players []*Player, board []deck.Card) []Tier
}
