package game

import (
	"testing"

	"github.com/tablestakes/holdem/internal/deck"
)

func TestHandLabel(t *testing.T) {
	t.Parallel()

	c := deck.NewCard

	tests := []struct {
		name string
		best []deck.Card
		want string
	}{
		{
			"royal flush",
			[]deck.Card{c(deck.Ten, deck.Spades), c(deck.Jack, deck.Spades), c(deck.Queen, deck.Spades), c(deck.King, deck.Spades), c(deck.Ace, deck.Spades)},
			"Royal Flush",
		},
		{
			"straight flush",
			[]deck.Card{c(deck.Five, deck.Hearts), c(deck.Six, deck.Hearts), c(deck.Seven, deck.Hearts), c(deck.Eight, deck.Hearts), c(deck.Nine, deck.Hearts)},
			"Straight Flush",
		},
		{
			"four of a kind",
			[]deck.Card{c(deck.Nine, deck.Spades), c(deck.Nine, deck.Hearts), c(deck.Nine, deck.Diamonds), c(deck.Nine, deck.Clubs), c(deck.Two, deck.Spades)},
			"Four of a Kind",
		},
		{
			"full house",
			[]deck.Card{c(deck.King, deck.Spades), c(deck.King, deck.Hearts), c(deck.King, deck.Diamonds), c(deck.Four, deck.Clubs), c(deck.Four, deck.Spades)},
			"Full House",
		},
		{
			"flush",
			[]deck.Card{c(deck.Two, deck.Clubs), c(deck.Five, deck.Clubs), c(deck.Nine, deck.Clubs), c(deck.Jack, deck.Clubs), c(deck.King, deck.Clubs)},
			"Flush",
		},
		{
			"straight",
			[]deck.Card{c(deck.Seven, deck.Spades), c(deck.Eight, deck.Hearts), c(deck.Nine, deck.Diamonds), c(deck.Ten, deck.Clubs), c(deck.Jack, deck.Spades)},
			"Straight",
		},
		{
			"wheel straight",
			[]deck.Card{c(deck.Ace, deck.Spades), c(deck.Two, deck.Hearts), c(deck.Three, deck.Diamonds), c(deck.Four, deck.Clubs), c(deck.Five, deck.Spades)},
			"Straight",
		},
		{
			"three of a kind",
			[]deck.Card{c(deck.Six, deck.Spades), c(deck.Six, deck.Hearts), c(deck.Six, deck.Diamonds), c(deck.Two, deck.Clubs), c(deck.Nine, deck.Spades)},
			"Three of a Kind",
		},
		{
			"two pair",
			[]deck.Card{c(deck.Ten, deck.Spades), c(deck.Ten, deck.Hearts), c(deck.Three, deck.Diamonds), c(deck.Three, deck.Clubs), c(deck.Ace, deck.Spades)},
			"Two Pair",
		},
		{
			"pair",
			[]deck.Card{c(deck.Queen, deck.Spades), c(deck.Queen, deck.Hearts), c(deck.Two, deck.Diamonds), c(deck.Seven, deck.Clubs), c(deck.Nine, deck.Spades)},
			"Pair",
		},
		{
			"high card",
			[]deck.Card{c(deck.Two, deck.Spades), c(deck.Five, deck.Hearts), c(deck.Nine, deck.Diamonds), c(deck.Jack, deck.Clubs), c(deck.King, deck.Spades)},
			"High Card",
		},
		{
			"not five cards",
			[]deck.Card{c(deck.Two, deck.Spades)},
			"",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HandLabel(tt.best); got != tt.want {
				t.Errorf("HandLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}
