package deck

import (
	"math/rand"
	"time"
)

// Deck is an ordered sequence of unique cards consumed from one end only.
// Once popped a card is out of play for the rest of the hand.
type Deck struct {
	cards []Card
}

// Provider supplies a fresh shuffled deck for each hand.
type Provider interface {
	NewDeck() *Deck
}

// ShuffledProvider deals standard 52-card decks shuffled by an RNG.
type ShuffledProvider struct {
	rng *rand.Rand
}

// NewShuffledProvider creates a provider with its own time-seeded RNG.
func NewShuffledProvider() *ShuffledProvider {
	return NewShuffledProviderWithRNG(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewShuffledProviderWithRNG creates a provider using the given RNG, for
// deterministic hands in tests.
func NewShuffledProviderWithRNG(rng *rand.Rand) *ShuffledProvider {
	return &ShuffledProvider{rng: rng}
}

// NewDeck returns a freshly shuffled 52-card deck.
func (p *ShuffledProvider) NewDeck() *Deck {
	cards := make([]Card, 0, 52)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	p.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards}
}

// NewStacked builds a deck with the given card order, for tests. Cards are
// popped from the end, so the last card listed is dealt first.
func NewStacked(cards ...Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// Pop removes and returns the card at the top of the deck.
func (d *Deck) Pop() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, true
}

// PopN removes and returns up to n cards.
func (d *Deck) PopN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, ok := d.Pop()
		if !ok {
			break
		}
		cards = append(cards, card)
	}
	return cards
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
