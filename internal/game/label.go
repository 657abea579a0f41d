package game

import (
	"sort"

	"github.com/tablestakes/holdem/internal/deck"
)

// HandLabel names a best-five hand for display ("Full House", "Flush", ...).
// This is cosmetic pattern matching over the evaluator's output; it plays no
// part in settlement.
func HandLabel(best []deck.Card) string {
	if len(best) != 5 {
		return ""
	}

	ranks := make([]int, len(best))
	suited := true
	for i, c := range best {
		ranks[i] = c.Value()
		if c.Suit != best[0].Suit {
			suited = false
		}
	}
	sort.Ints(ranks)

	counts := make(map[int]int)
	for _, r := range ranks {
		counts[r]++
	}

	straight := isStraight(ranks)

	switch {
	case suited && straight && ranks[0] == int(deck.Ten):
		return "Royal Flush"
	case suited && straight:
		return "Straight Flush"
	case hasCount(counts, 4):
		return "Four of a Kind"
	case hasCount(counts, 3) && hasCount(counts, 2):
		return "Full House"
	case suited:
		return "Flush"
	case straight:
		return "Straight"
	case hasCount(counts, 3):
		return "Three of a Kind"
	case pairCount(counts) == 2:
		return "Two Pair"
	case pairCount(counts) == 1:
		return "Pair"
	default:
		return "High Card"
	}
}

func isStraight(sorted []int) bool {
	// Wheel: A-2-3-4-5.
	if sorted[4] == int(deck.Ace) &&
		sorted[0] == 2 && sorted[1] == 3 && sorted[2] == 4 && sorted[3] == 5 {
		return true
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return false
		}
	}
	return true
}

func hasCount(counts map[int]int, n int) bool {
	for _, c := range counts {
		if c == n {
			return true
		}
	}
	return false
}

func pairCount(counts map[int]int) int {
	pairs := 0
	for _, c := range counts {
		if c == 2 {
			pairs++
		}
	}
	return pairs
}
