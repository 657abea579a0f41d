package game

// PotManager authorizes, tracks and redistributes money across betting
// rounds. Every monetary effect of a player action flows through here: money
// moves wallet → escrow while a street is open, escrow totals are mirrored in
// each player's RoundRate, and CloseRound sweeps the round rates into the pot.
// The displayed "amount to call" and the showdown split are always
// money-conserving as a result.
type PotManager struct{}

// NewPotManager creates a pot manager.
func NewPotManager() *PotManager {
	return &PotManager{}
}

// PostBlind posts a forced bet of amount on top of the current high-water
// mark. It is the same movement as a raise: the poster meets the current
// round's high bet and adds amount, becomes the new high-water mark, and
// becomes the seat that closes the round unless someone re-raises.
func (pm *PotManager) PostBlind(g *Game, p *Player, amount Money) error {
	return pm.RaiseTo(g, p, amount)
}

// RaiseTo raises by amount over the current high-water mark. The effective
// cost is amount plus whatever the player still owes to call. Fails with the
// wallet's insufficient-funds error when the player cannot cover the delta;
// callers redirect that to an all-in rather than surfacing a hard error.
func (pm *PotManager) RaiseTo(g *Game, p *Player, amount Money) error {
	delta := amount + g.MaxRoundRate - p.RoundRate

	if err := p.Wallet.Authorize(g.ID, delta); err != nil {
		return err
	}
	p.RoundRate += delta

	g.MaxRoundRate = p.RoundRate
	g.TradingEndUserID = p.UserID
	return nil
}

// CallCheck matches the current high-water mark. A delta of zero is a check.
// Neither the high-water mark nor the closing seat changes.
func (pm *PotManager) CallCheck(g *Game, p *Player) error {
	delta := g.MaxRoundRate - p.RoundRate

	if err := p.Wallet.Authorize(g.ID, delta); err != nil {
		return err
	}
	p.RoundRate += delta
	return nil
}

// AllIn moves the player's entire remaining balance into escrow and returns
// the amount moved. If that lifts their round rate above the high-water mark
// the all-in acts as a raise and re-opens the betting round.
func (pm *PotManager) AllIn(g *Game, p *Player) (Money, error) {
	amount, err := p.Wallet.AuthorizeAll(g.ID)
	if err != nil {
		return 0, err
	}
	p.RoundRate += amount

	if g.MaxRoundRate < p.RoundRate {
		g.MaxRoundRate = p.RoundRate
		g.TradingEndUserID = p.UserID
	}
	return amount, nil
}

// CloseRound sweeps every seat's round rate into the pot and resets the
// street's betting state. Action order for the new street starts over at the
// first seat.
func (pm *PotManager) CloseRound(g *Game) {
	for _, p := range g.Players {
		g.Pot += p.RoundRate
		p.RoundRate = 0
	}
	g.MaxRoundRate = 0
	if len(g.Players) > 0 {
		g.TradingEndUserID = g.Players[0].UserID
	}
}

// Settle distributes the pot across hand-strength tiers, strongest first.
//
// Within a tier each player claims a share of the pot proportional to their
// total escrow for the hand, capped at escrow × seat count so a short all-in
// cannot collect more than their stake could ever have matched. Whatever the
// cap leaves behind cascades to weaker tiers, which is how an uncalled
// over-bet finds its way back to the player who posted it. A lone survivor
// collects the whole pot through the same path with a one-player tier.
//
// If the cap binds and no weaker tier remains to absorb the remainder (a lone
// short-stack winner over larger folded bets), the leftover pot is forfeited
// when the hand resets.
func (pm *PotManager) Settle(g *Game, tiers []Tier) []Payout {
	seatCount := len(g.Players)
	var res []Payout

	for _, tier := range tiers {
		tierTotal := Money(0)
		for _, rh := range tier {
			tierTotal += rh.Player.Wallet.AuthorizedMoney(g.ID)
		}
		if tierTotal <= 0 {
			continue
		}

		potShare := g.Pot
		for _, rh := range tier {
			if g.Pot <= 0 {
				break
			}

			authorized := rh.Player.Wallet.AuthorizedMoney(g.ID)

			// Proportional share, rounded half up.
			win := (potShare*authorized + tierTotal/2) / tierTotal
			if cap := authorized * seatCount; win > cap {
				win = cap
			}
			if win > g.Pot {
				win = g.Pot
			}
			if win <= 0 {
				continue
			}

			if err := rh.Player.Wallet.Inc(win); err != nil {
				// Crediting a non-negative amount cannot underflow.
				continue
			}
			g.Pot -= win
			res = append(res, Payout{Player: rh.Player, BestHand: rh.Best, Amount: win})
		}
	}

	return res
}
