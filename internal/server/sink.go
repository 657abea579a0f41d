package server

import (
	"github.com/tablestakes/holdem/internal/deck"
	"github.com/tablestakes/holdem/internal/game"
)

// wsSink delivers engine notifications to connected clients: private reveals
// to the owning player, everything else to the whole room. All sends are
// non-blocking; the engine never waits on a slow client.
type wsSink struct {
	server *Server
}

func cardStrings(cards []deck.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func (s *wsSink) HoleCards(roomID string, p *game.Player, cards []deck.Card) {
	s.server.sendToPlayer(p.UserID, MessageTypeHoleCards, HoleCardsData{
		RoomID: roomID,
		Cards:  cardStrings(cards),
	})
}

func (s *wsSink) Announce(roomID string, p *game.Player, action game.Action, amount game.Money) {
	s.server.broadcastToRoom(roomID, MessageTypeAction, ActionData{
		RoomID: roomID,
		Player: p.Name,
		Action: action.String(),
		Amount: amount,
	})
}

func (s *wsSink) TurnPrompt(roomID string, g *game.Game, p *game.Player, balance game.Money, actions []game.Action) {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.String()
	}
	s.server.broadcastToRoom(roomID, MessageTypeTurn, TurnData{
		RoomID:  roomID,
		Player:  p.Name,
		Pot:     g.Pot,
		ToCall:  g.MaxRoundRate - p.RoundRate,
		Balance: balance,
		Actions: names,
	})
}

func (s *wsSink) BoardUpdate(roomID string, cards []deck.Card, pot game.Money) {
	s.server.broadcastToRoom(roomID, MessageTypeBoard, BoardData{
		RoomID: roomID,
		Cards:  cardStrings(cards),
		Pot:    pot,
	})
}

func (s *wsSink) Showdown(roomID string, results []game.Payout, board []deck.Card, walkover bool) {
	data := ShowdownData{RoomID: roomID, Board: cardStrings(board), Walkover: walkover}
	for _, payout := range results {
		data.Winners = append(data.Winners, ShowdownWinner{
			Player: payout.Player.Name,
			Amount: payout.Amount,
			Hand:   cardStrings(payout.BestHand),
			Label:  game.HandLabel(payout.BestHand),
		})
	}
	s.server.broadcastToRoom(roomID, MessageTypeShowdown, data)
}
