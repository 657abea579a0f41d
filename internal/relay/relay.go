// Package relay mirrors public room events onto NATS subjects so external
// consumers (stats dashboards, spectator feeds) can follow play without a
// connection to the game server.
package relay

import (
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"

	"github.com/tablestakes/holdem/internal/deck"
	"github.com/tablestakes/holdem/internal/game"
)

// Relay publishes room events. It implements game.Sink; private
// notifications (hole cards) are never relayed.
type Relay struct {
	nc     *nats.Conn
	logger *log.Logger
}

// Dial connects to a NATS server.
func Dial(url string, logger *log.Logger) (*Relay, error) {
	nc, err := nats.Connect(url, nats.Name("holdem-relay"))
	if err != nil {
		return nil, err
	}
	return &Relay{nc: nc, logger: logger.WithPrefix("relay")}, nil
}

// Close drains the connection.
func (r *Relay) Close() {
	if err := r.nc.Drain(); err != nil {
		r.logger.Warn("drain failed", "error", err)
	}
}

func (r *Relay) publish(roomID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error("marshal event", "event", event, "error", err)
		return
	}
	subject := "holdem.room." + roomID + "." + event
	if err := r.nc.Publish(subject, data); err != nil {
		r.logger.Warn("publish failed", "subject", subject, "error", err)
	}
}

type actionEvent struct {
	Player string `json:"player"`
	Action string `json:"action"`
	Amount int    `json:"amount"`
}

type turnEvent struct {
	Player string `json:"player"`
	Pot    int    `json:"pot"`
	ToCall int    `json:"to_call"`
}

type boardEvent struct {
	Cards []string `json:"cards"`
	Pot   int      `json:"pot"`
}

type showdownEvent struct {
	Board    []string        `json:"board"`
	Walkover bool            `json:"walkover"`
	Winners  []showdownEntry `json:"winners"`
}

type showdownEntry struct {
	Player string   `json:"player"`
	Amount int      `json:"amount"`
	Hand   []string `json:"hand,omitempty"`
	Label  string   `json:"label,omitempty"`
}

func cardStrings(cards []deck.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

// HoleCards is private and deliberately not relayed.
func (r *Relay) HoleCards(string, *game.Player, []deck.Card) {}

func (r *Relay) Announce(roomID string, p *game.Player, action game.Action, amount game.Money) {
	r.publish(roomID, "action", actionEvent{Player: p.Name, Action: action.String(), Amount: amount})
}

func (r *Relay) TurnPrompt(roomID string, g *game.Game, p *game.Player, _ game.Money, _ []game.Action) {
	r.publish(roomID, "turn", turnEvent{
		Player: p.Name,
		Pot:    g.Pot,
		ToCall: g.MaxRoundRate - p.RoundRate,
	})
}

func (r *Relay) BoardUpdate(roomID string, cards []deck.Card, pot game.Money) {
	r.publish(roomID, "board", boardEvent{Cards: cardStrings(cards), Pot: pot})
}

func (r *Relay) Showdown(roomID string, results []game.Payout, board []deck.Card, walkover bool) {
	event := showdownEvent{Board: cardStrings(board), Walkover: walkover}
	for _, payout := range results {
		event.Winners = append(event.Winners, showdownEntry{
			Player: payout.Player.Name,
			Amount: payout.Amount,
			Hand:   cardStrings(payout.BestHand),
			Label:  game.HandLabel(payout.BestHand),
		})
	}
	r.publish(roomID, "showdown", event)
}
