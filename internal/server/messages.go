package server

import (
	"encoding/json"
	"time"
)

// MessageType identifies a websocket message.
type MessageType string

// Client → server message types.
const (
	MessageTypeAuth    MessageType = "auth"
	MessageTypeJoin    MessageType = "join"
	MessageTypeStart   MessageType = "start"
	MessageTypeAct     MessageType = "act"
	MessageTypeBalance MessageType = "balance"
	MessageTypeBonus   MessageType = "bonus"
	MessageTypeStats   MessageType = "stats"
)

// Server → client message types.
const (
	MessageTypeAuthOK      MessageType = "auth_ok"
	MessageTypeJoined      MessageType = "joined"
	MessageTypeHoleCards   MessageType = "hole_cards"
	MessageTypeAction      MessageType = "action"
	MessageTypeTurn        MessageType = "turn"
	MessageTypeBoard       MessageType = "board"
	MessageTypeShowdown    MessageType = "showdown"
	MessageTypeBalanceInfo MessageType = "balance_info"
	MessageTypeBonusResult MessageType = "bonus_result"
	MessageTypeStatsInfo   MessageType = "stats_info"
	MessageTypeError       MessageType = "error"
)

// Message is the websocket envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message with the current timestamp.
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: messageType, Data: dataBytes, Timestamp: time.Now()}, nil
}

// Client → server payloads.

type AuthData struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

type JoinData struct {
	RoomID string `json:"room_id"`
}

type StartData struct {
	RoomID string `json:"room_id"`
}

type ActData struct {
	RoomID string `json:"room_id"`
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Server → client payloads.

type AuthOKData struct {
	PlayerID string `json:"player_id"`
}

type JoinedData struct {
	RoomID  string `json:"room_id"`
	Players int    `json:"players"`
	State   string `json:"state"`
}

type HoleCardsData struct {
	RoomID string   `json:"room_id"`
	Cards  []string `json:"cards"`
}

type ActionData struct {
	RoomID string `json:"room_id"`
	Player string `json:"player"`
	Action string `json:"action"`
	Amount int    `json:"amount"`
}

type TurnData struct {
	RoomID  string   `json:"room_id"`
	Player  string   `json:"player"`
	Pot     int      `json:"pot"`
	ToCall  int      `json:"to_call"`
	Balance int      `json:"balance"`
	Actions []string `json:"actions"`
}

type BoardData struct {
	RoomID string   `json:"room_id"`
	Cards  []string `json:"cards"`
	Pot    int      `json:"pot"`
}

type ShowdownWinner struct {
	Player string   `json:"player"`
	Amount int      `json:"amount"`
	Hand   []string `json:"hand,omitempty"`
	Label  string   `json:"label,omitempty"`
}

type ShowdownData struct {
	RoomID   string           `json:"room_id"`
	Board    []string         `json:"board"`
	Walkover bool             `json:"walkover"`
	Winners  []ShowdownWinner `json:"winners"`
}

type BalanceInfoData struct {
	Balance int `json:"balance"`
}

type BonusResultData struct {
	Bonus   int `json:"bonus"`
	Balance int `json:"balance"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
