package domain

import "time"

// ActionType is the closed set of commands a player can submit.
type ActionType string

const (
	ActionPlayCard  ActionType = "play-card"
	ActionPlayCards ActionType = "play-cards"
	ActionDrawCard  ActionType = "draw-card"
)

// GameAction is the wire-level command shape consumed from a client
// message. It is ephemeral and never stored in a snapshot.
type GameAction struct {
	Type       ActionType `json:"type"`
	PlayerID   string     `json:"playerId"`
	CardID     string     `json:"cardId,omitempty"`
	CardIDs    []string   `json:"cardIds,omitempty"`
	ChosenSuit Suit       `json:"chosenSuit,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
