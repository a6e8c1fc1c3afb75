package app

import "switchgame/internal/domain"

// EventKind identifies emitted app events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined  EventKind = "player_joined"
	EventPlayerLeft    EventKind = "player_left"
	EventGameStarted   EventKind = "game_started"
	EventHandDealt     EventKind = "hand_dealt"
	EventCardPlayed    EventKind = "card_played"
	EventCardDrawn     EventKind = "card_drawn"
	EventPenaltyServed EventKind = "penalty_served"
	EventGameEnded     EventKind = "game_ended"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string
	Name   string
	Seat   int
	Host   bool
}

type PlayerLeftPayload struct {
	UserID string
}

type GameStartedPayload struct {
	FirstTurnUserID string
	TopDiscard      domain.Card
	DrawPileSize    int
}

// HandDealtPayload carries a player's full hand and is always targeted at
// its owner; other seats only ever learn hand sizes.
type HandDealtPayload struct {
	UserID string
	Hand   []domain.Card
}

type CardPlayedPayload struct {
	UserID         string
	Cards          []domain.Card
	ChosenSuit     domain.Suit
	NextTurnUserID string
	PenaltyCards   int
	SkipsTriggered int
}

// CardDrawnPayload is the public view of a draw: the count, never the cards.
type CardDrawnPayload struct {
	UserID         string
	Count          int
	NextTurnUserID string
}

type PenaltyServedPayload struct {
	UserID         string
	Count          int
	NextTurnUserID string
}

type GameEndedPayload struct {
	WinnerUserID string
}
