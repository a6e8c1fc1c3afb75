package nakama

import (
	"switchgame/internal/app"
	"switchgame/internal/domain"
)

// Wire DTOs exchanged with clients as JSON match data. Clients see card
// counts for every seat and full cards only for their own hand.

// MatchLabel is the queryable match listing document.
type MatchLabel struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// PlayCardsRequest covers both single and multi-card plays; a single play
// is a one-element batch.
type PlayCardsRequest struct {
	CardIDs    []string `json:"cardIds"`
	ChosenSuit string   `json:"chosenSuit,omitempty"`
}

// PlayerView is the public, hand-redacted view of a seat.
type PlayerView struct {
	UserID         string `json:"userId"`
	Seat           int    `json:"seat"`
	DisplayName    string `json:"displayName"`
	IsOwner        bool   `json:"isOwner"`
	IsBot          bool   `json:"isBot"`
	CardsRemaining int    `json:"cardsRemaining"`
	Balance        int64  `json:"balance"`
}

// MatchSnapshot is the public table view broadcast on joins and leaves.
type MatchSnapshot struct {
	Seats             []string     `json:"seats"`
	OwnerSeat         int          `json:"ownerSeat"`
	Tick              int64        `json:"tick"`
	Phase             string       `json:"phase"`
	Players           []PlayerView `json:"players"`
	TopDiscard        *domain.Card `json:"topDiscard,omitempty"`
	CurrentTurnUserID string       `json:"currentTurnUserId,omitempty"`
	ChosenSuit        string       `json:"chosenSuit,omitempty"`
	PenaltyCards      int          `json:"penaltyCards"`
	DrawPileSize      int          `json:"drawPileSize"`
}

type PlayerJoinedEvent struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Seat   int    `json:"seat"`
	Host   bool   `json:"host"`
}

type PlayerLeftEvent struct {
	UserID string `json:"userId"`
}

type GameStartedEvent struct {
	FirstTurnUserID string      `json:"firstTurnUserId"`
	TopDiscard      domain.Card `json:"topDiscard"`
	DrawPileSize    int         `json:"drawPileSize"`
}

type HandDealtEvent struct {
	Hand []domain.Card `json:"hand"`
}

type CardPlayedEvent struct {
	UserID         string        `json:"userId"`
	Cards          []domain.Card `json:"cards"`
	ChosenSuit     string        `json:"chosenSuit,omitempty"`
	NextTurnUserID string        `json:"nextTurnUserId,omitempty"`
	PenaltyCards   int           `json:"penaltyCards"`
	SkipsTriggered int           `json:"skipsTriggered"`
}

type CardDrawnEvent struct {
	UserID         string `json:"userId"`
	Count          int    `json:"count"`
	NextTurnUserID string `json:"nextTurnUserId,omitempty"`
}

type PenaltyServedEvent struct {
	UserID         string `json:"userId"`
	Count          int    `json:"count"`
	NextTurnUserID string `json:"nextTurnUserId,omitempty"`
}

type GameEndedEvent struct {
	WinnerUserID   string           `json:"winnerUserId"`
	BalanceChanges map[string]int64 `json:"balanceChanges,omitempty"`
}

type GameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// eventWire maps an app event to its opcode and wire payload. The boolean is
// false for event kinds that have no client representation.
func eventWire(ev app.Event) (int64, any, bool) {
	switch ev.Kind {
	case app.EventPlayerJoined:
		p := ev.Payload.(app.PlayerJoinedPayload)
		return OpPlayerJoined, PlayerJoinedEvent{
			UserID: p.UserID,
			Name:   p.Name,
			Seat:   p.Seat,
			Host:   p.Host,
		}, true
	case app.EventPlayerLeft:
		p := ev.Payload.(app.PlayerLeftPayload)
		return OpPlayerLeft, PlayerLeftEvent{UserID: p.UserID}, true
	case app.EventGameStarted:
		p := ev.Payload.(app.GameStartedPayload)
		return OpGameStarted, GameStartedEvent{
			FirstTurnUserID: p.FirstTurnUserID,
			TopDiscard:      p.TopDiscard,
			DrawPileSize:    p.DrawPileSize,
		}, true
	case app.EventHandDealt:
		p := ev.Payload.(app.HandDealtPayload)
		return OpHandDealt, HandDealtEvent{Hand: p.Hand}, true
	case app.EventCardPlayed:
		p := ev.Payload.(app.CardPlayedPayload)
		return OpCardPlayed, CardPlayedEvent{
			UserID:         p.UserID,
			Cards:          p.Cards,
			ChosenSuit:     string(p.ChosenSuit),
			NextTurnUserID: p.NextTurnUserID,
			PenaltyCards:   p.PenaltyCards,
			SkipsTriggered: p.SkipsTriggered,
		}, true
	case app.EventCardDrawn:
		p := ev.Payload.(app.CardDrawnPayload)
		return OpCardDrawn, CardDrawnEvent{
			UserID:         p.UserID,
			Count:          p.Count,
			NextTurnUserID: p.NextTurnUserID,
		}, true
	case app.EventPenaltyServed:
		p := ev.Payload.(app.PenaltyServedPayload)
		return OpPenaltyServed, PenaltyServedEvent{
			UserID:         p.UserID,
			Count:          p.Count,
			NextTurnUserID: p.NextTurnUserID,
		}, true
	case app.EventGameEnded:
		p := ev.Payload.(app.GameEndedPayload)
		return OpGameEnded, GameEndedEvent{WinnerUserID: p.WinnerUserID}, true
	default:
		return 0, nil, false
	}
}
