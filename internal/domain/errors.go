package domain

import "errors"

// Every precondition violation is a distinct, named error raised before any
// state mutation. The transport layer decides which are retryable.
var (
	ErrNotEnoughPlayers  = errors.New("not enough players to start")
	ErrAlreadyStarted    = errors.New("game already started")
	ErrNotPlaying        = errors.New("game not in playing phase")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrCardNotFound      = errors.New("card not in hand")
	ErrRankMismatch      = errors.New("cards in a multi-card play must share a rank")
	ErrInvalidPlay       = errors.New("card is not a legal play")
	ErrInsufficientCards = errors.New("draw pile exhausted during deal")
	ErrEmptyPile         = errors.New("no card available to seed discard")
	ErrNoCardsAvailable  = errors.New("no cards available to draw")
	ErrUnknownActionType = errors.New("unknown action type")
)
