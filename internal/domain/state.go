package domain

import "time"

// Phase represents the lifecycle stage of a Switch game. Transitions are
// one-way: waiting -> playing -> finished.
type Phase string

const (
	// PhaseWaiting is the pre-game state where players can join.
	PhaseWaiting Phase = "waiting"
	// PhasePlaying is the active game state where cards are played.
	PhasePlaying Phase = "playing"
	// PhaseFinished is the terminal state after a player empties their hand.
	PhaseFinished Phase = "finished"
)

// GameMode annotates the table's special-card situation for clients.
// Legality decisions are driven by PenaltyState, not by this field.
type GameMode string

const (
	GameModeNormal    GameMode = "normal"
	GameModeActive2s  GameMode = "active-2s"
	GameModeActiveRun GameMode = "active-run"
	GameModeMirror    GameMode = "mirror-mode"
)

// PenaltyType identifies what kind of draw obligation is accumulating.
type PenaltyType string

const (
	PenaltyNone PenaltyType = ""
	Penalty2s   PenaltyType = "2s"
	PenaltyRun  PenaltyType = "run"
)

// PenaltyState is an accumulating draw obligation created by trick cards.
// Active=false implies Cards=0 and Type=PenaltyNone.
type PenaltyState struct {
	Active         bool        `json:"active"`
	Cards          int         `json:"cards"`
	Type           PenaltyType `json:"type,omitempty"`
	TargetPlayerID string      `json:"targetPlayerId,omitempty"`
}

// Player holds per-seat state for a participant.
type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Hand        []Card `json:"hand"`
	IsConnected bool   `json:"isConnected"`
	IsHost      bool   `json:"isHost,omitempty"`
}

// GameState is the authoritative snapshot of a Switch game. Engine
// operations never mutate a snapshot in place; they clone it, apply the
// action and return the new value, so a failed action leaves the caller's
// state untouched.
type GameState struct {
	ID                 string       `json:"id"`
	Players            []Player     `json:"players"`
	DrawPile           []Card       `json:"drawPile"`
	DiscardPile        []Card       `json:"discardPile"`
	CurrentPlayerIndex int          `json:"currentPlayerIndex"`
	Direction          int          `json:"direction"`
	Phase              Phase        `json:"phase"`
	GameMode           GameMode     `json:"gameMode"`
	Penalty            PenaltyState `json:"penaltyState"`
	ChosenSuit         Suit         `json:"chosenSuit,omitempty"`
	SkipsRemaining     int          `json:"skipsRemaining"`
	Winner             *Player      `json:"winner,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	StartedAt          *time.Time   `json:"startedAt,omitempty"`
	FinishedAt         *time.Time   `json:"finishedAt,omitempty"`
}

// NewGameState creates a waiting-phase snapshot with the given players.
func NewGameState(id string, players []Player) *GameState {
	return &GameState{
		ID:        id,
		Players:   append([]Player(nil), players...),
		Direction: 1,
		Phase:     PhaseWaiting,
		GameMode:  GameModeNormal,
		CreatedAt: time.Now(),
	}
}

// Clone returns a deep copy of the snapshot.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p
		out.Players[i].Hand = append([]Card(nil), p.Hand...)
	}
	out.DrawPile = append([]Card(nil), s.DrawPile...)
	out.DiscardPile = append([]Card(nil), s.DiscardPile...)
	if s.Winner != nil {
		w := *s.Winner
		w.Hand = append([]Card(nil), s.Winner.Hand...)
		out.Winner = &w
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		out.StartedAt = &t
	}
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		out.FinishedAt = &t
	}
	return &out
}

// PlayerIndex returns the seat index for a player ID, or -1.
func (s *GameState) PlayerIndex(playerID string) int {
	for i := range s.Players {
		if s.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// CurrentPlayer returns the player whose turn it is, or nil before players
// are seated.
func (s *GameState) CurrentPlayer() *Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return &s.Players[s.CurrentPlayerIndex]
}

// TotalCards counts every card in the piles and hands. Stays at DeckSize
// once a game has started.
func (s *GameState) TotalCards() int {
	n := len(s.DrawPile) + len(s.DiscardPile)
	for i := range s.Players {
		n += len(s.Players[i].Hand)
	}
	return n
}

// wrapIndex normalizes a seat index into [0, len(players)), handling the
// negative values produced by Direction=-1.
func (s *GameState) wrapIndex(i int) int {
	n := len(s.Players)
	return ((i % n) + n) % n
}

// nextIndex returns the seat that follows from in turn order.
func (s *GameState) nextIndex(from int) int {
	return s.wrapIndex(from + s.Direction)
}
