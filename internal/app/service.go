package app

import (
	"math/rand"

	"github.com/google/uuid"

	"switchgame/internal/domain"
)

// Service contains the Switch use-cases operating on domain state. It owns
// the engine and translates state transitions into dispatchable events;
// the transport layer decides how events reach clients.
type Service struct {
	engine *domain.Engine
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand) *Service {
	return &Service{engine: domain.NewEngine(rng)}
}

// PlayerSpec describes a seat occupant when creating a game.
type PlayerSpec struct {
	UserID string
	Name   string
	Host   bool
}

// CreateGame builds a fresh waiting-phase game for the given players.
func (s *Service) CreateGame(specs []PlayerSpec) *domain.GameState {
	players := make([]domain.Player, 0, len(specs))
	for _, sp := range specs {
		players = append(players, domain.Player{
			ID:          sp.UserID,
			Name:        sp.Name,
			IsConnected: true,
			IsHost:      sp.Host,
		})
	}
	return domain.NewGameState(uuid.NewString(), players)
}

// StartGame deals the opening hands and emits one targeted hand event per
// seat plus a broadcast start event.
func (s *Service) StartGame(state *domain.GameState) (*domain.GameState, []Event, error) {
	next, err := s.engine.StartGame(state)
	if err != nil {
		return nil, nil, err
	}

	events := make([]Event, 0, len(next.Players)+1)
	for _, p := range next.Players {
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: p.ID, Hand: p.Hand},
			Recipients: []string{p.ID},
		})
	}

	top, _ := domain.TopDiscard(next)
	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			FirstTurnUserID: next.CurrentPlayer().ID,
			TopDiscard:      top,
			DrawPileSize:    len(next.DrawPile),
		},
	})
	return next, events, nil
}

// HandleAction applies a player action and emits the resulting events. The
// returned state is the new authoritative snapshot; on error the previous
// snapshot remains valid.
func (s *Service) HandleAction(state *domain.GameState, action domain.GameAction) (*domain.GameState, []Event, error) {
	penaltyWasActive := state.Penalty.Active
	next, err := s.engine.ProcessAction(state, action)
	if err != nil {
		return nil, nil, err
	}

	var events []Event
	switch action.Type {
	case domain.ActionPlayCard, domain.ActionPlayCards:
		events = playEvents(state, next, action)
	case domain.ActionDrawCard:
		events = drawEvents(state, next, action, penaltyWasActive)
	}

	if next.Phase == domain.PhaseFinished && next.Winner != nil {
		events = append(events, Event{
			Kind:    EventGameEnded,
			Payload: GameEndedPayload{WinnerUserID: next.Winner.ID},
		})
	}
	return next, events, nil
}

// SettleGame computes wallet deltas for a finished game: each loser pays
// the base bet and the winner collects the pot. Deltas always sum to zero.
func (s *Service) SettleGame(state *domain.GameState, baseBet int64) map[string]int64 {
	if state.Phase != domain.PhaseFinished || state.Winner == nil {
		return nil
	}
	deltas := make(map[string]int64, len(state.Players))
	var pot int64
	for _, p := range state.Players {
		if p.ID == state.Winner.ID {
			continue
		}
		deltas[p.ID] = -baseBet
		pot += baseBet
	}
	deltas[state.Winner.ID] = pot
	return deltas
}

func playEvents(prev, next *domain.GameState, action domain.GameAction) []Event {
	// A play only ever appends to the discard pile, so the tail is exactly
	// the batch that was played.
	played := next.DiscardPile[len(prev.DiscardPile):]

	return []Event{{
		Kind: EventCardPlayed,
		Payload: CardPlayedPayload{
			UserID:         action.PlayerID,
			Cards:          append([]domain.Card(nil), played...),
			ChosenSuit:     next.ChosenSuit,
			NextTurnUserID: turnUserID(next),
			PenaltyCards:   next.Penalty.Cards,
			SkipsTriggered: countRank(played, domain.RankJack),
		},
	}}
}

func drawEvents(prev, next *domain.GameState, action domain.GameAction, penaltyWasActive bool) []Event {
	idx := next.PlayerIndex(action.PlayerID)
	drawn := 0
	if idx >= 0 {
		drawn = len(next.Players[idx].Hand) - len(prev.Players[idx].Hand)
	}

	kind := EventCardDrawn
	var payload any = CardDrawnPayload{
		UserID:         action.PlayerID,
		Count:          drawn,
		NextTurnUserID: turnUserID(next),
	}
	if penaltyWasActive {
		kind = EventPenaltyServed
		payload = PenaltyServedPayload{
			UserID:         action.PlayerID,
			Count:          drawn,
			NextTurnUserID: turnUserID(next),
		}
	}

	events := []Event{{Kind: kind, Payload: payload}}
	if idx >= 0 {
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: action.PlayerID, Hand: next.Players[idx].Hand},
			Recipients: []string{action.PlayerID},
		})
	}
	return events
}

func turnUserID(s *domain.GameState) string {
	if s.Phase != domain.PhasePlaying {
		return ""
	}
	if p := s.CurrentPlayer(); p != nil {
		return p.ID
	}
	return ""
}

func countRank(cards []domain.Card, rank domain.Rank) int {
	n := 0
	for _, c := range cards {
		if c.Rank == rank {
			n++
		}
	}
	return n
}
