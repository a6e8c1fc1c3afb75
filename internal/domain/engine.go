package domain

import (
	"errors"
	"math/rand"
	"time"
)

// Engine validates and applies game actions. Every operation takes a
// snapshot and returns a new one; the input is never mutated, so a caller
// can retry a failed action against the same state with corrected input.
//
// The engine performs no I/O and holds no per-game state. The rng is its
// only non-determinism and is injected so tests and the simulator can
// replay games from a seed. Callers must serialize actions per game
// instance; applying two actions to the same snapshot and keeping the last
// write would break the turn-order invariant.
type Engine struct {
	rng *rand.Rand
}

// NewEngine constructs an Engine with the provided rng or a time-seeded
// default.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rng: rng}
}

// StartGame is the only waiting -> playing transition. It shuffles a fresh
// deck, deals opening hands, seeds the discard pile and hands the first
// turn to seat 0.
func (e *Engine) StartGame(s *GameState) (*GameState, error) {
	if s.Phase != PhaseWaiting {
		return nil, ErrAlreadyStarted
	}
	if len(s.Players) < MinPlayers {
		return nil, ErrNotEnoughPlayers
	}

	next := s.Clone()
	next.DrawPile = ShuffleDeck(NewDeck(), e.rng)
	next.DiscardPile = nil
	for i := range next.Players {
		next.Players[i].Hand = nil
	}
	if err := dealInitialHands(next); err != nil {
		return nil, err
	}

	next.Phase = PhasePlaying
	next.GameMode = GameModeNormal
	next.Penalty = PenaltyState{}
	next.ChosenSuit = ""
	next.SkipsRemaining = 0
	next.CurrentPlayerIndex = 0
	next.Direction = 1
	next.Winner = nil
	now := time.Now()
	next.StartedAt = &now
	return next, nil
}

// ProcessAction validates and applies a single player command, returning
// the resulting snapshot. All preconditions are checked before any part of
// the action is applied.
func (e *Engine) ProcessAction(s *GameState, action GameAction) (*GameState, error) {
	if s.Phase != PhasePlaying {
		return nil, ErrNotPlaying
	}
	current := s.CurrentPlayer()
	if current == nil || current.ID != action.PlayerID {
		return nil, ErrNotYourTurn
	}

	switch action.Type {
	case ActionPlayCard:
		return e.playCards(s, action.PlayerID, []string{action.CardID}, action.ChosenSuit)
	case ActionPlayCards:
		return e.playCards(s, action.PlayerID, action.CardIDs, action.ChosenSuit)
	case ActionDrawCard:
		return e.drawOrServe(s, action.PlayerID)
	default:
		return nil, ErrUnknownActionType
	}
}

// PlayCard plays a single card for the current player.
func (e *Engine) PlayCard(s *GameState, playerID, cardID string, chosenSuit Suit) (*GameState, error) {
	return e.ProcessAction(s, GameAction{
		Type:       ActionPlayCard,
		PlayerID:   playerID,
		CardID:     cardID,
		ChosenSuit: chosenSuit,
		Timestamp:  time.Now(),
	})
}

// PlayCards plays a batch of equal-rank cards for the current player.
func (e *Engine) PlayCards(s *GameState, playerID string, cardIDs []string, chosenSuit Suit) (*GameState, error) {
	return e.ProcessAction(s, GameAction{
		Type:       ActionPlayCards,
		PlayerID:   playerID,
		CardIDs:    cardIDs,
		ChosenSuit: chosenSuit,
		Timestamp:  time.Now(),
	})
}

// DrawCard draws one card for the current player, or serves the pending
// penalty when one is active — a player facing a penalty cannot draw just
// one card.
func (e *Engine) DrawCard(s *GameState, playerID string) (*GameState, error) {
	return e.ProcessAction(s, GameAction{
		Type:      ActionDrawCard,
		PlayerID:  playerID,
		Timestamp: time.Now(),
	})
}

// ServePenalty draws the full accumulated penalty for the named player,
// clears the penalty and advances the turn. Safe no-op when no penalty is
// active.
func (e *Engine) ServePenalty(s *GameState, playerID string) (*GameState, error) {
	next := s.Clone()
	if !next.Penalty.Active {
		return next, nil
	}
	if next.PlayerIndex(playerID) < 0 {
		return nil, ErrPlayerNotFound
	}
	if err := e.servePenaltyInto(next, playerID); err != nil {
		return nil, err
	}
	return next, nil
}

// playCards validates and applies a play of one or more equal-rank cards.
// Only the first card of a batch is validated against the discard top; the
// rest ride on the shared rank.
func (e *Engine) playCards(s *GameState, playerID string, cardIDs []string, chosenSuit Suit) (*GameState, error) {
	idx := s.PlayerIndex(playerID)
	if idx < 0 {
		return nil, ErrPlayerNotFound
	}

	cards, err := cardsFromHand(s.Players[idx].Hand, cardIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range cards[1:] {
		if c.Rank != cards[0].Rank {
			return nil, ErrRankMismatch
		}
	}
	if !IsValidPlay(s, cards[0]) {
		return nil, ErrInvalidPlay
	}

	next := s.Clone()
	hand := next.Players[idx].Hand
	for _, c := range cards {
		hand = removeCard(hand, c.ID)
	}
	next.Players[idx].Hand = hand
	next.DiscardPile = append(next.DiscardPile, cards...)

	for _, c := range cards {
		switch c.Rank {
		case RankTwo:
			handle2sEffect(next)
		case RankJack:
			handleJackEffect(next)
		}
	}
	// Suit declaration applies once, from the card that ends up on top.
	if last := cards[len(cards)-1]; last.Rank == RankAce {
		handleAceEffect(next, last, chosenSuit)
	}

	advanceTurn(next)
	return next, nil
}

// drawOrServe handles the draw-card action: serving the penalty when one is
// active, otherwise drawing a single card.
func (e *Engine) drawOrServe(s *GameState, playerID string) (*GameState, error) {
	next := s.Clone()
	if next.Penalty.Active {
		if err := e.servePenaltyInto(next, playerID); err != nil {
			return nil, err
		}
		return next, nil
	}
	if err := drawCardInto(next, playerID, e.rng); err != nil {
		return nil, err
	}
	advanceTurn(next)
	return next, nil
}

// servePenaltyInto draws the accumulated penalty cards one at a time (each
// draw may reshuffle the discard pile), clears the penalty and ends the
// turn. If the piles run dry mid-service the remaining draws are forgiven.
func (e *Engine) servePenaltyInto(s *GameState, playerID string) error {
	count := s.Penalty.Cards
	for i := 0; i < count; i++ {
		if err := drawCardInto(s, playerID, e.rng); err != nil {
			if errors.Is(err, ErrNoCardsAvailable) {
				break
			}
			return err
		}
	}
	s.Penalty = PenaltyState{}
	s.GameMode = GameModeNormal
	advanceTurn(s)
	return nil
}

// handle2sEffect stacks two penalty cards per 2 played and points the
// obligation at the next player in turn order.
func handle2sEffect(s *GameState) {
	s.GameMode = GameModeActive2s
	s.Penalty.Active = true
	s.Penalty.Type = Penalty2s
	s.Penalty.Cards += PenaltyPerTwo
	s.Penalty.TargetPlayerID = s.Players[s.nextIndex(s.CurrentPlayerIndex)].ID
}

// handleAceEffect records the declared suit, defaulting to the Ace's own.
func handleAceEffect(s *GameState, ace Card, chosenSuit Suit) {
	if chosenSuit == "" {
		chosenSuit = ace.Suit
	}
	s.ChosenSuit = chosenSuit
}

// handleJackEffect stacks one skip per Jack played.
func handleJackEffect(s *GameState) {
	s.SkipsRemaining++
}

// advanceTurn ends the game if any hand is empty, otherwise moves the turn
// pointer one seat in the play direction and consumes pending skips, one
// bypassed seat per skip. Skipped players never observe a turn.
func advanceTurn(s *GameState) {
	for i := range s.Players {
		if len(s.Players[i].Hand) == 0 {
			s.Phase = PhaseFinished
			winner := s.Players[i]
			winner.Hand = append([]Card(nil), s.Players[i].Hand...)
			s.Winner = &winner
			now := time.Now()
			s.FinishedAt = &now
			return
		}
	}

	s.CurrentPlayerIndex = s.nextIndex(s.CurrentPlayerIndex)
	for s.SkipsRemaining > 0 {
		s.CurrentPlayerIndex = s.nextIndex(s.CurrentPlayerIndex)
		s.SkipsRemaining--
	}
}

// cardsFromHand resolves card IDs against a hand, preserving the caller's
// order. Card IDs are unique per deck, so a repeated ID can never name two
// hand cards; it is rejected rather than resolved twice.
func cardsFromHand(hand []Card, cardIDs []string) ([]Card, error) {
	if len(cardIDs) == 0 {
		return nil, ErrCardNotFound
	}
	seen := make(map[string]bool, len(cardIDs))
	out := make([]Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		if seen[id] {
			return nil, ErrCardNotFound
		}
		seen[id] = true
		found := false
		for _, c := range hand {
			if c.ID == id {
				out = append(out, c)
				found = true
				break
			}
		}
		if !found {
			return nil, ErrCardNotFound
		}
	}
	return out, nil
}

// removeCard drops the first card with the given ID from a hand.
func removeCard(hand []Card, cardID string) []Card {
	for i := range hand {
		if hand[i].ID == cardID {
			return append(hand[:i], hand[i+1:]...)
		}
	}
	return hand
}
