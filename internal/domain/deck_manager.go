package domain

import "math/rand"

// Pile lifecycle. These mutators operate on a snapshot the engine has
// already cloned; public callers only ever see the returned copies.

// dealInitialHands distributes the opening hands from the draw pile and
// flips one card to seed the discard pile. Games of SmallHandThreshold or
// more players get SmallHandSize cards each, smaller games LargeHandSize.
func dealInitialHands(s *GameState) error {
	handSize := LargeHandSize
	if len(s.Players) >= SmallHandThreshold {
		handSize = SmallHandSize
	}

	for c := 0; c < handSize; c++ {
		for i := range s.Players {
			if len(s.DrawPile) == 0 {
				return ErrInsufficientCards
			}
			card := s.DrawPile[len(s.DrawPile)-1]
			s.DrawPile = s.DrawPile[:len(s.DrawPile)-1]
			s.Players[i].Hand = append(s.Players[i].Hand, card)
		}
	}

	if len(s.DrawPile) == 0 {
		return ErrEmptyPile
	}
	top := s.DrawPile[len(s.DrawPile)-1]
	s.DrawPile = s.DrawPile[:len(s.DrawPile)-1]
	s.DiscardPile = append(s.DiscardPile, top)
	return nil
}

// drawCardInto pops one card from the draw pile into the named player's
// hand, reshuffling the discard pile first if the draw pile is empty.
func drawCardInto(s *GameState, playerID string, rng *rand.Rand) error {
	idx := s.PlayerIndex(playerID)
	if idx < 0 {
		return ErrPlayerNotFound
	}

	if len(s.DrawPile) == 0 {
		reshuffleDiscardPile(s, rng)
	}
	if len(s.DrawPile) == 0 {
		return ErrNoCardsAvailable
	}

	card := s.DrawPile[len(s.DrawPile)-1]
	s.DrawPile = s.DrawPile[:len(s.DrawPile)-1]
	s.Players[idx].Hand = append(s.Players[idx].Hand, card)
	return nil
}

// reshuffleDiscardPile shuffles every discard card except the current top
// back into the draw pile. No-op while the discard holds one card or fewer.
func reshuffleDiscardPile(s *GameState, rng *rand.Rand) {
	if len(s.DiscardPile) <= 1 {
		return
	}
	top := s.DiscardPile[len(s.DiscardPile)-1]
	rest := s.DiscardPile[:len(s.DiscardPile)-1]
	s.DrawPile = append(s.DrawPile, ShuffleDeck(rest, rng)...)
	s.DiscardPile = []Card{top}
}

// TopDiscard returns the top card of the discard pile, if any.
func TopDiscard(s *GameState) (Card, bool) {
	if len(s.DiscardPile) == 0 {
		return Card{}, false
	}
	return s.DiscardPile[len(s.DiscardPile)-1], true
}
