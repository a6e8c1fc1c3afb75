package domain

// EffectiveSuit returns the suit the next play must match. When the top
// discard is an Ace with a declared suit, the declaration overrides the
// Ace's printed suit.
func EffectiveSuit(s *GameState) (Suit, bool) {
	top, ok := TopDiscard(s)
	if !ok {
		return "", false
	}
	if top.Rank == RankAce && s.ChosenSuit != "" {
		return s.ChosenSuit, true
	}
	return top.Suit, true
}

// IsValidPlay reports whether the card is a legal play against the current
// discard top.
func IsValidPlay(s *GameState, card Card) bool {
	top, ok := TopDiscard(s)
	if !ok {
		// First play of the game: anything goes.
		return true
	}

	// Under an active 2s penalty only another 2 counters; Aces cannot.
	if s.Penalty.Active && s.Penalty.Type == Penalty2s {
		return card.Rank == RankTwo
	}

	// Aces are universally playable outside active penalties.
	if card.Rank == RankAce {
		return true
	}

	// 2-on-2 chains by rank regardless of suit.
	if card.Rank == RankTwo && top.Rank == RankTwo {
		return true
	}

	effective, _ := EffectiveSuit(s)
	return card.Suit == effective || card.Rank == top.Rank
}

// CanPlayerPlay reports whether the player holds at least one legal card.
func CanPlayerPlay(s *GameState, playerID string) bool {
	idx := s.PlayerIndex(playerID)
	if idx < 0 {
		return false
	}
	for _, c := range s.Players[idx].Hand {
		if IsValidPlay(s, c) {
			return true
		}
	}
	return false
}

// PlayableCards returns the legal subset of the player's hand, preserving
// hand order. With an empty discard pile the whole hand is returned.
func PlayableCards(s *GameState, playerID string) []Card {
	idx := s.PlayerIndex(playerID)
	if idx < 0 {
		return nil
	}
	hand := s.Players[idx].Hand
	if len(s.DiscardPile) == 0 {
		return append([]Card(nil), hand...)
	}
	out := make([]Card, 0, len(hand))
	for _, c := range hand {
		if IsValidPlay(s, c) {
			out = append(out, c)
		}
	}
	return out
}
