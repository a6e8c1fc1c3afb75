package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func TestDealInitialHands(t *testing.T) {
	tests := []struct {
		name     string
		players  int
		handSize int
	}{
		{name: "2 players get 7 cards", players: 2, handSize: 7},
		{name: "3 players get 7 cards", players: 3, handSize: 7},
		{name: "4 players get 5 cards", players: 4, handSize: 5},
		{name: "6 players get 5 cards", players: 6, handSize: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players := make([]Player, tt.players)
			for i := range players {
				players[i] = Player{ID: string(rune('a' + i))}
			}
			s := NewGameState("g", players)
			s.DrawPile = NewDeck()

			if err := dealInitialHands(s); err != nil {
				t.Fatalf("dealInitialHands: %v", err)
			}
			for i := range s.Players {
				if len(s.Players[i].Hand) != tt.handSize {
					t.Fatalf("player %d hand = %d, want %d", i, len(s.Players[i].Hand), tt.handSize)
				}
			}
			if len(s.DiscardPile) != 1 {
				t.Fatalf("discard pile = %d, want 1", len(s.DiscardPile))
			}
			wantDraw := DeckSize - tt.players*tt.handSize - 1
			if len(s.DrawPile) != wantDraw {
				t.Fatalf("draw pile = %d, want %d", len(s.DrawPile), wantDraw)
			}
			if s.TotalCards() != DeckSize {
				t.Fatalf("cards leaked: total = %d", s.TotalCards())
			}
		})
	}
}

func TestDealInitialHandsShortDeck(t *testing.T) {
	s := NewGameState("g", []Player{{ID: "a"}, {ID: "b"}})
	s.DrawPile = NewDeck()[:10]
	if err := dealInitialHands(s); !errors.Is(err, ErrInsufficientCards) {
		t.Fatalf("err = %v, want ErrInsufficientCards", err)
	}

	s = NewGameState("g", []Player{{ID: "a"}, {ID: "b"}})
	s.DrawPile = NewDeck()[:14] // exactly two hands, nothing left to flip
	if err := dealInitialHands(s); !errors.Is(err, ErrEmptyPile) {
		t.Fatalf("err = %v, want ErrEmptyPile", err)
	}
}

func TestDrawCardInto(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := NewGameState("g", []Player{{ID: "a"}, {ID: "b"}})
	s.DrawPile = []Card{NewCard(SuitHearts, RankFive)}

	if err := drawCardInto(s, "a", rng); err != nil {
		t.Fatalf("drawCardInto: %v", err)
	}
	if len(s.Players[0].Hand) != 1 || s.Players[0].Hand[0].ID != "hearts-5" {
		t.Fatalf("unexpected hand after draw: %v", s.Players[0].Hand)
	}
	if len(s.DrawPile) != 0 {
		t.Fatalf("draw pile should be empty, has %d", len(s.DrawPile))
	}

	if err := drawCardInto(s, "ghost", rng); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("err = %v, want ErrPlayerNotFound", err)
	}
}

func TestDrawCardIntoReshuffles(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := NewGameState("g", []Player{{ID: "a"}, {ID: "b"}})
	top := NewCard(SuitSpades, RankNine)
	s.DiscardPile = []Card{
		NewCard(SuitHearts, RankThree),
		NewCard(SuitClubs, RankSix),
		top,
	}

	if err := drawCardInto(s, "a", rng); err != nil {
		t.Fatalf("drawCardInto: %v", err)
	}
	if len(s.DiscardPile) != 1 || s.DiscardPile[0].ID != top.ID {
		t.Fatalf("reshuffle must keep the top discard in place, got %v", s.DiscardPile)
	}
	if len(s.Players[0].Hand) != 1 {
		t.Fatalf("player should have drawn exactly one card")
	}
	if len(s.DrawPile) != 1 {
		t.Fatalf("draw pile = %d, want 1 after reshuffle and draw", len(s.DrawPile))
	}
}

func TestDrawCardIntoNoCardsAvailable(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := NewGameState("g", []Player{{ID: "a"}, {ID: "b"}})
	s.DiscardPile = []Card{NewCard(SuitSpades, RankNine)}

	if err := drawCardInto(s, "a", rng); !errors.Is(err, ErrNoCardsAvailable) {
		t.Fatalf("err = %v, want ErrNoCardsAvailable", err)
	}
	if len(s.Players[0].Hand) != 0 {
		t.Fatalf("hand must stay empty on a failed draw")
	}
}

func TestTopDiscard(t *testing.T) {
	s := NewGameState("g", nil)
	if _, ok := TopDiscard(s); ok {
		t.Fatalf("TopDiscard should report false on an empty pile")
	}
	s.DiscardPile = []Card{NewCard(SuitHearts, RankTwo), NewCard(SuitClubs, RankJack)}
	top, ok := TopDiscard(s)
	if !ok || top.ID != "clubs-J" {
		t.Fatalf("TopDiscard = %v, %v; want clubs-J, true", top, ok)
	}
}
