package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func testEngine() *Engine {
	return NewEngine(rand.New(rand.NewSource(99)))
}

// playingState builds an in-progress game with fixed hands and a chosen
// discard top, bypassing the deal so tests control every card.
func playingState(top Card, hands ...[]Card) *GameState {
	s := &GameState{
		ID:          "g",
		Direction:   1,
		Phase:       PhasePlaying,
		GameMode:    GameModeNormal,
		DiscardPile: []Card{top},
	}
	for i, h := range hands {
		s.Players = append(s.Players, Player{
			ID:   "p" + string(rune('1'+i)),
			Hand: append([]Card(nil), h...),
		})
	}
	return s
}

func TestStartGame(t *testing.T) {
	e := testEngine()
	s := NewGameState("g", []Player{{ID: "p1"}, {ID: "p2"}})

	started, err := e.StartGame(s)
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if started.Phase != PhasePlaying {
		t.Fatalf("phase = %s, want playing", started.Phase)
	}
	for i := range started.Players {
		if len(started.Players[i].Hand) != 7 {
			t.Fatalf("player %d hand = %d, want 7", i, len(started.Players[i].Hand))
		}
	}
	if len(started.DiscardPile) != 1 {
		t.Fatalf("discard pile = %d, want 1", len(started.DiscardPile))
	}
	if len(started.DrawPile) != 37 {
		t.Fatalf("draw pile = %d, want 37", len(started.DrawPile))
	}
	if started.CurrentPlayerIndex != 0 || started.Direction != 1 {
		t.Fatalf("turn pointer = %d/%d, want 0/1", started.CurrentPlayerIndex, started.Direction)
	}
	if started.StartedAt == nil {
		t.Fatalf("StartedAt not set")
	}
	if started.TotalCards() != DeckSize {
		t.Fatalf("total cards = %d, want %d", started.TotalCards(), DeckSize)
	}

	// Input snapshot must be untouched.
	if s.Phase != PhaseWaiting || len(s.DrawPile) != 0 {
		t.Fatalf("StartGame mutated its input")
	}
}

func TestStartGamePreconditions(t *testing.T) {
	e := testEngine()

	s := NewGameState("g", []Player{{ID: "p1"}})
	if _, err := e.StartGame(s); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("err = %v, want ErrNotEnoughPlayers", err)
	}

	s = NewGameState("g", []Player{{ID: "p1"}, {ID: "p2"}})
	started, err := e.StartGame(s)
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if _, err := e.StartGame(started); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("err = %v, want ErrAlreadyStarted", err)
	}
}

func TestProcessActionGuards(t *testing.T) {
	e := testEngine()

	s := NewGameState("g", []Player{{ID: "p1"}, {ID: "p2"}})
	if _, err := e.DrawCard(s, "p1"); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("err = %v, want ErrNotPlaying", err)
	}

	s = playingState(NewCard(SuitSpades, RankSeven),
		[]Card{NewCard(SuitSpades, RankKing)},
		[]Card{NewCard(SuitHearts, RankFour)},
	)
	if _, err := e.DrawCard(s, "p2"); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("err = %v, want ErrNotYourTurn", err)
	}

	if _, err := e.ProcessAction(s, GameAction{Type: "discard-hand", PlayerID: "p1"}); !errors.Is(err, ErrUnknownActionType) {
		t.Fatalf("err = %v, want ErrUnknownActionType", err)
	}
}

func TestPlayCard(t *testing.T) {
	e := testEngine()
	s := playingState(NewCard(SuitSpades, RankSeven),
		[]Card{NewCard(SuitSpades, RankKing), NewCard(SuitHearts, RankFour)},
		[]Card{NewCard(SuitHearts, RankNine), NewCard(SuitClubs, RankSix)},
	)

	next, err := e.PlayCard(s, "p1", "spades-K", "")
	if err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if top, _ := TopDiscard(next); top.ID != "spades-K" {
		t.Fatalf("discard top = %s, want spades-K", top.ID)
	}
	if len(next.Players[0].Hand) != 1 {
		t.Fatalf("hand = %d, want 1", len(next.Players[0].Hand))
	}
	if next.CurrentPlayerIndex != 1 {
		t.Fatalf("turn did not advance, index = %d", next.CurrentPlayerIndex)
	}

	// Original snapshot untouched.
	if len(s.Players[0].Hand) != 2 || len(s.DiscardPile) != 1 {
		t.Fatalf("PlayCard mutated its input")
	}
}

func TestPlayCardErrors(t *testing.T) {
	e := testEngine()
	s := playingState(NewCard(SuitSpades, RankSeven),
		[]Card{NewCard(SuitClubs, RankFour)},
		[]Card{NewCard(SuitHearts, RankNine)},
	)

	if _, err := e.PlayCard(s, "p1", "hearts-9", ""); !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("err = %v, want ErrCardNotFound", err)
	}
	if _, err := e.PlayCard(s, "p1", "clubs-4", ""); !errors.Is(err, ErrInvalidPlay) {
		t.Fatalf("err = %v, want ErrInvalidPlay", err)
	}
	// Failed plays leave the snapshot whole.
	if len(s.Players[0].Hand) != 1 || len(s.DiscardPile) != 1 {
		t.Fatalf("failed play mutated the snapshot")
	}
}

func TestPlayCardsSharedRank(t *testing.T) {
	e := testEngine()
	s := playingState(NewCard(SuitSpades, RankSeven),
		[]Card{NewCard(SuitSpades, RankFour), NewCard(SuitHearts, RankFour), NewCard(SuitClubs, RankNine)},
		[]Card{NewCard(SuitHearts, RankNine)},
	)

	next, err := e.PlayCards(s, "p1", []string{"spades-4", "hearts-4"}, "")
	if err != nil {
		t.Fatalf("PlayCards: %v", err)
	}
	if top, _ := TopDiscard(next); top.ID != "hearts-4" {
		t.Fatalf("discard top = %s, want the last card of the batch", top.ID)
	}
	if len(next.Players[0].Hand) != 1 {
		t.Fatalf("hand = %d, want 1", len(next.Players[0].Hand))
	}

	if _, err := e.PlayCards(s, "p1", []string{"spades-4", "clubs-9"}, ""); !errors.Is(err, ErrRankMismatch) {
		t.Fatalf("err = %v, want ErrRankMismatch", err)
	}
}

func TestPlayCardsRejectsDuplicateIDs(t *testing.T) {
	e := testEngine()
	s := playingState(NewCard(SuitSpades, RankSeven),
		[]Card{NewCard(SuitSpades, RankFour), NewCard(SuitHearts, RankFour)},
		[]Card{NewCard(SuitHearts, RankNine)},
	)

	// Naming the same hand card twice must fail, not discard it twice.
	_, err := e.PlayCards(s, "p1", []string{"spades-4", "spades-4"}, "")
	if !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("err = %v, want ErrCardNotFound", err)
	}
	if s.TotalCards() != 4 {
		t.Fatalf("total cards = %d, want 4", s.TotalCards())
	}

	next, err := e.PlayCards(s, "p1", []string{"spades-4", "hearts-4"}, "")
	if err != nil {
		t.Fatalf("PlayCards: %v", err)
	}
	if next.TotalCards() != 4 {
		t.Fatalf("total cards after play = %d, want 4", next.TotalCards())
	}
}

func TestPlayCardsFirstCardCarriesTheBatch(t *testing.T) {
	e := testEngine()
	// Neither 4 matches the top by suit; leading with the hearts 4 makes the
	// whole batch legal, leading with the spades 4 does not.
	s := playingState(NewCard(SuitHearts, RankNine),
		[]Card{NewCard(SuitSpades, RankFour), NewCard(SuitHearts, RankFour)},
		[]Card{NewCard(SuitClubs, RankSix)},
	)

	if _, err := e.PlayCards(s, "p1", []string{"spades-4", "hearts-4"}, ""); !errors.Is(err, ErrInvalidPlay) {
		t.Fatalf("err = %v, want ErrInvalidPlay for an illegal lead card", err)
	}
	if _, err := e.PlayCards(s, "p1", []string{"hearts-4", "spades-4"}, ""); err != nil {
		t.Fatalf("legal lead card should carry the batch: %v", err)
	}
}

func TestAceDeclaresSuit(t *testing.T) {
	e := testEngine()
	s := playingState(NewCard(SuitSpades, RankSeven),
		[]Card{NewCard(SuitDiamonds, RankAce), NewCard(SuitHearts, RankFour)},
		[]Card{NewCard(SuitClubs, RankNine), NewCard(SuitClubs, RankSix)},
	)

	next, err := e.PlayCard(s, "p1", "diamonds-A", SuitClubs)
	if err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if next.ChosenSuit != SuitClubs {
		t.Fatalf("chosen suit = %q, want clubs", next.ChosenSuit)
	}
	// Follower must honor the declaration.
	next2, err := e.PlayCard(next, "p2", "clubs-9", "")
	if err != nil {
		t.Fatalf("follower play: %v", err)
	}
	if top, _ := TopDiscard(next2); top.ID != "clubs-9" {
		t.Fatalf("discard top = %s, want clubs-9", top.ID)
	}
}

func TestAceDefaultsToOwnSuit(t *testing.T) {
	e := testEngine()
	s := playingState(NewCard(SuitSpades, RankSeven),
		[]Card{NewCard(SuitDiamonds, RankAce), NewCard(SuitHearts, RankFour)},
		[]Card{NewCard(SuitClubs, RankNine)},
	)

	next, err := e.PlayCard(s, "p1", "diamonds-A", "")
	if err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if next.ChosenSuit != SuitDiamonds {
		t.Fatalf("chosen suit = %q, want the ace's own suit", next.ChosenSuit)
	}
}

func TestAceBatchDeclaresOnce(t *testing.T) {
	e := testEngine()
	s := playingState(NewCard(SuitSpades, RankSeven),
		[]Card{NewCard(SuitSpades, RankAce), NewCard(SuitHearts, RankAce), NewCard(SuitClubs, RankTwo)},
		[]Card{NewCard(SuitClubs, RankNine)},
	)

	next, err := e.PlayCards(s, "p1", []string{"spades-A", "hearts-A"}, SuitClubs)
	if err != nil {
		t.Fatalf("PlayCards: %v", err)
	}
	if next.ChosenSuit != SuitClubs {
		t.Fatalf("chosen suit = %q, want clubs", next.ChosenSuit)
	}
}

func TestTwoPenaltyStacking(t *testing.T) {
	e := testEngine()
	s := playingState(NewCard(SuitSpades, RankNine),
		[]Card{NewCard(SuitSpades, RankTwo), NewCard(SuitHearts, RankFour)},
		[]Card{NewCard(SuitHearts, RankTwo), NewCard(SuitClubs, RankSix)},
		[]Card{NewCard(SuitDiamonds, RankEight), NewCard(SuitClubs, RankKing)},
	)
	s.DrawPile = ShuffleDeck(NewDeck(), rand.New(rand.NewSource(3)))[:10]

	// p1 opens with a 2.
	next, err := e.PlayCard(s, "p1", "spades-2", "")
	if err != nil {
		t.Fatalf("play first 2: %v", err)
	}
	if !next.Penalty.Active || next.Penalty.Cards != 2 || next.Penalty.Type != Penalty2s {
		t.Fatalf("penalty after one 2 = %+v, want active 2-card 2s penalty", next.Penalty)
	}
	if next.Penalty.TargetPlayerID != "p2" {
		t.Fatalf("penalty target = %s, want p2", next.Penalty.TargetPlayerID)
	}
	if next.GameMode != GameModeActive2s {
		t.Fatalf("game mode = %s, want active-2s", next.GameMode)
	}

	// p2 counters with another 2: penalty stacks and rolls on to p3.
	next, err = e.PlayCard(next, "p2", "hearts-2", "")
	if err != nil {
		t.Fatalf("counter 2: %v", err)
	}
	if next.Penalty.Cards != 4 {
		t.Fatalf("penalty cards = %d, want 4", next.Penalty.Cards)
	}
	if next.Penalty.TargetPlayerID != "p3" {
		t.Fatalf("penalty target = %s, want p3", next.Penalty.TargetPlayerID)
	}

	// p3 has no 2 and draws: the full stack is served and the turn moves on.
	served, err := e.DrawCard(next, "p3")
	if err != nil {
		t.Fatalf("serve penalty: %v", err)
	}
	if got := len(served.Players[2].Hand); got != 6 {
		t.Fatalf("p3 hand = %d, want 6 after serving 4 penalty cards", got)
	}
	if served.Penalty.Active || served.Penalty.Cards != 0 {
		t.Fatalf("penalty not cleared: %+v", served.Penalty)
	}
	if served.GameMode != GameModeNormal {
		t.Fatalf("game mode = %s, want normal", served.GameMode)
	}
	if served.CurrentPlayerIndex != 0 {
		t.Fatalf("turn index = %d, want 0 after the served player loses their turn", served.CurrentPlayerIndex)
	}
}

func TestPenaltyForgivenWhenPilesRunDry(t *testing.T) {
	e := testEngine()
	// Empty draw pile and nothing below the played 2 to reshuffle: the debt
	// cannot be collected.
	s := playingState(NewCard(SuitSpades, RankNine),
		[]Card{NewCard(SuitSpades, RankTwo), NewCard(SuitHearts, RankFour)},
		[]Card{NewCard(SuitClubs, RankSix), NewCard(SuitDiamonds, RankEight)},
	)
	s.DiscardPile = nil

	next, err := e.PlayCard(s, "p1", "spades-2", "")
	if err != nil {
		t.Fatalf("play 2: %v", err)
	}
	served, err := e.DrawCard(next, "p2")
	if err != nil {
		t.Fatalf("serve penalty: %v", err)
	}
	if got := len(served.Players[1].Hand); got != 2 {
		t.Fatalf("p2 hand = %d, want 2 (no cards collectable)", got)
	}
	if served.Penalty.Active {
		t.Fatalf("penalty should clear even when piles run dry")
	}
	if served.CurrentPlayerIndex != 0 {
		t.Fatalf("turn index = %d, want 0", served.CurrentPlayerIndex)
	}
}

func TestJackSkipChain(t *testing.T) {
	e := testEngine()
	s := playingState(NewCard(SuitSpades, RankNine),
		[]Card{NewCard(SuitSpades, RankJack), NewCard(SuitHearts, RankJack), NewCard(SuitClubs, RankFour)},
		[]Card{NewCard(SuitClubs, RankSix)},
		[]Card{NewCard(SuitDiamonds, RankEight)},
	)

	// One jack skips the next seat.
	next, err := e.PlayCard(s, "p1", "spades-J", "")
	if err != nil {
		t.Fatalf("play jack: %v", err)
	}
	if next.CurrentPlayerIndex != 2 {
		t.Fatalf("turn index = %d, want 2 (p2 skipped)", next.CurrentPlayerIndex)
	}
	if next.SkipsRemaining != 0 {
		t.Fatalf("skips remaining = %d, want 0 after consumption", next.SkipsRemaining)
	}

	// Two jacks in one batch skip two seats.
	next2, err := e.PlayCards(s, "p1", []string{"spades-J", "hearts-J"}, "")
	if err != nil {
		t.Fatalf("play jack pair: %v", err)
	}
	if next2.CurrentPlayerIndex != 0 {
		t.Fatalf("turn index = %d, want 0 (p2 and p3 both skipped)", next2.CurrentPlayerIndex)
	}
}

func TestDrawCardAdvancesTurn(t *testing.T) {
	e := testEngine()
	s := playingState(NewCard(SuitSpades, RankNine),
		[]Card{NewCard(SuitClubs, RankFour)},
		[]Card{NewCard(SuitClubs, RankSix)},
	)
	s.DrawPile = []Card{NewCard(SuitHearts, RankKing)}

	next, err := e.DrawCard(s, "p1")
	if err != nil {
		t.Fatalf("DrawCard: %v", err)
	}
	if len(next.Players[0].Hand) != 2 {
		t.Fatalf("hand = %d, want 2", len(next.Players[0].Hand))
	}
	if next.CurrentPlayerIndex != 1 {
		t.Fatalf("turn index = %d, want 1", next.CurrentPlayerIndex)
	}
}

func TestWinDetection(t *testing.T) {
	e := testEngine()
	s := playingState(NewCard(SuitSpades, RankNine),
		[]Card{NewCard(SuitSpades, RankKing)},
		[]Card{NewCard(SuitClubs, RankSix)},
	)

	next, err := e.PlayCard(s, "p1", "spades-K", "")
	if err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if next.Phase != PhaseFinished {
		t.Fatalf("phase = %s, want finished", next.Phase)
	}
	if next.Winner == nil || next.Winner.ID != "p1" {
		t.Fatalf("winner = %+v, want p1", next.Winner)
	}
	if next.FinishedAt == nil {
		t.Fatalf("FinishedAt not set")
	}

	// No actions are accepted after the game ends.
	if _, err := e.DrawCard(next, "p2"); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("err = %v, want ErrNotPlaying", err)
	}
}

func TestWinWithTrickCard(t *testing.T) {
	e := testEngine()
	s := playingState(NewCard(SuitSpades, RankNine),
		[]Card{NewCard(SuitSpades, RankJack)},
		[]Card{NewCard(SuitClubs, RankSix)},
	)

	next, err := e.PlayCard(s, "p1", "spades-J", "")
	if err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if next.Phase != PhaseFinished || next.Winner == nil || next.Winner.ID != "p1" {
		t.Fatalf("finishing on a jack must still end the game, got phase %s", next.Phase)
	}
}

func TestServePenaltyNoop(t *testing.T) {
	e := testEngine()
	s := playingState(NewCard(SuitSpades, RankNine),
		[]Card{NewCard(SuitClubs, RankFour)},
		[]Card{NewCard(SuitClubs, RankSix)},
	)

	next, err := e.ServePenalty(s, "p1")
	if err != nil {
		t.Fatalf("ServePenalty: %v", err)
	}
	if len(next.Players[0].Hand) != 1 || next.CurrentPlayerIndex != 0 {
		t.Fatalf("no-op serve changed the state")
	}
}

func TestCardConservationAcrossActions(t *testing.T) {
	e := testEngine()
	s := NewGameState("g", []Player{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}})
	state, err := e.StartGame(s)
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	for i := 0; i < 40 && state.Phase == PhasePlaying; i++ {
		cur := state.CurrentPlayer()
		var next *GameState
		if playable := PlayableCards(state, cur.ID); len(playable) > 0 && !state.Penalty.Active {
			next, err = e.PlayCard(state, cur.ID, playable[0].ID, "")
		} else {
			next, err = e.DrawCard(state, cur.ID)
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if next.TotalCards() != DeckSize {
			t.Fatalf("step %d: total cards = %d, want %d", i, next.TotalCards(), DeckSize)
		}
		state = next
	}
}
