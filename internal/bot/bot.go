package bot

import (
	"fmt"
	"strings"

	"switchgame/internal/domain"
)

// BotUserIDPrefix marks seat occupants that are server-driven.
const BotUserIDPrefix = "bot-"

// Identity is the presence a bot occupies a seat with.
type Identity struct {
	UserID      string
	DisplayName string
}

// SeatIdentity returns the identity used for the bot filling the given seat.
func SeatIdentity(seat int) Identity {
	return Identity{
		UserID:      fmt.Sprintf("%s%d", BotUserIDPrefix, seat),
		DisplayName: fmt.Sprintf("AI Player %d", seat+1),
	}
}

// IsBot reports whether a user ID belongs to a server-driven seat.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, BotUserIDPrefix)
}

// Move is a bot's chosen action for its turn. Draw is set when the bot has
// no legal card.
type Move struct {
	Draw       bool
	CardIDs    []string
	ChosenSuit domain.Suit
}

// Agent is an autonomous seat filler. It plays the first legal card in hand
// order and draws otherwise; it never stacks multi-card plays.
type Agent struct {
	ID string
}

// NewAgent constructs an agent for the given bot user ID.
func NewAgent(id string) *Agent {
	return &Agent{ID: id}
}

// Play calculates the agent's move for the current state. The agent must
// hold the turn; the caller is responsible for scheduling.
func (a *Agent) Play(state *domain.GameState) Move {
	playable := domain.PlayableCards(state, a.ID)
	if len(playable) == 0 {
		return Move{Draw: true}
	}

	card := playable[0]
	move := Move{CardIDs: []string{card.ID}}
	if card.Rank == domain.RankAce {
		move.ChosenSuit = a.preferredSuit(state, card)
	}
	return move
}

// preferredSuit declares the suit the agent holds the most of, so its own
// follow-up plays stay legal.
func (a *Agent) preferredSuit(state *domain.GameState, played domain.Card) domain.Suit {
	idx := state.PlayerIndex(a.ID)
	if idx < 0 {
		return played.Suit
	}
	counts := map[domain.Suit]int{}
	for _, c := range state.Players[idx].Hand {
		if c.ID == played.ID {
			continue
		}
		counts[c.Suit]++
	}
	best := played.Suit
	for _, s := range domain.Suits() {
		if counts[s] > counts[best] {
			best = s
		}
	}
	return best
}
