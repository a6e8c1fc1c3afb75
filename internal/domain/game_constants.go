package domain

const (
	// DeckSize is the number of cards in a single-deck game. The sum of the
	// draw pile, discard pile and all hands stays at this value for the
	// lifetime of a game.
	DeckSize = 52

	// MinPlayers is the minimum number of seated players required to start.
	MinPlayers = 2

	// LargeHandSize is dealt to each player in games with fewer than
	// SmallHandThreshold players; SmallHandSize otherwise.
	LargeHandSize      = 7
	SmallHandSize      = 5
	SmallHandThreshold = 4

	// PenaltyPerTwo is the draw obligation added for every 2 played.
	PenaltyPerTwo = 2
)
