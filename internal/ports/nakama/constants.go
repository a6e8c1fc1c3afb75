package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a joinable match.
	RpcQuickMatch = "quick_match"

	// RpcVoiceToken is the Nakama RPC id clients call to obtain a voice channel token.
	RpcVoiceToken = "voice_token"

	// MatchNameSwitch is the authoritative match handler name registered with Nakama.
	MatchNameSwitch = "switch_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame int64 = 1
	OpPlayCard  int64 = 2
	OpPlayCards int64 = 3
	OpDrawCard  int64 = 4

	// Server -> Client events
	OpMatchSnapshot int64 = 100
	OpPlayerJoined  int64 = 101
	OpPlayerLeft    int64 = 102
	OpGameStarted   int64 = 103
	OpHandDealt     int64 = 104 // sent privately
	OpCardPlayed    int64 = 105
	OpCardDrawn     int64 = 106
	OpPenaltyServed int64 = 107
	OpGameEnded     int64 = 108

	OpGameError int64 = 120
)
