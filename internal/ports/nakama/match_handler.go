package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"switchgame/internal/app"
	"switchgame/internal/bot"
	"switchgame/internal/config"
	"switchgame/internal/domain"
	"switchgame/internal/history"
	"switchgame/internal/ports"
)

// MaxSeats is the table size; games run with 2 to 4 occupied seats.
const MaxSeats = 4

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats     [MaxSeats]string            `json:"seats"`      // Array of user IDs, empty string means seat is empty
	OwnerSeat int                         `json:"owner_seat"` // Seat index of the match owner
	Tick      int64                       `json:"tick"`       // Current tick of the match for timed logic
	Presences map[string]runtime.Presence `json:"-"`          // Map UserId -> Presence for targeted messaging
	App       *app.Service                `json:"-"`          // Switch app service with game logic
	Game      *domain.GameState           `json:"-"`          // Current game snapshot (nil if in lobby)
	Turns     int                         `json:"turns"`      // Actions applied to the current game

	Cfg                  config.Config         `json:"-"`
	BotMinDelay          int                   `json:"bot_min_delay"`           // Min seconds a bot waits
	BotMaxDelay          int                   `json:"bot_max_delay"`           // Max seconds a bot waits
	BotAutoFillDelay     int                   `json:"bot_auto_fill_delay"`     // Seconds to wait before auto-filling with bots
	BotWaitUntil         int64                 `json:"bot_wait_until"`          // Tick when the bot should act
	LastSinglePlayerTick int64                 `json:"last_single_player_tick"` // Tick when a single player started waiting
	TurnSerial           int                   `json:"turn_serial"`             // Turns value the turn timer was armed for
	TurnDeadlineTick     int64                 `json:"turn_deadline_tick"`      // Tick when the current human turn is forced
	Bots                 map[string]*bot.Agent `json:"-"`                       // Active bot agents

	Economy ports.EconomyPort `json:"-"` // Interface to Nakama wallets
	History ports.HistoryPort `json:"-"` // Optional finished-game sink
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return MaxSeats - ms.GetOpenSeatsCount()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !bot.IsBot(seat) {
			count++
		}
	}
	return count
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat == userID {
			return i
		}
	}
	return -1
}

// phase returns the label phase for the current state.
func (ms *MatchState) phase() string {
	if ms.Game == nil {
		return string(domain.PhaseWaiting)
	}
	return string(ms.Game.Phase)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userID := seats[seatIndex]
	return userID != "" && !bot.IsBot(userID)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userID := range seats {
		if userID != "" && !bot.IsBot(userID) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	cfg := runtimeConfig(ctx, logger)

	state := &MatchState{
		Tick:             time.Now().Unix(),
		Presences:        make(map[string]runtime.Presence),
		App:              app.NewService(nil),
		OwnerSeat:        -1,
		Cfg:              cfg,
		BotMinDelay:      1,
		BotMaxDelay:      3,
		BotAutoFillDelay: 5,
		Bots:             make(map[string]*bot.Agent),
		Economy:          NewNakamaEconomyAdapter(nk),
	}

	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			logger.Error("MatchInit: Failed to open history store at %s: %v", cfg.HistoryDB, err)
		} else {
			state.History = store
		}
	}

	labelBytes, err := json.Marshal(MatchLabel{
		Open:  state.GetOpenSeatsCount(),
		Game:  "switch",
		Phase: state.phase(),
	})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Allow join if there is an empty seat OR a bot to replace before start.
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if matchState.Game == nil {
			for _, seat := range matchState.Seats {
				if bot.IsBot(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		// Assign seat: empty seats first, then bots while still waiting.
		assigned := false
		for i, seatUserID := range matchState.Seats {
			if seatUserID == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}

		if !assigned && matchState.Game == nil {
			for i, seatUserID := range matchState.Seats {
				if bot.IsBot(seatUserID) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserID, p.GetUserId(), i)
					delete(matchState.Bots, seatUserID)
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", p.GetUserId())
			continue
		}

		seat := matchState.seatOf(p.GetUserId())
		mh.broadcastEvent(matchState, dispatcher, logger, app.Event{
			Kind: app.EventPlayerJoined,
			Payload: app.PlayerJoinedPayload{
				UserID: p.GetUserId(),
				Name:   p.GetUsername(),
				Seat:   seat,
				Host:   seat == matchState.OwnerSeat,
			},
		})
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(ctx, matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match. Seats of a
// running game stay bound to their player IDs; the engine keeps playing the
// absent seat's cards via the bot fallback in the loop.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		mh.broadcastEvent(matchState, dispatcher, logger, app.Event{
			Kind:    app.EventPlayerLeft,
			Payload: app.PlayerLeftPayload{UserID: p.GetUserId()},
		})

		for i, seatUserID := range matchState.Seats {
			if seatUserID == p.GetUserId() {
				if matchState.Game == nil {
					matchState.Seats[i] = ""
					logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)
				} else {
					markDisconnected(matchState.Game, p.GetUserId())
					logger.Debug("MatchLeave: User %s disconnected mid-game, seat %d held.", p.GetUserId(), i)
				}
				break
			}
		}
	}

	newOwnerSeat := findFirstHumanSeat(matchState.Seats[:])
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
		if newOwnerSeat >= 0 {
			logger.Debug("MatchLeave: Owner set to human seat %d.", newOwnerSeat)
		}
	}

	if matchState.Game == nil && shouldTerminateNoHumans(matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}
	if matchState.Game != nil && len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no connected players.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCard, OpPlayCards:
			mh.handlePlayCards(ctx, matchState, dispatcher, logger, msg)
		case OpDrawCard:
			mh.handleDrawCard(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.Cfg.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill the lobby with bots when a single human has been waiting.
	if state.Game == nil {
		humanCount := state.GetHumanPlayerCount()
		if humanCount == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat == "" {
						identity := bot.SeatIdentity(i)
						state.Seats[i] = identity.UserID
						state.Bots[identity.UserID] = bot.NewAgent(identity.UserID)
						logger.Info("processBots: Added bot %s to seat %d", identity.UserID, i)
						added = true
					}
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastMatchState(ctx, state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Act for bot seats and disconnected players holding the turn.
	if state.Game.Phase != domain.PhasePlaying {
		return
	}
	current := state.Game.CurrentPlayer()
	if current == nil {
		return
	}
	_, connected := state.Presences[current.ID]
	if !bot.IsBot(current.ID) && connected {
		state.BotWaitUntil = 0
		mh.enforceTurnTimer(ctx, state, dispatcher, logger, current.ID)
		return
	}

	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Seat of %s will act at tick %d (current %d)", current.ID, state.BotWaitUntil, state.Tick)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[current.ID]
	if !exists {
		agent = bot.NewAgent(current.ID)
		state.Bots[current.ID] = agent
	}

	move := agent.Play(state.Game)
	action := domain.GameAction{
		Type:      domain.ActionDrawCard,
		PlayerID:  current.ID,
		Timestamp: time.Now(),
	}
	if !move.Draw {
		action.Type = domain.ActionPlayCards
		action.CardIDs = move.CardIDs
		action.ChosenSuit = move.ChosenSuit
	}
	mh.applyAction(ctx, state, dispatcher, logger, action)
}

// enforceTurnTimer forces a draw for a connected human who has held the
// turn longer than the configured duration. The engine has no notion of
// time; how long to wait for an actor is decided here.
func (mh *matchHandler) enforceTurnTimer(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, playerID string) {
	if state.Cfg.TurnDurationSeconds <= 0 {
		return
	}
	if state.TurnDeadlineTick == 0 || state.TurnSerial != state.Turns {
		state.TurnSerial = state.Turns
		state.TurnDeadlineTick = state.Tick + int64(state.Cfg.TurnDurationSeconds)
		return
	}
	if state.Tick < state.TurnDeadlineTick {
		return
	}

	logger.Info("Turn timer expired for %s, forcing a draw.", playerID)
	state.TurnDeadlineTick = 0
	mh.applyAction(ctx, state, dispatcher, logger, domain.GameAction{
		Type:      domain.ActionDrawCard,
		PlayerID:  playerID,
		Timestamp: time.Now(),
	})
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if state.Game != nil {
		mh.sendError(state, dispatcher, logger, senderID, 409, domain.ErrAlreadyStarted.Error())
		return
	}
	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}
	if state.GetOccupiedSeatCount() < domain.MinPlayers {
		mh.sendError(state, dispatcher, logger, senderID, 400, domain.ErrNotEnoughPlayers.Error())
		return
	}

	specs := make([]app.PlayerSpec, 0, MaxSeats)
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		spec := app.PlayerSpec{UserID: userID, Name: userID, Host: i == state.OwnerSeat}
		if p, exists := state.Presences[userID]; exists {
			spec.Name = p.GetUsername()
		} else if bot.IsBot(userID) {
			spec.Name = bot.SeatIdentity(i).DisplayName
		}
		specs = append(specs, spec)
	}

	game := state.App.CreateGame(specs)
	started, events, err := state.App.StartGame(game)
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	state.Game = started
	state.Turns = 0

	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}

	logger.Info("StartGame: Game %s started with %d players.", started.ID, len(started.Players))
}

func (mh *matchHandler) handlePlayCards(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, domain.ErrNotPlaying.Error())
		return
	}

	var request PlayCardsRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handlePlayCards: Invalid payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid play payload")
		return
	}

	mh.applyAction(ctx, state, dispatcher, logger, domain.GameAction{
		Type:       domain.ActionPlayCards,
		PlayerID:   senderID,
		CardIDs:    request.CardIDs,
		ChosenSuit: domain.Suit(request.ChosenSuit),
		Timestamp:  time.Now(),
	})
}

func (mh *matchHandler) handleDrawCard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, domain.ErrNotPlaying.Error())
		return
	}

	mh.applyAction(ctx, state, dispatcher, logger, domain.GameAction{
		Type:      domain.ActionDrawCard,
		PlayerID:  senderID,
		Timestamp: time.Now(),
	})
}

// applyAction routes one action through the app service, broadcasts the
// resulting events and settles the game when it finishes.
func (mh *matchHandler) applyAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, action domain.GameAction) {
	next, events, err := state.App.HandleAction(state.Game, action)
	if err != nil {
		logger.Warn("applyAction: %s action by %s rejected: %v", action.Type, action.PlayerID, err)
		mh.sendError(state, dispatcher, logger, action.PlayerID, 400, err.Error())
		return
	}

	state.Game = next
	state.Turns++

	for _, ev := range events {
		if ev.Kind == app.EventGameEnded {
			mh.finishGame(ctx, state, dispatcher, logger, ev)
			continue
		}
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
}

// finishGame settles wallets, records history, broadcasts the end event and
// returns the match to the lobby.
func (mh *matchHandler) finishGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	game := state.Game
	payload := ev.Payload.(app.GameEndedPayload)

	deltas := state.App.SettleGame(game, state.Cfg.BaseBet)
	if state.Economy != nil && len(deltas) > 0 {
		updates := make([]ports.WalletUpdate, 0, len(deltas))
		for userID, amount := range deltas {
			if bot.IsBot(userID) {
				continue
			}
			updates = append(updates, ports.WalletUpdate{
				UserID: userID,
				Amount: amount,
				Metadata: map[string]interface{}{
					"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
					"reason":   "game_settlement",
				},
			})
		}
		if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
			logger.Error("Failed to update balances: %v", err)
		}
	}

	if state.History != nil {
		rec := ports.GameRecord{
			GameID:       game.ID,
			WinnerUserID: payload.WinnerUserID,
			Turns:        state.Turns,
			BaseBet:      state.Cfg.BaseBet,
		}
		for _, p := range game.Players {
			rec.PlayerIDs = append(rec.PlayerIDs, p.ID)
		}
		if game.StartedAt != nil {
			rec.StartedAt = *game.StartedAt
		}
		if game.FinishedAt != nil {
			rec.FinishedAt = *game.FinishedAt
		}
		if err := state.History.RecordGame(ctx, rec); err != nil {
			logger.Error("Failed to record game history: %v", err)
		}
	}

	mh.sendJSON(state, dispatcher, logger, OpGameEnded, GameEndedEvent{
		WinnerUserID:   payload.WinnerUserID,
		BalanceChanges: deltas,
	}, nil)

	state.Game = nil
	state.Turns = 0
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) broadcastMatchState(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var players []PlayerView
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}

		displayName := userID
		if p, exists := state.Presences[userID]; exists {
			displayName = p.GetUsername()
		} else if bot.IsBot(userID) {
			displayName = bot.SeatIdentity(i).DisplayName
		}

		cardsRemaining := 0
		if state.Game != nil {
			if idx := state.Game.PlayerIndex(userID); idx >= 0 {
				cardsRemaining = len(state.Game.Players[idx].Hand)
			}
		}

		balance := int64(0)
		if state.Economy != nil {
			if b, err := state.Economy.GetBalance(ctx, userID); err == nil {
				balance = b
			}
		}

		players = append(players, PlayerView{
			UserID:         userID,
			Seat:           i,
			DisplayName:    displayName,
			IsOwner:        i == state.OwnerSeat,
			IsBot:          bot.IsBot(userID),
			CardsRemaining: cardsRemaining,
			Balance:        balance,
		})
	}

	snapshot := MatchSnapshot{
		Seats:     state.Seats[:],
		OwnerSeat: state.OwnerSeat,
		Tick:      state.Tick,
		Phase:     state.phase(),
		Players:   players,
	}
	if state.Game != nil {
		if top, ok := domain.TopDiscard(state.Game); ok {
			t := top
			snapshot.TopDiscard = &t
		}
		if p := state.Game.CurrentPlayer(); p != nil && state.Game.Phase == domain.PhasePlaying {
			snapshot.CurrentTurnUserID = p.ID
		}
		snapshot.ChosenSuit = string(state.Game.ChosenSuit)
		snapshot.PenaltyCards = state.Game.Penalty.Cards
		snapshot.DrawPileSize = len(state.Game.DrawPile)
	}

	mh.sendJSON(state, dispatcher, logger, OpMatchSnapshot, snapshot, nil)
}

// broadcastEvent converts an app event to its wire form and dispatches it.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, payload, ok := eventWire(ev)
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	// Determine recipients (default to broadcast).
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, exists := state.Presences[uid]; exists {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected (e.g. they are
		// bots), we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	mh.sendJSON(state, dispatcher, logger, opCode, payload, recipients)
}

// sendError sends a GameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	presence, exists := state.Presences[userID]
	if !exists {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	mh.sendJSON(state, dispatcher, logger, OpGameError, GameErrorEvent{
		Code:    code,
		Message: message,
	}, []runtime.Presence{presence})
}

func (mh *matchHandler) sendJSON(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, payload any, recipients []runtime.Presence) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal payload for opcode %d: %v", opCode, err)
		return
	}
	if err := dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true); err != nil {
		logger.Error("Failed to broadcast opcode %d: %v", opCode, err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(MatchLabel{
		Open:  state.GetOpenSeatsCount(),
		Game:  "switch",
		Phase: state.phase(),
	})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

// markDisconnected flags a mid-game leaver so clients can grey the seat out.
func markDisconnected(game *domain.GameState, userID string) {
	if idx := game.PlayerIndex(userID); idx >= 0 {
		game.Players[idx].IsConnected = false
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	if matchState, ok := state.(*MatchState); ok && matchState.History != nil {
		if err := matchState.History.Close(); err != nil {
			logger.Warn("MatchTerminate: Failed to close history store: %v", err)
		}
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
