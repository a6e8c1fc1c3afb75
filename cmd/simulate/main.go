// Command simulate runs bot-vs-bot Switch games for rules soak testing and
// balance inspection. Finished games can be recorded to the same SQLite
// history schema the server writes.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"switchgame/internal/app"
	"switchgame/internal/bot"
	"switchgame/internal/domain"
	"switchgame/internal/history"
	"switchgame/internal/ports"
)

// maxTurnsPerGame aborts games stuck in penalty/skip loops.
const maxTurnsPerGame = 2000

func main() {
	games := flag.Int("games", 100, "number of games to simulate")
	players := flag.Int("players", 4, "players per game (2-4)")
	seed := flag.Int64("seed", 0, "rng seed; 0 uses a random seed")
	dbPath := flag.String("db", "", "optional sqlite path to record finished games")
	verbose := flag.Bool("v", false, "log every action")
	flag.Parse()

	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *players < domain.MinPlayers || *players > 4 {
		log.Fatalf("players must be between %d and 4, got %d", domain.MinPlayers, *players)
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewSource(*seed))
		log.WithField("seed", *seed).Info("using fixed seed")
	}

	var store ports.HistoryPort
	if *dbPath != "" {
		s, err := history.Open(*dbPath)
		if err != nil {
			log.WithError(err).Fatal("failed to open history store")
		}
		defer s.Close()
		store = s
	}

	svc := app.NewService(rng)
	wins := make(map[string]int)
	aborted := 0

	for i := 0; i < *games; i++ {
		winner, turns, err := runGame(svc, store, *players, log)
		if err != nil {
			log.WithError(err).WithField("game", i).Error("game failed")
			os.Exit(1)
		}
		if winner == "" {
			aborted++
			continue
		}
		wins[winner]++
		log.WithFields(logrus.Fields{
			"game":   i,
			"winner": winner,
			"turns":  turns,
		}).Debug("game finished")
	}

	log.WithFields(logrus.Fields{
		"games":   *games,
		"aborted": aborted,
	}).Info("simulation complete")
	for seat := 0; seat < *players; seat++ {
		id := bot.SeatIdentity(seat).UserID
		fmt.Printf("%s: %d wins\n", id, wins[id])
	}
}

func runGame(svc *app.Service, store ports.HistoryPort, players int, log *logrus.Logger) (string, int, error) {
	specs := make([]app.PlayerSpec, players)
	agents := make(map[string]*bot.Agent, players)
	for i := 0; i < players; i++ {
		identity := bot.SeatIdentity(i)
		specs[i] = app.PlayerSpec{UserID: identity.UserID, Name: identity.DisplayName, Host: i == 0}
		agents[identity.UserID] = bot.NewAgent(identity.UserID)
	}

	state := svc.CreateGame(specs)
	state, _, err := svc.StartGame(state)
	if err != nil {
		return "", 0, fmt.Errorf("start game: %w", err)
	}

	turns := 0
	for state.Phase == domain.PhasePlaying && turns < maxTurnsPerGame {
		current := state.CurrentPlayer()
		move := agents[current.ID].Play(state)

		action := domain.GameAction{Type: domain.ActionDrawCard, PlayerID: current.ID}
		if !move.Draw {
			action.Type = domain.ActionPlayCards
			action.CardIDs = move.CardIDs
			action.ChosenSuit = move.ChosenSuit
		}

		next, _, err := svc.HandleAction(state, action)
		if err != nil {
			return "", turns, fmt.Errorf("turn %d (%s %s): %w", turns, current.ID, action.Type, err)
		}
		if next.TotalCards() != domain.DeckSize {
			return "", turns, fmt.Errorf("turn %d: card conservation broken, total %d", turns, next.TotalCards())
		}
		state = next
		turns++

		log.WithFields(logrus.Fields{
			"turn":   turns,
			"player": current.ID,
			"action": string(action.Type),
		}).Debug("applied action")
	}

	if state.Phase != domain.PhaseFinished || state.Winner == nil {
		log.WithField("turns", turns).Warn("game aborted without a winner")
		return "", turns, nil
	}

	if store != nil {
		rec := ports.GameRecord{
			GameID:       state.ID,
			WinnerUserID: state.Winner.ID,
			Turns:        turns,
			BaseBet:      app.DefaultBaseBet,
		}
		for _, p := range state.Players {
			rec.PlayerIDs = append(rec.PlayerIDs, p.ID)
		}
		if state.StartedAt != nil {
			rec.StartedAt = *state.StartedAt
		}
		if state.FinishedAt != nil {
			rec.FinishedAt = *state.FinishedAt
		}
		if err := store.RecordGame(context.Background(), rec); err != nil {
			return "", turns, fmt.Errorf("record game: %w", err)
		}
	}

	return state.Winner.ID, turns, nil
}
