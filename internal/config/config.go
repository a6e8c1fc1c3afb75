package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the Switch server. Values come from the
// runtime environment; inside Nakama that is the runtime.env map from the
// server's YAML, not the process environment.
type Config struct {
	// BaseBet is the per-loser stake settled when a game finishes.
	BaseBet int64 `env:"SWITCH_BASE_BET" envDefault:"100"`
	// WelcomeBonus is credited to a wallet on first authentication.
	WelcomeBonus int64 `env:"SWITCH_WELCOME_BONUS" envDefault:"1000"`
	// BotsEnabled allows empty seats to be filled with bots at start.
	BotsEnabled bool `env:"SWITCH_BOTS_ENABLED" envDefault:"true"`
	// TurnDurationSeconds bounds how long a seat may hold the turn before
	// the server acts for it. Zero disables the timer.
	TurnDurationSeconds int `env:"SWITCH_TURN_DURATION_SECONDS" envDefault:"30"`

	// HistoryDB is the SQLite path for finished-game records. Empty
	// disables history recording.
	HistoryDB string `env:"SWITCH_HISTORY_DB"`

	VoiceSecret string `env:"SWITCH_VOICE_SECRET"`
	VoiceIssuer string `env:"SWITCH_VOICE_ISSUER"`
	VoiceDomain string `env:"SWITCH_VOICE_DOMAIN"`
}

// FromEnv parses configuration from an explicit key/value map.
func FromEnv(values map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: values}); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}

// Load parses configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}
