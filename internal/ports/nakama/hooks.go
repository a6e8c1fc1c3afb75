package nakama

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"switchgame/internal/config"
	"switchgame/internal/ports"
)

// AfterAuthenticateDevice is triggered after an account is authenticated.
// New accounts get the configured welcome bonus so they can sit at a table
// immediately.
func AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	if !out.Created {
		return nil
	}

	userID := ""
	if ctxUserID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); ok {
		userID = ctxUserID
	}
	if userID == "" {
		// Resolve User ID from the session token by parsing the JWT payload manually.
		resolvedID, err := extractUserIDFromToken(out.Token)
		if err != nil {
			logger.Error("AfterAuthenticateDevice: Failed to extract user ID from token: %v", err)
			return err
		}
		userID = resolvedID
	}

	cfg := runtimeConfig(ctx, logger)
	if cfg.WelcomeBonus <= 0 {
		return nil
	}

	logger.Info("Granting welcome bonus of %d chips to new user %s", cfg.WelcomeBonus, userID)

	economy := NewNakamaEconomyAdapter(nk)
	err := economy.UpdateBalances(ctx, []ports.WalletUpdate{{
		UserID: userID,
		Amount: cfg.WelcomeBonus,
		Metadata: map[string]interface{}{
			"reason": "welcome_bonus",
		},
	}})
	if err != nil {
		logger.Error("AfterAuthenticateDevice: Failed to grant welcome bonus to %s: %v", userID, err)
		return err
	}
	return nil
}

// runtimeConfig parses the server config from the Nakama runtime env map,
// falling back to defaults when parsing fails.
func runtimeConfig(ctx context.Context, logger runtime.Logger) config.Config {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := config.FromEnv(env)
	if err != nil {
		logger.Warn("Invalid runtime env config, using defaults: %v", err)
		cfg, _ = config.FromEnv(map[string]string{})
	}
	return cfg
}

func extractUserIDFromToken(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid token format")
	}

	payload := parts[1]
	// JWT base64 is RawUrlEncoding (no padding)
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode token payload: %w", err)
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(data, &claims); err != nil {
		return "", fmt.Errorf("failed to unmarshal token claims: %w", err)
	}

	uid, ok := claims["uid"].(string)
	if !ok {
		return "", fmt.Errorf("token claims missing uid")
	}

	return uid, nil
}
