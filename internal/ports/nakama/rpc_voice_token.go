package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"switchgame/internal/app"
)

// VoiceTokenRequest asks for a signed voice token. Action is "login" or
// "join"; Channel is required for joins and is usually the match ID.
type VoiceTokenRequest struct {
	Action  string `json:"action"`
	Channel string `json:"channel,omitempty"`
}

// VoiceTokenResponse carries the signed token back to the client.
type VoiceTokenResponse struct {
	Token string `json:"token"`
}

func rpcVoiceToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", runtime.NewError("authentication required", 16) // UNAUTHENTICATED
	}

	var req VoiceTokenRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid request payload", 3) // INVALID_ARGUMENT
		}
	}
	if req.Action == "" {
		req.Action = app.VoiceTokenActionLogin
	}

	cfg := runtimeConfig(ctx, logger)
	svc := app.NewVoiceService(cfg.VoiceSecret, cfg.VoiceIssuer, cfg.VoiceDomain)
	token, err := svc.GenerateToken(userID, req.Action, req.Channel)
	if err != nil {
		logger.Warn("rpcVoiceToken: token generation failed for %s: %v", userID, err)
		return "", runtime.NewError("voice token unavailable", 13) // INTERNAL
	}

	b, _ := json.Marshal(VoiceTokenResponse{Token: token})
	return string(b), nil
}
