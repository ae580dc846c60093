package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/disgoorg/disgo/discord"
)

// SendNotification posts an operational message to the configured Discord
// webhook. Failures are logged and swallowed; notifications never block or
// fail the caller.
func (s *Server) SendNotification(ctx context.Context, message string) {
	if !s.Cfg.Notifications.Enabled || s.Cfg.Notifications.WebhookURL == "" {
		return
	}

	body, err := json.Marshal(discord.WebhookMessageCreate{
		Content: message,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal notification", slog.Any("err", err))
		return
	}

	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Cfg.Notifications.WebhookURL, bytes.NewReader(body))
	if err != nil {
		slog.ErrorContext(ctx, "failed to create notification request", slog.Any("err", err))
		return
	}
	rq.Header.Set("Content-Type", "application/json")

	rs, err := s.HttpClient.Do(rq)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send notification", slog.Any("err", err))
		return
	}
	defer func() {
		_ = rs.Body.Close()
	}()

	if rs.StatusCode >= http.StatusBadRequest {
		slog.ErrorContext(ctx, "notification webhook returned error", slog.Int("status", rs.StatusCode))
	}
}
