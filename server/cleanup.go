package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

func (s *Server) cleanup() {
	for {
		s.doCleanupSessions()
		s.doCleanupInvites()
		time.Sleep(1 * time.Hour)
	}
}

func (s *Server) doCleanupSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.DB.DeleteExpiredSessions(ctx); err != nil {
		slog.Error("failed to cleanup expired sessions", slog.Any("err", err))
	}
}

func (s *Server) doCleanupInvites() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := s.DB.DeleteExpiredInvites(ctx)
	if err != nil {
		slog.Error("failed to cleanup expired invites", slog.Any("err", err))
		return
	}

	if rows > 0 {
		s.SendNotification(ctx, fmt.Sprintf("Cleaned up `%d` expired invites", rows))
	}
}
