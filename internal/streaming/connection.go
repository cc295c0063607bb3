package streaming

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	maxConnectAttempts = 3
	backoffStep        = 200 * time.Millisecond
	backoffCap         = 5 * time.Second
)

// ConnectionManager runs one push connection with bounded retries. The
// backoff grows by backoffStep times the attempt number, capped at
// backoffCap; the first retry happens immediately.
type ConnectionManager struct {
	name   string
	conn   Conn
	logger *slog.Logger
}

func NewConnectionManager(name string, conn Conn, logger *slog.Logger) *ConnectionManager {
	return &ConnectionManager{name: name, conn: conn, logger: logger}
}

// Run connects and blocks until the session ends. A connection without
// subscriptions is a clean no-op. Cancellation is cooperative: an in-flight
// attempt finishes first, and no further attempt starts afterwards.
func (m *ConnectionManager) Run(ctx context.Context) error {
	var lastErr error
	delay := time.Duration(0)

	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		err := m.conn.Connect(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNoActiveSubscriptions) {
			m.logger.Info("Connection has no subscriptions, nothing to do", "connection", m.name)
			return nil
		}

		lastErr = err
		m.logger.Warn("Connection attempt failed",
			"connection", m.name, "attempt", attempt, "error", err)

		if attempt == maxConnectAttempts {
			break
		}
		if ctx.Err() != nil {
			return nil
		}
		if !sleepCtx(ctx, delay) {
			return nil
		}
		delay = min(delay+backoffStep*time.Duration(attempt), backoffCap)
	}

	return fmt.Errorf("connection %s failed after %d attempts: %w", m.name, maxConnectAttempts, lastErr)
}

// sleepCtx waits for d or until ctx is cancelled; it reports whether the
// full duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
