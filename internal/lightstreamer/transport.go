package lightstreamer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 45 * time.Second
	writeTimeout     = 10 * time.Second
)

// transport is the websocket carrying one streaming session. Reads happen on
// a single goroutine; writes are serialized by the mutex.
type transport struct {
	conn   *websocket.Conn
	logger *slog.Logger
	mu     sync.Mutex
	closed bool
}

// streamURL turns the server endpoint into the websocket URL of the push
// channel.
func streamURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("invalid endpoint %q: unsupported scheme %s", endpoint, u.Scheme)
	}
	if !strings.HasSuffix(u.Path, "/lightstreamer") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/lightstreamer"
	}
	return u.String(), nil
}

func dialTransport(ctx context.Context, endpoint string, logger *slog.Logger) (*transport, error) {
	wsURL, err := streamURL(endpoint)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		Subprotocols:     []string{wsSubprotocol},
	}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}

	logger.Info("WebSocket connection established", "url", wsURL)
	return &transport{conn: conn, logger: logger}, nil
}

// sendRequest writes one protocol request as a text message.
func (t *transport) sendRequest(req string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	if err := t.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	return t.conn.WriteMessage(websocket.TextMessage, []byte(req))
}

// readLines blocks for the next server message and returns its non-empty
// lines.
func (t *transport) readLines() ([]string, error) {
	_, message, err := t.conn.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			t.logger.Error("WebSocket read error", "error", err)
		}
		return nil, err
	}

	raw := strings.Split(string(message), "\r\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimRight(line, "\n"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (t *transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *transport) close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if err := t.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(5*time.Second),
	); err != nil {
		t.logger.Debug("Failed to write close message", "error", err)
	}

	return t.conn.Close()
}
