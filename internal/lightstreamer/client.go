package lightstreamer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Client is a push-protocol client for one streaming session. Register every
// subscription, then call Connect, which blocks delivering updates until the
// context is cancelled, Disconnect is called or the session dies.
type Client struct {
	endpoint   string
	adapterSet string
	user       string
	password   string
	logger     *slog.Logger

	mu        sync.Mutex
	subs      []*Subscription
	started   bool
	stopped   bool
	tr        *transport
	sessionID string
}

// NewClient creates a client for the given server endpoint and adapter set.
// user and password are the streaming credentials of the session.
func NewClient(endpoint, adapterSet, user, password string, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		adapterSet: adapterSet,
		user:       user,
		password:   password,
		logger:     logger,
	}
}

// Subscribe registers a subscription. It must be called before Connect.
func (c *Client) Subscribe(sub *Subscription) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return ErrAlreadyConnected
	}
	c.subs = append(c.subs, sub)
	return nil
}

// Connect opens the session, activates every registered subscription and
// blocks delivering updates. It returns nil when the context is cancelled or
// Disconnect is called, ErrNoActiveSubscriptions when nothing was registered,
// and the underlying failure otherwise.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	if len(c.subs) == 0 {
		c.mu.Unlock()
		return ErrNoActiveSubscriptions
	}
	c.started = true
	subs := append([]*Subscription(nil), c.subs...)
	c.mu.Unlock()

	tr, err := dialTransport(ctx, c.endpoint, c.logger)
	if err != nil {
		return err
	}
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		_ = tr.close()
		return nil
	}
	c.tr = tr
	c.mu.Unlock()
	defer tr.close()

	// Unblock the read loop when the caller gives up.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = tr.close()
		case <-watchDone:
		}
	}()

	if err := tr.sendRequest(encodeCreateSession(c.adapterSet, c.user, c.password)); err != nil {
		return fmt.Errorf("session request failed: %w", err)
	}

	err = c.readSession(tr, subs)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// readSession runs the session loop until the transport closes or the server
// terminates the session.
func (c *Client) readSession(tr *transport, subs []*Subscription) error {
	// Wire positions are 1-based; reqID doubles as subID on activation.
	bySubID := make(map[int]*Subscription, len(subs))
	byReqID := make(map[int]*Subscription, len(subs))

	for {
		lines, err := tr.readLines()
		if err != nil {
			if tr.isClosed() {
				return nil
			}
			return fmt.Errorf("session read failed: %w", err)
		}

		for _, line := range lines {
			frame, err := parseFrame(line)
			if err != nil {
				c.logger.Warn("Dropping unparseable frame", "error", err)
				continue
			}

			switch frame.kind {
			case "CONOK":
				c.mu.Lock()
				c.sessionID = frame.sessionID
				c.mu.Unlock()
				c.logger.Info("Streaming session established", "session_id", frame.sessionID)

				for i, sub := range subs {
					id := i + 1
					bySubID[id] = sub
					byReqID[id] = sub
					if err := tr.sendRequest(encodeSubscribe(id, id, sub)); err != nil {
						return fmt.Errorf("subscribe request failed: %w", err)
					}
				}

			case "CONERR":
				return &ServerError{Frame: "CONERR", Code: frame.code, Message: frame.message}

			case "END":
				return &ServerError{Frame: "END", Code: frame.code, Message: frame.message}

			case "REQERR":
				if sub, ok := byReqID[frame.reqID]; ok {
					sub.notifyError(frame.code, frame.message)
				}
				return &ServerError{Frame: "REQERR", Code: frame.code, Message: frame.message}

			case "SUBOK":
				if sub, ok := bySubID[frame.subID]; ok {
					sub.notifySubscribed()
				}

			case "U":
				sub, ok := bySubID[frame.subID]
				if !ok {
					c.logger.Warn("Update for unknown subscription", "sub_id", frame.subID)
					continue
				}
				patches, err := decodeUpdateData(frame.data, len(sub.Fields()))
				if err != nil {
					c.logger.Warn("Dropping malformed update", "sub_id", frame.subID, "error", err)
					continue
				}
				if err := sub.applyPatches(frame.itemPos, patches); err != nil {
					c.logger.Warn("Dropping update", "sub_id", frame.subID, "error", err)
				}
			}
		}
	}
}

// Disconnect closes the session, causing a blocked Connect to return nil.
// It is safe to call at any time, including before Connect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.stopped = true
	tr := c.tr
	c.mu.Unlock()
	if tr != nil {
		_ = tr.close()
	}
}
