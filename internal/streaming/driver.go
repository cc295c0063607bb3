package streaming

import (
	"context"
	"errors"
)

// ErrNoActiveSubscriptions is reported by a Conn whose session holds no
// subscriptions. Connection management treats it as a clean no-op.
var ErrNoActiveSubscriptions = errors.New("no active subscriptions")

// UpdateHandler receives one raw update from a push connection. fields is
// the full known state of the item, changed the subset this update touched.
type UpdateHandler func(item string, itemPos int, fields, changed map[string]string, snapshot bool)

// Conn is one connection to the push server. Register every subscription,
// then Connect, which blocks until the session ends.
type Conn interface {
	Subscribe(desc Descriptor, handler UpdateHandler) error
	Connect(ctx context.Context) error
	Disconnect()
}

// ConnParams are the session parameters handed to a dialer. They come from
// an authenticated gateway session, never from this package.
type ConnParams struct {
	Endpoint  string
	AccountID string
	Password  string
}

// Dialer builds push connections. The production dialer wraps the embedded
// protocol client; tests substitute fakes.
type Dialer interface {
	NewConn(params ConnParams) Conn
}
