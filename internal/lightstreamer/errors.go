package lightstreamer

import (
	"errors"
	"fmt"
)

// ErrNoActiveSubscriptions is returned by Connect when the client holds no
// subscriptions. Opening a push connection with nothing to deliver is treated
// as a clean no-op by callers.
var ErrNoActiveSubscriptions = errors.New("no active subscriptions")

// ErrAlreadyConnected is returned by Subscribe and Connect once a session has
// been started on this client.
var ErrAlreadyConnected = errors.New("client already connected")

// ErrClosed is returned when writing on a connection that has been closed.
var ErrClosed = errors.New("connection closed")

// ServerError is a refusal or termination sent by the streaming server
// (CONERR, END or REQERR frames).
type ServerError struct {
	Frame   string
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server %s %d: %s", e.Frame, e.Code, e.Message)
}

// ProtocolError reports a frame the client could not parse.
type ProtocolError struct {
	Line   string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed frame %q: %s", e.Line, e.Reason)
}
