package streaming

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSub struct {
	desc    Descriptor
	handler UpdateHandler
}

// fakeConn is a scriptable push connection. Its connect function decides
// the session outcome; the default blocks until cancellation or Disconnect.
type fakeConn struct {
	connectFn func(ctx context.Context, c *fakeConn) error

	mu         sync.Mutex
	subs       []fakeSub
	disconnect chan struct{}
	discOnce   sync.Once
}

func newFakeConn(connectFn func(ctx context.Context, c *fakeConn) error) *fakeConn {
	return &fakeConn{connectFn: connectFn, disconnect: make(chan struct{})}
}

func (c *fakeConn) Subscribe(desc Descriptor, handler UpdateHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fakeSub{desc: desc, handler: handler})
	return nil
}

func (c *fakeConn) Connect(ctx context.Context) error {
	if c.connectFn != nil {
		return c.connectFn(ctx, c)
	}
	select {
	case <-ctx.Done():
	case <-c.disconnect:
	}
	return nil
}

func (c *fakeConn) Disconnect() {
	c.discOnce.Do(func() { close(c.disconnect) })
}

func (c *fakeConn) subscriptions() []fakeSub {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]fakeSub(nil), c.subs...)
}

// emit delivers a raw update to every subscription watching the item.
func (c *fakeConn) emit(item string, fields, changed map[string]string, snapshot bool) {
	for _, sub := range c.subscriptions() {
		for pos, candidate := range sub.desc.Items {
			if candidate == item {
				sub.handler(item, pos+1, fields, changed, snapshot)
			}
		}
	}
}

// fakeDialer hands out fakeConns and remembers them in creation order.
type fakeDialer struct {
	connectFn func(ctx context.Context, c *fakeConn) error

	mu     sync.Mutex
	conns  []*fakeConn
	params []ConnParams
}

func (d *fakeDialer) NewConn(params ConnParams) Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	conn := newFakeConn(d.connectFn)
	d.conns = append(d.conns, conn)
	d.params = append(d.params, params)
	return conn
}

func (d *fakeDialer) connections() []*fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*fakeConn(nil), d.conns...)
}
