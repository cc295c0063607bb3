package streaming

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/OpenLLT/ig-client/internal/lightstreamer"
)

// adapterSet is the adapter set of the IG push servers.
const adapterSet = "DEFAULT"

// LightstreamerDialer builds connections backed by the embedded push
// protocol client.
type LightstreamerDialer struct {
	logger *slog.Logger
}

func NewLightstreamerDialer(logger *slog.Logger) *LightstreamerDialer {
	return &LightstreamerDialer{logger: logger}
}

func (d *LightstreamerDialer) NewConn(params ConnParams) Conn {
	return &lsConn{params: params, logger: d.logger}
}

// lsConn adapts the protocol client to the driver boundary. Sessions are
// single-use upstream, so every Connect call builds a fresh client from the
// registered subscriptions.
type lsConn struct {
	params ConnParams
	logger *slog.Logger

	mu           sync.Mutex
	subs         []pendingSub
	current      *lightstreamer.Client
	disconnected bool
}

func (c *lsConn) Subscribe(desc Descriptor, handler UpdateHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, pendingSub{desc: desc, handler: handler})
	return nil
}

func (c *lsConn) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.disconnected {
		c.mu.Unlock()
		return nil
	}
	subs := append([]pendingSub(nil), c.subs...)
	client := lightstreamer.NewClient(
		c.params.Endpoint, adapterSet, c.params.AccountID, c.params.Password, c.logger)
	c.current = client
	c.mu.Unlock()

	for _, pending := range subs {
		sub := lightstreamer.NewSubscription(
			lightstreamer.Mode(pending.desc.Mode), pending.desc.Items, pending.desc.Fields)
		if pending.desc.DataAdapter != "" {
			sub.SetDataAdapter(pending.desc.DataAdapter)
		}
		sub.SetRequestedSnapshot(pending.desc.Snapshot)
		sub.AddListener(&subscriptionAdapter{
			id:      pending.desc.ID,
			handler: pending.handler,
			logger:  c.logger,
		})
		if err := client.Subscribe(sub); err != nil {
			return err
		}
	}

	err := client.Connect(ctx)
	if errors.Is(err, lightstreamer.ErrNoActiveSubscriptions) {
		return ErrNoActiveSubscriptions
	}
	return err
}

func (c *lsConn) Disconnect() {
	c.mu.Lock()
	c.disconnected = true
	current := c.current
	c.mu.Unlock()
	if current != nil {
		current.Disconnect()
	}
}

// subscriptionAdapter bridges listener callbacks onto an UpdateHandler.
type subscriptionAdapter struct {
	id      string
	handler UpdateHandler
	logger  *slog.Logger
}

func (a *subscriptionAdapter) OnSubscription() {
	a.logger.Info("Subscription active", "subscription_id", a.id)
}

func (a *subscriptionAdapter) OnItemUpdate(u lightstreamer.ItemUpdate) {
	a.handler(u.ItemName, u.ItemPos, u.Fields, u.ChangedFields, u.Snapshot)
}

func (a *subscriptionAdapter) OnSubscriptionError(code int, message string) {
	a.logger.Error("Subscription refused",
		"subscription_id", a.id, "code", code, "message", message)
}
