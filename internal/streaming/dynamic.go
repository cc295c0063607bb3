package streaming

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/OpenLLT/ig-client/internal/domain/streamdata"
)

// reconnectGrace is the pause between tearing down a session and rebuilding
// it after a membership change, letting the server release the old session.
const reconnectGrace = 500 * time.Millisecond

// ErrReceiverTaken is returned by Receiver after the channel has been
// handed out.
var ErrReceiverTaken = errors.New("receiver already taken")

// ClientFactory builds a fresh stream client for one session generation.
// Sessions are single-use, so every reconnect needs a new client.
type ClientFactory func() *StreamClient

// DynamicMarketStream maintains a market data session over a mutable set of
// instruments. Changing the set while running tears the session down and
// rebuilds it from the membership read at reconnect time; the receive
// channel stays stable across generations.
type DynamicMarketStream struct {
	newClient ClientFactory
	logger    *slog.Logger
	out       *stream[streamdata.MarketUpdate]

	// restartMu serializes teardown/rebuild cycles.
	restartMu sync.Mutex

	mu          sync.RWMutex
	epics       map[string]struct{}
	running     bool
	taken       bool
	baseCtx     context.Context
	cancel      context.CancelFunc
	sessionDone chan struct{}
}

// NewDynamicMarketStream creates a dynamic stream over the given factory.
func NewDynamicMarketStream(factory ClientFactory, logger *slog.Logger) *DynamicMarketStream {
	return &DynamicMarketStream{
		newClient: factory,
		logger:    logger,
		out:       newStream[streamdata.MarketUpdate](),
		epics:     make(map[string]struct{}),
	}
}

// Receiver hands out the update channel. It can be taken exactly once.
func (d *DynamicMarketStream) Receiver() (<-chan streamdata.MarketUpdate, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.taken {
		return nil, ErrReceiverTaken
	}
	d.taken = true
	return d.out.channel(), nil
}

// Contains reports whether the epic is in the set.
func (d *DynamicMarketStream) Contains(epic string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.epics[epic]
	return ok
}

// Epics returns the current membership, sorted.
func (d *DynamicMarketStream) Epics() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	epics := make([]string, 0, len(d.epics))
	for epic := range d.epics {
		epics = append(epics, epic)
	}
	sort.Strings(epics)
	return epics
}

// Add puts an epic into the set. Adding a member that is already present is
// a no-op; otherwise a running stream reconnects with the new membership.
// Add blocks for the duration of that reconnect.
func (d *DynamicMarketStream) Add(epic string) {
	d.mu.Lock()
	if _, ok := d.epics[epic]; ok {
		d.mu.Unlock()
		return
	}
	d.epics[epic] = struct{}{}
	running := d.running
	d.mu.Unlock()

	d.logger.Info("Instrument added", "epic", epic)
	if running {
		d.restart()
	}
}

// Remove takes an epic out of the set. Removing an absent member is a
// no-op; otherwise a running stream reconnects with the new membership.
func (d *DynamicMarketStream) Remove(epic string) {
	d.mu.Lock()
	if _, ok := d.epics[epic]; !ok {
		d.mu.Unlock()
		return
	}
	delete(d.epics, epic)
	running := d.running
	d.mu.Unlock()

	d.logger.Info("Instrument removed", "epic", epic)
	if running {
		d.restart()
	}
}

// Start launches the stream. Sessions live under ctx; cancelling it ends
// the current session without closing the receive channel, Stop does both.
func (d *DynamicMarketStream) Start(ctx context.Context) error {
	// Hold the restart lock so a membership change racing with Start waits
	// for the first generation's handles to exist.
	d.restartMu.Lock()
	defer d.restartMu.Unlock()

	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrAlreadyStarted
	}
	d.running = true
	d.baseCtx = ctx
	d.mu.Unlock()

	d.launch()
	return nil
}

// Stop ends the current session and closes the receive channel. Safe to
// call more than once.
func (d *DynamicMarketStream) Stop() {
	d.restartMu.Lock()
	defer d.restartMu.Unlock()

	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	cancel, done := d.cancel, d.sessionDone
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	d.out.close()
}

func (d *DynamicMarketStream) restart() {
	d.restartMu.Lock()
	defer d.restartMu.Unlock()

	d.mu.Lock()
	cancel, done := d.cancel, d.sessionDone
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	time.Sleep(reconnectGrace)

	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	if running {
		d.launch()
	}
}

// launch starts one session generation from the membership at call time.
func (d *DynamicMarketStream) launch() {
	d.mu.Lock()
	epics := make([]string, 0, len(d.epics))
	for epic := range d.epics {
		epics = append(epics, epic)
	}
	sort.Strings(epics)
	ctx, cancel := context.WithCancel(d.baseCtx)
	d.cancel = cancel
	done := make(chan struct{})
	d.sessionDone = done
	d.mu.Unlock()

	go d.runSession(ctx, epics, done)
}

func (d *DynamicMarketStream) runSession(ctx context.Context, epics []string, done chan struct{}) {
	defer close(done)

	if len(epics) == 0 {
		d.logger.Info("Instrument set empty, session idle")
		return
	}

	client := d.newClient()
	updates, err := client.SubscribeMarkets(epics)
	if err != nil {
		d.logger.Error("Failed to build market subscription", "error", err)
		return
	}

	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for u := range updates {
			d.out.push(u)
		}
	}()

	d.logger.Info("Streaming session starting", "epics", epics)
	if err := client.Connect(ctx); err != nil {
		d.logger.Error("Streaming session failed", "error", err)
	}
	<-forwarded
}
