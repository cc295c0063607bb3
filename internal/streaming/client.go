package streaming

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/OpenLLT/ig-client/internal/domain/streamdata"
)

// ErrAlreadyStarted is returned when subscribing or connecting after
// Connect has been called.
var ErrAlreadyStarted = errors.New("stream client already started")

// Connection names. Detailed prices ride a dedicated connection; everything
// else shares the main one. No ordering holds across the two.
const (
	mainConnection  = "main"
	priceConnection = "price"
)

type pendingSub struct {
	desc    Descriptor
	handler UpdateHandler
}

// StreamClient manages the streaming sessions of one account. Register the
// domains to receive, then Connect, which blocks until every session ends.
// Each subscribe call returns the receive channel for its domain.
type StreamClient struct {
	dialer       Dialer
	params       ConnParams
	priceAdapter string
	logger       *slog.Logger

	mu        sync.Mutex
	mainSubs  []pendingSub
	priceSubs []pendingSub
	streams   []interface{ close() }
	conns     []Conn
	started   bool
}

// NewStreamClient creates a client over the given dialer and session
// parameters. priceAdapter names the data adapter serving detailed prices.
func NewStreamClient(dialer Dialer, params ConnParams, priceAdapter string, logger *slog.Logger) *StreamClient {
	return &StreamClient{
		dialer:       dialer,
		params:       params,
		priceAdapter: priceAdapter,
		logger:       logger,
	}
}

// SubscribeMarkets registers basic market data for the given epics and
// returns the update channel. Must be called before Connect.
func (c *StreamClient) SubscribeMarkets(epics []string) (<-chan streamdata.MarketUpdate, error) {
	desc, err := BuildMarketSubscription(epics)
	if err != nil {
		return nil, err
	}
	st := newStream[streamdata.MarketUpdate]()
	handler := func(item string, pos int, fields, changed map[string]string, snapshot bool) {
		u, err := streamdata.DecodeMarketUpdate(item, pos, fields, changed, snapshot)
		if err != nil {
			c.logger.Warn("Dropping undecodable market update", "item", item, "error", err)
			return
		}
		st.push(*u)
	}
	if err := c.register(&c.mainSubs, desc, handler, st); err != nil {
		return nil, err
	}
	return st.channel(), nil
}

// SubscribePrices registers the detailed price ladder for the given epics
// and returns the update channel. Must be called before Connect.
func (c *StreamClient) SubscribePrices(epics []string) (<-chan streamdata.PriceUpdate, error) {
	desc, err := BuildPriceSubscription(c.params.AccountID, epics, c.priceAdapter)
	if err != nil {
		return nil, err
	}
	st := newStream[streamdata.PriceUpdate]()
	handler := func(item string, pos int, fields, changed map[string]string, snapshot bool) {
		u, err := streamdata.DecodePriceUpdate(item, pos, fields, changed, snapshot)
		if err != nil {
			c.logger.Warn("Dropping undecodable price update", "item", item, "error", err)
			return
		}
		st.push(*u)
	}
	if err := c.register(&c.priceSubs, desc, handler, st); err != nil {
		return nil, err
	}
	return st.channel(), nil
}

// SubscribeCharts registers tick or candle chart data for the given epics at
// one scale and returns the update channel. Must be called before Connect.
func (c *StreamClient) SubscribeCharts(epics []string, scale streamdata.ChartScale) (<-chan streamdata.ChartUpdate, error) {
	desc, err := BuildChartSubscription(epics, scale)
	if err != nil {
		return nil, err
	}
	st := newStream[streamdata.ChartUpdate]()
	handler := func(item string, pos int, fields, changed map[string]string, snapshot bool) {
		u, err := streamdata.DecodeChartUpdate(item, pos, scale, fields, changed, snapshot)
		if err != nil {
			c.logger.Warn("Dropping undecodable chart update", "item", item, "error", err)
			return
		}
		st.push(*u)
	}
	if err := c.register(&c.mainSubs, desc, handler, st); err != nil {
		return nil, err
	}
	return st.channel(), nil
}

// SubscribeTrades registers the trade event feed of the account and returns
// the update channel. Must be called before Connect.
func (c *StreamClient) SubscribeTrades() (<-chan streamdata.TradeUpdate, error) {
	desc, err := BuildTradeSubscription(c.params.AccountID)
	if err != nil {
		return nil, err
	}
	st := newStream[streamdata.TradeUpdate]()
	handler := func(item string, pos int, fields, changed map[string]string, snapshot bool) {
		u, err := streamdata.DecodeTradeUpdate(item, pos, fields, changed, snapshot)
		if err != nil {
			c.logger.Warn("Dropping undecodable trade update", "item", item, "error", err)
			return
		}
		st.push(*u)
	}
	if err := c.register(&c.mainSubs, desc, handler, st); err != nil {
		return nil, err
	}
	return st.channel(), nil
}

// SubscribeAccount registers the balance feed of the account and returns
// the update channel. Must be called before Connect.
func (c *StreamClient) SubscribeAccount() (<-chan streamdata.AccountUpdate, error) {
	desc, err := BuildAccountSubscription(c.params.AccountID)
	if err != nil {
		return nil, err
	}
	st := newStream[streamdata.AccountUpdate]()
	handler := func(item string, pos int, fields, changed map[string]string, snapshot bool) {
		u, err := streamdata.DecodeAccountUpdate(item, pos, fields, changed, snapshot)
		if err != nil {
			c.logger.Warn("Dropping undecodable account update", "item", item, "error", err)
			return
		}
		st.push(*u)
	}
	if err := c.register(&c.mainSubs, desc, handler, st); err != nil {
		return nil, err
	}
	return st.channel(), nil
}

func (c *StreamClient) register(dst *[]pendingSub, desc Descriptor, handler UpdateHandler, st interface{ close() }) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		st.close()
		return ErrAlreadyStarted
	}
	*dst = append(*dst, pendingSub{desc: desc, handler: handler})
	c.streams = append(c.streams, st)
	return nil
}

// Connect opens one connection per domain class that has subscribers and
// blocks until all of them finish. Connection failures are aggregated; a
// panic on one connection is contained to that connection. All update
// channels close before Connect returns.
func (c *StreamClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	classes := []struct {
		name string
		subs []pendingSub
	}{
		{mainConnection, c.mainSubs},
		{priceConnection, c.priceSubs},
	}
	c.mu.Unlock()

	defer c.closeStreams()

	type run struct {
		name    string
		manager *ConnectionManager
	}
	var runs []run
	for _, class := range classes {
		if len(class.subs) == 0 {
			continue
		}
		conn := c.dialer.NewConn(c.params)
		for _, sub := range class.subs {
			if err := conn.Subscribe(sub.desc, sub.handler); err != nil {
				return fmt.Errorf("failed to register subscription %s: %w", sub.desc.ID, err)
			}
		}
		c.mu.Lock()
		c.conns = append(c.conns, conn)
		c.mu.Unlock()
		runs = append(runs, run{class.name, NewConnectionManager(class.name, conn, c.logger)})
	}
	if len(runs) == 0 {
		return nil
	}

	errs := make([]error, len(runs))
	var wg sync.WaitGroup
	for i, r := range runs {
		wg.Add(1)
		go func(i int, r run) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					errs[i] = fmt.Errorf("connection %s panicked: %v", r.name, rec)
				}
			}()
			errs[i] = r.manager.Run(ctx)
		}(i, r)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Disconnect closes every live connection, causing a blocked Connect to
// return. It is safe to call at any time, including before Connect.
func (c *StreamClient) Disconnect() {
	c.mu.Lock()
	conns := append([]Conn(nil), c.conns...)
	c.mu.Unlock()
	for _, conn := range conns {
		conn.Disconnect()
	}
}

func (c *StreamClient) closeStreams() {
	c.mu.Lock()
	streams := append([]interface{ close() }(nil), c.streams...)
	c.mu.Unlock()
	for _, st := range streams {
		st.close()
	}
}
