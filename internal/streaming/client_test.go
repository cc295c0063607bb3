package streaming

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenLLT/ig-client/internal/domain/streamdata"
)

var testParams = ConnParams{
	Endpoint:  "https://demo-apd.marketdatasystems.com",
	AccountID: "Z53PW1",
	Password:  "CST-a|XST-b",
}

func newTestClient(dialer Dialer) *StreamClient {
	return NewStreamClient(dialer, testParams, "Pricing", discardLogger())
}

func TestStreamClientConnect(t *testing.T) {
	t.Run("prices ride their own connection, the rest share one", func(t *testing.T) {
		dialer := &fakeDialer{}
		c := newTestClient(dialer)

		_, err := c.SubscribeMarkets([]string{"E1"})
		require.NoError(t, err)
		_, err = c.SubscribeCharts([]string{"E1"}, streamdata.ChartScaleMinute)
		require.NoError(t, err)
		_, err = c.SubscribeTrades()
		require.NoError(t, err)
		_, err = c.SubscribeAccount()
		require.NoError(t, err)
		_, err = c.SubscribePrices([]string{"E1"})
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- c.Connect(context.Background()) }()

		require.Eventually(t, func() bool { return len(dialer.connections()) == 2 },
			time.Second, 5*time.Millisecond)

		conns := dialer.connections()
		mainSubs := conns[0].subscriptions()
		require.Len(t, mainSubs, 4)
		assert.Equal(t, []string{"MARKET:E1"}, mainSubs[0].desc.Items)
		assert.Equal(t, []string{"CHART:E1:1MINUTE"}, mainSubs[1].desc.Items)
		assert.Equal(t, []string{"TRADE:Z53PW1"}, mainSubs[2].desc.Items)
		assert.Equal(t, []string{"ACCOUNT:Z53PW1"}, mainSubs[3].desc.Items)

		priceSubs := conns[1].subscriptions()
		require.Len(t, priceSubs, 1)
		assert.Equal(t, []string{"PRICE:Z53PW1:E1"}, priceSubs[0].desc.Items)
		assert.Equal(t, "Pricing", priceSubs[0].desc.DataAdapter)

		c.Disconnect()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("connect did not return after disconnect")
		}
	})

	t.Run("only connection classes with subscribers are started", func(t *testing.T) {
		dialer := &fakeDialer{}
		c := newTestClient(dialer)

		_, err := c.SubscribeMarkets([]string{"E1"})
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- c.Connect(context.Background()) }()

		require.Eventually(t, func() bool { return len(dialer.connections()) == 1 },
			time.Second, 5*time.Millisecond)
		c.Disconnect()
		require.NoError(t, <-done)
		assert.Len(t, dialer.connections(), 1)
	})

	t.Run("no subscribers means nothing to connect", func(t *testing.T) {
		dialer := &fakeDialer{}
		c := newTestClient(dialer)

		assert.NoError(t, c.Connect(context.Background()))
		assert.Empty(t, dialer.connections())
	})

	t.Run("updates arrive decoded on the right channel", func(t *testing.T) {
		dialer := &fakeDialer{}
		c := newTestClient(dialer)

		updates, err := c.SubscribeMarkets([]string{"E1"})
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- c.Connect(context.Background()) }()
		require.Eventually(t, func() bool { return len(dialer.connections()) == 1 },
			time.Second, 5*time.Millisecond)

		conn := dialer.connections()[0]
		conn.emit("MARKET:E1",
			map[string]string{"BID": "100.5", "OFFER": ""},
			map[string]string{"BID": "100.5"},
			true)

		select {
		case u := <-updates:
			assert.Equal(t, "MARKET:E1", u.Item)
			assert.True(t, u.Snapshot)
			require.NotNil(t, u.Fields.Bid)
			assert.Equal(t, 100.5, *u.Fields.Bid)
			assert.Nil(t, u.Fields.Offer)
		case <-time.After(time.Second):
			t.Fatal("update never arrived")
		}

		c.Disconnect()
		require.NoError(t, <-done)
	})

	t.Run("chart updates carry the subscription scale", func(t *testing.T) {
		dialer := &fakeDialer{}
		c := newTestClient(dialer)

		updates, err := c.SubscribeCharts([]string{"E1"}, streamdata.ChartScaleMinute)
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- c.Connect(context.Background()) }()
		require.Eventually(t, func() bool { return len(dialer.connections()) == 1 },
			time.Second, 5*time.Millisecond)

		conn := dialer.connections()[0]
		conn.emit("CHART:E1:1MINUTE",
			map[string]string{"BID_OPEN": "100.5", "CONS_END": "0"},
			map[string]string{"BID_OPEN": "100.5"},
			true)

		select {
		case u := <-updates:
			assert.Equal(t, "CHART:E1:1MINUTE", u.Item)
			assert.Equal(t, streamdata.ChartScaleMinute, u.Scale)
			assert.True(t, u.Snapshot)
			require.NotNil(t, u.Fields.BidOpen)
			assert.Equal(t, 100.5, *u.Fields.BidOpen)
			require.NotNil(t, u.Fields.ConsolidationEnd)
			assert.Equal(t, 0.0, *u.Fields.ConsolidationEnd)
		case <-time.After(time.Second):
			t.Fatal("chart update never arrived")
		}

		c.Disconnect()
		require.NoError(t, <-done)
	})

	t.Run("an undecodable update is dropped, the stream survives", func(t *testing.T) {
		dialer := &fakeDialer{}
		c := newTestClient(dialer)

		updates, err := c.SubscribeMarkets([]string{"E1"})
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- c.Connect(context.Background()) }()
		require.Eventually(t, func() bool { return len(dialer.connections()) == 1 },
			time.Second, 5*time.Millisecond)

		conn := dialer.connections()[0]
		conn.emit("MARKET:E1", map[string]string{"BID": "garbage"}, nil, false)
		conn.emit("MARKET:E1", map[string]string{"BID": "101"}, map[string]string{"BID": "101"}, false)

		select {
		case u := <-updates:
			require.NotNil(t, u.Fields.Bid)
			assert.Equal(t, 101.0, *u.Fields.Bid)
		case <-time.After(time.Second):
			t.Fatal("good update never arrived")
		}

		c.Disconnect()
		require.NoError(t, <-done)
	})

	t.Run("channels close once connect returns", func(t *testing.T) {
		dialer := &fakeDialer{connectFn: func(ctx context.Context, c *fakeConn) error {
			return nil
		}}
		c := newTestClient(dialer)

		updates, err := c.SubscribeMarkets([]string{"E1"})
		require.NoError(t, err)
		require.NoError(t, c.Connect(context.Background()))

		select {
		case _, ok := <-updates:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close")
		}
	})

	t.Run("failures on both connections are aggregated", func(t *testing.T) {
		cause := errors.New("connection reset")
		dialer := &fakeDialer{connectFn: func(ctx context.Context, c *fakeConn) error {
			return cause
		}}
		c := newTestClient(dialer)

		_, err := c.SubscribeMarkets([]string{"E1"})
		require.NoError(t, err)
		_, err = c.SubscribePrices([]string{"E1"})
		require.NoError(t, err)

		err = c.Connect(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "connection main")
		assert.Contains(t, err.Error(), "connection price")
	})

	t.Run("a panicking connection is contained to itself", func(t *testing.T) {
		var calls atomic.Int32
		dialer := &fakeDialer{connectFn: func(ctx context.Context, c *fakeConn) error {
			if calls.Add(1) == 1 {
				panic("handler exploded")
			}
			return nil
		}}
		c := newTestClient(dialer)

		_, err := c.SubscribeMarkets([]string{"E1"})
		require.NoError(t, err)
		_, err = c.SubscribePrices([]string{"E1"})
		require.NoError(t, err)

		err = c.Connect(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panicked")
		assert.Equal(t, 1, strings.Count(err.Error(), "\n")+1)
	})

	t.Run("subscribing after connect is refused", func(t *testing.T) {
		dialer := &fakeDialer{}
		c := newTestClient(dialer)

		_, err := c.SubscribeMarkets([]string{"E1"})
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- c.Connect(context.Background()) }()
		require.Eventually(t, func() bool { return len(dialer.connections()) == 1 },
			time.Second, 5*time.Millisecond)

		_, err = c.SubscribeTrades()
		assert.ErrorIs(t, err, ErrAlreadyStarted)

		c.Disconnect()
		require.NoError(t, <-done)
	})

	t.Run("second connect is refused", func(t *testing.T) {
		dialer := &fakeDialer{connectFn: func(ctx context.Context, c *fakeConn) error { return nil }}
		c := newTestClient(dialer)
		_, err := c.SubscribeMarkets([]string{"E1"})
		require.NoError(t, err)

		require.NoError(t, c.Connect(context.Background()))
		assert.ErrorIs(t, c.Connect(context.Background()), ErrAlreadyStarted)
	})

	t.Run("cancellation ends a blocked connect", func(t *testing.T) {
		dialer := &fakeDialer{}
		c := newTestClient(dialer)
		_, err := c.SubscribeMarkets([]string{"E1"})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- c.Connect(ctx) }()
		require.Eventually(t, func() bool { return len(dialer.connections()) == 1 },
			time.Second, 5*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("connect did not return after cancellation")
		}
	})
}
