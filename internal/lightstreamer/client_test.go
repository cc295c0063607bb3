package lightstreamer

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeServer runs the given session script against a connecting client.
// The script gets each inbound request and may write frames back.
func fakeServer(t *testing.T, script func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{Subprotocols: []string{wsSubprotocol}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		script(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func readRequest(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(message)
}

func writeFrames(t *testing.T, conn *websocket.Conn, frames ...string) {
	t.Helper()
	err := conn.WriteMessage(websocket.TextMessage, []byte(strings.Join(frames, "\r\n")+"\r\n"))
	require.NoError(t, err)
}

func TestClientConnect(t *testing.T) {
	t.Run("no subscriptions reports the sentinel without dialing", func(t *testing.T) {
		c := NewClient("https://example.invalid", "DEFAULT", "acct", "pw", discardLogger())
		err := c.Connect(context.Background())
		assert.ErrorIs(t, err, ErrNoActiveSubscriptions)
	})

	t.Run("session delivers updates until the server ends it", func(t *testing.T) {
		srv := fakeServer(t, func(conn *websocket.Conn) {
			create := readRequest(t, conn)
			assert.True(t, strings.HasPrefix(create, "create_session\r\n"))
			assert.Contains(t, create, "LS_adapter_set=DEFAULT")
			assert.Contains(t, create, "LS_user=Z53PW1")

			writeFrames(t, conn, "CONOK,S1,50000,5000,*")

			control := readRequest(t, conn)
			assert.True(t, strings.HasPrefix(control, "control\r\n"))
			assert.Contains(t, control, "LS_op=add")
			assert.Contains(t, control, "LS_group=MARKET%3AA")

			writeFrames(t, conn,
				"SUBOK,1,1,2",
				"U,1,1,100.5|101",
				"PROBE",
				"U,1,1,100.6|",
				"END,31,closed by server",
			)
		})

		c := NewClient(srv.URL, "DEFAULT", "Z53PW1", "CST-a|XST-b", discardLogger())
		sub := NewSubscription(ModeMerge, []string{"MARKET:A"}, []string{"BID", "OFFER"})
		sub.SetRequestedSnapshot(true)
		l := &recordingListener{}
		sub.AddListener(l)
		require.NoError(t, c.Subscribe(sub))

		err := c.Connect(context.Background())
		var srvErr *ServerError
		require.ErrorAs(t, err, &srvErr)
		assert.Equal(t, "END", srvErr.Frame)
		assert.Equal(t, 31, srvErr.Code)

		assert.Equal(t, 1, l.subscribed)
		require.Len(t, l.updates, 2)
		assert.True(t, l.updates[0].Snapshot)
		assert.Equal(t, map[string]string{"BID": "100.5", "OFFER": "101"}, l.updates[0].Fields)
		assert.False(t, l.updates[1].Snapshot)
		assert.Equal(t, map[string]string{"BID": "100.6", "OFFER": "101"}, l.updates[1].Fields)
		assert.Equal(t, map[string]string{"BID": "100.6"}, l.updates[1].ChangedFields)
	})

	t.Run("connection refusal surfaces as a server error", func(t *testing.T) {
		srv := fakeServer(t, func(conn *websocket.Conn) {
			readRequest(t, conn)
			writeFrames(t, conn, "CONERR,1,user or password invalid")
		})

		c := NewClient(srv.URL, "DEFAULT", "acct", "pw", discardLogger())
		require.NoError(t, c.Subscribe(NewSubscription(ModeMerge, []string{"MARKET:A"}, []string{"BID"})))

		err := c.Connect(context.Background())
		var srvErr *ServerError
		require.ErrorAs(t, err, &srvErr)
		assert.Equal(t, "CONERR", srvErr.Frame)
		assert.Equal(t, 1, srvErr.Code)
	})

	t.Run("context cancellation unblocks connect cleanly", func(t *testing.T) {
		srv := fakeServer(t, func(conn *websocket.Conn) {
			readRequest(t, conn)
			writeFrames(t, conn, "CONOK,S1,50000,5000,*")
			readRequest(t, conn)
			writeFrames(t, conn, "SUBOK,1,1,1")
			// Hold the session open until the client goes away.
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			_, _, _ = conn.ReadMessage()
		})

		ctx, cancel := context.WithCancel(context.Background())
		c := NewClient(srv.URL, "DEFAULT", "acct", "pw", discardLogger())
		sub := NewSubscription(ModeMerge, []string{"MARKET:A"}, []string{"BID"})
		l := &recordingListener{}
		sub.AddListener(l)
		require.NoError(t, c.Subscribe(sub))

		done := make(chan error, 1)
		go func() { done <- c.Connect(ctx) }()

		require.Eventually(t, func() bool { return l.subscribedCount() == 1 }, 3*time.Second, 10*time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Fatal("connect did not return after cancellation")
		}
	})

	t.Run("disconnect unblocks connect cleanly", func(t *testing.T) {
		srv := fakeServer(t, func(conn *websocket.Conn) {
			readRequest(t, conn)
			writeFrames(t, conn, "CONOK,S1,50000,5000,*")
			readRequest(t, conn)
			writeFrames(t, conn, "SUBOK,1,1,1")
			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			_, _, _ = conn.ReadMessage()
		})

		c := NewClient(srv.URL, "DEFAULT", "acct", "pw", discardLogger())
		sub := NewSubscription(ModeMerge, []string{"MARKET:A"}, []string{"BID"})
		l := &recordingListener{}
		sub.AddListener(l)
		require.NoError(t, c.Subscribe(sub))

		done := make(chan error, 1)
		go func() { done <- c.Connect(context.Background()) }()

		require.Eventually(t, func() bool { return l.subscribedCount() == 1 }, 3*time.Second, 10*time.Millisecond)
		c.Disconnect()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Fatal("connect did not return after disconnect")
		}
	})

	t.Run("second connect on the same client is refused", func(t *testing.T) {
		c := NewClient("https://example.invalid", "DEFAULT", "acct", "pw", discardLogger())
		require.NoError(t, c.Subscribe(NewSubscription(ModeMerge, []string{"MARKET:A"}, []string{"BID"})))
		c.mu.Lock()
		c.started = true
		c.mu.Unlock()

		assert.ErrorIs(t, c.Connect(context.Background()), ErrAlreadyConnected)
		assert.ErrorIs(t, c.Subscribe(NewSubscription(ModeMerge, nil, nil)), ErrAlreadyConnected)
	})
}
