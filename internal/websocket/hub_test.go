package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/ecktms/internal/notify"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestHub_ForwardsChangeEvents(t *testing.T) {
	hub, srv := startHub(t)
	n := notify.New()
	detach := hub.Attach(n)
	defer detach()

	first := dial(t, srv)
	second := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	n.Emit(notify.EventDataSynced)

	assert.Equal(t, notify.EventDataSynced, readEvent(t, first).Type)
	assert.Equal(t, notify.EventDataSynced, readEvent(t, second).Type)
}

func TestHub_DetachStopsForwarding(t *testing.T) {
	hub, _ := startHub(t)
	n := notify.New()
	detach := hub.Attach(n)
	assert.Equal(t, 1, n.Listeners(notify.EventDataSynced))

	detach()
	assert.Equal(t, 0, n.Listeners(notify.EventDataSynced))
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	delivered, err := hub.Broadcast(Event{Type: notify.EventDataSynced})
	require.NoError(t, err)
	assert.Zero(t, delivered)
}

func TestClient_AnswersPing(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(Event{Type: "PING"}))
	assert.Equal(t, "PONG", readEvent(t, conn).Type)
}
