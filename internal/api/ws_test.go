package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DH-11027/paradise/pkg/logger"
)

func dialHub(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
}

func startHub(t *testing.T, hub *Hub) string {
	t.Helper()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(hub.serveWS))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestHubBroadcastReachesClient(t *testing.T) {
	hub := NewHub(logger.Nop())
	wsURL := startHub(t, hub)

	conn := dialHub(t, wsURL)
	defer conn.Close()
	waitForClients(t, hub, 1)

	hub.Broadcast("series.refreshed", "005930", map[string]int{"bars": 3})

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "series.refreshed", ev.Type)
	assert.Equal(t, "005930", ev.Code)
}

func TestHubSurvivesStalledClient(t *testing.T) {
	hub := NewHub(logger.Nop())
	hub.writeTimeout = 100 * time.Millisecond
	wsURL := startHub(t, hub)

	// this client never reads; large payloads back up its buffers until
	// the write deadline errors out
	stalled := dialHub(t, wsURL)
	defer stalled.Close()
	waitForClients(t, hub, 1)

	payload := strings.Repeat("x", 1<<20)
	for i := 0; i < 8; i++ {
		hub.Broadcast("series.refreshed", "005930", payload)
	}

	// the failed write must evict the client without stalling the loop
	waitForClients(t, hub, 0)

	fresh := dialHub(t, wsURL)
	defer fresh.Close()
	waitForClients(t, hub, 1)
}
