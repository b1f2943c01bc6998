package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/consumergraph/consumergraph/internal/mapping"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, store *mapping.Store) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(store, "Kafka", 20*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWebSocket(hub, w, r)
	}))

	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readTree(t *testing.T, conn *websocket.Conn) TreeResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, MessageTypeTree, msg.Type)

	var tree TreeResponse
	require.NoError(t, json.Unmarshal(msg.Payload, &tree))
	return tree
}

func TestHub_SendsTreeOnConnect(t *testing.T) {
	store := seededStore()
	_, srv := startHub(t, store)

	conn := dial(t, srv)
	tree := readTree(t, conn)

	assert.Equal(t, "Kafka", tree.Cluster)
	require.Len(t, tree.Root.Children, 2)
}

func TestHub_PushesChanges(t *testing.T) {
	store := mapping.NewStore()
	hub, srv := startHub(t, store)

	conn := dial(t, srv)
	initial := readTree(t, conn)
	assert.Empty(t, initial.Root.Children)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	store.RecordObservation()
	store.RecordEdge("orders", "g1")

	// the first tick after connect may repeat the empty state
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		tree := readTree(t, conn)
		if len(tree.Root.Children) == 1 {
			assert.Equal(t, "orders", tree.Root.Children[0].Name)
			return
		}
	}
	t.Fatal("change was not pushed")
}

func TestHub_Refresh(t *testing.T) {
	_, srv := startHub(t, seededStore())

	conn := dial(t, srv)
	_ = readTree(t, conn)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: MessageTypeRefresh}))
	tree := readTree(t, conn)
	assert.Len(t, tree.Root.Children, 2)
}

func TestHub_ClosesClientsOnShutdown(t *testing.T) {
	hub := NewHub(mapping.NewStore(), "Kafka", time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWebSocket(hub, w, r)
	}))
	defer srv.Close()

	conn := dial(t, srv)
	_ = readTree(t, conn)

	cancel()
	<-done
	assert.Zero(t, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
