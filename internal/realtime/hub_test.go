package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/gateway"
	"github.com/church-console/backend/internal/store"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", hub.Count(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastAndFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)
	r := gin.New()
	r.GET("/ws", ServeWs(hub, zap.NewNop(), "*", func(*gin.Context) string { return "user-1" }))
	srv := httptest.NewServer(r)
	defer srv.Close()

	all := dial(t, srv)
	assetsOnly := dial(t, srv)
	waitClients(t, hub, 2)

	if err := assetsOnly.WriteJSON(map[string]any{"event": "filter", "data": []string{store.CollectionAssets}}); err != nil {
		t.Fatal(err)
	}
	// The filter is applied asynchronously by the read pump.
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast(EventChange, store.CollectionMembers, store.Change{Collection: store.CollectionMembers, Op: gateway.OpCreate, ID: "m1"})
	hub.Broadcast(EventChange, store.CollectionAssets, store.Change{Collection: store.CollectionAssets, Op: gateway.OpDelete, ID: "a1"})

	read := func(conn *websocket.Conn) store.Change {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		var c store.Change
		if err := json.Unmarshal(msg.Data, &c); err != nil || msg.Event != EventChange {
			t.Fatalf("message = %+v, %v", msg, err)
		}
		return c
	}
	if c := read(all); c.ID != "m1" {
		t.Fatalf("first change = %+v", c)
	}
	if c := read(all); c.ID != "a1" {
		t.Fatalf("second change = %+v", c)
	}
	if c := read(assetsOnly); c.ID != "a1" {
		t.Fatalf("filtered client got %+v", c)
	}

	all.Close()
	waitClients(t, hub, 1)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker("http://console.local")
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://evil.local")
	if check(req) {
		t.Fatal("foreign origin accepted")
	}
	req.Header.Set("Origin", "http://console.local")
	if !check(req) {
		t.Fatal("console origin rejected")
	}
}
