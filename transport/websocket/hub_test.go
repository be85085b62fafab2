package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

func testChange(kind engine.ChangeKind) engine.Change {
	return engine.Change{
		Kind: kind,
		Snapshot: engine.Snapshot{
			Status: engine.Status{
				State:       engine.StatePlaying,
				Difficulty:  engine.Easy,
				ErrorCount:  2,
				PairsSolved: 1,
				PairsTotal:  4,
			},
			Cards: []engine.CardView{
				{Position: 0, Visibility: engine.FaceUp, Face: "🍎"},
				{Position: 1, Visibility: engine.FaceDown},
			},
			Columns: engine.GridColumns,
		},
	}
}

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		id:        sessionID + "-client",
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}

	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}

	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}

	if hub.ClientCount("test-session") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}

	if _, ok := <-client.send; ok {
		t.Error("Expected send channel to be closed")
	}

	// Unregistering twice is harmless
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)

	hub.registerClient(client1)
	hub.registerClient(client2)

	if hub.ClientCount(sessionID) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount(sessionID))
	}

	hub.unregisterClient(client1)

	if hub.ClientCount(sessionID) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", hub.ClientCount(sessionID))
	}

	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub()
	sessionID := "broadcast-test"

	client := newTestClient(hub, sessionID)
	other := newTestClient(hub, "other-session")
	hub.registerClient(client)
	hub.registerClient(other)

	hub.BroadcastToSession(sessionID, testChange(engine.ChangeMismatched))
	hub.broadcastMessage(<-hub.broadcast)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}

		if message.SessionID != sessionID {
			t.Errorf("Expected sessionID %s, got %s", sessionID, message.SessionID)
		}

		if message.Event != "mismatched" {
			t.Errorf("Expected event 'mismatched', got %s", message.Event)
		}

		if message.Board == nil || message.Board.Status.ErrorCount != 2 {
			t.Fatal("Board not correctly transmitted")
		}

		if message.Board.Cards[0].Face != "🍎" || message.Board.Cards[1].Face != "" {
			t.Error("Card faces not correctly transmitted")
		}

	case <-time.After(100 * time.Millisecond):
		t.Error("No message received within timeout")
	}

	select {
	case <-other.send:
		t.Error("Client of another session should not receive the message")
	default:
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()
	hub.registerClient(newTestClient(hub, "event-test"))

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" {
			t.Errorf("Expected sessionID 'event-test', got %s", message.SessionID)
		}
		if message.Event != "custom-event" {
			t.Errorf("Expected event 'custom-event', got %s", message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message queued within timeout")
	}
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub()
	hub.registerClient(newTestClient(hub, "full"))

	done := make(chan struct{})
	go func() {
		// Nothing drains the queue
		for i := 0; i < broadcastBuffer*2; i++ {
			change := testChange(engine.ChangeTick)
			change.Version = uint64(i + 1)
			hub.BroadcastToSession("full", change)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastToSession blocked on a full queue")
	}

	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected %d queued messages, got %d", broadcastBuffer, len(hub.broadcast))
	}
}

func TestHubDropsStaleVersions(t *testing.T) {
	hub := NewHub()
	hub.registerClient(newTestClient(hub, "ordered"))

	finished := testChange(engine.ChangeFinished)
	finished.Version = 7
	staleTick := testChange(engine.ChangeTick)
	staleTick.Version = 6
	closed := testChange(engine.ChangeClosed)
	closed.Version = 8

	hub.BroadcastToSession("ordered", finished)
	hub.BroadcastToSession("ordered", staleTick)
	hub.BroadcastToSession("ordered", finished)
	hub.BroadcastToSession("ordered", closed)

	if len(hub.broadcast) != 2 {
		t.Fatalf("Expected 2 queued messages, got %d", len(hub.broadcast))
	}
	var last uint64
	for _, want := range []string{"finished", "closed"} {
		message := <-hub.broadcast
		if message.Event != want {
			t.Errorf("Expected event %s, got %s", want, message.Event)
		}
		if message.Version <= last {
			t.Errorf("Version %d queued after %d", message.Version, last)
		}
		last = message.Version
	}
}

func TestHubSkipsUnwatchedSessions(t *testing.T) {
	hub := NewHub()

	hub.BroadcastToSession("nobody", testChange(engine.ChangeTick))
	hub.BroadcastEvent("nobody", "selection", "data")
	if len(hub.broadcast) != 0 {
		t.Errorf("Expected nothing queued for an unwatched session, got %d", len(hub.broadcast))
	}

	// A watcher that left after queuing gets nothing either
	client := newTestClient(hub, "left")
	hub.registerClient(client)
	hub.BroadcastToSession("left", testChange(engine.ChangeTick))
	hub.unregisterClient(client)
	hub.broadcastMessage(<-hub.broadcast)
	if _, ok := hub.versions["left"]; ok {
		t.Error("Expected version tracking to end with the last watcher")
	}
}

func TestHubSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	client := &Client{hub: hub, sessionID: "slow", send: make(chan []byte, 1)}
	hub.registerClient(client)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: "tick"})
	hub.broadcastMessage(&Message{SessionID: "slow", Event: "tick"})

	if hub.ClientCount("slow") != 0 {
		t.Error("Expected slow client to be dropped")
	}
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "shutdown")
	hub.registerClient(client)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if hub.ClientCount("shutdown") != 0 {
		t.Error("Expected clients to be closed on shutdown")
	}
}

func startTestServer(t *testing.T, hub *Hub) *httptest.Server {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(server.Close)
	return server
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := NewHub()
	server := startTestServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 1 })

	conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("ws-test") == 0 })
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := NewHub()
	server := startTestServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=msg-test"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("msg-test") == 1 })

	hub.BroadcastToSession("msg-test", testChange(engine.ChangeMatched))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, messageData, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(messageData, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}

	if message.SessionID != "msg-test" {
		t.Errorf("Expected sessionID 'msg-test', got %s", message.SessionID)
	}

	if message.Event != "matched" {
		t.Errorf("Expected event 'matched', got %s", message.Event)
	}

	if message.Board.Status.PairsSolved != 1 || message.Board.Status.PairsTotal != 4 {
		t.Error("Board status not correctly received")
	}
}
