package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sketch-rooms/internal/config"
	"sketch-rooms/internal/game"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

// newTestApp starts a server whose word bank only knows "apple".
func newTestApp(t *testing.T, mutate ...func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	for _, fn := range mutate {
		fn(&cfg)
	}
	words := game.NewWordBank("en", map[string][]string{"en": {"apple"}})
	srv := New(nil, cfg, words)
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)
	return srv, ts
}

type wsEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (e wsEvent) decode(t *testing.T, dest any) {
	t.Helper()
	if err := json.Unmarshal(e.Data, dest); err != nil {
		t.Fatalf("decode %s payload: %v", e.Type, err)
	}
}

func dialWS(t *testing.T, ts *httptest.Server, name string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	waitForEvent(t, conn, game.EventRoomListUpdated, 5*time.Second)
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, messageType string, data any) {
	t.Helper()
	payload := map[string]any{"type": messageType}
	if data != nil {
		payload["data"] = data
	}
	if err := conn.WriteJSON(payload); err != nil {
		t.Fatalf("write websocket message: %v", err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) wsEvent {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	var ev wsEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	return ev
}

func waitForEvent(t *testing.T, conn *websocket.Conn, eventType string, timeout time.Duration) wsEvent {
	t.Helper()
	deadline := time.Now().Add(timeout)
	seen := make([]string, 0, 8)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			t.Fatalf("timed out waiting for %s; seen=%v", eventType, seen)
		}
		ev := readEvent(t, conn, remaining)
		if ev.Type == eventType {
			return ev
		}
		seen = append(seen, ev.Type)
	}
}

func waitForError(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	var payload game.ErrorPayload
	waitForEvent(t, conn, game.EventError, 5*time.Second).decode(t, &payload)
	return payload.Message
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

type discardOutbox struct{}

func (discardOutbox) Send(game.Event) error { return nil }
