package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"sketch-rooms/internal/config"
	"sketch-rooms/internal/game"

	"github.com/gorilla/websocket"
)

const eventTimeout = 5 * time.Second

type roomPayload struct {
	Room struct {
		ID      string `json:"id"`
		HostID  string `json:"host_id"`
		Status  string `json:"status"`
		Players []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"players"`
	} `json:"room"`
}

func createRoomWS(t *testing.T, conn *websocket.Conn, name string) roomPayload {
	t.Helper()
	sendWS(t, conn, msgCreateRoom, map[string]string{"name": name, "language": "en"})
	var created roomPayload
	waitForEvent(t, conn, game.EventRoomCreated, eventTimeout).decode(t, &created)
	return created
}

func TestWebsocketRequiresName(t *testing.T) {
	_, ts := newTestApp(t)

	resp := doRequest(t, ts, http.MethodGet, "/ws")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["error"] != "name is required" {
		t.Fatalf("unexpected error body %#v", body)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?name=%3Cscript%3E"
	if _, resp, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatalf("expected dial with invalid name to fail")
	} else if resp != nil && resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestWebsocketGameFlow(t *testing.T) {
	srv, ts := newTestApp(t)
	alice := dialWS(t, ts, "Alice")
	created := createRoomWS(t, alice, "Sketchers")
	if created.Room.ID == "" || created.Room.Status != "waiting" {
		t.Fatalf("unexpected room_created payload %#v", created)
	}

	bob := dialWS(t, ts, "Bob")
	sendWS(t, bob, msgJoinRoom, map[string]string{"room_id": created.Room.ID})
	var joined roomPayload
	waitForEvent(t, bob, game.EventRoomJoined, eventTimeout).decode(t, &joined)
	if len(joined.Room.Players) != 2 {
		t.Fatalf("expected 2 players after join, got %d", len(joined.Room.Players))
	}
	bobID := joined.Room.Players[1].ID
	waitForEvent(t, alice, game.EventPlayerJoined, eventTimeout)

	sendWS(t, alice, msgStartGame, nil)
	waitForEvent(t, bob, game.EventGameStarted, eventTimeout)
	var round game.NewRoundPayload
	waitForEvent(t, bob, game.EventNewRound, eventTimeout).decode(t, &round)
	if round.DrawerID != created.Room.HostID {
		t.Fatalf("expected host to draw first, got %s", round.DrawerID)
	}
	if round.Word != "apple" {
		t.Fatalf("expected word apple, got %q", round.Word)
	}

	sendWS(t, bob, msgGuess, map[string]string{"text": "  Apple "})
	var guess game.CorrectGuessPayload
	waitForEvent(t, alice, game.EventCorrectGuess, eventTimeout).decode(t, &guess)
	if guess.GuesserID != bobID {
		t.Fatalf("expected guesser %s, got %s", bobID, guess.GuesserID)
	}
	if guess.GuesserPoints < 80 || guess.DrawerPoints != guess.GuesserPoints+10 {
		t.Fatalf("unexpected awards guesser=%d drawer=%d", guess.GuesserPoints, guess.DrawerPoints)
	}

	stats := srv.Lobby().Stats()
	if stats.Playing != 1 || stats.Participants != 2 {
		t.Fatalf("unexpected stats %#v", stats)
	}
}

func TestWebsocketCanvasRelay(t *testing.T) {
	_, ts := newTestApp(t)
	alice := dialWS(t, ts, "Alice")
	created := createRoomWS(t, alice, "Canvas")
	bob := dialWS(t, ts, "Bob")
	sendWS(t, bob, msgJoinRoom, map[string]string{"room_id": created.Room.ID})
	waitForEvent(t, alice, game.EventPlayerJoined, eventTimeout)
	sendWS(t, alice, msgStartGame, nil)
	waitForEvent(t, bob, game.EventNewRound, eventTimeout)

	sendWS(t, bob, msgCanvas, map[string]any{"data": map[string]any{"strokes": []int{1}}})
	if msg := waitForError(t, bob); msg != game.ErrNotDrawer.Error() {
		t.Fatalf("expected drawer error, got %q", msg)
	}

	sendWS(t, alice, msgCanvas, map[string]any{"data": map[string]any{"strokes": []int{1, 2}}})
	var canvas game.CanvasPayload
	waitForEvent(t, bob, game.EventCanvasUpdated, eventTimeout).decode(t, &canvas)
	if string(canvas.Data) != `{"strokes":[1,2]}` {
		t.Fatalf("unexpected canvas payload %s", canvas.Data)
	}

	sendWS(t, alice, msgClearCanvas, nil)
	cleared := waitForEvent(t, bob, game.EventCanvasUpdated, eventTimeout)
	var fields map[string]json.RawMessage
	cleared.decode(t, &fields)
	if raw, ok := fields["data"]; !ok || string(raw) != "null" {
		t.Fatalf("expected explicit null canvas, got %s", cleared.Data)
	}
}

func TestWebsocketReportsErrorsToCaller(t *testing.T) {
	_, ts := newTestApp(t)
	alice := dialWS(t, ts, "Alice")

	cases := []struct {
		messageType string
		data        any
		want        string
	}{
		{msgStartGame, nil, game.ErrNotInRoom.Error()},
		{msgCreateRoom, map[string]string{}, "room name is required"},
		{msgCreateRoom, map[string]string{"name": "Bad<Room>"}, "room name must be 1-40 letters, numbers or punctuation"},
		{msgJoinRoom, map[string]string{"room_id": "missing"}, game.ErrRoomNotFound.Error()},
		{msgJoinRoom, map[string]string{"nope": "x"}, "invalid room"},
		{"dance", nil, "unknown message type"},
	}
	for _, tc := range cases {
		sendWS(t, alice, tc.messageType, tc.data)
		if got := waitForError(t, alice); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.messageType, tc.want, got)
		}
	}

	if err := alice.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := waitForError(t, alice); got != "invalid message" {
		t.Fatalf("expected invalid message, got %q", got)
	}

	createRoomWS(t, alice, "Solo")
	sendWS(t, alice, msgStartGame, nil)
	if got := waitForError(t, alice); got != "need at least 2 players to start" {
		t.Fatalf("unexpected start error %q", got)
	}
}

func TestWebsocketRateLimitsChat(t *testing.T) {
	_, ts := newTestApp(t, func(cfg *config.Config) {
		cfg.ChatRatePerSecond = 0.01
		cfg.ChatRateBurst = 1
	})
	alice := dialWS(t, ts, "Alice")
	createRoomWS(t, alice, "Chatty")

	sendWS(t, alice, msgChat, map[string]string{"text": "¿hola? @all 🎨"})
	var chat game.ChatMessage
	waitForEvent(t, alice, game.EventChatMessage, eventTimeout).decode(t, &chat)
	if chat.Text != "¿hola? @all 🎨" {
		t.Fatalf("unexpected chat text %q", chat.Text)
	}
	sendWS(t, alice, msgChat, map[string]string{"text": "hello again"})
	if got := waitForError(t, alice); got != errRateLimited.Error() {
		t.Fatalf("expected rate limit error, got %q", got)
	}
}

func TestWebsocketDisconnectLeavesRoom(t *testing.T) {
	srv, ts := newTestApp(t)
	alice := dialWS(t, ts, "Alice")
	created := createRoomWS(t, alice, "Leavers")
	bob := dialWS(t, ts, "Bob")
	sendWS(t, bob, msgJoinRoom, map[string]string{"room_id": created.Room.ID})
	waitForEvent(t, alice, game.EventPlayerJoined, eventTimeout)

	_ = bob.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = bob.Close()

	waitForEvent(t, alice, game.EventPlayerLeft, eventTimeout)
	room, ok := srv.Lobby().Room(created.Room.ID)
	if !ok {
		t.Fatalf("room should still exist")
	}
	if members := room.Members(); len(members) != 1 {
		t.Fatalf("expected 1 member, got %v", members)
	}
}
