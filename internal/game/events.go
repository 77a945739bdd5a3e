package game

import (
	"encoding/json"
	"time"
)

// Outbound event types.
const (
	EventPlayerJoined    = "player_joined"
	EventPlayerLeft      = "player_left"
	EventRoomCreated     = "room_created"
	EventRoomJoined      = "room_joined"
	EventLeftRoom        = "left_room"
	EventGameStarted     = "game_started"
	EventGameReset       = "game_reset"
	EventNewRound        = "new_round"
	EventTimerUpdate     = "timer_update"
	EventRoundEnded      = "round_ended"
	EventCorrectGuess    = "correct_guess"
	EventGameEnded       = "game_ended"
	EventGameEndedEarly  = "game_ended_early"
	EventCanvasUpdated   = "canvas_updated"
	EventChatMessage     = "chat_message"
	EventChatHistory     = "chat_history"
	EventRoomListUpdated = "room_list_updated"
	EventError           = "error"
)

const reasonNotEnoughPlayers = "not enough players"

// Event is the envelope delivered to an Outbox.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Outbox is the per-connection delivery handle. Send must not block.
type Outbox interface {
	Send(Event) error
}

// ErrorEvent wraps a caller-facing message.
func ErrorEvent(message string) Event {
	return Event{Type: EventError, Data: ErrorPayload{Message: message}}
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type PlayerView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"is_host"`
}

type RosterPayload struct {
	RoomID  string       `json:"room_id"`
	Player  PlayerView   `json:"player"`
	HostID  string       `json:"host_id"`
	Players []PlayerView `json:"players"`
}

type RoomView struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Language   string       `json:"language"`
	Status     Status       `json:"status"`
	HostID     string       `json:"host_id"`
	MaxPlayers int          `json:"max_players"`
	CreatedAt  time.Time    `json:"created_at"`
	Players    []PlayerView `json:"players"`
	Round      *RoundView   `json:"round,omitempty"`
}

type RoomPayload struct {
	Room RoomView `json:"room"`
}

type LeftRoomPayload struct {
	RoomID string `json:"room_id"`
}

type GameStartedPayload struct {
	RoomID  string       `json:"room_id"`
	Players []PlayerView `json:"players"`
}

type GameResetPayload struct {
	RoomID string `json:"room_id"`
}

type RoundView struct {
	Number     int             `json:"number"`
	DrawerID   string          `json:"drawer_id"`
	DrawerName string          `json:"drawer_name"`
	Word       string          `json:"word,omitempty"`
	Hint       string          `json:"hint"`
	Remaining  int             `json:"remaining"`
	Phase      RoundPhase      `json:"phase"`
	Scores     []ScoreEntry    `json:"scores"`
	Canvas     json.RawMessage `json:"canvas,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
}

type NewRoundPayload struct {
	RoomID     string    `json:"room_id"`
	Round      int       `json:"round"`
	DrawerID   string    `json:"drawer_id"`
	DrawerName string    `json:"drawer_name"`
	Word       string    `json:"word,omitempty"`
	Hint       string    `json:"hint"`
	Duration   int       `json:"duration"`
	State      RoundView `json:"state"`
}

type TimerPayload struct {
	RoomID    string `json:"room_id"`
	Remaining int    `json:"remaining"`
}

type RoundEndedPayload struct {
	RoomID string `json:"room_id"`
	Round  int    `json:"round"`
	Word   string `json:"word"`
}

type CorrectGuessPayload struct {
	RoomID        string       `json:"room_id"`
	Word          string       `json:"word"`
	GuesserID     string       `json:"guesser_id"`
	GuesserName   string       `json:"guesser_name"`
	DrawerID      string       `json:"drawer_id"`
	GuesserPoints int          `json:"guesser_points"`
	DrawerPoints  int          `json:"drawer_points"`
	Scores        []ScoreEntry `json:"scores"`
}

type GameEndedPayload struct {
	RoomID     string       `json:"room_id"`
	WinnerID   string       `json:"winner_id"`
	WinnerName string       `json:"winner_name"`
	Score      int          `json:"score"`
	Scores     []ScoreEntry `json:"scores"`
}

type GameEndedEarlyPayload struct {
	RoomID        string `json:"room_id"`
	RemainingID   string `json:"remaining_id,omitempty"`
	RemainingName string `json:"remaining_name,omitempty"`
	Reason        string `json:"reason"`
}

type CanvasPayload struct {
	RoomID string          `json:"room_id"`
	Data   json.RawMessage `json:"data"`
}

type ChatHistoryPayload struct {
	RoomID   string        `json:"room_id"`
	Messages []ChatMessage `json:"messages"`
}

type RoomListPayload struct {
	Rooms []RoomSummary `json:"rooms"`
	Stats Stats         `json:"stats"`
}
