package game

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventSink records room lifecycle events for auditing. Record must not block.
type EventSink interface {
	Record(roomID, eventType string, payload any)
}

// Room is one game session. Every exported method takes mu for its whole run, and
// so does every timer callback, so mutations never interleave.
type Room struct {
	ID        string
	Name      string
	Language  string
	CreatedAt time.Time

	mu       sync.Mutex
	settings Settings
	reg      *Registry
	words    *WordBank
	clock    Clock
	sink     EventSink

	order   []string
	members map[string]*Participant
	hostID  string
	status  Status
	round   *Round
	chat    *ChatLog

	timer    Timer
	timerGen uint64
	closed   bool
}

type roomDeps struct {
	settings Settings
	reg      *Registry
	words    *WordBank
	clock    Clock
	sink     EventSink
}

func newRoom(id, name, language string, host *Participant, deps roomDeps) *Room {
	room := &Room{
		ID:        id,
		Name:      name,
		Language:  language,
		CreatedAt: deps.clock.Now(),
		settings:  deps.settings,
		reg:       deps.reg,
		words:     deps.words,
		clock:     deps.clock,
		sink:      deps.sink,
		members:   make(map[string]*Participant),
		status:    StatusWaiting,
		chat:      newChatLog(deps.settings.ChatHistoryCap),
	}
	room.order = append(room.order, host.ID)
	room.members[host.ID] = host
	room.hostID = host.ID
	return room
}

// AddMember inserts p into the roster. The capacity check, the insert and the
// notification happen under one lock.
func (r *Room) AddMember(p *Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomNotFound
	}
	if _, ok := r.members[p.ID]; ok {
		return nil
	}
	if len(r.order) >= r.settings.MaxPlayers {
		return ErrRoomFull
	}
	r.order = append(r.order, p.ID)
	r.members[p.ID] = p
	if r.hostID == "" {
		r.hostID = p.ID
	}
	r.reg.setRoomOf(p.ID, r.ID)
	if r.round != nil {
		r.round.Scores.Ensure(p.ID, p.Name)
	}
	log.Info().Str("room_id", r.ID).Str("participant_id", p.ID).Int("players", len(r.order)).Msg("player joined")

	r.broadcastLocked(Event{Type: EventPlayerJoined, Data: r.rosterLocked(p)})
	r.sendLocked(p.ID, Event{Type: EventRoomJoined, Data: RoomPayload{Room: r.viewLocked(p.ID)}})
	r.sendLocked(p.ID, Event{Type: EventChatHistory, Data: ChatHistoryPayload{RoomID: r.ID, Messages: r.chat.Messages()}})
	r.postSystemLocked(fmt.Sprintf("%s joined the room", p.Name))
	r.publishLocked()
	return nil
}

// RemoveMember drops id from the roster and re-evaluates the room invariants.
func (r *Room) RemoveMember(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.members[id]
	if !ok {
		return
	}
	index := slices.Index(r.order, id)
	r.order = slices.Delete(r.order, index, index+1)
	delete(r.members, id)
	r.reg.clearRoomOf(id, r.ID)
	log.Info().Str("room_id", r.ID).Str("participant_id", id).Int("players", len(r.order)).Msg("player left")

	r.postSystemLocked(fmt.Sprintf("%s left the room", p.Name))
	if r.hostID == id {
		r.hostID = ""
		if len(r.order) > 0 {
			r.hostID = r.order[0]
			r.postSystemLocked(fmt.Sprintf("%s is now the host", r.members[r.hostID].Name))
		}
	}

	switch {
	case len(r.order) == 0:
		r.teardownLocked()
	case r.status == StatusPlaying && len(r.order) <= 1:
		r.broadcastLocked(Event{Type: EventPlayerLeft, Data: r.rosterLocked(p)})
		r.endEarlyLocked()
	default:
		r.adjustDrawerLocked(id, index)
		r.broadcastLocked(Event{Type: EventPlayerLeft, Data: r.rosterLocked(p)})
		r.publishLocked()
	}
}

// StartGame reports false without changing anything unless the room is waiting,
// has at least two members and requester is the host. The string is a caller-facing reason.
func (r *Room) StartGame(requester string) (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.closed:
		return false, ErrRoomNotFound.Error()
	case r.status == StatusFinished:
		return false, ErrRoomFinished.Error()
	case r.status != StatusWaiting:
		return false, "game already started"
	case len(r.order) < 2:
		return false, "need at least 2 players to start"
	case requester != r.hostID:
		return false, "only the host can start the game"
	}

	r.status = StatusPlaying
	r.round = newRound()
	for _, id := range r.order {
		r.round.Scores.Ensure(id, r.members[id].Name)
	}
	log.Info().Str("room_id", r.ID).Int("players", len(r.order)).Msg("game started")
	r.broadcastLocked(Event{Type: EventGameStarted, Data: GameStartedPayload{RoomID: r.ID, Players: r.playersLocked()}})
	r.record(EventGameStarted, GameStartedPayload{RoomID: r.ID, Players: r.playersLocked()})
	r.startNewRoundLocked()
	r.publishLocked()
	return true, ""
}

// ResetGame returns the room to waiting and discards the round. Host only.
func (r *Room) ResetGame(requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomNotFound
	}
	if requester != r.hostID {
		return ErrNotHost
	}
	if r.status == StatusFinished {
		return ErrRoomFinished
	}
	r.revokeTimerLocked()
	r.status = StatusWaiting
	r.round = nil
	log.Info().Str("room_id", r.ID).Msg("game reset")
	r.broadcastLocked(Event{Type: EventGameReset, Data: GameResetPayload{RoomID: r.ID}})
	r.publishLocked()
	return nil
}

// SendChat relays a chat line to the room. While playing, lines from anyone but
// the drawer are also evaluated as guesses.
func (r *Room) SendChat(id, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.members[id]
	if !ok {
		return ErrNotInRoom
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return requiredField("text")
	}
	msg := ChatMessage{
		RoomID:     r.ID,
		SenderID:   p.ID,
		SenderName: p.Name,
		Text:       text,
		Kind:       ChatPlayer,
		SentAt:     r.clock.Now(),
	}
	r.chat.Append(msg)
	r.broadcastLocked(Event{Type: EventChatMessage, Data: msg})
	if r.status == StatusPlaying && r.round != nil && r.round.DrawerID != id {
		r.submitGuessLocked(id, text)
	}
	return nil
}

// UpdateCanvas stores the drawer's opaque canvas payload and relays it to everyone
// else in the room. An empty payload clears the canvas.
func (r *Room) UpdateCanvas(id string, data json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return ErrNotInRoom
	}
	if r.status != StatusPlaying || r.round == nil || r.round.DrawerID != id {
		return ErrNotDrawer
	}
	var stored json.RawMessage
	if trimmed := strings.TrimSpace(string(data)); trimmed != "" && trimmed != "null" {
		stored = slices.Clone(data)
	}
	r.round.Canvas = stored
	r.broadcastExceptLocked(id, Event{Type: EventCanvasUpdated, Data: CanvasPayload{RoomID: r.ID, Data: stored}})
	return nil
}

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

func (r *Room) Members() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Round returns a full snapshot of the active round, including the word.
func (r *Room) Round() (RoundView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.round == nil {
		return RoundView{}, false
	}
	view := r.roundViewLocked(r.round.DrawerID)
	return *view, true
}

func (r *Room) ChatHistory() []ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chat.Messages()
}

func (r *Room) View() RoomView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked("")
}

func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaryLocked()
}

func (r *Room) teardownLocked() {
	r.closed = true
	r.revokeTimerLocked()
	r.round = nil
	r.chat.Clear()
	r.reg.deregister(r.ID)
	r.reg.BroadcastRoomList()
	r.record("room_closed", LeftRoomPayload{RoomID: r.ID})
	log.Info().Str("room_id", r.ID).Msg("room closed")
}

func (r *Room) postSystemLocked(text string) {
	msg := ChatMessage{
		RoomID: r.ID,
		Text:   text,
		Kind:   ChatSystem,
		SentAt: r.clock.Now(),
	}
	r.chat.Append(msg)
	r.broadcastLocked(Event{Type: EventChatMessage, Data: msg})
}

func (r *Room) record(eventType string, payload any) {
	if r.sink == nil {
		return
	}
	r.sink.Record(r.ID, eventType, payload)
}

func (r *Room) playersLocked() []PlayerView {
	players := make([]PlayerView, 0, len(r.order))
	for _, id := range r.order {
		players = append(players, PlayerView{
			ID:     id,
			Name:   r.members[id].Name,
			IsHost: id == r.hostID,
		})
	}
	return players
}

func (r *Room) rosterLocked(p *Participant) RosterPayload {
	return RosterPayload{
		RoomID:  r.ID,
		Player:  PlayerView{ID: p.ID, Name: p.Name, IsHost: p.ID == r.hostID},
		HostID:  r.hostID,
		Players: r.playersLocked(),
	}
}

func (r *Room) viewLocked(forID string) RoomView {
	view := RoomView{
		ID:         r.ID,
		Name:       r.Name,
		Language:   r.Language,
		Status:     r.status,
		HostID:     r.hostID,
		MaxPlayers: r.settings.MaxPlayers,
		CreatedAt:  r.CreatedAt,
		Players:    r.playersLocked(),
	}
	if r.round != nil {
		view.Round = r.roundViewLocked(forID)
	}
	return view
}

func (r *Room) summaryLocked() RoomSummary {
	hostName := ""
	if host, ok := r.members[r.hostID]; ok {
		hostName = host.Name
	}
	return RoomSummary{
		ID:         r.ID,
		Name:       r.Name,
		Players:    len(r.order),
		MaxPlayers: r.settings.MaxPlayers,
		Status:     r.status,
		Language:   r.Language,
		HostName:   hostName,
		CreatedAt:  r.CreatedAt,
	}
}
