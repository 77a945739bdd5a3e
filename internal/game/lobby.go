package game

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Lobby is the entry point for the connection layer: it resolves the calling
// participant and their room, then invokes the room operation.
type Lobby struct {
	settings Settings
	reg      *Registry
	words    *WordBank
	clock    Clock
	sink     EventSink
	newID    func() string
}

type Option func(*Lobby)

func WithClock(clock Clock) Option {
	return func(l *Lobby) { l.clock = clock }
}

func WithEventSink(sink EventSink) Option {
	return func(l *Lobby) { l.sink = sink }
}

func WithFeedMirror(mirror FeedMirror) Option {
	return func(l *Lobby) { l.reg.SetMirror(mirror) }
}

func WithIDGenerator(newID func() string) Option {
	return func(l *Lobby) { l.newID = newID }
}

func NewLobby(settings Settings, words *WordBank, opts ...Option) *Lobby {
	settings = settings.withDefaults()
	if words == nil {
		words = NewWordBank(settings.DefaultLanguage, DefaultWordLists())
	}
	l := &Lobby{
		settings: settings,
		reg:      NewRegistry(),
		words:    words,
		clock:    systemClock{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lobby) Settings() Settings {
	return l.settings
}

// LanguageInfo describes one playable word list.
type LanguageInfo struct {
	Tag     string `json:"tag"`
	Words   int    `json:"words"`
	Default bool   `json:"default"`
}

// Languages lists the word lists rooms can be created with.
func (l *Lobby) Languages() []LanguageInfo {
	fallback := l.words.Resolve("")
	tags := l.words.Languages()
	out := make([]LanguageInfo, 0, len(tags))
	for _, tag := range tags {
		out = append(out, LanguageInfo{
			Tag:     tag,
			Words:   len(l.words.Words(tag)),
			Default: tag == fallback,
		})
	}
	return out
}

func (l *Lobby) Registry() *Registry {
	return l.reg
}

// Connect registers a participant and sends them the current room list.
func (l *Lobby) Connect(id, name string, out Outbox) (*Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, requiredField("name")
	}
	if id == "" {
		id = l.newID()
	}
	p := &Participant{ID: id, Name: name, Outbox: out}
	if err := l.reg.addParticipant(p); err != nil {
		return nil, err
	}
	log.Info().Str("participant_id", id).Str("name", name).Msg("participant connected")
	deliver(p, l.reg.RoomListEvent())
	return p, nil
}

// Disconnect leaves the current room, if any, then forgets the participant.
func (l *Lobby) Disconnect(id string) {
	if room, ok := l.currentRoom(id); ok {
		room.RemoveMember(id)
	}
	l.reg.removeParticipant(id)
	log.Info().Str("participant_id", id).Msg("participant disconnected")
}

func (l *Lobby) CreateRoom(participantID, name, language string) (*Room, error) {
	p, ok := l.reg.Participant(participantID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, requiredField("name")
	}
	if language = normalizeLanguage(language); language == "" {
		language = l.settings.DefaultLanguage
	}
	if !l.words.Has(language) {
		log.Debug().Str("language", language).Str("fallback", l.words.Resolve(language)).Msg("unknown room language")
	}
	language = l.words.Resolve(language)
	l.leaveCurrent(p)

	room := newRoom(l.newID(), name, language, p, roomDeps{
		settings: l.settings,
		reg:      l.reg,
		words:    l.words,
		clock:    l.clock,
		sink:     l.sink,
	})
	room.mu.Lock()
	defer room.mu.Unlock()
	l.reg.register(room, room.summaryLocked())
	l.reg.setRoomOf(p.ID, room.ID)
	log.Info().Str("room_id", room.ID).Str("host_id", p.ID).Str("language", language).Msg("room created")
	room.record(EventRoomCreated, room.summaryLocked())
	room.sendLocked(p.ID, Event{Type: EventRoomCreated, Data: RoomPayload{Room: room.viewLocked(p.ID)}})
	l.reg.BroadcastRoomList()
	return room, nil
}

func (l *Lobby) JoinRoom(participantID, roomID string) (*Room, error) {
	p, ok := l.reg.Participant(participantID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if strings.TrimSpace(roomID) == "" {
		return nil, requiredField("room_id")
	}
	room, ok := l.reg.Room(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if l.reg.RoomOf(p.ID) == room.ID {
		return room, nil
	}
	l.leaveCurrent(p)
	if err := room.AddMember(p); err != nil {
		return nil, err
	}
	return room, nil
}

func (l *Lobby) LeaveRoom(participantID string) error {
	p, ok := l.reg.Participant(participantID)
	if !ok {
		return ErrUnknownPlayer
	}
	if !l.leaveCurrent(p) {
		return ErrNotInRoom
	}
	return nil
}

// StartGame returns ok=false with a caller-facing reason when the room cannot start.
func (l *Lobby) StartGame(participantID string) (bool, string, error) {
	room, err := l.roomFor(participantID)
	if err != nil {
		return false, "", err
	}
	ok, reason := room.StartGame(participantID)
	return ok, reason, nil
}

func (l *Lobby) ResetGame(participantID string) error {
	room, err := l.roomFor(participantID)
	if err != nil {
		return err
	}
	return room.ResetGame(participantID)
}

func (l *Lobby) SubmitGuess(participantID, text string) error {
	room, err := l.roomFor(participantID)
	if err != nil {
		return err
	}
	room.SubmitGuess(participantID, text)
	return nil
}

func (l *Lobby) SendChat(participantID, text string) error {
	room, err := l.roomFor(participantID)
	if err != nil {
		return err
	}
	return room.SendChat(participantID, text)
}

func (l *Lobby) UpdateCanvas(participantID string, data json.RawMessage) error {
	room, err := l.roomFor(participantID)
	if err != nil {
		return err
	}
	return room.UpdateCanvas(participantID, data)
}

func (l *Lobby) ClearCanvas(participantID string) error {
	return l.UpdateCanvas(participantID, nil)
}

func (l *Lobby) Room(id string) (*Room, bool) {
	return l.reg.Room(id)
}

func (l *Lobby) PublicRooms() []RoomSummary {
	return l.reg.PublicRooms()
}

func (l *Lobby) Stats() Stats {
	return l.reg.Stats()
}

// Reconcile re-reads every room's status and pushes it to the registry before
// recomputing the aggregates.
func (l *Lobby) Reconcile() Stats {
	for _, room := range l.reg.roomsSnapshot() {
		room.mu.Lock()
		if !room.closed {
			l.reg.publish(room.summaryLocked())
		}
		room.mu.Unlock()
	}
	return l.reg.Stats()
}

func (l *Lobby) SendTo(participantID string, ev Event) {
	if p, ok := l.reg.Participant(participantID); ok {
		deliver(p, ev)
	}
}

func (l *Lobby) roomFor(participantID string) (*Room, error) {
	if _, ok := l.reg.Participant(participantID); !ok {
		return nil, ErrUnknownPlayer
	}
	room, ok := l.currentRoom(participantID)
	if !ok {
		return nil, ErrNotInRoom
	}
	return room, nil
}

func (l *Lobby) currentRoom(participantID string) (*Room, bool) {
	roomID := l.reg.RoomOf(participantID)
	if roomID == "" {
		return nil, false
	}
	return l.reg.Room(roomID)
}

func (l *Lobby) leaveCurrent(p *Participant) bool {
	room, ok := l.currentRoom(p.ID)
	if !ok {
		return false
	}
	room.RemoveMember(p.ID)
	deliver(p, Event{Type: EventLeftRoom, Data: LeftRoomPayload{RoomID: room.ID}})
	return true
}
