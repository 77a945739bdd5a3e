package game

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Participant is a connected client. Name and Outbox never change after connect;
// RoomID is owned by the Registry.
type Participant struct {
	ID     string
	Name   string
	Outbox Outbox
	roomID string
}

// FeedMirror receives a copy of every event sent to the global audience.
type FeedMirror interface {
	Publish(Event) error
}

// RoomSummary is the public listing entry a room pushes to the registry on every
// status or roster change.
type RoomSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Players    int       `json:"players"`
	MaxPlayers int       `json:"max_players"`
	Status     Status    `json:"status"`
	Language   string    `json:"language"`
	HostName   string    `json:"host_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Registry owns the participant and room maps plus the status counters.
// Lock order: a Room may call into the Registry while holding its own lock;
// the Registry never calls into a Room while holding mu.
type Registry struct {
	mu           sync.Mutex
	participants map[string]*Participant
	rooms        map[string]*Room
	summaries    map[string]RoomSummary
	counters     map[Status]int
	mirror       FeedMirror
}

func NewRegistry() *Registry {
	return &Registry{
		participants: make(map[string]*Participant),
		rooms:        make(map[string]*Room),
		summaries:    make(map[string]RoomSummary),
		counters:     make(map[Status]int),
	}
}

func (g *Registry) SetMirror(mirror FeedMirror) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mirror = mirror
}

func (g *Registry) addParticipant(p *Participant) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.participants[p.ID]; ok {
		return ErrDuplicatePlayer
	}
	g.participants[p.ID] = p
	return nil
}

func (g *Registry) removeParticipant(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.participants, id)
}

func (g *Registry) Participant(id string) (*Participant, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.participants[id]
	return p, ok
}

// RoomOf returns the room id the participant currently belongs to.
func (g *Registry) RoomOf(id string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.participants[id]; ok {
		return p.roomID
	}
	return ""
}

func (g *Registry) setRoomOf(id, roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.participants[id]; ok {
		p.roomID = roomID
	}
}

// clearRoomOf resets the back-reference only if it still points at roomID.
func (g *Registry) clearRoomOf(id, roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.participants[id]; ok && p.roomID == roomID {
		p.roomID = ""
	}
}

func (g *Registry) ParticipantCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.participants)
}

func (g *Registry) register(room *Room, summary RoomSummary) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms[room.ID] = room
	g.summaries[room.ID] = summary
	g.counters[summary.Status]++
}

func (g *Registry) deregister(roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	summary, ok := g.summaries[roomID]
	if !ok {
		return
	}
	g.counters[summary.Status]--
	delete(g.summaries, roomID)
	delete(g.rooms, roomID)
}

// publish replaces a room's summary, moving the status counters in the same
// critical section.
func (g *Registry) publish(summary RoomSummary) {
	g.mu.Lock()
	defer g.mu.Unlock()
	previous, ok := g.summaries[summary.ID]
	if !ok {
		return
	}
	if previous.Status != summary.Status {
		g.counters[previous.Status]--
		g.counters[summary.Status]++
	}
	g.summaries[summary.ID] = summary
}

func (g *Registry) Room(id string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[id]
	return room, ok
}

func (g *Registry) roomsSnapshot() []*Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// PublicRooms lists waiting rooms, oldest first.
func (g *Registry) PublicRooms() []RoomSummary {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.publicRoomsLocked()
}

func (g *Registry) publicRoomsLocked() []RoomSummary {
	list := make([]RoomSummary, 0, len(g.summaries))
	for _, summary := range g.summaries {
		if summary.Status != StatusWaiting {
			continue
		}
		list = append(list, summary)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// Stats recomputes the aggregates from the registered summaries and repairs the
// cached counters if they drifted.
func (g *Registry) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statsLocked()
}

func (g *Registry) statsLocked() Stats {
	stats := Stats{
		Rooms:        len(g.summaries),
		Participants: len(g.participants),
	}
	actual := make(map[Status]int, 3)
	for _, summary := range g.summaries {
		actual[summary.Status]++
	}
	stats.Waiting = actual[StatusWaiting]
	stats.Playing = actual[StatusPlaying]
	stats.Finished = actual[StatusFinished]
	for _, status := range []Status{StatusWaiting, StatusPlaying, StatusFinished} {
		if g.counters[status] != actual[status] {
			log.Warn().
				Str("status", string(status)).
				Int("cached", g.counters[status]).
				Int("actual", actual[status]).
				Msg("room counter drift repaired")
			g.counters[status] = actual[status]
		}
	}
	return stats
}

// Counters returns the cached per-status counters without reconciling them.
func (g *Registry) Counters() map[Status]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[Status]int, len(g.counters))
	for status, count := range g.counters {
		out[status] = count
	}
	return out
}

func (g *Registry) roomListEventLocked() Event {
	return Event{Type: EventRoomListUpdated, Data: RoomListPayload{
		Rooms: g.publicRoomsLocked(),
		Stats: g.statsLocked(),
	}}
}

// RoomListEvent builds the current public room list.
func (g *Registry) RoomListEvent() Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roomListEventLocked()
}

// BroadcastRoomList sends the public room list to every connected participant.
func (g *Registry) BroadcastRoomList() {
	g.mu.Lock()
	ev := g.roomListEventLocked()
	mirror := g.broadcastAllLocked(ev)
	g.mu.Unlock()
	publishMirror(mirror, ev)
}

func (g *Registry) BroadcastAll(ev Event) {
	g.mu.Lock()
	mirror := g.broadcastAllLocked(ev)
	g.mu.Unlock()
	publishMirror(mirror, ev)
}

// broadcastAllLocked delivers ev to every participant and returns the mirror
// the caller must publish to once g.mu is released.
func (g *Registry) broadcastAllLocked(ev Event) FeedMirror {
	for _, p := range g.participants {
		deliver(p, ev)
	}
	return g.mirror
}

func publishMirror(mirror FeedMirror, ev Event) {
	if mirror == nil {
		return
	}
	if err := mirror.Publish(ev); err != nil {
		log.Warn().Err(err).Str("type", ev.Type).Msg("feed mirror publish failed")
	}
}
