package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mirrorRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (m *mirrorRecorder) Publish(ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func statusesFromRooms(t *testing.T, lobby *Lobby, ids ...string) map[Status]int {
	t.Helper()
	out := make(map[Status]int)
	for _, id := range ids {
		room, ok := lobby.Room(id)
		require.True(t, ok)
		out[room.Status()]++
	}
	return out
}

func TestStatsMatchRoomStatuses(t *testing.T) {
	f := newFixture(t)
	playing := f.room("alice", "bob")
	f.start(playing)
	waiting := f.room("carol")
	finished := f.room("dave", "erin")
	f.start(finished)
	require.NoError(t, f.lobby.LeaveRoom("erin"))

	want := statusesFromRooms(t, f.lobby, playing.ID, waiting.ID, finished.ID)
	stats := f.lobby.Stats()
	assert.Equal(t, Stats{Rooms: 3, Waiting: 1, Playing: 1, Finished: 1, Participants: 5}, stats)
	assert.Equal(t, want[StatusWaiting], stats.Waiting)
	assert.Equal(t, want[StatusPlaying], stats.Playing)
	assert.Equal(t, want[StatusFinished], stats.Finished)
	assert.Equal(t, map[Status]int{StatusWaiting: 1, StatusPlaying: 1, StatusFinished: 1}, f.lobby.Registry().Counters())

	public := f.lobby.PublicRooms()
	require.Len(t, public, 1)
	assert.Equal(t, waiting.ID, public[0].ID)
}

func TestStatsRepairDriftedCounters(t *testing.T) {
	f := newFixture(t)
	f.room("alice")
	reg := f.lobby.Registry()
	reg.mu.Lock()
	reg.counters[StatusWaiting] = 42
	reg.counters[StatusPlaying] = -1
	reg.mu.Unlock()

	stats := f.lobby.Reconcile()

	assert.Equal(t, 1, stats.Waiting)
	assert.Zero(t, stats.Playing)
	counters := reg.Counters()
	assert.Equal(t, 1, counters[StatusWaiting])
	assert.Zero(t, counters[StatusPlaying])
}

func TestReconcilePicksUpMissedStatusChange(t *testing.T) {
	f := newFixture(t)
	room := f.room("alice", "bob")
	room.mu.Lock()
	room.status = StatusPlaying
	room.mu.Unlock()
	require.Equal(t, 1, f.lobby.Stats().Waiting)

	stats := f.lobby.Reconcile()

	assert.Equal(t, 1, stats.Playing)
	assert.Zero(t, stats.Waiting)
}

func TestFeedMirrorReceivesGlobalEvents(t *testing.T) {
	mirror := &mirrorRecorder{}
	lobby := NewLobby(DefaultSettings(), nil, WithFeedMirror(mirror))
	_, err := lobby.Connect("alice", "Alice", &recorder{})
	require.NoError(t, err)

	_, err = lobby.CreateRoom("alice", "Sketchers", "en")
	require.NoError(t, err)

	mirror.mu.Lock()
	defer mirror.mu.Unlock()
	require.NotEmpty(t, mirror.events)
	last := mirror.events[len(mirror.events)-1]
	assert.Equal(t, EventRoomListUpdated, last.Type)
	assert.Len(t, last.Data.(RoomListPayload).Rooms, 1)
}

type stalledMirror struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (m *stalledMirror) Publish(Event) error {
	m.once.Do(func() { close(m.entered) })
	<-m.release
	return nil
}

func TestStalledFeedMirrorDoesNotHoldRegistry(t *testing.T) {
	mirror := &stalledMirror{entered: make(chan struct{}), release: make(chan struct{})}
	lobby := NewLobby(DefaultSettings(), nil, WithFeedMirror(mirror))
	_, err := lobby.Connect("alice", "Alice", &recorder{})
	require.NoError(t, err)

	created := make(chan error, 1)
	go func() {
		_, err := lobby.CreateRoom("alice", "Sketchers", "en")
		created <- err
	}()
	select {
	case <-mirror.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("mirror was never published to")
	}

	stats := make(chan Stats, 1)
	go func() {
		_, err := lobby.Connect("bob", "Bob", &recorder{})
		if err == nil {
			stats <- lobby.Stats()
		}
	}()
	select {
	case got := <-stats:
		assert.Equal(t, 2, got.Participants)
	case <-time.After(2 * time.Second):
		t.Fatal("registry blocked behind a stalled mirror publish")
	}

	close(mirror.release)
	require.NoError(t, <-created)
}

func TestPublicRoomsOrderedByCreation(t *testing.T) {
	f := newFixture(t)
	first := f.room("alice")
	f.clock.Advance(time.Second)
	second := f.room("bob")

	rooms := f.lobby.PublicRooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, first.ID, rooms[0].ID)
	assert.Equal(t, second.ID, rooms[1].ID)
}
