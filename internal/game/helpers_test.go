package game

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.clock.ignoreStop || t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// manualClock fires timers only when Advance moves time past their deadline.
// With ignoreStop set, stopped timers still fire, which exercises the
// generation guard on the room side.
type manualClock struct {
	mu         sync.Mutex
	now        time.Time
	seq        int
	timers     []*manualTimer
	ignoreStop bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	timer := &manualTimer{clock: c, at: c.now.Add(d), seq: c.seq, fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.fn()
	}
}

func (c *manualClock) nextDueLocked(target time.Time) *manualTimer {
	pending := c.timers[:0]
	for _, timer := range c.timers {
		if timer.fired || (timer.stopped && !c.ignoreStop) {
			continue
		}
		pending = append(pending, timer)
	}
	c.timers = pending
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].at.Equal(c.timers[j].at) {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].at.Before(c.timers[j].at)
	})
	if len(c.timers) == 0 || c.timers[0].at.After(target) {
		return nil
	}
	return c.timers[0]
}

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Send(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) ofType(eventType string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) count(eventType string) int {
	return len(r.ofType(eventType))
}

func (r *recorder) last(t *testing.T, eventType string) Event {
	t.Helper()
	events := r.ofType(eventType)
	require.NotEmpty(t, events, "no %s event", eventType)
	return events[len(events)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type recordedEvent struct {
	roomID    string
	eventType string
}

type sinkRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (s *sinkRecorder) Record(roomID, eventType string, _ any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, recordedEvent{roomID: roomID, eventType: eventType})
}

func (s *sinkRecorder) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.eventType)
	}
	return out
}

type fixture struct {
	t     *testing.T
	clock *manualClock
	sink  *sinkRecorder
	words *WordBank
	lobby *Lobby
	outs  map[string]*recorder
}

var testWords = []string{"apple", "banana", "cherry", "dragon"}

// newFixture builds a lobby on a manual clock. The word bank always picks the
// first remaining candidate so rounds are predictable.
func newFixture(t *testing.T, mutate ...func(*Settings)) *fixture {
	t.Helper()
	settings := DefaultSettings()
	for _, fn := range mutate {
		fn(&settings)
	}
	words := NewWordBank("en", map[string][]string{"en": testWords})
	words.intn = func(int) int { return 0 }
	return newFixtureWithWords(t, settings, words)
}

func newFixtureWithWords(t *testing.T, settings Settings, words *WordBank) *fixture {
	t.Helper()
	clock := newManualClock()
	sink := &sinkRecorder{}
	roomSeq := 0
	lobby := NewLobby(settings, words,
		WithClock(clock),
		WithEventSink(sink),
		WithIDGenerator(func() string {
			roomSeq++
			return fmt.Sprintf("room-%d", roomSeq)
		}),
	)
	return &fixture{
		t:     t,
		clock: clock,
		sink:  sink,
		words: words,
		lobby: lobby,
		outs:  make(map[string]*recorder),
	}
}

func (f *fixture) connect(id, name string) *recorder {
	f.t.Helper()
	out := &recorder{}
	_, err := f.lobby.Connect(id, name, out)
	require.NoError(f.t, err)
	f.outs[id] = out
	return out
}

func (f *fixture) out(id string) *recorder {
	f.t.Helper()
	out, ok := f.outs[id]
	require.True(f.t, ok, "participant %s not connected", id)
	return out
}

// room connects host and guests and seats them in one room, host first.
func (f *fixture) room(host string, guests ...string) *Room {
	f.t.Helper()
	f.connect(host, displayName(host))
	room, err := f.lobby.CreateRoom(host, "Room of "+displayName(host), "en")
	require.NoError(f.t, err)
	for _, guest := range guests {
		f.connect(guest, displayName(guest))
		_, err := f.lobby.JoinRoom(guest, room.ID)
		require.NoError(f.t, err)
	}
	return room
}

func (f *fixture) start(room *Room) {
	f.t.Helper()
	ok, reason, err := f.lobby.StartGame(room.HostID())
	require.NoError(f.t, err)
	require.True(f.t, ok, reason)
}

func (f *fixture) newRounds(id string) []NewRoundPayload {
	f.t.Helper()
	var rounds []NewRoundPayload
	for _, ev := range f.out(id).ofType(EventNewRound) {
		rounds = append(rounds, ev.Data.(NewRoundPayload))
	}
	return rounds
}

func (f *fixture) currentWord(room *Room) string {
	f.t.Helper()
	view, ok := room.Round()
	require.True(f.t, ok)
	return view.Word
}

func displayName(id string) string {
	if id == "" {
		return id
	}
	return strings.ToUpper(id[:1]) + id[1:]
}
