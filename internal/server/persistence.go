package server

import (
	"sync"

	"sketch-rooms/internal/db"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const eventQueueDepth = 512

type pendingEvent struct {
	roomID    string
	eventType string
	payload   any
}

// eventRecorder writes room lifecycle events to the audit table on its own
// goroutine. Record never blocks; when the queue is full the event is dropped.
type eventRecorder struct {
	db    *gorm.DB
	queue chan pendingEvent
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

func newEventRecorder(conn *gorm.DB) *eventRecorder {
	if conn == nil {
		return nil
	}
	r := &eventRecorder{
		db:    conn,
		queue: make(chan pendingEvent, eventQueueDepth),
		done:  make(chan struct{}),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

func (r *eventRecorder) Record(roomID, eventType string, payload any) {
	if r == nil {
		return
	}
	select {
	case <-r.done:
		return
	default:
	}
	select {
	case r.queue <- pendingEvent{roomID: roomID, eventType: eventType, payload: payload}:
	default:
		log.Warn().Str("room_id", roomID).Str("type", eventType).Msg("event log queue full, dropping event")
	}
}

func (r *eventRecorder) run() {
	defer r.wg.Done()
	for {
		select {
		case ev := <-r.queue:
			r.write(ev)
		case <-r.done:
			for {
				select {
				case ev := <-r.queue:
					r.write(ev)
				default:
					return
				}
			}
		}
	}
}

func (r *eventRecorder) write(ev pendingEvent) {
	if err := db.RecordEvent(r.db, ev.roomID, ev.eventType, ev.payload); err != nil {
		log.Error().Err(err).Str("room_id", ev.roomID).Str("type", ev.eventType).Msg("persist event failed")
	}
}

// Close flushes queued events and stops the writer.
func (r *eventRecorder) Close() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
}
