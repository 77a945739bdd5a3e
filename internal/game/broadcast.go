package game

import "github.com/rs/zerolog/log"

// deliver sends to one participant; a failing outbox never affects other recipients.
func deliver(p *Participant, ev Event) {
	if p == nil || p.Outbox == nil {
		return
	}
	if err := p.Outbox.Send(ev); err != nil {
		log.Debug().Err(err).Str("participant_id", p.ID).Str("type", ev.Type).Msg("event delivery failed")
	}
}

func (r *Room) sendLocked(id string, ev Event) {
	deliver(r.members[id], ev)
}

func (r *Room) broadcastLocked(ev Event) {
	for _, id := range r.order {
		deliver(r.members[id], ev)
	}
}

func (r *Room) broadcastExceptLocked(exceptID string, ev Event) {
	for _, id := range r.order {
		if id == exceptID {
			continue
		}
		deliver(r.members[id], ev)
	}
}

// publishLocked pushes the room summary to the registry and refreshes the global room list.
func (r *Room) publishLocked() {
	r.reg.publish(r.summaryLocked())
	r.reg.BroadcastRoomList()
}
