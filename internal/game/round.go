package game

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const tickInterval = time.Second

type RoundPhase string

const (
	RoundActive RoundPhase = "active"
	RoundReveal RoundPhase = "reveal"
)

// Round exists only while the room is playing. Scores and UsedWords persist
// across rounds of the same game.
type Round struct {
	Number      int
	DrawerIndex int
	DrawerID    string
	Word        string
	Remaining   int
	Phase       RoundPhase
	Scores      *ScoreTable
	UsedWords   map[string]struct{}
	Canvas      json.RawMessage
	StartedAt   time.Time
}

func newRound() *Round {
	return &Round{
		Scores:    newScoreTable(),
		UsedWords: make(map[string]struct{}),
	}
}

// startNewRoundLocked rotates the drawer, picks a word and arms the countdown.
func (r *Room) startNewRoundLocked() {
	round := r.round
	if r.closed || round == nil || r.status != StatusPlaying || len(r.order) == 0 {
		return
	}
	if round.Number == 0 {
		round.DrawerIndex = 0
	} else {
		round.DrawerIndex = (round.DrawerIndex + 1) % len(r.order)
	}
	if round.DrawerIndex < 0 {
		round.DrawerIndex = 0
	}
	round.Number++
	round.DrawerID = r.order[round.DrawerIndex]
	round.Word = r.words.Pick(r.Language, round.UsedWords)
	round.UsedWords[round.Word] = struct{}{}
	round.Remaining = r.settings.RoundSeconds
	round.Canvas = nil
	round.Phase = RoundActive
	round.StartedAt = r.clock.Now()

	drawer := r.members[round.DrawerID]
	log.Info().
		Str("room_id", r.ID).
		Int("round", round.Number).
		Str("drawer_id", drawer.ID).
		Msg("round started")

	for _, id := range r.order {
		state := r.roundViewLocked(id)
		r.sendLocked(id, Event{Type: EventNewRound, Data: NewRoundPayload{
			RoomID:     r.ID,
			Round:      round.Number,
			DrawerID:   drawer.ID,
			DrawerName: drawer.Name,
			Word:       state.Word,
			Hint:       state.Hint,
			Duration:   r.settings.RoundSeconds,
			State:      *state,
		}})
	}
	r.armTickLocked(round)
}

func (r *Room) armTickLocked(round *Round) {
	r.armLocked(tickInterval, func() {
		r.tickLocked(round)
	})
}

func (r *Room) tickLocked(round *Round) {
	if r.round != round || r.status != StatusPlaying || round.Phase != RoundActive {
		r.revokeTimerLocked()
		return
	}
	round.Remaining--
	if round.Remaining < 0 {
		round.Remaining = 0
	}
	r.broadcastLocked(Event{Type: EventTimerUpdate, Data: TimerPayload{RoomID: r.ID, Remaining: round.Remaining}})
	if round.Remaining == 0 {
		r.endRoundLocked(round)
		return
	}
	r.armTickLocked(round)
}

// endRoundLocked reveals the word and schedules the next round.
func (r *Room) endRoundLocked(round *Round) {
	r.revokeTimerLocked()
	round.Phase = RoundReveal
	log.Info().Str("room_id", r.ID).Int("round", round.Number).Msg("round ended")
	r.broadcastLocked(Event{Type: EventRoundEnded, Data: RoundEndedPayload{
		RoomID: r.ID,
		Round:  round.Number,
		Word:   round.Word,
	}})
	r.scheduleNextRoundLocked(round)
}

func (r *Room) scheduleNextRoundLocked(round *Round) {
	r.armLocked(r.settings.RoundDelay, func() {
		if r.round != round || r.status != StatusPlaying {
			return
		}
		r.startNewRoundLocked()
	})
}

// armLocked replaces the room's timer. The callback runs under mu and is dropped
// if the room closed or the timer was revoked or replaced after arming.
func (r *Room) armLocked(d time.Duration, fn func()) {
	r.revokeTimerLocked()
	gen := r.timerGen
	r.timer = r.clock.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed || gen != r.timerGen {
			return
		}
		r.timer = nil
		fn()
	})
}

func (r *Room) revokeTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerGen++
}

// adjustDrawerLocked keeps the rotation pointing at the right slot after the
// member at index left. A drawer leaving mid-round ends the round early.
func (r *Room) adjustDrawerLocked(id string, index int) {
	round := r.round
	if round == nil || r.status != StatusPlaying {
		return
	}
	if index <= round.DrawerIndex {
		round.DrawerIndex--
	}
	if id == round.DrawerID && round.Phase == RoundActive {
		r.endRoundLocked(round)
	}
}

func (r *Room) roundViewLocked(forID string) *RoundView {
	round := r.round
	if round == nil {
		return nil
	}
	drawerName := ""
	if drawer, ok := r.members[round.DrawerID]; ok {
		drawerName = drawer.Name
	}
	view := &RoundView{
		Number:     round.Number,
		DrawerID:   round.DrawerID,
		DrawerName: drawerName,
		Hint:       wordHint(round.Word),
		Remaining:  round.Remaining,
		Phase:      round.Phase,
		Scores:     round.Scores.Entries(),
		Canvas:     round.Canvas,
		StartedAt:  round.StartedAt,
	}
	if r.settings.RevealWordToGuessers || forID == round.DrawerID || round.Phase == RoundReveal {
		view.Word = round.Word
	}
	return view
}

// wordHint masks letters with underscores, keeping spaces and hyphens.
func wordHint(word string) string {
	var b strings.Builder
	for _, ch := range word {
		switch ch {
		case ' ', '-':
			b.WriteRune(ch)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
