package game

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	drawerBasePoints  = 40
	guesserBasePoints = 30
	bonusStepSeconds  = 10
)

// SubmitGuess evaluates text against the secret word.
func (r *Room) SubmitGuess(id, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitGuessLocked(id, text)
}

func (r *Room) submitGuessLocked(id, text string) {
	round := r.round
	if r.closed || r.status != StatusPlaying || round == nil || round.Phase != RoundActive {
		return
	}
	if id == round.DrawerID {
		return
	}
	guesser, ok := r.members[id]
	if !ok {
		return
	}
	if !strings.EqualFold(strings.TrimSpace(text), strings.TrimSpace(round.Word)) {
		return
	}

	bonus := TimeBonus(round.Remaining)
	drawerPoints := drawerBasePoints + bonus
	guesserPoints := guesserBasePoints + bonus
	r.revokeTimerLocked()
	round.Phase = RoundReveal
	round.Scores.Add(round.DrawerID, drawerPoints)
	round.Scores.Add(guesser.ID, guesserPoints)
	log.Info().
		Str("room_id", r.ID).
		Str("guesser_id", guesser.ID).
		Str("drawer_id", round.DrawerID).
		Int("remaining", round.Remaining).
		Msg("correct guess")

	r.broadcastLocked(Event{Type: EventCorrectGuess, Data: CorrectGuessPayload{
		RoomID:        r.ID,
		Word:          round.Word,
		GuesserID:     guesser.ID,
		GuesserName:   guesser.Name,
		DrawerID:      round.DrawerID,
		GuesserPoints: guesserPoints,
		DrawerPoints:  drawerPoints,
		Scores:        round.Scores.Entries(),
	}})
	if r.checkWinnerLocked() {
		return
	}
	if r.enforceInvariantsLocked() {
		return
	}
	r.scheduleNextRoundLocked(round)
}

// TimeBonus rounds the remaining seconds down to a multiple of ten.
func TimeBonus(remaining int) int {
	if remaining <= 0 {
		return 0
	}
	return remaining / bonusStepSeconds * bonusStepSeconds
}

// checkWinnerLocked finishes the game when a participant reached the winning
// score. Ties go to the earliest entry of the score table.
func (r *Room) checkWinnerLocked() bool {
	if r.round == nil {
		return false
	}
	winner, ok := r.round.Scores.FirstAtOrAbove(r.settings.WinningScore)
	if !ok {
		return false
	}
	scores := r.round.Scores.Entries()
	r.revokeTimerLocked()
	r.status = StatusFinished
	r.round = nil
	log.Info().Str("room_id", r.ID).Str("winner_id", winner.ParticipantID).Int("score", winner.Score).Msg("game finished")

	r.postSystemLocked(fmt.Sprintf("%s wins the game with %d points!", winner.Name, winner.Score))
	payload := GameEndedPayload{
		RoomID:     r.ID,
		WinnerID:   winner.ParticipantID,
		WinnerName: winner.Name,
		Score:      winner.Score,
		Scores:     scores,
	}
	r.broadcastLocked(Event{Type: EventGameEnded, Data: payload})
	r.record(EventGameEnded, payload)
	r.publishLocked()
	return true
}

// enforceInvariantsLocked ends a running game that no longer has enough players.
func (r *Room) enforceInvariantsLocked() bool {
	if r.status == StatusPlaying && len(r.order) <= 1 {
		r.endEarlyLocked()
		return true
	}
	return false
}

func (r *Room) endEarlyLocked() {
	r.revokeTimerLocked()
	r.postSystemLocked("Not enough players to continue, the game is over.")
	payload := GameEndedEarlyPayload{RoomID: r.ID, Reason: reasonNotEnoughPlayers}
	if len(r.order) > 0 {
		remaining := r.members[r.order[0]]
		payload.RemainingID = remaining.ID
		payload.RemainingName = remaining.Name
	}
	r.broadcastLocked(Event{Type: EventGameEndedEarly, Data: payload})
	r.status = StatusFinished
	r.round = nil
	log.Info().Str("room_id", r.ID).Str("reason", payload.Reason).Msg("game ended early")
	r.record(EventGameEndedEarly, payload)
	r.publishLocked()
}
