package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatLogDropsOldest(t *testing.T) {
	log := newChatLog(100)
	for i := 0; i < 105; i++ {
		log.Append(ChatMessage{Text: fmt.Sprintf("message %d", i)})
	}

	require.Equal(t, 100, log.Len())
	messages := log.Messages()
	assert.Equal(t, "message 5", messages[0].Text)
	assert.Equal(t, "message 104", messages[99].Text)

	messages[0].Text = "mutated"
	assert.Equal(t, "message 5", log.Messages()[0].Text)

	log.Clear()
	assert.Zero(t, log.Len())
}

func TestScoreTableKeepsInsertionOrder(t *testing.T) {
	table := newScoreTable()
	table.Ensure("carol", "Carol")
	table.Ensure("alice", "Alice")
	table.Ensure("carol", "Carol again")

	assert.Equal(t, 15, table.Add("alice", 15))
	assert.Equal(t, 25, table.Add("alice", 10))
	assert.Equal(t, 25, table.Get("alice"))

	assert.Equal(t, []ScoreEntry{
		{ParticipantID: "carol", Name: "Carol", Score: 0},
		{ParticipantID: "alice", Name: "Alice", Score: 25},
	}, table.Entries())

	_, ok := table.FirstAtOrAbove(30)
	assert.False(t, ok)
	table.Add("carol", 30)
	table.Add("alice", 5)
	winner, ok := table.FirstAtOrAbove(30)
	assert.True(t, ok)
	assert.Equal(t, "carol", winner.ParticipantID)
}
