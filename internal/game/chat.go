package game

import "time"

type ChatKind string

const (
	ChatPlayer ChatKind = "player"
	ChatSystem ChatKind = "system"
)

type ChatMessage struct {
	RoomID     string    `json:"room_id"`
	SenderID   string    `json:"sender_id,omitempty"`
	SenderName string    `json:"sender_name,omitempty"`
	Text       string    `json:"text"`
	Kind       ChatKind  `json:"kind"`
	SentAt     time.Time `json:"sent_at"`
}

// ChatLog keeps the most recent messages of a room.
type ChatLog struct {
	limit    int
	messages []ChatMessage
}

func newChatLog(limit int) *ChatLog {
	if limit <= 0 {
		limit = 1
	}
	return &ChatLog{limit: limit}
}

func (c *ChatLog) Append(msg ChatMessage) {
	c.messages = append(c.messages, msg)
	if over := len(c.messages) - c.limit; over > 0 {
		c.messages = append(c.messages[:0:0], c.messages[over:]...)
	}
}

func (c *ChatLog) Messages() []ChatMessage {
	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *ChatLog) Len() int {
	return len(c.messages)
}

func (c *ChatLog) Clear() {
	c.messages = nil
}
