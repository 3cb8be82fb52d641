package chat

import "time"

// Session captures one anonymous browser or client conversation.
type Session struct {
	ID          string    `json:"id"`
	AssistantID string    `json:"assistantId"`
	CreatedAt   time.Time `json:"createdAt"`
	LastActive  time.Time `json:"lastActive"`
}
