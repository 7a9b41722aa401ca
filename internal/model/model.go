package model

import "time"

// Participant represents a model for a chat participant resolved from a
// session identifier.
type Participant struct {
	SessionID      string    `json:"session_id"`
	CallerIdentity string    `json:"-"`
	DisplayName    string    `json:"display_name"`
	JoinedAt       time.Time `json:"joined_at"`
}

// Message represents a model for a single chat message. Messages are
// immutable once appended; ID ordering is the canonical message order.
type Message struct {
	ID                uint64    `json:"id"`
	SenderSessionID   string    `json:"sender_session_id"`
	SenderDisplayName string    `json:"sender_display_name"`
	Content           string    `json:"content"`
	SentAt            time.Time `json:"sent_at"`
}

// Room represents a model for a chat room aggregate. Participants are kept
// in join order and messages in append order.
type Room struct {
	Code             string        `json:"code"`
	CreatorSessionID string        `json:"creator_session_id"`
	Participants     []Participant `json:"participants"`
	Messages         []Message     `json:"messages"`
	CreatedAt        time.Time     `json:"created_at"`
	LastActivity     time.Time     `json:"last_activity"`
}
