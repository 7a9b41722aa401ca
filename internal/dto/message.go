package dto

import "github.com/XenomLight/canChat/internal/model"

// MessageDTO represents a data transfer object (DTO) for a chat message.
type MessageDTO struct {
	ID                uint64 `json:"id"`
	SenderSessionID   string `json:"sender_session_id"`
	SenderDisplayName string `json:"sender_display_name"`
	Content           string `json:"content"`
	Timestamp         int64  `json:"timestamp"`
}

// SendMessageRequestDTO represents a data transfer object (DTO) for a message send request.
type SendMessageRequestDTO struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

// NewMessageDTO converts a message model into its boundary representation.
func NewMessageDTO(message model.Message) MessageDTO {
	return MessageDTO{
		ID:                message.ID,
		SenderSessionID:   message.SenderSessionID,
		SenderDisplayName: message.SenderDisplayName,
		Content:           message.Content,
		Timestamp:         message.SentAt.UnixNano(),
	}
}
