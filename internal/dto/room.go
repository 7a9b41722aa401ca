package dto

import "github.com/XenomLight/canChat/internal/model"

// ParticipantDTO represents a data transfer object (DTO) for a room participant.
type ParticipantDTO struct {
	SessionID   string `json:"session_id"`
	DisplayName string `json:"display_name"`
	JoinedAt    int64  `json:"joined_at"`
}

// RoomDTO represents a data transfer object (DTO) for a chat room.
// Timestamps cross the boundary as nanoseconds since epoch.
type RoomDTO struct {
	Code             string           `json:"code"`
	CreatorSessionID string           `json:"creator_session_id"`
	Participants     []ParticipantDTO `json:"participants"`
	Messages         []MessageDTO     `json:"messages"`
	CreatedAt        int64            `json:"created_at"`
	LastActivity     int64            `json:"last_activity"`
}

// CreateRoomResponseDTO represents a data transfer object (DTO) for a room creation response.
type CreateRoomResponseDTO struct {
	RoomCode  string  `json:"room_code"`
	Room      RoomDTO `json:"room"`
	SessionID string  `json:"session_id"`
}

// JoinRoomRequestDTO represents a data transfer object (DTO) for a room join request.
// SessionID may carry a previously issued session identifier to re-join with.
type JoinRoomRequestDTO struct {
	SessionID string `json:"session_id,omitempty"`
}

// JoinRoomResponseDTO represents a data transfer object (DTO) for a room join response.
type JoinRoomResponseDTO struct {
	Room      RoomDTO `json:"room"`
	SessionID string  `json:"session_id"`
}

// LeaveRoomRequestDTO represents a data transfer object (DTO) for a room leave request.
type LeaveRoomRequestDTO struct {
	SessionID string `json:"session_id"`
}

// LeaveRoomResponseDTO represents a data transfer object (DTO) for a room leave response.
type LeaveRoomResponseDTO struct {
	Left bool `json:"left"`
}

// EndRoomRequestDTO represents a data transfer object (DTO) for a room end request.
type EndRoomRequestDTO struct {
	SessionID string `json:"session_id"`
}

// EndRoomResponseDTO represents a data transfer object (DTO) for a room end response.
type EndRoomResponseDTO struct {
	Ended bool `json:"ended"`
}

// NewRoomDTO converts a room model into its boundary representation.
func NewRoomDTO(room model.Room) RoomDTO {
	participants := make([]ParticipantDTO, 0, len(room.Participants))
	for _, p := range room.Participants {
		participants = append(participants, ParticipantDTO{
			SessionID:   p.SessionID,
			DisplayName: p.DisplayName,
			JoinedAt:    p.JoinedAt.UnixNano(),
		})
	}

	messages := make([]MessageDTO, 0, len(room.Messages))
	for _, m := range room.Messages {
		messages = append(messages, NewMessageDTO(m))
	}

	return RoomDTO{
		Code:             room.Code,
		CreatorSessionID: room.CreatorSessionID,
		Participants:     participants,
		Messages:         messages,
		CreatedAt:        room.CreatedAt.UnixNano(),
		LastActivity:     room.LastActivity.UnixNano(),
	}
}
