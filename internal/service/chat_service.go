package service

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/XenomLight/canChat/internal/metrics"
	"github.com/XenomLight/canChat/internal/model"
)

const (
	// SessionTimeout is the default inactivity window after which rooms and
	// session records expire.
	SessionTimeout = 20 * time.Minute

	// maxCodeAttempts bounds room code generation retries on collision.
	maxCodeAttempts = 10
)

var (
	// ErrCodeExhausted is returned when a unique room code could not be generated within the retry budget.
	ErrCodeExhausted = errors.New("failed to generate unique room code")
	// ErrNotAMember is returned when the session is not a member of the room.
	ErrNotAMember = errors.New("user is not a member of the room")
)

// CreateRoomResult carries the outcome of a successful room creation.
type CreateRoomResult struct {
	RoomCode  string
	Room      model.Room
	SessionID string
}

// JoinRoomResult carries the outcome of a successful room join.
type JoinRoomResult struct {
	Room      model.Room
	SessionID string
}

// ChatService is an interface that defines the operations exposed to the chat room boundary.
type ChatService interface {
	// CreateRoom creates a new room with the caller as sole member and creator.
	CreateRoom(callerIdentity string) (*CreateRoomResult, error)

	// JoinRoom adds the caller to the room. An empty sessionID asks for a
	// fresh session; a session already in the room re-joins idempotently.
	JoinRoom(roomCode, sessionID, callerIdentity string) (*JoinRoomResult, error)

	// SendMessage appends a message to the room on behalf of the session.
	SendMessage(roomCode, sessionID, content string) (*model.Message, error)

	// LeaveRoom removes the session from the room, deleting the room when
	// the last member leaves. It returns false only if the room does not
	// exist.
	LeaveRoom(roomCode, sessionID string) bool

	// EndRoom deletes the room if the session created it, reporting whether
	// a deletion occurred. The creator may end a room that is already stale.
	EndRoom(roomCode, sessionID string) bool

	// GetRoom returns a snapshot of a live room.
	GetRoom(roomCode string) (model.Room, bool)

	// GetMessages returns the messages of a live room, or an empty sequence.
	GetMessages(roomCode string) []model.Message

	// Sweep deletes expired rooms and session records, returning the counts.
	Sweep() (rooms, sessions int)
}

// ChatServiceImpl implements the ChatService interface.
type ChatServiceImpl struct {
	codes    CodeService
	sessions SessionRegistry
	rooms    RoomStore
	timeout  time.Duration
	msgSeq   atomic.Uint64
	now      func() time.Time
}

// NewChatService creates a new ChatServiceImpl instance composed of the
// provided code, session, and room services.
func NewChatService(codes CodeService, sessions SessionRegistry, rooms RoomStore, opts ...ChatServiceOpt) *ChatServiceImpl {
	service := &ChatServiceImpl{
		codes:    codes,
		sessions: sessions,
		rooms:    rooms,
		timeout:  SessionTimeout,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// ChatServiceOpt represents an option that can be passed to NewChatService.
type ChatServiceOpt func(*ChatServiceImpl)

// WithTimeout sets the inactivity window for rooms and session records.
func WithTimeout(timeout time.Duration) ChatServiceOpt {
	return func(s *ChatServiceImpl) {
		s.timeout = timeout
	}
}

// WithClock sets the time source used for activity stamps and expiry checks.
func WithClock(now func() time.Time) ChatServiceOpt {
	return func(s *ChatServiceImpl) {
		s.now = now
	}
}

// CreateRoom creates a new room with a freshly generated code and session.
// Code generation is retried on collision with a live room; the retry budget
// keeps the operation terminating even with a saturated code space.
func (s *ChatServiceImpl) CreateRoom(callerIdentity string) (*CreateRoomResult, error) {
	now := s.now()
	s.sweep(now)

	sessionID := s.codes.GenerateSessionID()
	participant := s.sessions.Resolve(sessionID, callerIdentity, now)

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := s.codes.GenerateRoomCode()
		room := model.Room{
			Code:             code,
			CreatorSessionID: sessionID,
			Participants:     []model.Participant{participant},
			Messages:         []model.Message{},
			CreatedAt:        now,
			LastActivity:     now,
		}

		if err := s.rooms.CreateUnique(code, room); err != nil {
			if errors.Is(err, ErrRoomAlreadyExists) {
				continue
			}
			return nil, err
		}

		metrics.RoomsCreated.Inc()
		metrics.RoomsLive.Set(float64(s.rooms.Len()))

		return &CreateRoomResult{
			RoomCode:  code,
			Room:      room,
			SessionID: sessionID,
		}, nil
	}

	return nil, ErrCodeExhausted
}

// JoinRoom adds the caller to the room. A session already present in the
// room re-joins idempotently: the room is returned unchanged and its
// activity is not bumped.
func (s *ChatServiceImpl) JoinRoom(roomCode, sessionID, callerIdentity string) (*JoinRoomResult, error) {
	now := s.now()
	s.sweep(now)

	if sessionID == "" {
		sessionID = s.codes.GenerateSessionID()
	}
	participant := s.sessions.Resolve(sessionID, callerIdentity, now)

	room, err := s.rooms.Mutate(roomCode, now, func(room *model.Room) (bool, error) {
		for _, p := range room.Participants {
			if p.SessionID == participant.SessionID {
				return false, nil
			}
		}

		room.Participants = append(room.Participants, participant)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return &JoinRoomResult{
		Room:      room,
		SessionID: participant.SessionID,
	}, nil
}

// SendMessage appends a message to the room on behalf of the session. The
// message id is allocated only after the membership check passes, so failed
// sends leave no gaps in the sequence.
func (s *ChatServiceImpl) SendMessage(roomCode, sessionID, content string) (*model.Message, error) {
	now := s.now()
	s.sweep(now)

	var message model.Message
	_, err := s.rooms.Mutate(roomCode, now, func(room *model.Room) (bool, error) {
		var sender *model.Participant
		for i := range room.Participants {
			if room.Participants[i].SessionID == sessionID {
				sender = &room.Participants[i]
				break
			}
		}
		if sender == nil {
			return false, ErrNotAMember
		}

		message = model.Message{
			ID:                s.msgSeq.Add(1) - 1,
			SenderSessionID:   sessionID,
			SenderDisplayName: sender.DisplayName,
			Content:           content,
			SentAt:            now,
		}
		room.Messages = append(room.Messages, message)

		return true, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.MessagesSent.Inc()

	return &message, nil
}

// LeaveRoom removes the session from the room. Leaving a room the session
// never joined still succeeds; the room is deleted when its last member
// leaves. Returns false only if the room does not exist or has expired.
func (s *ChatServiceImpl) LeaveRoom(roomCode, sessionID string) bool {
	now := s.now()
	s.sweep(now)

	_, err := s.rooms.Mutate(roomCode, now, func(room *model.Room) (bool, error) {
		for i, p := range room.Participants {
			if p.SessionID == sessionID {
				room.Participants = append(room.Participants[:i], room.Participants[i+1:]...)
				return true, nil
			}
		}

		return false, nil
	})
	if err != nil {
		return false
	}

	metrics.RoomsLive.Set(float64(s.rooms.Len()))

	return true
}

// EndRoom deletes the room if the session created it. There is no expiry
// check: the creator may end a room that is already stale.
func (s *ChatServiceImpl) EndRoom(roomCode, sessionID string) bool {
	ended := s.rooms.Delete(roomCode, func(room model.Room) bool {
		return room.CreatorSessionID == sessionID
	})
	if ended {
		metrics.RoomsEnded.Inc()
		metrics.RoomsLive.Set(float64(s.rooms.Len()))
	}

	return ended
}

// GetRoom returns a snapshot of a live room. Stale rooms are reported as
// absent without being deleted; reclamation is left to the next sweep.
func (s *ChatServiceImpl) GetRoom(roomCode string) (model.Room, bool) {
	if !s.rooms.IsLive(roomCode, s.now()) {
		return model.Room{}, false
	}

	return s.rooms.Get(roomCode)
}

// GetMessages returns the messages of a live room. Absent and stale rooms
// both yield an empty sequence.
func (s *ChatServiceImpl) GetMessages(roomCode string) []model.Message {
	if !s.rooms.IsLive(roomCode, s.now()) {
		return []model.Message{}
	}

	messages := s.rooms.Messages(roomCode)
	if messages == nil {
		messages = []model.Message{}
	}

	return messages
}

// Sweep deletes expired rooms and session records.
func (s *ChatServiceImpl) Sweep() (int, int) {
	return s.sweep(s.now())
}

func (s *ChatServiceImpl) sweep(now time.Time) (int, int) {
	rooms := s.rooms.SweepExpired(now)
	sessions := s.sessions.ExpireOlderThan(s.timeout, now)

	metrics.SweepRuns.Inc()
	metrics.RoomsLive.Set(float64(s.rooms.Len()))
	if rooms > 0 {
		metrics.RoomsExpired.Add(float64(rooms))
	}
	if sessions > 0 {
		metrics.SessionsExpired.Add(float64(sessions))
	}

	return rooms, sessions
}
