package service

import (
	"github.com/XenomLight/canChat/pkg/rand"
)

// CodeService is an interface that defines the methods that the CodeService must implement.
type CodeService interface {
	// GenerateRoomCode generates a random room code.
	GenerateRoomCode() string

	// GenerateSessionID generates a random session identifier.
	GenerateSessionID() string
}

// CodeServiceImpl implements the CodeService interface.
type CodeServiceImpl struct {
	roomCodeLength  int
	sessionIDLength int
	generator       *rand.Generator
}

// NewCodeService creates a new CodeServiceImpl with the specified room code
// and session identifier lengths.
func NewCodeService(roomCodeLength, sessionIDLength int) *CodeServiceImpl {
	return &CodeServiceImpl{
		roomCodeLength:  roomCodeLength,
		sessionIDLength: sessionIDLength,
		generator:       rand.NewGenerator(rand.Alphabet),
	}
}

// GenerateRoomCode generates a random room code.
func (s *CodeServiceImpl) GenerateRoomCode() string {
	return s.generator.Str(s.roomCodeLength)
}

// GenerateSessionID generates a random session identifier.
func (s *CodeServiceImpl) GenerateSessionID() string {
	return s.generator.Str(s.sessionIDLength)
}
