package validation

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyRoomCode is returned when no room code is provided.
	ErrEmptyRoomCode = errors.New("please enter a room code")
	// ErrInvalidRoomCode is returned when an invalid room code is provided.
	ErrInvalidRoomCode = errors.New("room code must be exactly 6 uppercase letters or digits")
	// ErrEmptyMessageContent is returned when a message has no content after trimming whitespace.
	ErrEmptyMessageContent = errors.New("message content must not be empty")
)

// RoomCodeLength is the required length of a room code.
const RoomCodeLength = 6

// ValidateRoomCode validates the provided room code.
// It checks that the code is exactly RoomCodeLength characters long and
// consists only of uppercase letters and digits.
func ValidateRoomCode(code string) error {
	if code == "" {
		return ErrEmptyRoomCode
	}

	if len(code) != RoomCodeLength {
		return ErrInvalidRoomCode
	}

	for _, c := range code {
		if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", c) {
			return ErrInvalidRoomCode
		}
	}

	return nil
}

// ValidateMessageContent validates the provided message content.
// It checks that the content is not empty after trimming whitespace.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessageContent
	}

	return nil
}
