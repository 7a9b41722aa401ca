package service

import (
	"errors"
	"sync"
	"time"

	"github.com/XenomLight/canChat/internal/model"
)

var (
	// ErrRoomAlreadyExists is returned when a room with the provided code already exists.
	ErrRoomAlreadyExists = errors.New("room with the provided code already exists")
	// ErrRoomNotFound is returned when a requested room is not found.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomExpired is returned when a requested room has exceeded its inactivity timeout.
	ErrRoomExpired = errors.New("room has expired")
)

// RoomStore is an interface that defines the methods required for room aggregate storage and expiry.
type RoomStore interface {
	// CreateUnique inserts the room under the given code only if the code is
	// absent, returning ErrRoomAlreadyExists otherwise so the caller can
	// retry with a freshly generated code.
	CreateUnique(code string, room model.Room) error

	// Mutate applies fn to the stored room under exclusive access. When fn
	// reports a change, the room's last activity is replaced with now and
	// the updated aggregate is stored; a room left without participants is
	// deleted instead. Returns ErrRoomNotFound if the code is absent, and
	// ErrRoomExpired after deleting a present-but-stale room. The returned
	// room is a snapshot of the state after the call.
	Mutate(code string, now time.Time, fn func(room *model.Room) (changed bool, err error)) (model.Room, error)

	// IsLive reports whether a room exists under the code and its last
	// activity is within the inactivity timeout. Observing false for an
	// existing room does not delete it; deletion is left to the next sweep
	// or mutation.
	IsLive(code string, now time.Time) bool

	// Get returns a snapshot of the stored room regardless of staleness.
	Get(code string) (model.Room, bool)

	// Messages returns a snapshot of the stored room's messages, or nil if
	// the code is absent.
	Messages(code string) []model.Message

	// Delete removes the room under the given code if cond accepts it,
	// reporting whether a deletion occurred.
	Delete(code string, cond func(room model.Room) bool) bool

	// SweepExpired deletes every room whose inactivity exceeds the timeout
	// and returns how many were deleted.
	SweepExpired(now time.Time) int

	// Len returns the number of rooms currently stored.
	Len() int
}

// RoomStoreImpl implements the RoomStore interface. A single mutex linearizes
// every read-modify-write, so observers never see a partially updated room.
type RoomStoreImpl struct {
	mu      sync.RWMutex
	rooms   map[string]model.Room
	timeout time.Duration
}

// NewRoomStore creates a new RoomStoreImpl instance with the provided inactivity timeout.
func NewRoomStore(timeout time.Duration) *RoomStoreImpl {
	return &RoomStoreImpl{
		rooms:   make(map[string]model.Room),
		timeout: timeout,
	}
}

func (rs *RoomStoreImpl) CreateUnique(code string, room model.Room) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, ok := rs.rooms[code]; ok {
		return ErrRoomAlreadyExists
	}

	rs.rooms[code] = cloneRoom(room)

	return nil
}

func (rs *RoomStoreImpl) Mutate(code string, now time.Time, fn func(room *model.Room) (bool, error)) (model.Room, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	stored, ok := rs.rooms[code]
	if !ok {
		return model.Room{}, ErrRoomNotFound
	}

	if now.Sub(stored.LastActivity) > rs.timeout {
		delete(rs.rooms, code)
		return model.Room{}, ErrRoomExpired
	}

	// fn works on a copy so a failed transformation leaves the stored
	// aggregate untouched.
	room := cloneRoom(stored)
	changed, err := fn(&room)
	if err != nil {
		return model.Room{}, err
	}

	if !changed {
		return cloneRoom(stored), nil
	}

	if len(room.Participants) == 0 {
		delete(rs.rooms, code)
		return room, nil
	}

	room.LastActivity = now
	rs.rooms[code] = room

	return cloneRoom(room), nil
}

func (rs *RoomStoreImpl) IsLive(code string, now time.Time) bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	room, ok := rs.rooms[code]
	return ok && now.Sub(room.LastActivity) <= rs.timeout
}

func (rs *RoomStoreImpl) Get(code string) (model.Room, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	room, ok := rs.rooms[code]
	if !ok {
		return model.Room{}, false
	}

	return cloneRoom(room), true
}

func (rs *RoomStoreImpl) Messages(code string) []model.Message {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	room, ok := rs.rooms[code]
	if !ok {
		return nil
	}

	messages := make([]model.Message, len(room.Messages))
	copy(messages, room.Messages)

	return messages
}

func (rs *RoomStoreImpl) Delete(code string, cond func(room model.Room) bool) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	room, ok := rs.rooms[code]
	if !ok || !cond(room) {
		return false
	}

	delete(rs.rooms, code)

	return true
}

func (rs *RoomStoreImpl) SweepExpired(now time.Time) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	deleted := 0
	for code, room := range rs.rooms {
		if now.Sub(room.LastActivity) > rs.timeout {
			delete(rs.rooms, code)
			deleted++
		}
	}

	return deleted
}

func (rs *RoomStoreImpl) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	return len(rs.rooms)
}

// cloneRoom copies the aggregate along with its participant and message
// slices so callers never share backing arrays with the store.
func cloneRoom(room model.Room) model.Room {
	room.Participants = append([]model.Participant(nil), room.Participants...)
	room.Messages = append([]model.Message(nil), room.Messages...)
	return room
}
