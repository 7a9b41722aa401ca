package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// stubCodeService hands out room codes from a fixed list so collision
// behavior is deterministic.
type stubCodeService struct {
	codes      []string
	nextCode   int
	nextSessID int
}

func (s *stubCodeService) GenerateRoomCode() string {
	code := s.codes[s.nextCode%len(s.codes)]
	s.nextCode++
	return code
}

func (s *stubCodeService) GenerateSessionID() string {
	s.nextSessID++
	return fmt.Sprintf("SESSION%05d", s.nextSessID)
}

func newTestService(clock *fakeClock) *ChatServiceImpl {
	return NewChatService(
		NewCodeService(6, 12),
		NewSessionRegistry(),
		NewRoomStore(SessionTimeout),
		WithClock(clock.Now),
	)
}

func TestChatServiceLifecycleScenario(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(clock)

	created, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)
	assert.Len(t, created.RoomCode, 6)
	assert.Equal(t, created.SessionID, created.Room.CreatorSessionID)
	require.Len(t, created.Room.Participants, 1)

	msg, err := svc.SendMessage(created.RoomCode, created.SessionID, "hi")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), msg.ID)
	assert.Equal(t, created.SessionID, msg.SenderSessionID)
	assert.Equal(t, "User 1", msg.SenderDisplayName)

	joined, err := svc.JoinRoom(created.RoomCode, "", "caller-2")
	require.NoError(t, err)
	assert.NotEqual(t, created.SessionID, joined.SessionID)
	assert.Len(t, joined.Room.Participants, 2)

	msg2, err := svc.SendMessage(created.RoomCode, joined.SessionID, "hello")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), msg2.ID)

	// The creator leaves; the room persists with the remaining member and
	// the creator is not re-added.
	assert.True(t, svc.LeaveRoom(created.RoomCode, created.SessionID))
	room, ok := svc.GetRoom(created.RoomCode)
	require.True(t, ok)
	require.Len(t, room.Participants, 1)
	assert.Equal(t, joined.SessionID, room.Participants[0].SessionID)
	assert.Equal(t, created.SessionID, room.CreatorSessionID)

	// The last member leaving deletes the room entirely.
	assert.True(t, svc.LeaveRoom(created.RoomCode, joined.SessionID))
	_, ok = svc.GetRoom(created.RoomCode)
	assert.False(t, ok)
}

func TestChatServiceExpiryScenario(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(clock)

	created, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)

	_, err = svc.SendMessage(created.RoomCode, created.SessionID, "hi")
	require.NoError(t, err)

	clock.Advance(21 * time.Minute)

	assert.Empty(t, svc.GetMessages(created.RoomCode))
	_, ok := svc.GetRoom(created.RoomCode)
	assert.False(t, ok)
}

func TestChatServiceRoomCodesUnique(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(clock)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		created, err := svc.CreateRoom(fmt.Sprintf("caller-%d", i))
		require.NoError(t, err)
		assert.False(t, seen[created.RoomCode], "room code %s handed out twice", created.RoomCode)
		seen[created.RoomCode] = true
	}
}

func TestChatServiceCreateRetriesOnCollision(t *testing.T) {
	clock := newFakeClock()
	codes := &stubCodeService{codes: []string{"AB12CD", "AB12CD", "EF34GH"}}
	svc := NewChatService(codes, NewSessionRegistry(), NewRoomStore(SessionTimeout), WithClock(clock.Now))

	first, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", first.RoomCode)

	// The second create collides once and succeeds with the next code.
	second, err := svc.CreateRoom("caller-2")
	require.NoError(t, err)
	assert.Equal(t, "EF34GH", second.RoomCode)
}

func TestChatServiceCreateCodeExhausted(t *testing.T) {
	clock := newFakeClock()
	codes := &stubCodeService{codes: []string{"AB12CD"}}
	svc := NewChatService(codes, NewSessionRegistry(), NewRoomStore(SessionTimeout), WithClock(clock.Now))

	_, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)

	_, err = svc.CreateRoom("caller-2")
	assert.ErrorIs(t, err, ErrCodeExhausted)
	assert.Equal(t, 1+maxCodeAttempts, codes.nextCode)
}

func TestChatServiceJoinIdempotent(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(clock)

	created, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)

	joined, err := svc.JoinRoom(created.RoomCode, "", "caller-2")
	require.NoError(t, err)
	require.Len(t, joined.Room.Participants, 2)

	activityBefore := joined.Room.LastActivity

	clock.Advance(time.Minute)
	rejoined, err := svc.JoinRoom(created.RoomCode, joined.SessionID, "caller-2")
	require.NoError(t, err)

	// Re-joining with a known session changes nothing, including activity.
	assert.Len(t, rejoined.Room.Participants, 2)
	assert.Equal(t, joined.SessionID, rejoined.SessionID)
	assert.Equal(t, activityBefore, rejoined.Room.LastActivity)
}

func TestChatServiceJoinErrors(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(clock)

	_, err := svc.JoinRoom("ZZZZZZ", "", "caller-1")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	created, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)

	clock.Advance(21 * time.Minute)
	_, err = svc.JoinRoom(created.RoomCode, "", "caller-2")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

// noSweepStore disables the cooperative sweep so stale rooms stay stored
// until a mutation trips over them.
type noSweepStore struct {
	RoomStore
}

func (noSweepStore) SweepExpired(time.Time) int { return 0 }

func TestChatServiceJoinExpiredWithoutSweep(t *testing.T) {
	clock := newFakeClock()
	store := NewRoomStore(SessionTimeout)
	svc := NewChatService(NewCodeService(6, 12), NewSessionRegistry(), noSweepStore{store}, WithClock(clock.Now))

	created, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)

	clock.Advance(21 * time.Minute)
	_, err = svc.JoinRoom(created.RoomCode, "", "caller-2")
	assert.ErrorIs(t, err, ErrRoomExpired)

	// The failed mutation deleted the stale room; it is unreachable now.
	_, ok := store.Get(created.RoomCode)
	assert.False(t, ok)
}

func TestChatServiceSendMessageIDsGlobal(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(clock)

	first, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)
	second, err := svc.CreateRoom("caller-2")
	require.NoError(t, err)

	// Ids are strictly increasing across the whole store, regardless of
	// which room received them.
	var last uint64
	for i := 0; i < 5; i++ {
		m1, err := svc.SendMessage(first.RoomCode, first.SessionID, "a")
		require.NoError(t, err)
		m2, err := svc.SendMessage(second.RoomCode, second.SessionID, "b")
		require.NoError(t, err)

		if i > 0 {
			assert.Greater(t, m1.ID, last)
		}
		assert.Greater(t, m2.ID, m1.ID)
		last = m2.ID
	}
}

func TestChatServiceSendMessageNotAMember(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(clock)

	created, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)

	_, err = svc.SendMessage(created.RoomCode, "STRANGERSESS", "hi")
	assert.ErrorIs(t, err, ErrNotAMember)

	// A failed send allocates no id; the next send still starts at 0.
	msg, err := svc.SendMessage(created.RoomCode, created.SessionID, "hi")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), msg.ID)
}

func TestChatServiceLeaveRoomPermissive(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(clock)

	assert.False(t, svc.LeaveRoom("ZZZZZZ", "SESSION00001"))

	created, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)
	_, err = svc.JoinRoom(created.RoomCode, "", "caller-2")
	require.NoError(t, err)

	// Leaving a room the session never joined is still a success and leaves
	// membership untouched.
	assert.True(t, svc.LeaveRoom(created.RoomCode, "STRANGERSESS"))
	room, ok := svc.GetRoom(created.RoomCode)
	require.True(t, ok)
	assert.Len(t, room.Participants, 2)
}

func TestChatServiceEndRoom(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(clock)

	created, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)
	joined, err := svc.JoinRoom(created.RoomCode, "", "caller-2")
	require.NoError(t, err)

	// Only the creator may end the room.
	assert.False(t, svc.EndRoom(created.RoomCode, joined.SessionID))
	room, ok := svc.GetRoom(created.RoomCode)
	require.True(t, ok)
	assert.Len(t, room.Participants, 2)

	assert.True(t, svc.EndRoom(created.RoomCode, created.SessionID))
	_, ok = svc.GetRoom(created.RoomCode)
	assert.False(t, ok)

	assert.False(t, svc.EndRoom(created.RoomCode, created.SessionID))
}

func TestChatServiceEndRoomIgnoresExpiry(t *testing.T) {
	clock := newFakeClock()
	// With sweeping disabled the stale room is still physically stored when
	// the creator ends it.
	store := NewRoomStore(SessionTimeout)
	svc := NewChatService(NewCodeService(6, 12), NewSessionRegistry(), noSweepStore{store}, WithClock(clock.Now))

	created, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)

	clock.Advance(21 * time.Minute)
	assert.True(t, svc.EndRoom(created.RoomCode, created.SessionID))
}

func TestChatServiceSweep(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(clock)

	_, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)
	_, err = svc.CreateRoom("caller-2")
	require.NoError(t, err)

	clock.Advance(21 * time.Minute)
	rooms, sessions := svc.Sweep()
	assert.Equal(t, 2, rooms)
	assert.Equal(t, 2, sessions)
}

func TestChatServiceConcurrentSends(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(clock)

	created, err := svc.CreateRoom("caller-1")
	require.NoError(t, err)

	const senders = 8
	const perSender = 25

	var wg sync.WaitGroup
	ids := make(chan uint64, senders*perSender)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				msg, err := svc.SendMessage(created.RoomCode, created.SessionID, "hi")
				if assert.NoError(t, err) {
					ids <- msg.ID
				}
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uint64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "message id %d allocated twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, senders*perSender)

	messages := svc.GetMessages(created.RoomCode)
	require.Len(t, messages, senders*perSender)
	for i := 1; i < len(messages); i++ {
		assert.Greater(t, messages[i].ID, messages[i-1].ID, "message ids must be strictly increasing in append order")
	}
}
