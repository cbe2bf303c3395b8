package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/video-conference-api/internal/domain/videosession"
)

func newSession(id, teacher, student, room string, status videosession.Status, createdAt time.Time) *videosession.VideoSession {
	return &videosession.VideoSession{
		ID:        id,
		TeacherID: teacher,
		StudentID: student,
		RoomName:  room,
		Status:    status,
		IsActive:  true,
		CreatedAt: createdAt,
	}
}

func TestMemoryStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zerolog.Nop())

	id, err := s.Insert(ctx, newSession("", "T1", "S1", "room_a", videosession.StatusWaiting, time.Time{}))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "room_a", got.RoomName)
	assert.False(t, got.CreatedAt.IsZero())

	byRoom, err := s.GetByRoomName(ctx, "room_a")
	require.NoError(t, err)
	assert.Equal(t, id, byRoom.ID)

	_, err = s.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, videosession.ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zerolog.Nop())

	id, err := s.Insert(ctx, newSession("s1", "T1", "S1", "room_a", videosession.StatusWaiting, time.Now()))
	require.NoError(t, err)

	got, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	got.Status = videosession.StatusCompleted

	again, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, videosession.StatusWaiting, again.Status)
}

func TestMemoryStore_RoomNameUniqueAmongActive(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zerolog.Nop())

	_, err := s.Insert(ctx, newSession("s1", "T1", "S1", "room_a", videosession.StatusWaiting, time.Now()))
	require.NoError(t, err)

	_, err = s.Insert(ctx, newSession("s2", "T2", "S2", "room_a", videosession.StatusWaiting, time.Now()))
	assert.ErrorIs(t, err, videosession.ErrConflict)

	// Removing the first session frees the name.
	require.NoError(t, s.SoftDelete(ctx, "s1"))
	_, err = s.Insert(ctx, newSession("s2", "T2", "S2", "room_a", videosession.StatusWaiting, time.Now()))
	assert.NoError(t, err)
}

func TestMemoryStore_SoftDeleteHidesRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zerolog.Nop())

	_, err := s.Insert(ctx, newSession("s1", "T1", "S1", "room_a", videosession.StatusWaiting, time.Now()))
	require.NoError(t, err)
	require.NoError(t, s.SoftDelete(ctx, "s1"))

	_, err = s.GetByID(ctx, "s1")
	assert.ErrorIs(t, err, videosession.ErrNotFound)
	assert.ErrorIs(t, s.SoftDelete(ctx, "s1"), videosession.ErrNotFound)

	_, err = s.Update(ctx, "s1", videosession.Patch{})
	assert.ErrorIs(t, err, videosession.ErrNotFound)

	list, err := s.ListByParticipant(ctx, "T1", "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryStore_Lists(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zerolog.Nop())
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	seed := []*videosession.VideoSession{
		newSession("s1", "T1", "S1", "r1", videosession.StatusWaiting, base),
		newSession("s2", "T1", "S2", "r2", videosession.StatusActive, base.Add(time.Minute)),
		newSession("s3", "T2", "S1", "r3", videosession.StatusWaiting, base.Add(2*time.Minute)),
		newSession("s4", "T1", "S3", "r4", videosession.StatusCompleted, base.Add(3*time.Minute)),
	}
	for _, sess := range seed {
		_, err := s.Insert(ctx, sess)
		require.NoError(t, err)
	}

	ids := func(list []*videosession.VideoSession) []string {
		out := make([]string, 0, len(list))
		for _, sess := range list {
			out = append(out, sess.ID)
		}
		return out
	}

	asTeacher, err := s.ListByParticipant(ctx, "T1", videosession.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, []string{"s4", "s2", "s1"}, ids(asTeacher))

	asStudent, err := s.ListByParticipant(ctx, "S1", videosession.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, []string{"s3", "s1"}, ids(asStudent))

	either, err := s.ListByParticipant(ctx, "S1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"s3", "s1"}, ids(either))

	pending, err := s.ListPendingByTeacher(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids(pending))

	open, err := s.ListByStatus(ctx, videosession.StatusWaiting, videosession.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, []string{"s3", "s2", "s1"}, ids(open))

	assert.Equal(t, 4, s.Count())
}

func TestMemoryStore_UpdateCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zerolog.Nop())

	_, err := s.Insert(ctx, newSession("s1", "T1", "S1", "room_a", videosession.StatusWaiting, time.Now()))
	require.NoError(t, err)

	active := videosession.StatusActive
	token := "tok"
	updated, err := s.Update(ctx, "s1", videosession.Patch{
		ExpectStatus: []videosession.Status{videosession.StatusWaiting},
		Status:       &active,
		RoomToken:    &token,
	})
	require.NoError(t, err)
	assert.Equal(t, videosession.StatusActive, updated.Status)
	assert.Equal(t, "tok", updated.RoomToken)

	_, err = s.Update(ctx, "s1", videosession.Patch{
		ExpectStatus: []videosession.Status{videosession.StatusWaiting},
		Status:       &active,
	})
	var stateErr *videosession.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, videosession.StatusActive, stateErr.Current)
}

func TestMemoryStore_ConcurrentCASHasSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zerolog.Nop())

	_, err := s.Insert(ctx, newSession("s1", "T1", "S1", "room_a", videosession.StatusWaiting, time.Now()))
	require.NoError(t, err)

	const workers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
		losers  int
	)
	active := videosession.StatusActive
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, "s1", videosession.Patch{
				ExpectStatus: []videosession.Status{videosession.StatusWaiting},
				Status:       &active,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
			} else if assert.ErrorIs(t, err, videosession.ErrInvalidState) {
				losers++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, workers-1, losers)
}
