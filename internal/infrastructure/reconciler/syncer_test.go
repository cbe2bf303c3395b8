package reconciler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/video-conference-api/internal/config"
	"jan-server/services/video-conference-api/internal/domain/videosession"
	"jan-server/services/video-conference-api/internal/infrastructure/cache"
)

type stubRooms struct {
	rooms map[string]videosession.Room
	err   error
}

func (s *stubRooms) ListRooms(context.Context) (map[string]videosession.Room, error) {
	return s.rooms, s.err
}

func (s *stubRooms) ListParticipants(context.Context, string) ([]videosession.Participant, error) {
	return nil, nil
}

type stubService struct {
	videosession.Service
	calls atomic.Int32
	rooms map[string]videosession.Room
	grace time.Duration
}

func (s *stubService) ReconcileRooms(_ context.Context, liveRooms map[string]videosession.Room, grace time.Duration) (*videosession.ReconcileReport, error) {
	s.calls.Add(1)
	s.rooms = liveRooms
	s.grace = grace
	return &videosession.ReconcileReport{Checked: len(liveRooms), Completed: 1}, nil
}

type heldLocker struct{}

func (heldLocker) WithLock(context.Context, string, time.Duration, func(context.Context) error) (bool, error) {
	return false, nil
}

func testConfig() *config.Config {
	return &config.Config{
		ReconcileInterval: 10 * time.Millisecond,
		ReconcileGrace:    2 * time.Minute,
		ReconcileLockTTL:  time.Second,
	}
}

func TestSyncer_SyncOncePassesLiveRooms(t *testing.T) {
	rooms := &stubRooms{rooms: map[string]videosession.Room{"room_a": {Name: "room_a"}}}
	svc := &stubService{}
	syncer := NewSyncer(svc, rooms, cache.NewLocalLocker(), testConfig(), zerolog.Nop())

	report, err := syncer.SyncOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Completed)
	assert.Contains(t, svc.rooms, "room_a")
	assert.Equal(t, 2*time.Minute, svc.grace)
}

func TestSyncer_SyncOnceLeavesSessionsWhenRoomsUnavailable(t *testing.T) {
	rooms := &stubRooms{err: errors.New("livekit unreachable")}
	svc := &stubService{}
	syncer := NewSyncer(svc, rooms, cache.NewLocalLocker(), testConfig(), zerolog.Nop())

	_, err := syncer.SyncOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, svc.calls.Load())
}

func TestSyncer_SyncOnceSkipsWhenLockHeld(t *testing.T) {
	svc := &stubService{}
	syncer := NewSyncer(svc, &stubRooms{}, heldLocker{}, testConfig(), zerolog.Nop())

	report, err := syncer.SyncOnce(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report)
	assert.Zero(t, svc.calls.Load())
}

func TestSyncer_StartStop(t *testing.T) {
	svc := &stubService{}
	syncer := NewSyncer(svc, &stubRooms{rooms: map[string]videosession.Room{}}, cache.NewLocalLocker(), testConfig(), zerolog.Nop())

	syncer.Start(context.Background())
	syncer.Start(context.Background())

	assert.Eventually(t, func() bool { return svc.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	syncer.Stop()
	syncer.Stop()

	after := svc.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, svc.calls.Load())
}
