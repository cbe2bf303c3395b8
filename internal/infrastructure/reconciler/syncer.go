package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/video-conference-api/internal/config"
	"jan-server/services/video-conference-api/internal/domain/videosession"
	"jan-server/services/video-conference-api/internal/infrastructure/cache"
	"jan-server/services/video-conference-api/internal/infrastructure/metrics"
)

const lockName = "session-reconcile"

// Syncer closes sessions whose LiveKit room has gone away.
// Each round it lists live rooms and hands them to the service:
// - active → completed when the room is gone (everyone left and it expired)
// - waiting → cancelled when the room is gone and the session is older than grace
// Only one replica reconciles per round; the rest skip while the lock is held.
type Syncer struct {
	service   videosession.Service
	rooms     videosession.RoomDirectory
	locker    cache.Locker
	interval  time.Duration
	grace     time.Duration
	lockTTL   time.Duration
	log       zerolog.Logger
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewSyncer creates a new session syncer.
func NewSyncer(
	service videosession.Service,
	rooms videosession.RoomDirectory,
	locker cache.Locker,
	cfg *config.Config,
	log zerolog.Logger,
) *Syncer {
	return &Syncer{
		service:  service,
		rooms:    rooms,
		locker:   locker,
		interval: cfg.ReconcileInterval,
		grace:    cfg.ReconcileGrace,
		lockTTL:  cfg.ReconcileLockTTL,
		log:      log.With().Str("component", "session-reconciler").Logger(),
		done:     make(chan struct{}),
	}
}

// Start begins the sync loop in background.
// Safe to call multiple times - only the first call starts the syncer.
func (s *Syncer) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.run(ctx)
		s.log.Info().Dur("interval", s.interval).Dur("grace", s.grace).Msg("session reconciler started")
	})
}

// Stop gracefully shuts down the syncer.
// Safe to call multiple times - only the first call stops the syncer.
func (s *Syncer) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.log.Info().Msg("session reconciler stopped")
	})
}

func (s *Syncer) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Msg("context cancelled, shutting down reconciler")
			return
		case <-s.done:
			s.log.Debug().Msg("done signal received, shutting down reconciler")
			return
		case <-ticker.C:
			if _, err := s.SyncOnce(ctx); err != nil {
				s.log.Warn().Err(err).Msg("reconciliation round failed")
			}
		}
	}
}

// SyncOnce runs a single reconciliation round. It returns a nil report when
// another replica holds the lock.
func (s *Syncer) SyncOnce(ctx context.Context) (*videosession.ReconcileReport, error) {
	var report *videosession.ReconcileReport

	acquired, err := s.locker.WithLock(ctx, lockName, s.lockTTL, func(ctx context.Context) error {
		liveRooms, err := s.rooms.ListRooms(ctx)
		if err != nil {
			// Without the room list nothing can be told apart; leave sessions alone.
			metrics.ReconcileErrors.Inc()
			return fmt.Errorf("list rooms: %w", err)
		}

		report, err = s.service.ReconcileRooms(ctx, liveRooms, s.grace)
		if err != nil {
			return fmt.Errorf("reconcile sessions: %w", err)
		}

		s.log.Debug().
			Int("live_rooms", len(liveRooms)).
			Int("checked", report.Checked).
			Int("completed", report.Completed).
			Int("cancelled", report.Cancelled).
			Int("skipped", report.Skipped).
			Int("failed", report.Failed).
			Msg("sync cycle")
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !acquired {
		metrics.ReconcileSkippedRounds.Inc()
		s.log.Debug().Msg("reconciliation lock held elsewhere, skipping round")
		return nil, nil
	}
	return report, nil
}
