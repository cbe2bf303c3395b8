package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"jan-server/services/video-conference-api/internal/domain/videosession"
)

var _ videosession.Store = (*MemoryStore)(nil)

// MemoryStore is a mutex-based in-memory session store.
// Thread-safe via sync.RWMutex; callers always receive copies.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]*videosession.VideoSession
	roomIndex map[string]string // active room -> session ID
	log       zerolog.Logger
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore(log zerolog.Logger) *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]*videosession.VideoSession),
		roomIndex: make(map[string]string),
		log:       log.With().Str("component", "session-store").Str("driver", "memory").Logger(),
	}
}

// Insert stores a new session.
func (s *MemoryStore) Insert(ctx context.Context, sess *videosession.VideoSession) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := sess.Clone()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if _, exists := s.sessions[record.ID]; exists {
		return "", fmt.Errorf("%w: duplicate id %s", videosession.ErrConflict, record.ID)
	}
	if record.IsActive {
		if _, exists := s.roomIndex[record.RoomName]; exists {
			return "", fmt.Errorf("%w: %s", videosession.ErrConflict, record.RoomName)
		}
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = record.CreatedAt

	s.sessions[record.ID] = record
	if record.IsActive {
		s.roomIndex[record.RoomName] = record.ID
	}
	return record.ID, nil
}

// GetByID retrieves an active session by ID.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*videosession.VideoSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.sessions[id]
	if !ok || !record.IsActive {
		return nil, videosession.ErrNotFound
	}
	return record.Clone(), nil
}

// GetByRoomName retrieves the active session using roomName.
func (s *MemoryStore) GetByRoomName(ctx context.Context, roomName string) (*videosession.VideoSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.roomIndex[roomName]
	if !ok {
		return nil, videosession.ErrNotFound
	}
	return s.sessions[id].Clone(), nil
}

// ListByParticipant lists active sessions for a teacher, a student, or either.
func (s *MemoryStore) ListByParticipant(ctx context.Context, participantID string, role videosession.Role) ([]*videosession.VideoSession, error) {
	return s.filter(func(r *videosession.VideoSession) bool {
		switch role {
		case videosession.RoleTeacher:
			return r.TeacherID == participantID
		case videosession.RoleStudent:
			return r.StudentID == participantID
		default:
			return r.TeacherID == participantID || r.StudentID == participantID
		}
	}), nil
}

// ListPendingByTeacher lists the teacher's sessions that have not started.
func (s *MemoryStore) ListPendingByTeacher(ctx context.Context, teacherID string) ([]*videosession.VideoSession, error) {
	return s.filter(func(r *videosession.VideoSession) bool {
		return r.TeacherID == teacherID && r.Status == videosession.StatusWaiting
	}), nil
}

// ListByStatus lists active sessions in any of statuses.
func (s *MemoryStore) ListByStatus(ctx context.Context, statuses ...videosession.Status) ([]*videosession.VideoSession, error) {
	want := make(map[videosession.Status]struct{}, len(statuses))
	for _, st := range statuses {
		want[st] = struct{}{}
	}
	return s.filter(func(r *videosession.VideoSession) bool {
		_, ok := want[r.Status]
		return ok
	}), nil
}

// Update applies patch under the write lock, which makes the status check
// and the write a single atomic step.
func (s *MemoryStore) Update(ctx context.Context, id string, patch videosession.Patch) (*videosession.VideoSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.sessions[id]
	if !ok || !record.IsActive {
		return nil, videosession.ErrNotFound
	}
	if !patch.Allows(record.Status) {
		return nil, &videosession.InvalidStateError{Current: record.Status}
	}

	from := record.Status
	patch.ApplyTo(record)
	record.UpdatedAt = time.Now().UTC()

	if patch.Status != nil && from != record.Status {
		s.log.Debug().
			Str("session_id", id).
			Str("from", string(from)).
			Str("to", string(record.Status)).
			Msg("status updated")
	}
	return record.Clone(), nil
}

// SoftDelete marks the session inactive and frees its room name.
func (s *MemoryStore) SoftDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.sessions[id]
	if !ok || !record.IsActive {
		return videosession.ErrNotFound
	}
	record.IsActive = false
	record.UpdatedAt = time.Now().UTC()
	delete(s.roomIndex, record.RoomName)
	return nil
}

// Count returns the number of active sessions.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.roomIndex)
}

func (s *MemoryStore) filter(match func(*videosession.VideoSession) bool) []*videosession.VideoSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*videosession.VideoSession, 0)
	for _, record := range s.sessions {
		if record.IsActive && match(record) {
			result = append(result, record.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}
