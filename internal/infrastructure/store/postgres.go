package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jan-server/services/video-conference-api/internal/domain/videosession"
	"jan-server/services/video-conference-api/internal/infrastructure/database/entities"
)

const pgUniqueViolation = "23505"

var _ videosession.Store = (*PostgresStore)(nil)

// PostgresStore persists video sessions via PostgreSQL using GORM.
type PostgresStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewPostgresStore creates a store backed by the provided DB.
func NewPostgresStore(db *gorm.DB, log zerolog.Logger) *PostgresStore {
	return &PostgresStore{
		db:  db,
		log: log.With().Str("component", "session-store").Str("driver", "postgres").Logger(),
	}
}

func (s *PostgresStore) Insert(ctx context.Context, sess *videosession.VideoSession) (string, error) {
	record := toEntity(sess)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isDuplicateKey(err) {
			return "", fmt.Errorf("%w: %s", videosession.ErrConflict, record.RoomName)
		}
		return "", fmt.Errorf("insert video session: %w", err)
	}
	return record.ID, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*videosession.VideoSession, error) {
	// The column is uuid; anything else cannot match and would be a query error.
	if _, err := uuid.Parse(id); err != nil {
		return nil, videosession.ErrNotFound
	}

	var record entities.VideoSession
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, videosession.ErrNotFound
		}
		return nil, fmt.Errorf("get video session: %w", err)
	}
	return toDomain(&record), nil
}

func (s *PostgresStore) GetByRoomName(ctx context.Context, roomName string) (*videosession.VideoSession, error) {
	var record entities.VideoSession
	err := s.db.WithContext(ctx).
		Where("room_name = ? AND is_active = ?", roomName, true).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, videosession.ErrNotFound
		}
		return nil, fmt.Errorf("get video session by room: %w", err)
	}
	return toDomain(&record), nil
}

func (s *PostgresStore) ListByParticipant(ctx context.Context, participantID string, role videosession.Role) ([]*videosession.VideoSession, error) {
	query := s.active(ctx)
	switch role {
	case videosession.RoleTeacher:
		query = query.Where("teacher_id = ?", participantID)
	case videosession.RoleStudent:
		query = query.Where("student_id = ?", participantID)
	default:
		query = query.Where("(teacher_id = ? OR student_id = ?)", participantID, participantID)
	}
	return s.find(query)
}

func (s *PostgresStore) ListPendingByTeacher(ctx context.Context, teacherID string) ([]*videosession.VideoSession, error) {
	return s.find(s.active(ctx).Where("teacher_id = ? AND status = ?", teacherID, string(videosession.StatusWaiting)))
}

func (s *PostgresStore) ListByStatus(ctx context.Context, statuses ...videosession.Status) ([]*videosession.VideoSession, error) {
	if len(statuses) == 0 {
		return []*videosession.VideoSession{}, nil
	}
	return s.find(s.active(ctx).Where("status IN ?", statusStrings(statuses)))
}

// Update runs a single conditional UPDATE ... RETURNING. When no row matches,
// a follow-up read tells a missing session apart from a lost status race.
func (s *PostgresStore) Update(ctx context.Context, id string, patch videosession.Patch) (*videosession.VideoSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, videosession.ErrNotFound
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if patch.Status != nil {
		updates["status"] = string(*patch.Status)
	}
	if patch.RoomToken != nil {
		updates["room_token"] = *patch.RoomToken
	}
	if patch.StartTime != nil {
		updates["start_time"] = *patch.StartTime
	}
	if patch.EndTime != nil {
		updates["end_time"] = *patch.EndTime
	}

	var rows []entities.VideoSession
	query := s.db.WithContext(ctx).
		Model(&rows).
		Clauses(clause.Returning{}).
		Where("id = ? AND is_active = ?", id, true)
	if len(patch.ExpectStatus) > 0 {
		query = query.Where("status IN ?", statusStrings(patch.ExpectStatus))
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update video session: %w", result.Error)
	}

	if result.RowsAffected == 0 || len(rows) == 0 {
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &videosession.InvalidStateError{Current: current.Status}
	}

	if patch.Status != nil {
		s.log.Debug().Str("session_id", id).Str("to", string(*patch.Status)).Msg("status updated")
	}
	return toDomain(&rows[0]), nil
}

func (s *PostgresStore) SoftDelete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return videosession.ErrNotFound
	}

	result := s.db.WithContext(ctx).
		Model(&entities.VideoSession{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return fmt.Errorf("soft delete video session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return videosession.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) active(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&entities.VideoSession{}).Where("is_active = ?", true)
}

func (s *PostgresStore) find(query *gorm.DB) ([]*videosession.VideoSession, error) {
	var records []entities.VideoSession
	if err := query.Order("created_at DESC").Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list video sessions: %w", err)
	}

	result := make([]*videosession.VideoSession, 0, len(records))
	for i := range records {
		result = append(result, toDomain(&records[i]))
	}
	return result, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func statusStrings(statuses []videosession.Status) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}

func toEntity(sess *videosession.VideoSession) entities.VideoSession {
	return entities.VideoSession{
		ID:        sess.ID,
		TeacherID: sess.TeacherID,
		StudentID: sess.StudentID,
		RoomName:  sess.RoomName,
		Status:    string(sess.Status),
		RoomToken: sess.RoomToken,
		StartTime: sess.StartTime,
		EndTime:   sess.EndTime,
		IsActive:  sess.IsActive,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
}

func toDomain(record *entities.VideoSession) *videosession.VideoSession {
	return &videosession.VideoSession{
		ID:        record.ID,
		TeacherID: record.TeacherID,
		StudentID: record.StudentID,
		RoomName:  record.RoomName,
		Status:    videosession.Status(record.Status),
		RoomToken: record.RoomToken,
		StartTime: record.StartTime,
		EndTime:   record.EndTime,
		IsActive:  record.IsActive,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
