package videosession

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service defines the lifecycle operations on video sessions.
type Service interface {
	CreateSession(ctx context.Context, caller Caller, req CreateSessionRequest) (*VideoSession, error)
	GetSession(ctx context.Context, caller Caller, id string) (*VideoSession, error)
	ListSessions(ctx context.Context, caller Caller) ([]*VideoSession, error)
	StartSession(ctx context.Context, caller Caller, id, teacherName, studentName string) (*VideoSession, error)
	IssueStudentToken(ctx context.Context, caller Caller, id, studentName string) (*Credential, error)
	IssueTeacherToken(ctx context.Context, caller Caller, id, teacherName string) (*VideoSession, error)
	ListParticipants(ctx context.Context, caller Caller, id string) ([]Participant, error)
	CompleteSession(ctx context.Context, caller Caller, id string) (*VideoSession, error)
	CancelSession(ctx context.Context, caller Caller, id string) (*VideoSession, error)
	ListPendingForTeacher(ctx context.Context, caller Caller, teacherID string) ([]*VideoSession, error)
	RemoveSession(ctx context.Context, caller Caller, id string) error
	// ReconcileRooms closes open sessions whose room is absent from liveRooms.
	// Active sessions complete; waiting sessions older than grace are cancelled.
	ReconcileRooms(ctx context.Context, liveRooms map[string]Room, grace time.Duration) (*ReconcileReport, error)
}

// Options configures the service.
type Options struct {
	// MediaURL is handed to clients alongside credentials.
	MediaURL string
	// Now overrides the clock in tests.
	Now func() time.Time
}

type service struct {
	store    Store
	issuer   TokenIssuer
	rooms    RoomDirectory
	policy   Policy
	validate *validator.Validate
	mediaURL string
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a new video session service. rooms may be nil, in which
// case participant listing returns an empty list.
func NewService(store Store, issuer TokenIssuer, rooms RoomDirectory, policy Policy, opts Options, log zerolog.Logger) Service {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		store:    store,
		issuer:   issuer,
		rooms:    rooms,
		policy:   policy,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		mediaURL: opts.MediaURL,
		now:      now,
		log:      log.With().Str("component", "video-session-service").Logger(),
	}
}

func (s *service) CreateSession(ctx context.Context, caller Caller, req CreateSessionRequest) (*VideoSession, error) {
	req.TeacherID = strings.TrimSpace(req.TeacherID)
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.RoomName = strings.TrimSpace(req.RoomName)

	if err := s.policy.Authorize(caller, ActionCreate, Resource{TeacherID: req.TeacherID, StudentID: req.StudentID}); err != nil {
		return nil, err
	}
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	// Refuse a taken explicit name before provisioning anything: the backend
	// would hand back the other session's live room.
	if req.RoomName != "" {
		if _, err := s.store.GetByRoomName(ctx, req.RoomName); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrConflict, req.RoomName)
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	room, err := s.issuer.CreateRoom(ctx, req.RoomName)
	if err != nil {
		s.log.Error().Err(err).Str("room", req.RoomName).Msg("failed to create media room")
		return nil, wrapMediaError(ErrRoomCreation, err)
	}

	now := s.now()
	session := &VideoSession{
		ID:        uuid.NewString(),
		TeacherID: req.TeacherID,
		StudentID: req.StudentID,
		RoomName:  room.Name,
		Status:    StatusWaiting,
		StartTime: cloneTime(req.StartTime),
		EndTime:   cloneTime(req.EndTime),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.store.Insert(ctx, session); err != nil {
		// A generated room belongs to nobody else, so it can be released. An
		// explicit name that lost an insert race may be someone else's room.
		if req.RoomName == "" {
			s.destroyRoom(ctx, room.Name, "insert_failed")
		}
		s.log.Error().Err(err).Str("room", room.Name).Msg("failed to store session")
		return nil, err
	}

	s.log.Info().
		Str("session_id", session.ID).
		Str("teacher_id", session.TeacherID).
		Str("student_id", session.StudentID).
		Str("room", session.RoomName).
		Bool("authenticated", caller.Authenticated).
		Msg("session created")

	return session, nil
}

func (s *service) GetSession(ctx context.Context, caller Caller, id string) (*VideoSession, error) {
	session, err := s.load(ctx, caller, ActionGet, id)
	if err != nil {
		return nil, err
	}
	return s.redact(caller, session), nil
}

func (s *service) ListSessions(ctx context.Context, caller Caller) ([]*VideoSession, error) {
	if err := s.policy.Authorize(caller, ActionList, Resource{}); err != nil {
		return nil, err
	}

	// Listing is always scoped to the caller's own sessions, admins included.
	role := RoleStudent
	if caller.Role == RoleTeacher {
		role = RoleTeacher
	}
	sessions, err := s.store.ListByParticipant(ctx, caller.ID, role)
	if err != nil {
		return nil, err
	}
	return s.redactAll(caller, sessions), nil
}

func (s *service) StartSession(ctx context.Context, caller Caller, id, teacherName, studentName string) (*VideoSession, error) {
	session, err := s.load(ctx, caller, ActionStart, id)
	if err != nil {
		return nil, err
	}
	if !session.Status.CanTransitionTo(StatusActive) {
		return nil, &InvalidStateError{Op: "start", Current: session.Status}
	}

	cred, err := s.issue(ctx, ParticipantGrant{
		RoomName:        session.RoomName,
		ParticipantID:   session.TeacherID,
		ParticipantName: displayName(teacherName, session.TeacherID),
		Role:            RoleTeacher,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	updated, err := s.transition(ctx, session, StatusActive, Patch{
		StartTime: &now,
		RoomToken: &cred.Token,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("session_id", id).
		Str("room", updated.RoomName).
		Str("teacher_name", teacherName).
		Str("student_name", studentName).
		Msg("session started")

	return updated, nil
}

func (s *service) IssueStudentToken(ctx context.Context, caller Caller, id, studentName string) (*Credential, error) {
	session, err := s.load(ctx, caller, ActionIssueStudentToken, id)
	if err != nil {
		return nil, err
	}
	if session.Status != StatusActive {
		return nil, &InvalidStateError{Op: "issue_student_token", Current: session.Status}
	}

	cred, err := s.issue(ctx, ParticipantGrant{
		RoomName:        session.RoomName,
		ParticipantID:   session.StudentID,
		ParticipantName: displayName(studentName, session.StudentID),
		Role:            RoleStudent,
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("session_id", id).Str("room", session.RoomName).Msg("student token issued")
	return cred, nil
}

func (s *service) IssueTeacherToken(ctx context.Context, caller Caller, id, teacherName string) (*VideoSession, error) {
	session, err := s.load(ctx, caller, ActionIssueTeacherToken, id)
	if err != nil {
		return nil, err
	}
	if session.Status != StatusActive {
		return nil, &InvalidStateError{Op: "issue_teacher_token", Current: session.Status}
	}

	cred, err := s.issue(ctx, ParticipantGrant{
		RoomName:        session.RoomName,
		ParticipantID:   session.TeacherID,
		ParticipantName: displayName(teacherName, session.TeacherID),
		Role:            RoleTeacher,
	})
	if err != nil {
		return nil, err
	}

	// Guarded on active so a token is never written onto a closed session.
	updated, err := s.store.Update(ctx, id, Patch{
		ExpectStatus: []Status{StatusActive},
		RoomToken:    &cred.Token,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("session_id", id).Msg("teacher token refreshed")
	return updated, nil
}

func (s *service) ListParticipants(ctx context.Context, caller Caller, id string) ([]Participant, error) {
	session, err := s.load(ctx, caller, ActionListParticipants, id)
	if err != nil {
		return nil, err
	}
	if s.rooms == nil || session.Status.IsTerminal() {
		return []Participant{}, nil
	}

	participants, err := s.rooms.ListParticipants(ctx, session.RoomName)
	if err != nil {
		return nil, fmt.Errorf("list participants for %s: %w", session.RoomName, err)
	}
	return participants, nil
}

func (s *service) CompleteSession(ctx context.Context, caller Caller, id string) (*VideoSession, error) {
	return s.finish(ctx, caller, ActionComplete, id, StatusCompleted)
}

func (s *service) CancelSession(ctx context.Context, caller Caller, id string) (*VideoSession, error) {
	return s.finish(ctx, caller, ActionCancel, id, StatusCancelled)
}

func (s *service) finish(ctx context.Context, caller Caller, action Action, id string, target Status) (*VideoSession, error) {
	session, err := s.load(ctx, caller, action, id)
	if err != nil {
		return nil, err
	}
	if !session.Status.CanTransitionTo(target) {
		return nil, &InvalidStateError{Op: string(action), Current: session.Status}
	}

	now := s.now()
	updated, err := s.transition(ctx, session, target, Patch{EndTime: &now})
	if err != nil {
		return nil, err
	}

	s.destroyRoom(ctx, updated.RoomName, string(target))

	s.log.Info().
		Str("session_id", id).
		Str("status", string(target)).
		Str("caller_id", caller.ID).
		Msg("session closed")

	return s.redact(caller, updated), nil
}

func (s *service) ListPendingForTeacher(ctx context.Context, caller Caller, teacherID string) ([]*VideoSession, error) {
	if err := s.policy.Authorize(caller, ActionListPending, Resource{TeacherID: teacherID}); err != nil {
		return nil, err
	}
	sessions, err := s.store.ListPendingByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return s.redactAll(caller, sessions), nil
}

func (s *service) RemoveSession(ctx context.Context, caller Caller, id string) error {
	// The admin check needs no ownership facts, so non-admins are refused
	// without learning whether the id exists.
	if err := s.policy.Authorize(caller, ActionRemove, Resource{}); err != nil {
		return err
	}

	session, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}
	if !session.Status.IsTerminal() {
		s.destroyRoom(ctx, session.RoomName, "removed")
	}

	s.log.Info().Str("session_id", id).Str("caller_id", caller.ID).Msg("session removed")
	return nil
}

func (s *service) ReconcileRooms(ctx context.Context, liveRooms map[string]Room, grace time.Duration) (*ReconcileReport, error) {
	sessions, err := s.store.ListByStatus(ctx, StatusWaiting, StatusActive)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{Checked: len(sessions)}
	now := s.now()

	for _, session := range sessions {
		if _, ok := liveRooms[session.RoomName]; ok {
			continue
		}

		var target Status
		switch session.Status {
		case StatusActive:
			target = StatusCompleted
		case StatusWaiting:
			if now.Sub(session.CreatedAt) < grace {
				continue
			}
			target = StatusCancelled
		default:
			continue
		}

		_, err := s.transition(ctx, session, target, Patch{EndTime: &now})
		switch {
		case err == nil:
			if target == StatusCompleted {
				report.Completed++
			} else {
				report.Cancelled++
			}
			s.log.Info().
				Str("session_id", session.ID).
				Str("room", session.RoomName).
				Str("from", string(session.Status)).
				Str("to", string(target)).
				Msg("closed session with expired room")
		case errors.Is(err, ErrInvalidState), errors.Is(err, ErrNotFound):
			// Someone else moved or removed it since the listing.
			report.Skipped++
		default:
			report.Failed++
			s.log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to reconcile session")
		}
	}

	return report, nil
}

// load fetches a session and authorizes action against it.
func (s *service) load(ctx context.Context, caller Caller, action Action, id string) (*VideoSession, error) {
	session, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, action, session.Resource()); err != nil {
		return nil, err
	}
	return session, nil
}

// transition moves session to target with a compare-and-swap on the status
// the transition table allows as a source.
func (s *service) transition(ctx context.Context, session *VideoSession, target Status, patch Patch) (*VideoSession, error) {
	patch.ExpectStatus = SourcesFor(target)
	patch.Status = &target

	updated, err := s.store.Update(ctx, session.ID, patch)
	if err != nil {
		var stateErr *InvalidStateError
		if errors.As(err, &stateErr) {
			stateErr.Op = string(target)
			s.log.Debug().
				Str("session_id", session.ID).
				Str("current", string(stateErr.Current)).
				Str("target", string(target)).
				Msg("transition lost compare-and-swap")
		}
		return nil, err
	}
	return updated, nil
}

// redact clears the teacher credential for callers who may not hold it.
func (s *service) redact(caller Caller, session *VideoSession) *VideoSession {
	if session.RoomToken == "" || s.policy.Authorize(caller, ActionViewTeacherToken, session.Resource()) == nil {
		return session
	}
	clone := session.Clone()
	clone.RoomToken = ""
	return clone
}

func (s *service) redactAll(caller Caller, sessions []*VideoSession) []*VideoSession {
	for i, session := range sessions {
		sessions[i] = s.redact(caller, session)
	}
	return sessions
}

func (s *service) issue(ctx context.Context, grant ParticipantGrant) (*Credential, error) {
	cred, err := s.issuer.IssueToken(ctx, grant)
	if err != nil {
		s.log.Error().Err(err).Str("room", grant.RoomName).Str("role", string(grant.Role)).Msg("failed to issue token")
		return nil, wrapMediaError(ErrTokenIssuance, err)
	}
	if cred.URL == "" {
		cred.URL = s.mediaURL
	}
	return cred, nil
}

func (s *service) destroyRoom(ctx context.Context, roomName, reason string) {
	if err := s.issuer.DestroyRoom(ctx, roomName); err != nil {
		s.log.Warn().Err(err).Str("room", roomName).Str("reason", reason).Msg("failed to destroy media room")
	}
}

func (s *service) validateCreate(req CreateSessionRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return validationError("%s failed on %s", fe.Field(), fe.Tag())
		}
		return validationError("%v", err)
	}
	if req.StartTime != nil && req.EndTime != nil && req.EndTime.Before(*req.StartTime) {
		return validationError("endTime must not be before startTime")
	}
	return nil
}

func wrapMediaError(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

func displayName(name, fallback string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}
