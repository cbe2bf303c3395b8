package metrics

import (
	"context"
	"time"

	"jan-server/services/video-conference-api/internal/domain/videosession"
)

type instrumentedService struct {
	next videosession.Service
}

// InstrumentService wraps a session service with Prometheus recording.
func InstrumentService(next videosession.Service) videosession.Service {
	return &instrumentedService{next: next}
}

func (s *instrumentedService) CreateSession(ctx context.Context, caller videosession.Caller, req videosession.CreateSessionRequest) (*videosession.VideoSession, error) {
	sess, err := s.next.CreateSession(ctx, caller, req)
	if err != nil {
		RecordOperationError("create", err)
		return nil, err
	}
	SessionsCreated.Inc()
	return sess, nil
}

func (s *instrumentedService) GetSession(ctx context.Context, caller videosession.Caller, id string) (*videosession.VideoSession, error) {
	sess, err := s.next.GetSession(ctx, caller, id)
	RecordOperationError("get", err)
	return sess, err
}

func (s *instrumentedService) ListSessions(ctx context.Context, caller videosession.Caller) ([]*videosession.VideoSession, error) {
	list, err := s.next.ListSessions(ctx, caller)
	RecordOperationError("list", err)
	return list, err
}

func (s *instrumentedService) StartSession(ctx context.Context, caller videosession.Caller, id, teacherName, studentName string) (*videosession.VideoSession, error) {
	start := time.Now()
	sess, err := s.next.StartSession(ctx, caller, id, teacherName, studentName)
	if err != nil {
		RecordOperationError("start", err)
		return nil, err
	}
	TokenGenerationDuration.Observe(time.Since(start).Seconds())
	TokensIssued.WithLabelValues(string(videosession.RoleTeacher)).Inc()
	RecordStateTransition(videosession.StatusActive, "api")
	return sess, nil
}

func (s *instrumentedService) IssueStudentToken(ctx context.Context, caller videosession.Caller, id, studentName string) (*videosession.Credential, error) {
	start := time.Now()
	cred, err := s.next.IssueStudentToken(ctx, caller, id, studentName)
	if err != nil {
		RecordOperationError("issue_student_token", err)
		return nil, err
	}
	TokenGenerationDuration.Observe(time.Since(start).Seconds())
	TokensIssued.WithLabelValues(string(videosession.RoleStudent)).Inc()
	return cred, nil
}

func (s *instrumentedService) IssueTeacherToken(ctx context.Context, caller videosession.Caller, id, teacherName string) (*videosession.VideoSession, error) {
	start := time.Now()
	sess, err := s.next.IssueTeacherToken(ctx, caller, id, teacherName)
	if err != nil {
		RecordOperationError("issue_teacher_token", err)
		return nil, err
	}
	TokenGenerationDuration.Observe(time.Since(start).Seconds())
	TokensIssued.WithLabelValues(string(videosession.RoleTeacher)).Inc()
	return sess, nil
}

func (s *instrumentedService) ListParticipants(ctx context.Context, caller videosession.Caller, id string) ([]videosession.Participant, error) {
	list, err := s.next.ListParticipants(ctx, caller, id)
	RecordOperationError("list_participants", err)
	return list, err
}

func (s *instrumentedService) CompleteSession(ctx context.Context, caller videosession.Caller, id string) (*videosession.VideoSession, error) {
	sess, err := s.next.CompleteSession(ctx, caller, id)
	if err != nil {
		RecordOperationError("complete", err)
		return nil, err
	}
	RecordStateTransition(videosession.StatusCompleted, "api")
	return sess, nil
}

func (s *instrumentedService) CancelSession(ctx context.Context, caller videosession.Caller, id string) (*videosession.VideoSession, error) {
	sess, err := s.next.CancelSession(ctx, caller, id)
	if err != nil {
		RecordOperationError("cancel", err)
		return nil, err
	}
	RecordStateTransition(videosession.StatusCancelled, "api")
	return sess, nil
}

func (s *instrumentedService) ListPendingForTeacher(ctx context.Context, caller videosession.Caller, teacherID string) ([]*videosession.VideoSession, error) {
	list, err := s.next.ListPendingForTeacher(ctx, caller, teacherID)
	RecordOperationError("list_pending", err)
	return list, err
}

func (s *instrumentedService) RemoveSession(ctx context.Context, caller videosession.Caller, id string) error {
	if err := s.next.RemoveSession(ctx, caller, id); err != nil {
		RecordOperationError("remove", err)
		return err
	}
	SessionsRemoved.Inc()
	return nil
}

func (s *instrumentedService) ReconcileRooms(ctx context.Context, liveRooms map[string]videosession.Room, grace time.Duration) (*videosession.ReconcileReport, error) {
	start := time.Now()
	report, err := s.next.ReconcileRooms(ctx, liveRooms, grace)
	ReconcileDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		ReconcileErrors.Inc()
		return nil, err
	}
	RecordReconcile(report)
	return report, nil
}
