package handlers

import (
	"context"

	"jan-server/services/video-conference-api/internal/domain/videosession"
)

// SessionHandler handles video session HTTP requests.
type SessionHandler struct {
	service videosession.Service
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(service videosession.Service) *SessionHandler {
	return &SessionHandler{service: service}
}

// CreateSession schedules a session and provisions its room.
func (h *SessionHandler) CreateSession(ctx context.Context, caller videosession.Caller, req videosession.CreateSessionRequest) (*videosession.VideoSession, error) {
	return h.service.CreateSession(ctx, caller, req)
}

// GetSession retrieves a session by ID. The stored teacher token is only
// returned to the session teacher.
func (h *SessionHandler) GetSession(ctx context.Context, caller videosession.Caller, id string) (*videosession.VideoSession, error) {
	return h.service.GetSession(ctx, caller, id)
}

// ListSessions lists the sessions visible to the caller.
func (h *SessionHandler) ListSessions(ctx context.Context, caller videosession.Caller) ([]*videosession.VideoSession, error) {
	return h.service.ListSessions(ctx, caller)
}

// StartSession activates a waiting session.
func (h *SessionHandler) StartSession(ctx context.Context, caller videosession.Caller, id, teacherName, studentName string) (*videosession.VideoSession, error) {
	return h.service.StartSession(ctx, caller, id, teacherName, studentName)
}

// StudentToken issues a join credential for the student of an active session.
func (h *SessionHandler) StudentToken(ctx context.Context, caller videosession.Caller, id, studentName string) (*videosession.Credential, error) {
	return h.service.IssueStudentToken(ctx, caller, id, studentName)
}

// TeacherToken replaces the teacher credential of an active session.
func (h *SessionHandler) TeacherToken(ctx context.Context, caller videosession.Caller, id, teacherName string) (*videosession.VideoSession, error) {
	return h.service.IssueTeacherToken(ctx, caller, id, teacherName)
}

// ListParticipants lists who is connected to the session's room.
func (h *SessionHandler) ListParticipants(ctx context.Context, caller videosession.Caller, id string) ([]videosession.Participant, error) {
	return h.service.ListParticipants(ctx, caller, id)
}

// CompleteSession ends an active session.
func (h *SessionHandler) CompleteSession(ctx context.Context, caller videosession.Caller, id string) (*videosession.VideoSession, error) {
	return h.service.CompleteSession(ctx, caller, id)
}

// CancelSession cancels a waiting or active session.
func (h *SessionHandler) CancelSession(ctx context.Context, caller videosession.Caller, id string) (*videosession.VideoSession, error) {
	return h.service.CancelSession(ctx, caller, id)
}

// ListPending lists a teacher's waiting sessions.
func (h *SessionHandler) ListPending(ctx context.Context, caller videosession.Caller, teacherID string) ([]*videosession.VideoSession, error) {
	return h.service.ListPendingForTeacher(ctx, caller, teacherID)
}

// RemoveSession soft-deletes a session.
func (h *SessionHandler) RemoveSession(ctx context.Context, caller videosession.Caller, id string) error {
	return h.service.RemoveSession(ctx, caller, id)
}
