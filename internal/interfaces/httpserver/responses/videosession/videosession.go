// Package videosessionres contains HTTP response DTOs for video session endpoints.
package videosessionres

import (
	"time"

	"jan-server/services/video-conference-api/internal/domain/videosession"
)

// SessionResponse represents a video session in API responses.
type SessionResponse struct {
	ID        string     `json:"id"`
	TeacherID string     `json:"teacherId"`
	StudentID string     `json:"studentId"`
	RoomName  string     `json:"roomName"`
	Status    string     `json:"status"`
	RoomToken string     `json:"roomToken,omitempty"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CredentialResponse is a participant token ready for a LiveKit client.
type CredentialResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	RoomName  string    `json:"roomName"`
	Identity  string    `json:"identity"`
	URL       string    `json:"url,omitempty"`
}

// ParticipantResponse is someone connected to a session's room.
type ParticipantResponse struct {
	Identity string    `json:"identity"`
	Name     string    `json:"name"`
	State    string    `json:"state"`
	JoinedAt time.Time `json:"joinedAt"`
}

// NewSessionResponse creates a SessionResponse from a domain session.
func NewSessionResponse(sess *videosession.VideoSession) *SessionResponse {
	return &SessionResponse{
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

// NewSessionListResponse converts sessions, never returning nil so the
// body is always a JSON array.
func NewSessionListResponse(sessions []*videosession.VideoSession) []*SessionResponse {
	out := make([]*SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, NewSessionResponse(s))
	}
	return out
}

// NewCredentialResponse creates a CredentialResponse.
func NewCredentialResponse(cred *videosession.Credential) *CredentialResponse {
	return &CredentialResponse{
		Token:     cred.Token,
		ExpiresAt: cred.ExpiresAt,
		RoomName:  cred.RoomName,
		Identity:  cred.Identity,
		URL:       cred.URL,
	}
}

// NewParticipantListResponse converts room participants.
func NewParticipantListResponse(participants []videosession.Participant) []ParticipantResponse {
	out := make([]ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, ParticipantResponse(p))
	}
	return out
}
