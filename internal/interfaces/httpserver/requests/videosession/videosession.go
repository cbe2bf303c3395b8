// Package videosessionreq contains HTTP request DTOs for video session endpoints.
package videosessionreq

import (
	"time"

	"jan-server/services/video-conference-api/internal/domain/videosession"
)

// CreateSessionRequest represents the request body for creating a session.
// Field rules are enforced by the session service.
type CreateSessionRequest struct {
	TeacherID string     `json:"teacherId" example:"teacher-42"`
	StudentID string     `json:"studentId" example:"student-7"`
	RoomName  string     `json:"roomName,omitempty" example:"math-101"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// ToDomain converts the body to the service input.
func (r CreateSessionRequest) ToDomain() videosession.CreateSessionRequest {
	return videosession.CreateSessionRequest{
		TeacherID: r.TeacherID,
		StudentID: r.StudentID,
		RoomName:  r.RoomName,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}
}

// StartSessionQuery carries optional display names for the start call.
type StartSessionQuery struct {
	TeacherName string `form:"teacherName" binding:"omitempty,max=128"`
	StudentName string `form:"studentName" binding:"omitempty,max=128"`
}

// StudentTokenQuery carries the optional student display name.
type StudentTokenQuery struct {
	StudentName string `form:"studentName" binding:"omitempty,max=128"`
}

// TeacherTokenQuery carries the optional teacher display name.
type TeacherTokenQuery struct {
	TeacherName string `form:"teacherName" binding:"omitempty,max=128"`
}
