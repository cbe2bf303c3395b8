package videosession

import "time"

// VideoSession is one scheduled or ongoing call between a teacher and a student.
type VideoSession struct {
	ID        string     `json:"id"`
	TeacherID string     `json:"teacherId"`
	StudentID string     `json:"studentId"`
	RoomName  string     `json:"roomName"`
	Status    Status     `json:"status"`
	RoomToken string     `json:"roomToken,omitempty"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy of the session.
func (s *VideoSession) Clone() *VideoSession {
	if s == nil {
		return nil
	}
	clone := *s
	clone.StartTime = cloneTime(s.StartTime)
	clone.EndTime = cloneTime(s.EndTime)
	return &clone
}

// Resource returns the ownership facts the policy needs about this session.
func (s *VideoSession) Resource() Resource {
	return Resource{TeacherID: s.TeacherID, StudentID: s.StudentID}
}

// CreateSessionRequest is the input to CreateSession.
type CreateSessionRequest struct {
	TeacherID string     `json:"teacherId" validate:"required,max=128"`
	StudentID string     `json:"studentId" validate:"required,max=128,nefield=TeacherID"`
	RoomName  string     `json:"roomName,omitempty" validate:"omitempty,max=128,printascii"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// Patch is a partial update. Nil fields are left untouched.
//
// When ExpectStatus is non-empty the store applies the patch only if the
// stored status is one of them, as a single atomic operation, and returns an
// *InvalidStateError carrying the stored status otherwise.
type Patch struct {
	ExpectStatus []Status
	Status       *Status
	RoomToken    *string
	StartTime    *time.Time
	EndTime      *time.Time
}

// Allows reports whether the patch may be applied to a session in status current.
func (p Patch) Allows(current Status) bool {
	if len(p.ExpectStatus) == 0 {
		return true
	}
	for _, s := range p.ExpectStatus {
		if s == current {
			return true
		}
	}
	return false
}

// ApplyTo writes the non-nil fields of p onto s.
func (p Patch) ApplyTo(s *VideoSession) {
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.RoomToken != nil {
		s.RoomToken = *p.RoomToken
	}
	if p.StartTime != nil {
		s.StartTime = cloneTime(p.StartTime)
	}
	if p.EndTime != nil {
		s.EndTime = cloneTime(p.EndTime)
	}
}

// ParticipantGrant describes who a credential is for.
type ParticipantGrant struct {
	RoomName        string
	ParticipantID   string
	ParticipantName string
	Role            Role
}

// Credential is a signed media access token.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	RoomName  string    `json:"roomName"`
	Identity  string    `json:"identity"`
	URL       string    `json:"url,omitempty"`
}

// Room is a media room as reported by the backend.
type Room struct {
	Name            string
	MaxParticipants int
	EmptyTimeout    time.Duration
	NumParticipants int
}

// Participant is someone currently connected to a room.
type Participant struct {
	Identity string    `json:"identity"`
	Name     string    `json:"name"`
	State    string    `json:"state"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ReconcileReport summarises one reconciliation pass.
type ReconcileReport struct {
	Checked   int
	Completed int
	Cancelled int
	Skipped   int
	Failed    int
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
