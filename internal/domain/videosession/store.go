package videosession

import "context"

// Store persists video sessions. Records with IsActive=false are invisible to
// every method; ErrNotFound is returned for them as for missing ids.
type Store interface {
	// Insert stores a new session and returns its id. It fails with
	// ErrConflict when another active session already uses the room name.
	Insert(ctx context.Context, session *VideoSession) (string, error)
	GetByID(ctx context.Context, id string) (*VideoSession, error)
	GetByRoomName(ctx context.Context, roomName string) (*VideoSession, error)
	// ListByParticipant returns sessions where participantID is the teacher
	// (RoleTeacher), the student (RoleStudent) or either (empty role), newest first.
	ListByParticipant(ctx context.Context, participantID string, role Role) ([]*VideoSession, error)
	ListPendingByTeacher(ctx context.Context, teacherID string) ([]*VideoSession, error)
	ListByStatus(ctx context.Context, statuses ...Status) ([]*VideoSession, error)
	// Update applies patch and returns the stored result. See Patch for the
	// compare-and-swap contract.
	Update(ctx context.Context, id string, patch Patch) (*VideoSession, error)
	SoftDelete(ctx context.Context, id string) error
}

// TokenIssuer provisions media rooms and signs participant credentials.
type TokenIssuer interface {
	// CreateRoom provisions a room. An empty name asks the issuer to generate one.
	CreateRoom(ctx context.Context, roomName string) (*Room, error)
	IssueToken(ctx context.Context, grant ParticipantGrant) (*Credential, error)
	// DestroyRoom removes a room. A room that no longer exists is not an error.
	DestroyRoom(ctx context.Context, roomName string) error
}

// RoomDirectory reads live room state from the media backend.
type RoomDirectory interface {
	ListRooms(ctx context.Context) (map[string]Room, error)
	ListParticipants(ctx context.Context, roomName string) ([]Participant, error)
}
