package videosession

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a session does not exist or was removed.
	ErrNotFound = errors.New("video session not found")
	// ErrConflict is returned when a room name is already taken by an active session.
	ErrConflict = errors.New("room name already in use")
	// ErrInvalidState is matched by every *InvalidStateError.
	ErrInvalidState = errors.New("invalid session state")
	// ErrForbidden is matched by every *AuthorizationError.
	ErrForbidden = errors.New("operation not permitted")
	// ErrUnauthenticated is matched by *AuthorizationError values raised for anonymous callers.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrValidation is returned for malformed requests.
	ErrValidation = errors.New("invalid request")
	// ErrRoomCreation is returned when the media backend cannot provision a room.
	ErrRoomCreation = errors.New("media room creation failed")
	// ErrTokenIssuance is returned when a participant credential cannot be produced.
	ErrTokenIssuance = errors.New("media token issuance failed")
)

// InvalidStateError reports an operation attempted in a status that does not allow it.
type InvalidStateError struct {
	Op      string
	Current Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session is %s", e.Current)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// AuthorizationError reports a caller that may not perform an action.
type AuthorizationError struct {
	Action          Action
	Reason          string
	Unauthenticated bool
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s denied: %s", e.Action, e.Reason)
}

func (e *AuthorizationError) Is(target error) bool {
	if target == ErrForbidden {
		return true
	}
	return e.Unauthenticated && target == ErrUnauthenticated
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
