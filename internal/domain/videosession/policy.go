package videosession

// Action names an operation gated by the Policy.
type Action string

const (
	ActionCreate            Action = "create_session"
	ActionList              Action = "list_sessions"
	ActionGet               Action = "get_session"
	ActionStart             Action = "start_session"
	ActionIssueStudentToken Action = "issue_student_token"
	ActionIssueTeacherToken Action = "issue_teacher_token"
	ActionViewTeacherToken  Action = "view_teacher_token"
	ActionListParticipants  Action = "list_participants"
	ActionComplete          Action = "complete_session"
	ActionCancel            Action = "cancel_session"
	ActionListPending       Action = "list_pending_sessions"
	ActionRemove            Action = "remove_session"
)

// Resource carries the ownership facts of the session an action targets.
// For ActionCreate it describes the session about to be created.
type Resource struct {
	TeacherID string
	StudentID string
}

// HasParticipant reports whether id is the teacher or the student.
func (r Resource) HasParticipant(id string) bool {
	return id != "" && (r.TeacherID == id || r.StudentID == id)
}

// Policy decides whether a caller may perform an action on a resource.
type Policy interface {
	Authorize(caller Caller, action Action, target Resource) error
}

// PolicyOptions tunes the default policy.
type PolicyOptions struct {
	// EnforceOwnership restricts token issuance, participant listing and the
	// complete/cancel transitions to the session's own participants and admins.
	EnforceOwnership bool
}

type policy struct {
	opts PolicyOptions
}

// NewPolicy returns the default role/ownership policy.
func NewPolicy(opts PolicyOptions) Policy {
	return &policy{opts: opts}
}

func (p *policy) Authorize(caller Caller, action Action, target Resource) error {
	switch action {
	case ActionCreate:
		// Creation is a bootstrap call; only a student acting for someone else is refused.
		if caller.Authenticated && caller.Role == RoleStudent && caller.ID != target.StudentID {
			return deny(action, "students may only create sessions for themselves")
		}
		return nil

	case ActionGet, ActionListPending:
		return nil

	case ActionStart, ActionIssueStudentToken:
		// Reachable anonymously: the session id is the capability.
		if p.opts.EnforceOwnership && caller.Authenticated && !caller.IsAdmin() && !target.HasParticipant(caller.ID) {
			return deny(action, "caller is not a participant of this session")
		}
		return nil

	case ActionIssueTeacherToken:
		if p.opts.EnforceOwnership && caller.Authenticated && !caller.IsAdmin() && !caller.Is(target.TeacherID) {
			return deny(action, "only the session teacher may refresh the teacher token")
		}
		return nil

	case ActionViewTeacherToken:
		// Reading a stored token back needs an identity; the start call that
		// issued it is the only anonymous path to it.
		if p.opts.EnforceOwnership && !caller.IsAdmin() && !caller.Is(target.TeacherID) {
			return deny(action, "only the session teacher may read the teacher token")
		}
		return nil

	case ActionList:
		if !caller.Authenticated {
			return unauthenticated(action)
		}
		return nil

	case ActionListParticipants, ActionComplete, ActionCancel:
		if !caller.Authenticated {
			return unauthenticated(action)
		}
		if p.opts.EnforceOwnership && !caller.IsAdmin() && !target.HasParticipant(caller.ID) {
			return deny(action, "caller is not a participant of this session")
		}
		return nil

	case ActionRemove:
		if !caller.Authenticated {
			return unauthenticated(action)
		}
		if !caller.IsAdmin() {
			return deny(action, "admin role required")
		}
		return nil

	default:
		return deny(action, "unknown action")
	}
}

func deny(action Action, reason string) error {
	return &AuthorizationError{Action: action, Reason: reason}
}

func unauthenticated(action Action) error {
	return &AuthorizationError{Action: action, Reason: "authentication required", Unauthenticated: true}
}
