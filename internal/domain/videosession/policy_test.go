package videosession_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jan-server/services/video-conference-api/internal/domain/videosession"
)

func TestPolicy_Authorize(t *testing.T) {
	session := videosession.Resource{TeacherID: "T1", StudentID: "S1"}

	anonymous := videosession.Anonymous()
	teacher := videosession.NewCaller("T1", videosession.RoleTeacher)
	student := videosession.NewCaller("S1", videosession.RoleStudent)
	outsider := videosession.NewCaller("T9", videosession.RoleTeacher)
	admin := videosession.NewCaller("A1", videosession.RoleAdmin)

	enforced := videosession.NewPolicy(videosession.PolicyOptions{EnforceOwnership: true})
	relaxed := videosession.NewPolicy(videosession.PolicyOptions{EnforceOwnership: false})

	tests := []struct {
		name    string
		policy  videosession.Policy
		caller  videosession.Caller
		action  videosession.Action
		target  videosession.Resource
		wantErr error
	}{
		{"anonymous create", enforced, anonymous, videosession.ActionCreate, session, nil},
		{"student creates own", enforced, student, videosession.ActionCreate, session, nil},
		{"student creates for another", enforced, student, videosession.ActionCreate, videosession.Resource{TeacherID: "T1", StudentID: "S2"}, videosession.ErrForbidden},
		{"teacher creates any", enforced, outsider, videosession.ActionCreate, session, nil},

		{"anonymous get", enforced, anonymous, videosession.ActionGet, session, nil},
		{"anonymous pending", enforced, anonymous, videosession.ActionListPending, videosession.Resource{}, nil},

		{"stored teacher token by teacher", enforced, teacher, videosession.ActionViewTeacherToken, session, nil},
		{"stored teacher token by admin", enforced, admin, videosession.ActionViewTeacherToken, session, nil},
		{"stored teacher token by student", enforced, student, videosession.ActionViewTeacherToken, session, videosession.ErrForbidden},
		{"stored teacher token by outsider", enforced, outsider, videosession.ActionViewTeacherToken, session, videosession.ErrForbidden},
		{"stored teacher token anonymous", enforced, anonymous, videosession.ActionViewTeacherToken, session, videosession.ErrForbidden},
		{"stored teacher token relaxed", relaxed, anonymous, videosession.ActionViewTeacherToken, session, nil},

		{"anonymous list", enforced, anonymous, videosession.ActionList, videosession.Resource{}, videosession.ErrUnauthenticated},
		{"student list", enforced, student, videosession.ActionList, videosession.Resource{}, nil},

		{"anonymous start", enforced, anonymous, videosession.ActionStart, session, nil},
		{"teacher start", enforced, teacher, videosession.ActionStart, session, nil},
		{"outsider start", enforced, outsider, videosession.ActionStart, session, videosession.ErrForbidden},
		{"outsider start relaxed", relaxed, outsider, videosession.ActionStart, session, nil},
		{"admin start", enforced, admin, videosession.ActionStart, session, nil},

		{"student token by student", enforced, student, videosession.ActionIssueStudentToken, session, nil},
		{"student token by outsider", enforced, outsider, videosession.ActionIssueStudentToken, session, videosession.ErrForbidden},

		{"teacher token by teacher", enforced, teacher, videosession.ActionIssueTeacherToken, session, nil},
		{"teacher token by student", enforced, student, videosession.ActionIssueTeacherToken, session, videosession.ErrForbidden},
		{"teacher token anonymous", enforced, anonymous, videosession.ActionIssueTeacherToken, session, nil},

		{"anonymous complete", enforced, anonymous, videosession.ActionComplete, session, videosession.ErrUnauthenticated},
		{"student complete", enforced, student, videosession.ActionComplete, session, nil},
		{"outsider cancel", enforced, outsider, videosession.ActionCancel, session, videosession.ErrForbidden},
		{"outsider cancel relaxed", relaxed, outsider, videosession.ActionCancel, session, nil},
		{"admin cancel", enforced, admin, videosession.ActionCancel, session, nil},
		{"outsider participants", enforced, outsider, videosession.ActionListParticipants, session, videosession.ErrForbidden},

		{"anonymous remove", enforced, anonymous, videosession.ActionRemove, session, videosession.ErrUnauthenticated},
		{"teacher remove", relaxed, teacher, videosession.ActionRemove, session, videosession.ErrForbidden},
		{"admin remove", enforced, admin, videosession.ActionRemove, session, nil},

		{"unknown action", enforced, admin, videosession.Action("explode"), session, videosession.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Authorize(tt.caller, tt.action, tt.target)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)

			var authErr *videosession.AuthorizationError
			assert.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.action, authErr.Action)
		})
	}
}

func TestAuthorizationError_ForbiddenIsNotUnauthenticated(t *testing.T) {
	err := videosession.NewPolicy(videosession.PolicyOptions{}).
		Authorize(videosession.NewCaller("T1", videosession.RoleTeacher), videosession.ActionRemove, videosession.Resource{})

	assert.ErrorIs(t, err, videosession.ErrForbidden)
	assert.NotErrorIs(t, err, videosession.ErrUnauthenticated)
}
