package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jan-server/services/video-conference-api/internal/infrastructure/auth"
	"jan-server/services/video-conference-api/internal/interfaces/httpserver/handlers"
	videosessionreq "jan-server/services/video-conference-api/internal/interfaces/httpserver/requests/videosession"
	"jan-server/services/video-conference-api/internal/interfaces/httpserver/responses"
	videosessionres "jan-server/services/video-conference-api/internal/interfaces/httpserver/responses/videosession"
	"jan-server/services/video-conference-api/internal/utils/platformerrors"
)

// RegisterVideoSessionRoutes registers the video session routes.
func RegisterVideoSessionRoutes(router gin.IRoutes, handler *handlers.SessionHandler) {
	router.POST("/video-sessions", createSession(handler))
	router.GET("/video-sessions", listSessions(handler))
	router.GET("/video-sessions/teacher/:teacherId/pending", listPending(handler))
	router.GET("/video-sessions/:id", getSession(handler))
	router.DELETE("/video-sessions/:id", removeSession(handler))

	// Lifecycle
	router.PUT("/video-sessions/:id/start", startSession(handler))
	router.PUT("/video-sessions/:id/complete", completeSession(handler))
	router.PUT("/video-sessions/:id/cancel", cancelSession(handler))

	// Credentials and room state
	router.GET("/video-sessions/:id/student-token", studentToken(handler))
	router.GET("/video-sessions/:id/teacher-token", teacherToken(handler))
	router.GET("/video-sessions/:id/participants", listParticipants(handler))
}

// createSession godoc
// @Summary      Create a video session
// @Description  Schedules a session between a teacher and a student and provisions its LiveKit room.
// @Description  A room name is generated when none is given.
// @Tags         Video Sessions
// @Accept       json
// @Produce      json
// @Param        request body videosessionreq.CreateSessionRequest true "Session details"
// @Success      201 {object} videosessionres.SessionResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /video-sessions [post]
func createSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req videosessionreq.CreateSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body")
			return
		}

		sess, err := handler.CreateSession(c.Request.Context(), auth.CallerFrom(c), req.ToDomain())
		if err != nil {
			responses.HandleError(c, err, "failed to create session")
			return
		}

		c.JSON(http.StatusCreated, videosessionres.NewSessionResponse(sess))
	}
}

// listSessions godoc
// @Summary      List video sessions
// @Description  Lists sessions the caller takes part in, newest first. Admins see every session.
// @Tags         Video Sessions
// @Produce      json
// @Success      200 {array} videosessionres.SessionResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      500 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /video-sessions [get]
func listSessions(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions, err := handler.ListSessions(c.Request.Context(), auth.CallerFrom(c))
		if err != nil {
			responses.HandleError(c, err, "failed to list sessions")
			return
		}

		c.JSON(http.StatusOK, videosessionres.NewSessionListResponse(sessions))
	}
}

// getSession godoc
// @Summary      Get a video session
// @Tags         Video Sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} videosessionres.SessionResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      500 {object} responses.ErrorResponse
// @Router       /video-sessions/{id} [get]
func getSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := handler.GetSession(c.Request.Context(), auth.CallerFrom(c), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "failed to get session")
			return
		}

		c.JSON(http.StatusOK, videosessionres.NewSessionResponse(sess))
	}
}

// startSession godoc
// @Summary      Start a video session
// @Description  Moves a waiting session to active and stores a fresh teacher token on it.
// @Tags         Video Sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        teacherName query string false "Teacher display name"
// @Param        studentName query string false "Student display name"
// @Success      200 {object} videosessionres.SessionResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /video-sessions/{id}/start [put]
func startSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query videosessionreq.StartSessionQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid query parameters")
			return
		}

		sess, err := handler.StartSession(c.Request.Context(), auth.CallerFrom(c), c.Param("id"), query.TeacherName, query.StudentName)
		if err != nil {
			responses.HandleError(c, err, "failed to start session")
			return
		}

		c.JSON(http.StatusOK, videosessionres.NewSessionResponse(sess))
	}
}

// studentToken godoc
// @Summary      Issue a student token
// @Description  Returns a LiveKit join token for the student of an active session.
// @Tags         Video Sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        studentName query string false "Student display name"
// @Success      200 {object} videosessionres.CredentialResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /video-sessions/{id}/student-token [get]
func studentToken(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query videosessionreq.StudentTokenQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid query parameters")
			return
		}

		cred, err := handler.StudentToken(c.Request.Context(), auth.CallerFrom(c), c.Param("id"), query.StudentName)
		if err != nil {
			responses.HandleError(c, err, "failed to issue student token")
			return
		}

		c.JSON(http.StatusOK, videosessionres.NewCredentialResponse(cred))
	}
}

// teacherToken godoc
// @Summary      Refresh the teacher token
// @Description  Issues a new teacher token for an active session and stores it on the session.
// @Tags         Video Sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        teacherName query string false "Teacher display name"
// @Success      200 {object} videosessionres.SessionResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /video-sessions/{id}/teacher-token [get]
func teacherToken(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query videosessionreq.TeacherTokenQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid query parameters")
			return
		}

		sess, err := handler.TeacherToken(c.Request.Context(), auth.CallerFrom(c), c.Param("id"), query.TeacherName)
		if err != nil {
			responses.HandleError(c, err, "failed to issue teacher token")
			return
		}

		c.JSON(http.StatusOK, videosessionres.NewSessionResponse(sess))
	}
}

// listParticipants godoc
// @Summary      List room participants
// @Tags         Video Sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {array} videosessionres.ParticipantResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /video-sessions/{id}/participants [get]
func listParticipants(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		participants, err := handler.ListParticipants(c.Request.Context(), auth.CallerFrom(c), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "failed to list participants")
			return
		}

		c.JSON(http.StatusOK, videosessionres.NewParticipantListResponse(participants))
	}
}

// completeSession godoc
// @Summary      Complete a video session
// @Tags         Video Sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} videosessionres.SessionResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /video-sessions/{id}/complete [put]
func completeSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := handler.CompleteSession(c.Request.Context(), auth.CallerFrom(c), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "failed to complete session")
			return
		}

		c.JSON(http.StatusOK, videosessionres.NewSessionResponse(sess))
	}
}

// cancelSession godoc
// @Summary      Cancel a video session
// @Tags         Video Sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} videosessionres.SessionResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Failure      409 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /video-sessions/{id}/cancel [put]
func cancelSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := handler.CancelSession(c.Request.Context(), auth.CallerFrom(c), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "failed to cancel session")
			return
		}

		c.JSON(http.StatusOK, videosessionres.NewSessionResponse(sess))
	}
}

// listPending godoc
// @Summary      List a teacher's pending sessions
// @Tags         Video Sessions
// @Produce      json
// @Param        teacherId path string true "Teacher ID"
// @Success      200 {array} videosessionres.SessionResponse
// @Failure      500 {object} responses.ErrorResponse
// @Router       /video-sessions/teacher/{teacherId}/pending [get]
func listPending(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions, err := handler.ListPending(c.Request.Context(), auth.CallerFrom(c), c.Param("teacherId"))
		if err != nil {
			responses.HandleError(c, err, "failed to list pending sessions")
			return
		}

		c.JSON(http.StatusOK, videosessionres.NewSessionListResponse(sessions))
	}
}

// removeSession godoc
// @Summary      Remove a video session
// @Description  Soft-deletes a session. Admin only.
// @Tags         Video Sessions
// @Param        id path string true "Session ID"
// @Success      204
// @Failure      401 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /video-sessions/{id} [delete]
func removeSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := handler.RemoveSession(c.Request.Context(), auth.CallerFrom(c), c.Param("id")); err != nil {
			responses.HandleError(c, err, "failed to remove session")
			return
		}

		c.Status(http.StatusNoContent)
	}
}
