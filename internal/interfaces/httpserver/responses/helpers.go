package responses

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"jan-server/services/video-conference-api/internal/domain/videosession"
	"jan-server/services/video-conference-api/internal/utils/platformerrors"
)

// HandleError maps domain errors to typed platform errors and writes them.
// message is used where the underlying error text should not reach clients.
func HandleError(c *gin.Context, err error, message string) {
	logger := log.With().Str("path", c.Request.URL.Path).Logger()

	errorType, clientMessage := classify(err, message)
	if errorType == "" {
		platformerrors.WriteError(c, err, logger)
		return
	}

	platformErr := platformerrors.NewError(c.Request.Context(), platformerrors.LayerRoute, errorType, clientMessage, err)
	platformerrors.WriteHTTPError(c, platformErr, logger)
}

// HandleNewError creates and writes a new typed error response.
// Use this for route-level errors like malformed bodies.
func HandleNewError(c *gin.Context, errorType platformerrors.ErrorType, message string) {
	platformErr := platformerrors.NewError(c.Request.Context(), platformerrors.LayerRoute, errorType, message, nil)
	platformerrors.WriteHTTPError(c, platformErr, log.Logger)
}

func classify(err error, message string) (platformerrors.ErrorType, string) {
	switch {
	case errors.Is(err, videosession.ErrNotFound):
		return platformerrors.ErrorTypeNotFound, videosession.ErrNotFound.Error()
	case errors.Is(err, videosession.ErrInvalidState), errors.Is(err, videosession.ErrConflict):
		return platformerrors.ErrorTypeConflict, err.Error()
	case errors.Is(err, videosession.ErrValidation):
		return platformerrors.ErrorTypeValidation, err.Error()
	case errors.Is(err, videosession.ErrUnauthenticated):
		return platformerrors.ErrorTypeUnauthorized, videosession.ErrUnauthenticated.Error()
	case errors.Is(err, videosession.ErrForbidden):
		return platformerrors.ErrorTypeForbidden, err.Error()
	case errors.Is(err, videosession.ErrRoomCreation), errors.Is(err, videosession.ErrTokenIssuance):
		return platformerrors.ErrorTypeExternal, message
	default:
		return "", message
	}
}
