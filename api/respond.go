package api

import (
	"errors"
	"net/http"

	"craftbot/challenge"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// replyError maps the service taxonomy onto HTTP statuses. Anything
// outside the taxonomy is logged with detail and answered with a
// generic message.
func replyError(c *gin.Context, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	message := "An error occurred. Please try again later."

	switch {
	case errors.Is(err, challenge.ErrUnauthorized):
		status, message = http.StatusForbidden, challenge.ErrUnauthorized.Error()
	case errors.Is(err, challenge.ErrConflict):
		status, message = http.StatusConflict, challenge.ErrConflict.Error()
	case errors.Is(err, challenge.ErrInvalidState):
		status, message = http.StatusConflict, challenge.ErrInvalidState.Error()
	case errors.Is(err, challenge.ErrNotFound):
		status, message = http.StatusNotFound, challenge.ErrNotFound.Error()
	case challenge.IsUserFacing(err):
		status, message = http.StatusBadRequest, err.Error()
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, gin.H{"error": message})
}

func memberID(c *gin.Context) string {
	return c.GetString("memberID")
}
