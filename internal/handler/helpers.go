package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ainote/internal/pkg/errcode"
	appErr "github.com/xxxsen/ainote/internal/pkg/errors"
	"github.com/xxxsen/ainote/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	value, _ := c.Get("user_id")
	userID, _ := value.(string)
	return userID
}

// handleError maps internal errors to generic client messages; detail goes
// to the log only.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrNoProvider):
		response.Error(c, errcode.ErrAIUnavailable, "complete AI setup first")
	case errors.Is(err, appErr.ErrProvider):
		response.Error(c, errcode.ErrAIProvider, "ai provider request failed")
	case errors.Is(err, appErr.ErrIntegrity):
		response.Error(c, errcode.ErrInternal, "internal error")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
