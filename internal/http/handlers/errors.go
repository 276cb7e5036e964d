package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/aura-backend/internal/http/response"
	"github.com/yungbote/aura-backend/internal/platform/apierr"
	"github.com/yungbote/aura-backend/internal/platform/ctxutil"
	"github.com/yungbote/aura-backend/internal/services"
)

// apiError maps service errors onto stable API codes. Unrecognised errors
// pass through and surface as a 500.
func apiError(err error) error {
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		return apierr.BadRequest("empty_message", err)
	case errors.Is(err, services.ErrInvalidChannel):
		return apierr.BadRequest("invalid_channel", err)
	case errors.Is(err, services.ErrInvalidStatus):
		return apierr.BadRequest("invalid_status", err)
	case errors.Is(err, services.ErrConversationNotFound):
		return apierr.NotFound("conversation_not_found", err)
	case errors.Is(err, services.ErrAlertNotFound):
		return apierr.NotFound("alert_not_found", err)
	case errors.Is(err, services.ErrNotAssigned):
		return apierr.NotFound("patient_not_found", errors.New("patient not found"))
	case errors.Is(err, services.ErrInvalidTransition):
		return apierr.Conflict("invalid_transition", err)
	}
	return err
}

func respondServiceError(c *gin.Context, err error) {
	response.RespondAPIError(c, apiError(err))
}

// requestUserID reads the authenticated caller. The auth middleware
// guarantees a value on protected routes.
func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondAPIError(c, apierr.Unauthorized(nil))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathUUID(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondAPIError(c, apierr.BadRequest(code, err))
		return uuid.Nil, false
	}
	return id, true
}
