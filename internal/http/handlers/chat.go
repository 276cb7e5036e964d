package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/http/response"
	"github.com/yungbote/aura-backend/internal/platform/apierr"
	"github.com/yungbote/aura-backend/internal/services"
)

type ChatHandler struct {
	companion services.CompanionService
}

func NewChatHandler(companion services.CompanionService) *ChatHandler {
	return &ChatHandler{companion: companion}
}

type chatRequest struct {
	Message        string     `json:"message"`
	Channel        string     `json:"channel"`
	ConversationID *uuid.UUID `json:"conversation_id"`
}

// POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	patientID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.BadRequest("invalid_request", err))
		return
	}
	turn, err := h.companion.Chat(c.Request.Context(), services.ChatTurnInput{
		PatientID:      patientID,
		Channel:        types.ConversationChannel(req.Channel),
		Message:        req.Message,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, turn)
}
