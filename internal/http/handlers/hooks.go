package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/aura-backend/internal/domain/alerting"
	"github.com/yungbote/aura-backend/internal/platform/logger"
	"github.com/yungbote/aura-backend/internal/services"
)

// HookHandler receives provider delivery callbacks. Providers retry on
// non-2xx, so anything we can parse is acknowledged with 200 even when the
// reference matches nothing.
type HookHandler struct {
	log      *logger.Logger
	delivery services.DeliveryStatusService
}

func NewHookHandler(log *logger.Logger, delivery services.DeliveryStatusService) *HookHandler {
	return &HookHandler{log: log.With("handler", "HookHandler"), delivery: delivery}
}

type voiceStatusPayload struct {
	CallSID         string `json:"call_sid"`
	CallSIDAlt      string `json:"callSid"`
	ConversationID  string `json:"conversation_id"`
	ConversationAlt string `json:"conversationId"`
	Status          string `json:"status"`
	CallStatus      string `json:"call_status"`
}

// POST /hooks/voice/status
func (h *HookHandler) VoiceStatus(c *gin.Context) {
	var p voiceStatusPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		h.log.Warn("Malformed voice status callback", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"received": false})
		return
	}
	status := p.Status
	if status == "" {
		status = p.CallStatus
	}
	h.apply(c, services.DeliveryUpdate{
		Channel:        alerting.ChannelVoice,
		NotificationID: notificationID(c),
		Refs:           []string{p.ConversationID, p.ConversationAlt, p.CallSID, p.CallSIDAlt},
		RawStatus:      status,
	})
}

// POST /hooks/sms/status (form encoded, Twilio)
func (h *HookHandler) SMSStatus(c *gin.Context) {
	h.apply(c, services.DeliveryUpdate{
		Channel:        alerting.ChannelSMS,
		NotificationID: notificationID(c),
		Refs:           []string{c.PostForm("MessageSid"), c.PostForm("SmsSid")},
		RawStatus:      c.PostForm("MessageStatus"),
	})
}

func (h *HookHandler) apply(c *gin.Context, u services.DeliveryUpdate) {
	n, err := h.delivery.Apply(c.Request.Context(), u)
	if err != nil {
		// 5xx makes the provider redeliver
		h.log.Error("Apply delivery status failed", "channel", string(u.Channel), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"received": false})
		return
	}
	if n == 0 {
		h.log.Debug("Delivery status matched no notification", "channel", string(u.Channel), "status", u.RawStatus)
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "updated": n})
}

// notificationID reads the row id the dispatcher put on the callback URL.
// A missing or malformed value falls back to provider references.
func notificationID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.Query(alerting.CallbackNotificationParam))
	if err != nil {
		return uuid.Nil
	}
	return id
}
