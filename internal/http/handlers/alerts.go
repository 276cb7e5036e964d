package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/aura-backend/internal/http/response"
	"github.com/yungbote/aura-backend/internal/services"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 200
)

type AlertHandler struct {
	alerts services.AlertService
}

func NewAlertHandler(alerts services.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// GET /api/alerts?status=active&limit=50
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	doctorID, ok := requestUserID(c)
	if !ok {
		return
	}
	limit := defaultAlertLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = min(n, maxAlertLimit)
		}
	}
	alerts, err := h.alerts.ListForDoctor(c.Request.Context(), doctorID, c.Query("status"), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"alerts": alerts})
}

// GET /api/alerts/:id/notifications
func (h *AlertHandler) ListNotifications(c *gin.Context) {
	doctorID, ok := requestUserID(c)
	if !ok {
		return
	}
	alertID, ok := pathUUID(c, "id", "invalid_alert_id")
	if !ok {
		return
	}
	rows, err := h.alerts.Notifications(c.Request.Context(), doctorID, alertID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notifications": rows})
}

// POST /api/alerts/:id/acknowledge
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	doctorID, ok := requestUserID(c)
	if !ok {
		return
	}
	alertID, ok := pathUUID(c, "id", "invalid_alert_id")
	if !ok {
		return
	}
	a, err := h.alerts.Acknowledge(c.Request.Context(), doctorID, alertID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"alert": a})
}

// POST /api/alerts/:id/resolve
func (h *AlertHandler) Resolve(c *gin.Context) {
	doctorID, ok := requestUserID(c)
	if !ok {
		return
	}
	alertID, ok := pathUUID(c, "id", "invalid_alert_id")
	if !ok {
		return
	}
	a, err := h.alerts.Resolve(c.Request.Context(), doctorID, alertID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"alert": a})
}

// GET /api/patients/:id/mood
func (h *AlertHandler) PatientMood(c *gin.Context) {
	doctorID, ok := requestUserID(c)
	if !ok {
		return
	}
	patientID, ok := pathUUID(c, "id", "invalid_patient_id")
	if !ok {
		return
	}
	mood, err := h.alerts.PatientMood(c.Request.Context(), doctorID, patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, mood)
}

// GET /api/me/doctor
func (h *AlertHandler) MyDoctor(c *gin.Context) {
	patientID, ok := requestUserID(c)
	if !ok {
		return
	}
	doc, err := h.alerts.AssignedDoctor(c.Request.Context(), patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if doc == nil {
		response.RespondOK(c, gin.H{"assigned": false})
		return
	}
	response.RespondOK(c, gin.H{"assigned": true, "doctor": gin.H{"name": doc.Name}})
}
