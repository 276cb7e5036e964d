package escalation

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/aura-backend/internal/domain"
)

// AlertEvent is the push payload for live clinician dashboards. It carries
// identifiers only; dashboards fetch details over the authenticated API.
type AlertEvent struct {
	AlertID     uuid.UUID           `json:"alert_id"`
	PatientID   uuid.UUID           `json:"patient_id"`
	DoctorID    uuid.UUID           `json:"doctor_id"`
	AlertType   types.AlertType     `json:"alert_type"`
	Severity    types.AlertSeverity `json:"severity"`
	Title       string              `json:"title"`
	TriggeredAt time.Time           `json:"triggered_at"`
}

// PushChannel is the pub/sub channel a clinician's dashboard subscribes to.
func PushChannel(doctorID uuid.UUID) string {
	return "aura:alerts:" + doctorID.String()
}
