package alerting

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type AlertType string

const (
	AlertTypeSuicidalIdeation AlertType = "suicidal_ideation"
	AlertTypeSelfHarm         AlertType = "self_harm"
	AlertTypePanic            AlertType = "panic"
	AlertTypeSevereDepression AlertType = "severe_depression"
	AlertTypeAbuse            AlertType = "abuse"
)

// Title renders the type for humans: "suicidal_ideation" -> "Suicidal Ideation".
func (t AlertType) Title() string {
	words := strings.Fields(strings.ReplaceAll(string(t), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

type Status string

const (
	StatusActive       Status = "active"
	StatusAcknowledged Status = "acknowledged"
	StatusResolved     Status = "resolved"
)

var ErrInvalidTransition = errors.New("invalid alert status transition")

// Alert is the durable record of one escalation. TriggerData holds the
// evidence captured at decision time and is never rewritten.
type Alert struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_alert_patient_status,priority:1;column:patient_id" json:"patient_id"`
	DoctorID       *uuid.UUID     `gorm:"type:uuid;index;column:doctor_id" json:"doctor_id,omitempty"`
	Severity       Severity       `gorm:"not null;column:severity" json:"severity"`
	AlertType      AlertType      `gorm:"not null;index;column:alert_type" json:"alert_type"`
	Rationale      string         `gorm:"type:text;not null;column:rationale" json:"rationale"`
	TriggerData    datatypes.JSON `gorm:"type:jsonb;column:trigger_data" json:"trigger_data"`
	Status         Status         `gorm:"not null;index:idx_alert_patient_status,priority:2;column:status" json:"status"`
	TriggeredAt    time.Time      `gorm:"not null;index;column:triggered_at" json:"triggered_at"`
	AcknowledgedBy *uuid.UUID     `gorm:"type:uuid;column:acknowledged_by" json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time     `gorm:"column:acknowledged_at" json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time     `gorm:"column:resolved_at" json:"resolved_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Alert) TableName() string { return "alert" }

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusActive
	}
	if a.TriggeredAt.IsZero() {
		a.TriggeredAt = time.Now().UTC()
	}
	return nil
}

// Acknowledge moves an active alert to acknowledged.
func (a *Alert) Acknowledge(by uuid.UUID, at time.Time) error {
	if a.Status != StatusActive {
		return ErrInvalidTransition
	}
	a.Status = StatusAcknowledged
	a.AcknowledgedBy = &by
	a.AcknowledgedAt = &at
	return nil
}

// Resolve closes an active or acknowledged alert.
func (a *Alert) Resolve(at time.Time) error {
	if a.Status == StatusResolved {
		return ErrInvalidTransition
	}
	a.Status = StatusResolved
	a.ResolvedAt = &at
	return nil
}
