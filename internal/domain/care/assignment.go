package care

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorAssignment links a clinician to a patient. Only active rows are
// considered when routing an escalation.
type DoctorAssignment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID   uuid.UUID `gorm:"type:uuid;not null;index;column:doctor_id" json:"doctor_id"`
	PatientID  uuid.UUID `gorm:"type:uuid;not null;index;column:patient_id" json:"patient_id"`
	IsActive   bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`
	AssignedAt time.Time `gorm:"not null;column:assigned_at" json:"assigned_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (DoctorAssignment) TableName() string { return "doctor_patient" }

func (a *DoctorAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now().UTC()
	}
	return nil
}
