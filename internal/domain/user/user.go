package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Email       string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Phone       string    `gorm:"column:phone" json:"phone,omitempty"`
	CountryCode string    `gorm:"column:country_code" json:"country_code,omitempty"`
	Role        Role      `gorm:"not null;index;column:role" json:"role"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullPhone is the dialable number: country code prefixed to the local
// number. Empty when no phone is on file.
func (u *User) FullPhone() string {
	if u == nil {
		return ""
	}
	phone := strings.Join(strings.Fields(u.Phone), "")
	if phone == "" {
		return ""
	}
	cc := strings.Join(strings.Fields(u.CountryCode), "")
	if cc == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	if !strings.HasPrefix(cc, "+") {
		cc = "+" + cc
	}
	return cc + phone
}

// DisplayName falls back to the local part of the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return "Patient"
}
