package alerting

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelVoice Channel = "voice"
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
)

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// CallbackNotificationParam is the status callback query parameter that
// carries the notification row id.
const CallbackNotificationParam = "nid"

// NotificationLog records one channel attempt for one alert.
type NotificationLog struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AlertID        uuid.UUID      `gorm:"type:uuid;not null;index;column:alert_id" json:"alert_id"`
	Channel        Channel        `gorm:"not null;column:channel" json:"channel"`
	RecipientID    uuid.UUID      `gorm:"type:uuid;not null;column:recipient_id" json:"recipient_id"`
	Status         DeliveryStatus `gorm:"not null;column:status" json:"status"`
	ProviderRef    string         `gorm:"index;column:provider_ref" json:"provider_ref,omitempty"`
	ProviderMeta   datatypes.JSON `gorm:"type:jsonb;column:provider_meta" json:"provider_meta,omitempty"`
	ContentSummary string         `gorm:"type:text;column:content_summary" json:"content_summary"`
	Error          string         `gorm:"type:text;column:error" json:"error,omitempty"`
	DeliveredAt    *time.Time     `gorm:"column:delivered_at" json:"delivered_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (NotificationLog) TableName() string { return "notification_log" }

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Status == "" {
		n.Status = DeliveryPending
	}
	return nil
}

// DeliveryStatusFromProvider maps a provider's status vocabulary onto ours.
// ok is false for intermediate states that should not change the row.
func DeliveryStatusFromProvider(raw string) (DeliveryStatus, bool) {
	switch raw {
	case "delivered", "completed", "done", "answered", "read":
		return DeliveryDelivered, true
	case "failed", "undelivered", "busy", "no-answer", "no_answer", "canceled", "cancelled", "error":
		return DeliveryFailed, true
	case "sent":
		return DeliverySent, true
	default:
		return "", false
	}
}
