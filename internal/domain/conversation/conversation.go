package conversation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Channel string

const (
	ChannelChat  Channel = "chat"
	ChannelVoice Channel = "voice"
)

func (c Channel) Valid() bool { return c == ChannelChat || c == ChannelVoice }

type Sender string

const (
	SenderPatient Sender = "patient"
	SenderAI      Sender = "ai"
)

type Conversation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID uuid.UUID `gorm:"type:uuid;not null;index;column:patient_id" json:"patient_id"`
	Channel   Channel   `gorm:"not null;column:channel" json:"channel"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversation" }

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index;column:conversation_id" json:"conversation_id"`
	PatientID      uuid.UUID `gorm:"type:uuid;not null;index:idx_message_patient_created,priority:1;column:patient_id" json:"patient_id"`
	Sender         Sender    `gorm:"not null;column:sender" json:"sender"`
	Content        string    `gorm:"type:text;not null;column:content" json:"content"`

	CreatedAt time.Time `gorm:"not null;index:idx_message_patient_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "message" }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// SentimentSnapshot is one scored utterance. Rating is on the 1-5 scale.
type SentimentSnapshot struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_sentiment_patient_captured,priority:1;column:patient_id" json:"patient_id"`
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;column:conversation_id" json:"conversation_id"`
	MessageID      *uuid.UUID `gorm:"type:uuid;column:message_id" json:"message_id,omitempty"`
	Rating         float64    `gorm:"not null;column:rating" json:"rating"`
	Confidence     float64    `gorm:"not null;column:confidence" json:"confidence"`
	Source         string     `gorm:"not null;column:source" json:"source"`
	CapturedAt     time.Time  `gorm:"not null;index:idx_sentiment_patient_captured,priority:2;column:captured_at" json:"captured_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (SentimentSnapshot) TableName() string { return "sentiment_snapshot" }

func (s *SentimentSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CapturedAt.IsZero() {
		s.CapturedAt = time.Now().UTC()
	}
	return nil
}
