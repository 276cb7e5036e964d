package domain

import (
	"github.com/yungbote/aura-backend/internal/domain/alerting"
	"github.com/yungbote/aura-backend/internal/domain/care"
	"github.com/yungbote/aura-backend/internal/domain/conversation"
	"github.com/yungbote/aura-backend/internal/domain/user"
)

type (
	User = user.User
	Role = user.Role

	DoctorAssignment = care.DoctorAssignment

	Conversation        = conversation.Conversation
	ConversationChannel = conversation.Channel
	Message             = conversation.Message
	MessageSender       = conversation.Sender
	SentimentSnapshot   = conversation.SentimentSnapshot

	Alert           = alerting.Alert
	AlertType       = alerting.AlertType
	AlertSeverity   = alerting.Severity
	AlertStatus     = alerting.Status
	NotificationLog = alerting.NotificationLog
	NotifyChannel   = alerting.Channel
	DeliveryStatus  = alerting.DeliveryStatus
)

const (
	RolePatient = user.RolePatient
	RoleDoctor  = user.RoleDoctor

	ChannelChat  = conversation.ChannelChat
	ChannelVoice = conversation.ChannelVoice

	SenderPatient = conversation.SenderPatient
	SenderAI      = conversation.SenderAI
)

// Models lists every persisted entity, in migration order.
func Models() []any {
	return []any{
		&User{},
		&DoctorAssignment{},
		&Conversation{},
		&Message{},
		&SentimentSnapshot{},
		&Alert{},
		&NotificationLog{},
	}
}
