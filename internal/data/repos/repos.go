package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/aura-backend/internal/data/repos/alerting"
	"github.com/yungbote/aura-backend/internal/data/repos/care"
	"github.com/yungbote/aura-backend/internal/data/repos/conversation"
	"github.com/yungbote/aura-backend/internal/data/repos/user"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type DoctorAssignmentRepo = care.DoctorAssignmentRepo

type ConversationRepo = conversation.ConversationRepo
type MessageRepo = conversation.MessageRepo
type SentimentSnapshotRepo = conversation.SentimentSnapshotRepo

type AlertRepo = alerting.AlertRepo
type NotificationLogRepo = alerting.NotificationLogRepo

var ErrAlertNotFound = alerting.ErrAlertNotFound

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewDoctorAssignmentRepo(db *gorm.DB, log *logger.Logger) DoctorAssignmentRepo {
	return care.NewDoctorAssignmentRepo(db, log)
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return conversation.NewConversationRepo(db, log)
}

func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo {
	return conversation.NewMessageRepo(db, log)
}

func NewSentimentSnapshotRepo(db *gorm.DB, log *logger.Logger) SentimentSnapshotRepo {
	return conversation.NewSentimentSnapshotRepo(db, log)
}

func NewAlertRepo(db *gorm.DB, log *logger.Logger) AlertRepo { return alerting.NewAlertRepo(db, log) }

func NewNotificationLogRepo(db *gorm.DB, log *logger.Logger) NotificationLogRepo {
	return alerting.NewNotificationLogRepo(db, log)
}
