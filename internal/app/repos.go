package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/aura-backend/internal/data/repos"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

type Repos struct {
	User         repos.UserRepo
	Assignment   repos.DoctorAssignmentRepo
	Conversation repos.ConversationRepo
	Message      repos.MessageRepo
	Snapshot     repos.SentimentSnapshotRepo
	Alert        repos.AlertRepo
	Notification repos.NotificationLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Assignment:   repos.NewDoctorAssignmentRepo(db, log),
		Conversation: repos.NewConversationRepo(db, log),
		Message:      repos.NewMessageRepo(db, log),
		Snapshot:     repos.NewSentimentSnapshotRepo(db, log),
		Alert:        repos.NewAlertRepo(db, log),
		Notification: repos.NewNotificationLogRepo(db, log),
	}
}
