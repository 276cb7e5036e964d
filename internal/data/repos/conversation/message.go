package conversation

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/platform/dbctx"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

type MessageRepo interface {
	Create(dbc dbctx.Context, rows []*types.Message) error
	// GetByID returns nil, nil when the message does not exist.
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Message, error)
	// ListRecentByPatient returns up to limit messages across the patient's
	// conversations, newest first.
	ListRecentByPatient(dbc dbctx.Context, patientID uuid.UUID, limit int) ([]*types.Message, error)
	ListByConversation(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.Message, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: baseLog.With("repo", "MessageRepo")}
}

func (r *messageRepo) Create(dbc dbctx.Context, rows []*types.Message) error {
	db := dbc.DB(r.db)
	if len(rows) == 0 {
		return nil
	}
	return db.Create(&rows).Error
}

func (r *messageRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Message, error) {
	db := dbc.DB(r.db)
	var m types.Message
	err := db.Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepo) ListRecentByPatient(dbc dbctx.Context, patientID uuid.UUID, limit int) ([]*types.Message, error) {
	db := dbc.DB(r.db)
	var out []*types.Message
	if patientID == uuid.Nil || limit <= 0 {
		return out, nil
	}
	if err := db.
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByConversation returns the tail of a conversation, oldest first.
func (r *messageRepo) ListByConversation(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.Message, error) {
	db := dbc.DB(r.db)
	var out []*types.Message
	if conversationID == uuid.Nil || limit <= 0 {
		return out, nil
	}
	if err := db.
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
