package conversation

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/platform/dbctx"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

type SentimentSnapshotRepo interface {
	Create(dbc dbctx.Context, row *types.SentimentSnapshot) error
	// ListRecentByPatient returns up to limit snapshots newest first.
	// excludeID (when not uuid.Nil) drops the snapshot being evaluated so
	// the current rating never counts toward its own history.
	ListRecentByPatient(dbc dbctx.Context, patientID uuid.UUID, limit int, excludeID uuid.UUID) ([]*types.SentimentSnapshot, error)
}

type sentimentSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSentimentSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SentimentSnapshotRepo {
	return &sentimentSnapshotRepo{db: db, log: baseLog.With("repo", "SentimentSnapshotRepo")}
}

func (r *sentimentSnapshotRepo) Create(dbc dbctx.Context, row *types.SentimentSnapshot) error {
	db := dbc.DB(r.db)
	return db.Create(row).Error
}

func (r *sentimentSnapshotRepo) ListRecentByPatient(dbc dbctx.Context, patientID uuid.UUID, limit int, excludeID uuid.UUID) ([]*types.SentimentSnapshot, error) {
	db := dbc.DB(r.db)
	var out []*types.SentimentSnapshot
	if patientID == uuid.Nil || limit <= 0 {
		return out, nil
	}
	q := db.Where("patient_id = ?", patientID)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Order("captured_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
