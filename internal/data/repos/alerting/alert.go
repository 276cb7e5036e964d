package alerting

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/aura-backend/internal/domain"
	domainAlerting "github.com/yungbote/aura-backend/internal/domain/alerting"
	"github.com/yungbote/aura-backend/internal/platform/dbctx"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

type AlertRepo interface {
	// Create writes the alert and its evidence in a single insert.
	Create(dbc dbctx.Context, row *types.Alert) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Alert, error)
	ListByPatients(dbc dbctx.Context, patientIDs []uuid.UUID, status types.AlertStatus, limit int) ([]*types.Alert, error)
	// Transition loads the alert, applies fn and persists the status fields
	// only if nobody changed the status in between.
	Transition(dbc dbctx.Context, id uuid.UUID, fn func(a *types.Alert) error) (*types.Alert, error)
}

var ErrAlertNotFound = errors.New("alert not found")

type alertRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAlertRepo(db *gorm.DB, baseLog *logger.Logger) AlertRepo {
	return &alertRepo{db: db, log: baseLog.With("repo", "AlertRepo")}
}

func (r *alertRepo) Create(dbc dbctx.Context, row *types.Alert) error {
	db := dbc.DB(r.db)
	if row == nil {
		return errors.New("nil alert")
	}
	return db.Create(row).Error
}

func (r *alertRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Alert, error) {
	db := dbc.DB(r.db)
	var out types.Alert
	err := db.Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAlertNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *alertRepo) ListByPatients(dbc dbctx.Context, patientIDs []uuid.UUID, status types.AlertStatus, limit int) ([]*types.Alert, error) {
	db := dbc.DB(r.db)
	var out []*types.Alert
	if len(patientIDs) == 0 {
		return out, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := db.Where("patient_id IN ?", patientIDs)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("triggered_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *alertRepo) Transition(dbc dbctx.Context, id uuid.UUID, fn func(a *types.Alert) error) (*types.Alert, error) {
	db := dbc.DB(r.db)
	row, err := r.GetByID(dbctx.Context{Ctx: dbc.Ctx, Tx: db}, id)
	if err != nil {
		return nil, err
	}
	prev := row.Status
	if err := fn(row); err != nil {
		return nil, err
	}

	res := db.
		Model(&types.Alert{}).
		Where("id = ? AND status = ?", id, prev).
		Updates(map[string]any{
			"status":          row.Status,
			"acknowledged_by": row.AcknowledgedBy,
			"acknowledged_at": row.AcknowledgedAt,
			"resolved_at":     row.ResolvedAt,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domainAlerting.ErrInvalidTransition
	}
	return row, nil
}
