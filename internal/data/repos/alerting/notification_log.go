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

type NotificationLogRepo interface {
	Create(dbc dbctx.Context, row *types.NotificationLog) error
	// Finish stores the provider result on a pending row. A status already
	// set by a callback is kept.
	Finish(dbc dbctx.Context, row *types.NotificationLog) error
	ListByAlert(dbc dbctx.Context, alertID uuid.UUID) ([]*types.NotificationLog, error)
	// UpdateStatusByProviderRef applies a provider delivery callback. Rows
	// already in a terminal state are left alone. Returns rows updated.
	UpdateStatusByProviderRef(dbc dbctx.Context, channel types.NotifyChannel, providerRef string, status types.DeliveryStatus, at time.Time) (int64, error)
	// UpdateStatusByID is UpdateStatusByProviderRef keyed by row id.
	UpdateStatusByID(dbc dbctx.Context, channel types.NotifyChannel, id uuid.UUID, status types.DeliveryStatus, at time.Time) (int64, error)
}

type notificationLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationLogRepo(db *gorm.DB, baseLog *logger.Logger) NotificationLogRepo {
	return &notificationLogRepo{db: db, log: baseLog.With("repo", "NotificationLogRepo")}
}

func (r *notificationLogRepo) Create(dbc dbctx.Context, row *types.NotificationLog) error {
	db := dbc.DB(r.db)
	return db.Create(row).Error
}

func (r *notificationLogRepo) Finish(dbc dbctx.Context, row *types.NotificationLog) error {
	db := dbc.DB(r.db)
	if row == nil || row.ID == uuid.Nil {
		return errors.New("notification row id required")
	}
	updates := map[string]any{
		"status":        gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", domainAlerting.DeliveryPending, row.Status),
		"provider_ref":  row.ProviderRef,
		"provider_meta": row.ProviderMeta,
		"error":         row.Error,
		"updated_at":    time.Now().UTC(),
	}
	return db.
		Model(&types.NotificationLog{}).
		Where("id = ?", row.ID).
		Updates(updates).Error
}

func (r *notificationLogRepo) ListByAlert(dbc dbctx.Context, alertID uuid.UUID) ([]*types.NotificationLog, error) {
	db := dbc.DB(r.db)
	var out []*types.NotificationLog
	if err := db.
		Where("alert_id = ?", alertID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationLogRepo) UpdateStatusByProviderRef(dbc dbctx.Context, channel types.NotifyChannel, providerRef string, status types.DeliveryStatus, at time.Time) (int64, error) {
	if providerRef == "" {
		return 0, nil
	}
	return r.applyStatus(dbc, status, at, "channel = ? AND provider_ref = ?", channel, providerRef)
}

func (r *notificationLogRepo) UpdateStatusByID(dbc dbctx.Context, channel types.NotifyChannel, id uuid.UUID, status types.DeliveryStatus, at time.Time) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	return r.applyStatus(dbc, status, at, "channel = ? AND id = ?", channel, id)
}

func (r *notificationLogRepo) applyStatus(dbc dbctx.Context, status types.DeliveryStatus, at time.Time, query string, args ...any) (int64, error) {
	db := dbc.DB(r.db)
	updates := map[string]any{
		"status":     status,
		"updated_at": at.UTC(),
	}
	if status == domainAlerting.DeliveryDelivered {
		updates["delivered_at"] = at.UTC()
	}
	res := db.
		Model(&types.NotificationLog{}).
		Where(query, args...).
		Where("status IN ?", []types.DeliveryStatus{domainAlerting.DeliveryPending, domainAlerting.DeliverySent}).
		Updates(updates)
	return res.RowsAffected, res.Error
}
