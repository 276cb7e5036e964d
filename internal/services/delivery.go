package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/aura-backend/internal/data/repos"
	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/domain/alerting"
	"github.com/yungbote/aura-backend/internal/observability"
	"github.com/yungbote/aura-backend/internal/platform/dbctx"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

// DeliveryUpdate is a provider callback reduced to what we store. The
// NotificationID from the callback URL is tried first. Refs holds every
// identifier the provider sent and the first that matches a row wins.
type DeliveryUpdate struct {
	Channel        types.NotifyChannel
	NotificationID uuid.UUID
	Refs           []string
	RawStatus      string
}

type DeliveryStatusService interface {
	// Apply returns the number of rows updated. Unknown references are not
	// an error.
	Apply(ctx context.Context, u DeliveryUpdate) (int64, error)
}

type deliveryStatusService struct {
	log           *logger.Logger
	notifications repos.NotificationLogRepo
	metrics       *observability.Metrics
	now           func() time.Time
}

func NewDeliveryStatusService(log *logger.Logger, notifications repos.NotificationLogRepo, metrics *observability.Metrics) DeliveryStatusService {
	return &deliveryStatusService{
		log:           log.With("service", "DeliveryStatusService"),
		notifications: notifications,
		metrics:       metrics,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *deliveryStatusService) Apply(ctx context.Context, u DeliveryUpdate) (int64, error) {
	raw := strings.ToLower(strings.TrimSpace(u.RawStatus))
	status, ok := alerting.DeliveryStatusFromProvider(raw)
	if !ok {
		// intermediate states such as queued or ringing
		s.metrics.IncProviderCallback(string(u.Channel), "ignored")
		s.log.Debug("Ignoring provider status", "channel", string(u.Channel), "status", raw)
		return 0, nil
	}

	dbc := dbctx.Context{Ctx: ctx}
	if u.NotificationID != uuid.Nil {
		n, err := s.notifications.UpdateStatusByID(dbc, u.Channel, u.NotificationID, status, s.now())
		if err != nil {
			s.metrics.IncProviderCallback(string(u.Channel), "error")
			s.log.Error("Delivery status update failed", "channel", string(u.Channel), "notification_id", u.NotificationID, "error", err)
			return 0, err
		}
		if n > 0 {
			s.metrics.IncProviderCallback(string(u.Channel), "applied")
			s.log.Info("Delivery status updated", "channel", string(u.Channel), "notification_id", u.NotificationID, "status", string(status))
			return n, nil
		}
	}
	for _, ref := range u.Refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		n, err := s.notifications.UpdateStatusByProviderRef(dbc, u.Channel, ref, status, s.now())
		if err != nil {
			s.metrics.IncProviderCallback(string(u.Channel), "error")
			s.log.Error("Delivery status update failed", "channel", string(u.Channel), "provider_ref", ref, "error", err)
			return 0, err
		}
		if n > 0 {
			s.metrics.IncProviderCallback(string(u.Channel), "applied")
			s.log.Info("Delivery status updated", "channel", string(u.Channel), "provider_ref", ref, "status", string(status))
			return n, nil
		}
	}
	s.metrics.IncProviderCallback(string(u.Channel), "unmatched")
	s.log.Warn("Delivery callback matched no notification", "channel", string(u.Channel), "refs", len(u.Refs), "status", raw)
	return 0, nil
}
