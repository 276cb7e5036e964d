package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/domain/alerting"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, role types.Role) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		Name:        name,
		Email:       uuid.NewString() + "@example.com",
		Phone:       "5555550100",
		CountryCode: "+1",
		Role:        role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedAssignment(tb testing.TB, ctx context.Context, tx *gorm.DB, doctorID, patientID uuid.UUID, active bool, at time.Time) *types.DoctorAssignment {
	tb.Helper()
	a := &types.DoctorAssignment{
		ID:         uuid.New(),
		DoctorID:   doctorID,
		PatientID:  patientID,
		IsActive:   true,
		AssignedAt: at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assignment: %v", err)
	}
	// gorm skips zero-value bools with a column default on insert
	if !active {
		if err := tx.WithContext(ctx).Model(a).Update("is_active", false).Error; err != nil {
			tb.Fatalf("deactivate assignment: %v", err)
		}
		a.IsActive = false
	}
	return a
}

func SeedSnapshot(tb testing.TB, ctx context.Context, tx *gorm.DB, patientID uuid.UUID, rating float64, at time.Time) *types.SentimentSnapshot {
	tb.Helper()
	s := &types.SentimentSnapshot{
		ID:             uuid.New(),
		PatientID:      patientID,
		ConversationID: uuid.New(),
		Rating:         rating,
		Confidence:     0.9,
		Source:         "chat",
		CapturedAt:     at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed snapshot: %v", err)
	}
	return s
}

func SeedMessage(tb testing.TB, ctx context.Context, tx *gorm.DB, patientID, conversationID uuid.UUID, sender types.MessageSender, content string, at time.Time) *types.Message {
	tb.Helper()
	m := &types.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		PatientID:      patientID,
		Sender:         sender,
		Content:        content,
		CreatedAt:      at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed message: %v", err)
	}
	return m
}

func SeedAlert(tb testing.TB, ctx context.Context, tx *gorm.DB, patientID, doctorID uuid.UUID, status types.AlertStatus, at time.Time) *types.Alert {
	tb.Helper()
	doc := doctorID
	a := &types.Alert{
		ID:          uuid.New(),
		PatientID:   patientID,
		DoctorID:    &doc,
		Severity:    alerting.SeverityCritical,
		AlertType:   alerting.AlertTypeSevereDepression,
		Rationale:   "Very low mood detected (rating: 1.0)",
		TriggerData: datatypes.JSON(`{"sentiment_rating":1.0}`),
		Status:      status,
		TriggeredAt: at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed alert: %v", err)
	}
	return a
}

func SeedNotification(tb testing.TB, ctx context.Context, tx *gorm.DB, alertID, recipientID uuid.UUID, channel types.NotifyChannel, ref string, status types.DeliveryStatus) *types.NotificationLog {
	tb.Helper()
	n := &types.NotificationLog{
		ID:             uuid.New(),
		AlertID:        alertID,
		Channel:        channel,
		RecipientID:    recipientID,
		Status:         status,
		ProviderRef:    ref,
		ContentSummary: "[redacted]",
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed notification: %v", err)
	}
	return n
}
