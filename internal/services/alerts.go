package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/aura-backend/internal/data/repos"
	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/domain/alerting"
	"github.com/yungbote/aura-backend/internal/platform/dbctx"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

var (
	// ErrNotAssigned hides alerts and patients outside the caller's panel.
	ErrNotAssigned       = errors.New("patient is not assigned to this clinician")
	ErrInvalidStatus     = errors.New("invalid alert status filter")
	ErrInvalidTransition = alerting.ErrInvalidTransition
	ErrAlertNotFound     = repos.ErrAlertNotFound
)

const moodWindow = 5

type MoodPoint struct {
	Rating     float64   `json:"rating"`
	CapturedAt time.Time `json:"captured_at"`
}

type MoodSummary struct {
	PatientID    uuid.UUID   `json:"patient_id"`
	Recent       []MoodPoint `json:"recent"`
	Average      float64     `json:"average"`
	ActiveAlerts int         `json:"active_alerts"`
	RiskLevel    string      `json:"risk_level"`
}

type DoctorSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type AlertService interface {
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, status string, limit int) ([]*types.Alert, error)
	Notifications(ctx context.Context, doctorID, alertID uuid.UUID) ([]*types.NotificationLog, error)
	Acknowledge(ctx context.Context, doctorID, alertID uuid.UUID) (*types.Alert, error)
	Resolve(ctx context.Context, doctorID, alertID uuid.UUID) (*types.Alert, error)
	PatientMood(ctx context.Context, doctorID, patientID uuid.UUID) (*MoodSummary, error)
	// AssignedDoctor returns nil when the patient has no active assignment.
	AssignedDoctor(ctx context.Context, patientID uuid.UUID) (*DoctorSummary, error)
}

type alertService struct {
	log           *logger.Logger
	users         repos.UserRepo
	assignments   repos.DoctorAssignmentRepo
	snapshots     repos.SentimentSnapshotRepo
	alerts        repos.AlertRepo
	notifications repos.NotificationLogRepo
	now           func() time.Time
}

func NewAlertService(
	log *logger.Logger,
	users repos.UserRepo,
	assignments repos.DoctorAssignmentRepo,
	snapshots repos.SentimentSnapshotRepo,
	alerts repos.AlertRepo,
	notifications repos.NotificationLogRepo,
) AlertService {
	return &alertService{
		log:           log.With("service", "AlertService"),
		users:         users,
		assignments:   assignments,
		snapshots:     snapshots,
		alerts:        alerts,
		notifications: notifications,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func parseStatus(raw string) (types.AlertStatus, error) {
	switch s := types.AlertStatus(raw); s {
	case "", alerting.StatusActive, alerting.StatusAcknowledged, alerting.StatusResolved:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

func (s *alertService) ListForDoctor(ctx context.Context, doctorID uuid.UUID, status string, limit int) ([]*types.Alert, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	patientIDs, err := s.assignments.ListActivePatientIDs(dbc, doctorID)
	if err != nil {
		return nil, err
	}
	if len(patientIDs) == 0 {
		return []*types.Alert{}, nil
	}
	return s.alerts.ListByPatients(dbc, patientIDs, st, limit)
}

// authorizedAlert loads an alert the clinician may see. Alerts for patients
// outside the panel read as not found.
func (s *alertService) authorizedAlert(ctx context.Context, doctorID, alertID uuid.UUID) (*types.Alert, error) {
	dbc := dbctx.Context{Ctx: ctx}
	a, err := s.alerts.GetByID(dbc, alertID)
	if err != nil {
		return nil, err
	}
	ok, err := s.assignments.IsActivePair(dbc, doctorID, a.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlertNotFound
	}
	return a, nil
}

func (s *alertService) Notifications(ctx context.Context, doctorID, alertID uuid.UUID) ([]*types.NotificationLog, error) {
	if _, err := s.authorizedAlert(ctx, doctorID, alertID); err != nil {
		return nil, err
	}
	return s.notifications.ListByAlert(dbctx.Context{Ctx: ctx}, alertID)
}

func (s *alertService) Acknowledge(ctx context.Context, doctorID, alertID uuid.UUID) (*types.Alert, error) {
	if _, err := s.authorizedAlert(ctx, doctorID, alertID); err != nil {
		return nil, err
	}
	a, err := s.alerts.Transition(dbctx.Context{Ctx: ctx}, alertID, func(a *types.Alert) error {
		return a.Acknowledge(doctorID, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Alert acknowledged", "alert_id", alertID.String(), "doctor_id", doctorID.String())
	return a, nil
}

func (s *alertService) Resolve(ctx context.Context, doctorID, alertID uuid.UUID) (*types.Alert, error) {
	if _, err := s.authorizedAlert(ctx, doctorID, alertID); err != nil {
		return nil, err
	}
	a, err := s.alerts.Transition(dbctx.Context{Ctx: ctx}, alertID, func(a *types.Alert) error {
		return a.Resolve(s.now())
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Alert resolved", "alert_id", alertID.String(), "doctor_id", doctorID.String())
	return a, nil
}

func (s *alertService) PatientMood(ctx context.Context, doctorID, patientID uuid.UUID) (*MoodSummary, error) {
	dbc := dbctx.Context{Ctx: ctx}
	ok, err := s.assignments.IsActivePair(dbc, doctorID, patientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAssigned
	}
	rows, err := s.snapshots.ListRecentByPatient(dbc, patientID, moodWindow, uuid.Nil)
	if err != nil {
		return nil, err
	}
	active, err := s.alerts.ListByPatients(dbc, []uuid.UUID{patientID}, alerting.StatusActive, 0)
	if err != nil {
		return nil, err
	}

	out := &MoodSummary{PatientID: patientID, Recent: []MoodPoint{}, Average: NeutralRating, ActiveAlerts: len(active)}
	if len(rows) > 0 {
		sum := 0.0
		for _, r := range rows {
			sum += r.Rating
			out.Recent = append(out.Recent, MoodPoint{Rating: r.Rating, CapturedAt: r.CapturedAt})
		}
		out.Average = sum / float64(len(rows))
	}
	out.RiskLevel = riskLevel(out.Average, out.ActiveAlerts)
	return out, nil
}

func riskLevel(avg float64, activeAlerts int) string {
	switch {
	case avg < 2.0 || activeAlerts > 0:
		return "high"
	case avg < 3.0:
		return "medium"
	default:
		return "low"
	}
}

func (s *alertService) AssignedDoctor(ctx context.Context, patientID uuid.UUID) (*DoctorSummary, error) {
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.assignments.ListActiveByPatient(dbc, patientID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	doc, err := s.users.GetByID(dbc, rows[0].DoctorID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return &DoctorSummary{ID: doc.ID, Name: doc.DisplayName()}, nil
}
