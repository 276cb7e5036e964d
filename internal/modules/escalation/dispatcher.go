package escalation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/aura-backend/internal/data/repos"
	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/domain/alerting"
	"github.com/yungbote/aura-backend/internal/modules/triage"
	"github.com/yungbote/aura-backend/internal/observability"
	"github.com/yungbote/aura-backend/internal/platform/dbctx"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

// ErrPersistence means the alert (or the data needed to route it) could not
// be read or written. No notification is attempted in that case.
var ErrPersistence = errors.New("escalation: alert persistence failed")

type State string

const (
	StateNotDispatched     State = "not_dispatched"
	StateAssignmentMissing State = "assignment_missing"
	StatePersistFailed     State = "persist_failed"
	StateSuppressed        State = "suppressed"
	StateDone              State = "done"
)

type ChannelOutcome struct {
	Channel     types.NotifyChannel
	Status      types.DeliveryStatus
	ProviderRef string
	Err         string
}

type Outcome struct {
	State    State
	AlertID  uuid.UUID
	DoctorID uuid.UUID
	Channels []ChannelOutcome
}

type Request struct {
	PatientID uuid.UUID
	Verdict   *triage.Verdict
}

type Config struct {
	// ChannelTimeout bounds each channel attempt.
	ChannelTimeout time.Duration
	// RedactContent keeps patient names and conversation text out of
	// notification_log.content_summary.
	RedactContent bool
	// PublicBaseURL prefixes provider status callback paths. Empty disables callbacks.
	PublicBaseURL string
}

type Deps struct {
	Users         repos.UserRepo
	Assignments   repos.DoctorAssignmentRepo
	Messages      repos.MessageRepo
	Alerts        repos.AlertRepo
	Notifications repos.NotificationLogRepo

	Voice VoiceCaller
	SMS   TextSender
	// Optional channels.
	Mail Mailer
	Push Publisher

	// Cooldown is nil unless suppression was explicitly enabled.
	Cooldown Cooldown
	Metrics  *observability.Metrics
}

type Dispatcher struct {
	log  *logger.Logger
	cfg  Config
	deps Deps
	now  func() time.Time
}

func NewDispatcher(log *logger.Logger, cfg Config, deps Deps) *Dispatcher {
	if cfg.ChannelTimeout <= 0 {
		cfg.ChannelTimeout = 20 * time.Second
	}
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	return &Dispatcher{
		log:  log.With("module", "EscalationDispatcher"),
		cfg:  cfg,
		deps: deps,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch routes one critical verdict to the patient's clinician: it
// persists a single Alert and then attempts every configured channel
// concurrently. Channel failures are recorded, logged and never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Outcome, error) {
	ctx, span := observability.Tracer().Start(ctx, "escalation.dispatch")
	defer span.End()

	out, err := d.dispatch(ctx, req)
	span.SetAttributes(attribute.String("escalation.state", string(out.State)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "escalation failed")
	}
	d.deps.Metrics.IncEscalationOutcome(string(out.State))
	return out, err
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) (*Outcome, error) {
	v := req.Verdict
	if v == nil || !v.IsCritical || req.PatientID == uuid.Nil {
		return &Outcome{State: StateNotDispatched}, nil
	}
	log := d.log.With("patient_id", req.PatientID.String(), "alert_type", string(v.AlertType))
	dbc := dbctx.Context{Ctx: ctx}

	assignments, err := d.deps.Assignments.ListActiveByPatient(dbc, req.PatientID)
	if err != nil {
		log.Error("Failed to load clinician assignment", "error", err)
		return &Outcome{State: StatePersistFailed}, fmt.Errorf("%w: load assignment: %v", ErrPersistence, err)
	}
	if len(assignments) == 0 {
		log.Error("critical patient has no active clinician assignment", "rationale", v.Rationale)
		return &Outcome{State: StateAssignmentMissing}, nil
	}
	assignment := assignments[0]
	if len(assignments) > 1 {
		ids := make([]string, 0, len(assignments))
		for _, a := range assignments {
			ids = append(ids, a.DoctorID.String())
		}
		d.deps.Metrics.IncAssignmentConflict()
		log.Error("patient has more than one active clinician; escalating to most recent",
			"doctor_ids", strings.Join(ids, ","),
			"chosen_assignment_id", assignment.ID.String(),
		)
	}
	doctorID := assignment.DoctorID

	held := false
	if d.deps.Cooldown != nil {
		ok, cdErr := d.deps.Cooldown.Acquire(ctx, req.PatientID, v.AlertType)
		switch {
		case cdErr != nil:
			log.Warn("Cooldown check failed; escalating anyway", "error", cdErr)
		case !ok:
			log.Warn("Escalation suppressed by cooldown")
			return &Outcome{State: StateSuppressed, DoctorID: doctorID}, nil
		default:
			held = true
		}
	}
	// A window only stands for an alert that was actually stored.
	releaseCooldown := func() {
		if !held {
			return
		}
		if err := d.deps.Cooldown.Release(context.WithoutCancel(ctx), req.PatientID, v.AlertType); err != nil {
			log.Error("Failed to release cooldown after persist failure", "error", err)
		}
	}

	var patient, doctor *types.User
	users, err := d.deps.Users.GetByIDs(dbc, []uuid.UUID{req.PatientID, doctorID})
	if err != nil {
		log.Error("Failed to load patient/clinician contact details", "error", err)
	}
	for _, u := range users {
		switch u.ID {
		case req.PatientID:
			patient = u
		case doctorID:
			doctor = u
		}
	}

	evidence, err := json.Marshal(v.Evidence)
	if err != nil {
		log.Error("Failed to encode alert evidence", "error", err)
		releaseCooldown()
		return &Outcome{State: StatePersistFailed, DoctorID: doctorID}, fmt.Errorf("%w: encode evidence: %v", ErrPersistence, err)
	}
	alert := &types.Alert{
		ID:          uuid.New(),
		PatientID:   req.PatientID,
		DoctorID:    &doctorID,
		Severity:    v.Severity,
		AlertType:   v.AlertType,
		Rationale:   v.Rationale,
		TriggerData: datatypes.JSON(evidence),
		Status:      alerting.StatusActive,
		TriggeredAt: d.now(),
	}
	if err := d.deps.Alerts.Create(dbc, alert); err != nil {
		log.Error("Failed to persist alert; no notifications sent", "error", err)
		releaseCooldown()
		return &Outcome{State: StatePersistFailed, DoctorID: doctorID}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	log = log.With("alert_id", alert.ID.String(), "doctor_id", doctorID.String())
	log.Info("Critical alert created", "rationale", v.Rationale)

	recent, err := d.deps.Messages.ListRecentByPatient(dbc, req.PatientID, ExcerptMessages)
	if err != nil {
		log.Warn("Failed to load conversation excerpt", "error", err)
		recent = nil
	}
	payload := buildPayload(alert, patient, v, recent)

	channels := d.fanOut(ctx, log, alert, doctorID, doctor, payload)
	return &Outcome{State: StateDone, AlertID: alert.ID, DoctorID: doctorID, Channels: channels}, nil
}

type attempt struct {
	channel types.NotifyChannel
	summary string
	// send receives the id of the pending notification row so status
	// callbacks can find it before the provider reference is stored.
	send    func(ctx context.Context, notificationID uuid.UUID) (ref string, meta map[string]any, err error)
}

func (d *Dispatcher) fanOut(ctx context.Context, log *logger.Logger, alert *types.Alert, doctorID uuid.UUID, doctor *types.User, p Payload) []ChannelOutcome {
	attempts := d.plan(alert, doctor, p)
	results := make([]ChannelOutcome, len(attempts))

	// Attempts never return an error so one channel cannot cancel another.
	var g errgroup.Group
	for i, a := range attempts {
		g.Go(func() error {
			results[i] = d.run(ctx, log, alert.ID, doctorID, a)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (d *Dispatcher) plan(alert *types.Alert, doctor *types.User, p Payload) []attempt {
	phone := doctor.FullPhone()
	calling := d.deps.Voice != nil && d.deps.Voice.Configured() && phone != ""
	var out []attempt

	if d.deps.Voice != nil && d.deps.Voice.Configured() {
		vars := voiceVariables(p)
		full := fmt.Sprintf("AI voice call about %s alert for %s: %s", p.AlertTitle, p.PatientName, p.Rationale)
		out = append(out, attempt{
			channel: alerting.ChannelVoice,
			summary: summarize(alerting.ChannelVoice, p, full, d.cfg.RedactContent),
			send: func(ctx context.Context, notificationID uuid.UUID) (string, map[string]any, error) {
				if phone == "" {
					return "", nil, errNoPhone
				}
				res, err := d.deps.Voice.PlaceCall(ctx, CallRequest{
					To:                phone,
					CustomerID:        "doctor_alert_" + alert.ID.String(),
					Variables:         vars,
					StatusCallbackURL: d.callbackURL("/hooks/voice/status", notificationID),
				})
				if err != nil {
					return "", nil, err
				}
				ref := res.ConversationID
				if ref == "" {
					ref = res.CallID
				}
				return ref, map[string]any{"call_id": res.CallID, "conversation_id": res.ConversationID}, nil
			},
		})
	}

	if d.deps.SMS != nil {
		body := SMSBody(p, calling)
		out = append(out, attempt{
			channel: alerting.ChannelSMS,
			summary: summarize(alerting.ChannelSMS, p, body, d.cfg.RedactContent),
			send: func(ctx context.Context, notificationID uuid.UUID) (string, map[string]any, error) {
				if phone == "" {
					return "", nil, errNoPhone
				}
				res, err := d.deps.SMS.SendText(ctx, phone, body, d.callbackURL("/hooks/sms/status", notificationID))
				if err != nil {
					return "", nil, err
				}
				return res.MessageID, map[string]any{"provider_status": res.Status}, nil
			},
		})
	}

	if d.deps.Mail != nil && doctor != nil && strings.TrimSpace(doctor.Email) != "" {
		subject, text := emailBody(p)
		out = append(out, attempt{
			channel: alerting.ChannelEmail,
			summary: summarize(alerting.ChannelEmail, p, subject, d.cfg.RedactContent),
			send: func(ctx context.Context, _ uuid.UUID) (string, map[string]any, error) {
				id, err := d.deps.Mail.SendMail(ctx, doctor.Email, doctor.Name, subject, text)
				return id, nil, err
			},
		})
	}

	if d.deps.Push != nil {
		event := AlertEvent{
			AlertID:     alert.ID,
			PatientID:   alert.PatientID,
			DoctorID:    doctorIDOf(alert),
			AlertType:   alert.AlertType,
			Severity:    alert.Severity,
			Title:       p.AlertTitle,
			TriggeredAt: alert.TriggeredAt,
		}
		out = append(out, attempt{
			channel: alerting.ChannelPush,
			summary: summarize(alerting.ChannelPush, p, p.AlertTitle+" alert event", d.cfg.RedactContent),
			send: func(ctx context.Context, _ uuid.UUID) (string, map[string]any, error) {
				err := d.deps.Push.Publish(ctx, PushChannel(event.DoctorID), event)
				return "", nil, err
			},
		})
	}
	return out
}

var errNoPhone = errors.New("clinician has no phone number on file")

func (d *Dispatcher) run(ctx context.Context, log *logger.Logger, alertID, doctorID uuid.UUID, a attempt) (res ChannelOutcome) {
	ctx, span := observability.Tracer().Start(ctx, "escalation.channel."+string(a.channel))
	defer span.End()
	start := time.Now()
	res = ChannelOutcome{Channel: a.channel}

	// Record the attempt before the provider call so a fast status callback
	// has a row to land on. The row outlives the channel deadline.
	wdbc := dbctx.Context{Ctx: context.WithoutCancel(ctx)}
	row := &types.NotificationLog{
		AlertID:        alertID,
		Channel:        a.channel,
		RecipientID:    doctorID,
		Status:         alerting.DeliveryPending,
		ContentSummary: a.summary,
	}
	pending := true
	if wErr := d.deps.Notifications.Create(wdbc, row); wErr != nil {
		log.Error("Failed to record pending notification", "channel", string(a.channel), "error", wErr)
		pending = false
	}
	notificationID := uuid.Nil
	if pending {
		notificationID = row.ID
	}

	ref, meta, err := d.send(ctx, a, notificationID)
	res.ProviderRef = ref
	if err != nil {
		res.Status = alerting.DeliveryFailed
		res.Err = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "channel failed")
		log.Error("Notification channel failed", "channel", string(a.channel), "error", err)
	} else {
		res.Status = alerting.DeliverySent
		log.Info("Notification sent", "channel", string(a.channel), "provider_ref", ref)
	}
	d.deps.Metrics.ObserveNotification(string(a.channel), string(res.Status), time.Since(start))

	row.Status = res.Status
	row.ProviderRef = ref
	row.Error = res.Err
	if len(meta) > 0 {
		if raw, mErr := json.Marshal(meta); mErr == nil {
			row.ProviderMeta = datatypes.JSON(raw)
		}
	}
	var wErr error
	if pending {
		wErr = d.deps.Notifications.Finish(wdbc, row)
	} else {
		row.ID = uuid.Nil
		wErr = d.deps.Notifications.Create(wdbc, row)
	}
	if wErr != nil {
		log.Error("Failed to record notification attempt", "channel", string(a.channel), "error", wErr)
	}
	return res
}

// send runs one provider call under the channel deadline and converts a
// panic into an ordinary failure.
func (d *Dispatcher) send(ctx context.Context, a attempt, notificationID uuid.UUID) (ref string, meta map[string]any, err error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.ChannelTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel %s panicked: %v", a.channel, r)
		}
	}()
	return a.send(ctx, notificationID)
}

func (d *Dispatcher) callbackURL(path string, notificationID uuid.UUID) string {
	if d.cfg.PublicBaseURL == "" {
		return ""
	}
	if notificationID == uuid.Nil {
		return d.cfg.PublicBaseURL + path
	}
	return d.cfg.PublicBaseURL + path + "?" + alerting.CallbackNotificationParam + "=" + notificationID.String()
}

func doctorIDOf(a *types.Alert) uuid.UUID {
	if a.DoctorID == nil {
		return uuid.Nil
	}
	return *a.DoctorID
}
