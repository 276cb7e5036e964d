package escalation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/modules/triage"
	"github.com/yungbote/aura-backend/internal/pkg/textutil"
)

const (
	ExcerptMessages     = 6
	ExcerptRunes        = 800
	TriggerSnippetRunes = 240
)

// Payload is everything a clinician-facing channel may render.
type Payload struct {
	AlertID       uuid.UUID
	PatientID     uuid.UUID
	PatientName   string
	AlertType     types.AlertType
	AlertTitle    string
	Rationale     string
	Excerpt       string
	RecentRatings []float64
	Trigger       string
}

func buildPayload(alert *types.Alert, patient *types.User, verdict *triage.Verdict, recent []*types.Message) Payload {
	name := "Patient"
	if patient != nil {
		name = patient.DisplayName()
	}
	return Payload{
		AlertID:       alert.ID,
		PatientID:     alert.PatientID,
		PatientName:   name,
		AlertType:     verdict.AlertType,
		AlertTitle:    verdict.AlertType.Title(),
		Rationale:     verdict.Rationale,
		Excerpt:       BuildExcerpt(recent),
		RecentRatings: append([]float64{}, verdict.Evidence.RecentRatings...),
		Trigger:       textutil.Ellipsize(verdict.Evidence.TextSnippet, TriggerSnippetRunes),
	}
}

// BuildExcerpt renders the most recent messages (given newest first) oldest
// first, one "Patient:" or "Aura:" line each, capped at ExcerptRunes.
func BuildExcerpt(newestFirst []*types.Message) string {
	n := len(newestFirst)
	if n > ExcerptMessages {
		n = ExcerptMessages
	}
	lines := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		m := newestFirst[i]
		if m == nil {
			continue
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		speaker := "Aura"
		if m.Sender == types.SenderPatient {
			speaker = "Patient"
		}
		lines = append(lines, speaker+": "+content)
	}
	return textutil.Ellipsize(strings.Join(lines, "\n"), ExcerptRunes)
}

// SMSBody is the fixed urgent text sent to the clinician. The call notice
// is only included when a voice call is actually being placed.
func SMSBody(p Payload, calling bool) string {
	callNotice := ""
	if calling {
		callNotice = " A context-aware AI is calling you now."
	}
	return fmt.Sprintf(
		"URGENT AURA ALERT: Patient %s requires immediate attention. A %s alert was triggered.%s Please check your dashboard.",
		p.PatientName, p.AlertTitle, callNotice,
	)
}

func voiceVariables(p Payload) map[string]string {
	excerpt := p.Excerpt
	if excerpt == "" {
		excerpt = "No recent conversation available."
	}
	return map[string]string{
		"user_name":            p.PatientName,
		"patient_id":           p.PatientID.String(),
		"alert_type":           p.AlertTitle,
		"alert_rationale":      p.Rationale,
		"conversation_snippet": excerpt,
		"recent_ratings":       formatRatings(p.RecentRatings),
		"trigger_snippet":      p.Trigger,
	}
}

func emailBody(p Payload) (subject, text string) {
	subject = "URGENT: Aura " + p.AlertTitle + " alert"
	text = fmt.Sprintf(
		"Patient %s requires immediate attention.\n\nA %s alert was triggered: %s\n\nOpen your Aura dashboard to review the conversation and acknowledge the alert.",
		p.PatientName, p.AlertTitle, p.Rationale,
	)
	return subject, text
}

func formatRatings(r []float64) string {
	if len(r) == 0 {
		return "none"
	}
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strings.Join(parts, ", ")
}

// summarize is what lands in notification_log.content_summary.
func summarize(channel types.NotifyChannel, p Payload, full string, redact bool) string {
	if redact {
		return fmt.Sprintf("%s alert notification via %s", p.AlertTitle, channel)
	}
	return full
}
