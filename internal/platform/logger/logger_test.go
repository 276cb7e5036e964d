package logger

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRedactorMasksContactAndHashesIdentity(t *testing.T) {
	r := &redactor{enabled: true}

	cases := []struct {
		key  string
		val  any
		want any
	}{
		{"doctor_phone", "+15555550100", redacted},
		{"conversation_snippet", "I want to give up", redacted},
		{"email", "dr@example.com", redacted},
		{"channel", "sms", "sms"},
	}
	for _, tc := range cases {
		if got := r.value(tc.key, tc.val); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.key, got, tc.want)
		}
	}

	id := uuid.MustParse("c1b0b1a4-0000-4000-8000-000000000001")
	got, ok := r.value("patient_id", id).(string)
	if !ok || !strings.HasPrefix(got, "hash:") || len(got) != len("hash:")+12 {
		t.Fatalf("patient_id not hashed: %v", got)
	}
	if again := r.value("patient_id", id.String()); again != got {
		t.Fatalf("hash differs between uuid and string form: %v vs %v", again, got)
	}
}

func TestRedactorSaltChangesHash(t *testing.T) {
	a := (&redactor{enabled: true}).hash("patient-1")
	b := (&redactor{enabled: true, salt: "pepper"}).hash("patient-1")
	if a == b {
		t.Fatalf("salt had no effect")
	}
}

func TestRedactorKeepsOddTrailingValue(t *testing.T) {
	r := &redactor{enabled: true}
	out := r.kvs([]any{"alert_type", "suicidal_ideation", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected kvs: %#v", out)
	}
}

func TestRedactorDisabledPassesThrough(t *testing.T) {
	r := &redactor{enabled: false}
	out := r.kvs([]any{"phone", "+15555550100"})
	if out[1] != "+15555550100" {
		t.Fatalf("disabled redactor altered value: %v", out[1])
	}
}

func TestNestedMapsAreRedacted(t *testing.T) {
	r := &redactor{enabled: true}
	got := r.value("meta", map[string]any{"to_number": "+1555", "status": "sent"}).(map[string]any)
	if got["to_number"] != redacted || got["status"] != "sent" {
		t.Fatalf("nested map: %#v", got)
	}
}
