package escalation

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	types "github.com/yungbote/aura-backend/internal/domain"
)

func TestBuildExcerptUsesLastSixOldestFirst(t *testing.T) {
	var newestFirst []*types.Message
	for i := 9; i >= 0; i-- {
		sender := types.SenderPatient
		if i%2 == 1 {
			sender = types.SenderAI
		}
		newestFirst = append(newestFirst, &types.Message{Sender: sender, Content: fmt.Sprintf("m%d", i)})
	}
	got := BuildExcerpt(newestFirst)
	want := "Patient: m4\nAura: m5\nPatient: m6\nAura: m7\nPatient: m8\nAura: m9"
	if got != want {
		t.Fatalf("excerpt:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildExcerptTruncates(t *testing.T) {
	msgs := []*types.Message{{Sender: types.SenderPatient, Content: strings.Repeat("é", 2000)}}
	got := BuildExcerpt(msgs)
	if utf8.RuneCountInString(got) != ExcerptRunes || !strings.HasSuffix(got, "...") {
		t.Fatalf("runes=%d", utf8.RuneCountInString(got))
	}
}

func TestFormatRatings(t *testing.T) {
	if got := formatRatings(nil); got != "none" {
		t.Fatalf("got %q", got)
	}
	if got := formatRatings([]float64{2, 1.75}); got != "2.0, 1.8" {
		t.Fatalf("got %q", got)
	}
}
