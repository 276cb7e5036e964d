package apierr

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorWrapsAndReports(t *testing.T) {
	base := errors.New("alert not found")
	err := NotFound("alert_not_found", base)
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error")
	}
	if err.Status != http.StatusNotFound || err.Error() != "alert not found" {
		t.Fatalf("err = %+v", err)
	}
	if got := New(http.StatusTeapot, "", nil).Error(); got != "api error (418)" {
		t.Fatalf("got %q", got)
	}
	if got := Unauthorized(nil).Error(); got != "missing or invalid token" {
		t.Fatalf("got %q", got)
	}
}
