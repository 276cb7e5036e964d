package observability

import "testing"

func TestParseHeaders(t *testing.T) {
	got := parseHeaders("api-key=abc, x-team = ops ,broken,=nokey,empty=")
	if len(got) != 2 || got["api-key"] != "abc" || got["x-team"] != "ops" {
		t.Fatalf("headers = %#v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty input should yield nil")
	}
}

func TestOtelConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_SAMPLER_RATIO", "3")

	cfg := OtelConfigFromEnv("aura-backend", "staging", "1.2.3")
	if !cfg.Enabled || cfg.Endpoint != "collector:4318" || cfg.SampleRatio != 1 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Environment != "staging" || cfg.Version != "1.2.3" {
		t.Fatalf("cfg = %+v", cfg)
	}
}
