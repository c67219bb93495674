package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AlexKimmel/ratelog/internal/ratelimit"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
limit:
  duration_ms: 1500
output:
  format: json
  max_line_bytes: 256
observability:
  log_level: debug
  metrics_addr: ":9090"
  prometheus_path: /stats
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	lim, err := cfg.Limit.Threshold()
	if err != nil {
		t.Fatalf("Threshold: %v", err)
	}
	if lim != ratelimit.DurationLimit(1500*time.Millisecond) {
		t.Errorf("limit = %v", lim)
	}
	if cfg.Output.Format != FormatJSON || cfg.Output.MaxLineBytes != 256 {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.Observability.MetricsAddr != ":9090" || cfg.Observability.PrometheusPath != "/stats" {
		t.Errorf("observability = %+v", cfg.Observability)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "limit:\n  count: 4\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.Format != FormatPlain {
		t.Errorf("format = %q", cfg.Output.Format)
	}
	if cfg.Observability.LogLevel != "info" || cfg.Observability.PrometheusPath != "/metrics" {
		t.Errorf("observability = %+v", cfg.Observability)
	}
	if lim, _ := cfg.Limit.Threshold(); lim != ratelimit.CountLimit(4) {
		t.Errorf("limit = %v", lim)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if lim, _ := cfg.Limit.Threshold(); lim != ratelimit.CountLimit(DefaultCount) {
		t.Errorf("limit = %v", lim)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"both limits", "limit:\n  count: 3\n  duration_ms: 10\n", ErrBothLimits},
		{"negative", "limit:\n  count: -1\n", ErrNonPositiveLimit},
		{"zero count", "limit:\n  count: 0\n", ErrNonPositiveLimit},
		{"zero duration", "limit:\n  duration_ms: 0\n", ErrNonPositiveLimit},
		{"both with zero", "limit:\n  count: 0\n  duration_ms: 0\n", ErrBothLimits},
		{"format", "output:\n  format: xml\n", ErrFormat},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, c.body))
			if !errors.Is(err, c.want) {
				t.Errorf("err = %v, want %v", err, c.want)
			}
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "limit: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestThreshold(t *testing.T) {
	if lim, err := CountOf(7).Threshold(); err != nil || lim != ratelimit.CountLimit(7) {
		t.Errorf("CountOf(7) = %v, %v", lim, err)
	}
	if lim, err := DurationOf(2 * time.Second).Threshold(); err != nil || lim != ratelimit.DurationLimit(2*time.Second) {
		t.Errorf("DurationOf(2s) = %v, %v", lim, err)
	}
	if _, err := CountOf(0).Threshold(); !errors.Is(err, ErrNonPositiveLimit) {
		t.Errorf("CountOf(0) err = %v", err)
	}
	if _, err := DurationOf(0).Threshold(); !errors.Is(err, ErrNonPositiveLimit) {
		t.Errorf("DurationOf(0) err = %v", err)
	}
}
