package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/AlexKimmel/ratelog/internal/ratelimit"
	"gopkg.in/yaml.v3"
)

var (
	ErrBothLimits       = errors.New("config: limit.count and limit.duration_ms are mutually exclusive")
	ErrNonPositiveLimit = errors.New("config: limit must be positive")
	ErrFormat           = errors.New("config: output.format must be plain or json")
)

const (
	FormatPlain = "plain"
	FormatJSON  = "json"

	DefaultCount = 10
)

// Limit fields are pointers so an explicit zero can be told apart from an
// absent key.
type Limit struct {
	Count      *int   `yaml:"count"`
	DurationMS *int64 `yaml:"duration_ms"`
}

func CountOf(n int) Limit {
	return Limit{Count: &n}
}

func DurationOf(d time.Duration) Limit {
	ms := d.Milliseconds()
	return Limit{DurationMS: &ms}
}

type Output struct {
	Format       string `yaml:"format"` // "plain","json"
	MaxLineBytes int    `yaml:"max_line_bytes"`
}

type Observability struct {
	LogLevel       string `yaml:"log_level"`       // "debug","info","warn","error"
	MetricsAddr    string `yaml:"metrics_addr"`    // e.g. ":9090", empty disables
	PrometheusPath string `yaml:"prometheus_path"` // e.g. "/metrics"
}

type Root struct {
	Limit         Limit         `yaml:"limit"`
	Output        Output        `yaml:"output"`
	Observability Observability `yaml:"observability"`
}

// Threshold converts the configured limit. With neither field set the
// default is a count limit of DefaultCount.
func (l Limit) Threshold() (ratelimit.Limit, error) {
	switch {
	case l.Count != nil && l.DurationMS != nil:
		return ratelimit.Limit{}, ErrBothLimits
	case l.DurationMS != nil:
		if *l.DurationMS <= 0 {
			return ratelimit.Limit{}, fmt.Errorf("%w: duration_ms %d", ErrNonPositiveLimit, *l.DurationMS)
		}
		return ratelimit.DurationLimit(time.Duration(*l.DurationMS) * time.Millisecond), nil
	case l.Count != nil:
		if *l.Count <= 0 {
			return ratelimit.Limit{}, fmt.Errorf("%w: count %d", ErrNonPositiveLimit, *l.Count)
		}
		return ratelimit.CountLimit(*l.Count), nil
	default:
		return ratelimit.CountLimit(DefaultCount), nil
	}
}

func (o Output) Validate() error {
	switch o.Format {
	case FormatPlain, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: got %q", ErrFormat, o.Format)
	}
}

// Default returns the configuration used when no file is given.
func Default() *Root {
	var cfg Root
	cfg.applyDefaults()
	return &cfg
}

func (cfg *Root) applyDefaults() {
	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatPlain
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	if cfg.Observability.PrometheusPath == "" {
		cfg.Observability.PrometheusPath = "/metrics"
	}
}

// Validate checks the fields Load cannot default.
func (cfg *Root) Validate() error {
	if _, err := cfg.Limit.Threshold(); err != nil {
		return err
	}
	return cfg.Output.Validate()
}

func Load(path string) (*Root, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Root
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
