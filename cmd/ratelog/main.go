package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexKimmel/ratelog/internal/config"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

type flags struct {
	configPath   string
	count        int
	duration     time.Duration
	format       string
	logLevel     string
	metricsAddr  string
	maxLineBytes int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "ratelog",
		Short: "Collapse runs of repeated log lines into periodic repeat notices",
		Long: `ratelog reads lines from stdin and copies them to stdout. A line that
repeats the previous one is held back and counted; once the configured count
or accumulated duration is reached a single notice replaces the run:

  Message: "<line>" repeat for <n> times in the past <duration>`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, stdin, stdout, stderr)
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "path to a YAML config file")
	fl.IntVarP(&f.count, "count", "n", 0, "emit a notice after this many repeats")
	fl.DurationVarP(&f.duration, "duration", "d", 0, "emit a notice once repeats span this long")
	fl.StringVar(&f.format, "format", "", "output format: plain or json")
	fl.StringVar(&f.logLevel, "log-level", "", "diagnostic log level")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "serve /health and metrics on this address")
	fl.IntVar(&f.maxLineBytes, "max-line-bytes", 0, "truncate output lines longer than this")
	cmd.MarkFlagsMutuallyExclusive("count", "duration")

	return cmd
}

// resolveConfig loads the file, if any, and lets explicitly set flags win.
func resolveConfig(cmd *cobra.Command, f flags) (*config.Root, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	fl := cmd.Flags()
	if fl.Changed("count") {
		cfg.Limit = config.CountOf(f.count)
	}
	if fl.Changed("duration") {
		if f.duration > 0 && f.duration < time.Millisecond {
			return nil, errors.New("--duration must be at least 1ms")
		}
		cfg.Limit = config.DurationOf(f.duration)
	}
	if fl.Changed("format") {
		cfg.Output.Format = f.format
	}
	if fl.Changed("max-line-bytes") {
		cfg.Output.MaxLineBytes = f.maxLineBytes
	}
	if fl.Changed("log-level") {
		cfg.Observability.LogLevel = f.logLevel
	}
	if fl.Changed("metrics-addr") {
		cfg.Observability.MetricsAddr = f.metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
