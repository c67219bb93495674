package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/AlexKimmel/ratelog/internal/config"
	"github.com/AlexKimmel/ratelog/internal/obs"
	"github.com/AlexKimmel/ratelog/internal/ratelimit/memory"
	"github.com/AlexKimmel/ratelog/internal/relay"
	"github.com/AlexKimmel/ratelog/internal/sink"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func run(ctx context.Context, cfg *config.Root, stdin io.Reader, stdout, stderr io.Writer) error {
	logger := obs.SetupLogger(cfg.Observability.LogLevel, stderr)

	limit, err := cfg.Limit.Threshold()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := obs.NewMetrics(reg)

	tracker := memory.New(limit)
	out := newSink(cfg.Output, stdout)
	r := relay.New(tracker, out,
		relay.WithRecorder(metrics),
		relay.WithLogger(logger),
	)

	if addr := cfg.Observability.MetricsAddr; addr != "" {
		_, shutdown, err := serveOps(addr, cfg.Observability.PrometheusPath, reg, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	logger.Info().Str("limit", tracker.Limit().String()).Str("format", cfg.Output.Format).Msg("filtering stdin")

	lines, scanErr := readLines(ctx, stdin)
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("interrupted")
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				logger.Debug().Msg("end of input")
				return nil
			}
			if _, err := r.Log(line); err != nil {
				return err
			}
		}
	}
}

func newSink(o config.Output, w io.Writer) sink.Sink {
	var base sink.Sink
	switch o.Format {
	case config.FormatJSON:
		base = sink.Zerolog(zerolog.New(w).With().Timestamp().Logger(), zerolog.InfoLevel)
	default:
		base = sink.Writer(w)
	}
	return sink.Chain(base, sink.MaxLine(o.MaxLineBytes))
}

// readLines reads r on its own goroutine so a blocked read never holds up
// shutdown. Lines have no length cap. scanErr receives exactly one value
// after lines is closed.
func readLines(ctx context.Context, r io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(scanErr)
		defer close(lines)

		br := bufio.NewReaderSize(r, 64*1024)
		for {
			line, err := br.ReadString('\n')
			if len(line) > 0 {
				line = strings.TrimSuffix(line, "\n")
				line = strings.TrimSuffix(line, "\r")
				select {
				case lines <- line:
				case <-ctx.Done():
					scanErr <- nil
					return
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}
				scanErr <- err
				return
			}
		}
	}()
	return lines, scanErr
}

// serveOps starts the ops server and returns the address it is bound to.
func serveOps(addr, metricsPath string, reg *prometheus.Registry, logger zerolog.Logger) (string, func(), error) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(version))
	})

	mux.Handle(metricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Handler:           obs.Logger(logger)(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	go func() {
		logger.Info().Str("addr", ln.Addr().String()).Msg("ops server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("ops server error")
		}
	}()

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("graceful shutdown failed")
		}
	}, nil
}
