package relay

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/AlexKimmel/ratelog/internal/ratelimit"
	"github.com/AlexKimmel/ratelog/internal/sink"
	"github.com/rs/zerolog"
)

// Recorder is told about every decision the relay makes.
type Recorder interface {
	Decided(dec ratelimit.Decision)
	SinkError()
}

type noopRecorder struct{}

func (noopRecorder) Decided(ratelimit.Decision) {}
func (noopRecorder) SinkError()                 {}

type Option func(*Relay)

func WithClock(now func() time.Time) Option {
	return func(r *Relay) {
		if now != nil {
			r.now = now
		}
	}
}

func WithRecorder(rec Recorder) Option {
	return func(r *Relay) {
		if rec != nil {
			r.rec = rec
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Relay) {
		r.log = logger
	}
}

// Relay feeds messages through a Tracker and writes whatever the decision
// renders to a Sink. Like the Tracker it wraps, a Relay is not safe for
// concurrent use; see Locked.
type Relay struct {
	tracker ratelimit.Tracker
	out     sink.Sink
	now     func() time.Time
	rec     Recorder
	log     zerolog.Logger
}

func New(tracker ratelimit.Tracker, out sink.Sink, opts ...Option) *Relay {
	r := &Relay{
		tracker: tracker,
		out:     out,
		now:     time.Now,
		rec:     noopRecorder{},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Log observes msg at the current clock reading and writes the rendered line,
// if any. The tracker advances even when the sink fails.
func (r *Relay) Log(msg string) (ratelimit.Decision, error) {
	dec := r.tracker.Observe(msg, r.now())
	r.rec.Decided(dec)

	line, ok := dec.Text()
	if !ok {
		return dec, nil
	}
	if dec.Action == ratelimit.Notice {
		r.log.Debug().
			Str("message", dec.Message).
			Int("count", dec.Count).
			Dur("window", dec.Duration).
			Msg("repeat threshold reached")
	}
	if err := r.out.WriteLine(line); err != nil {
		r.rec.SinkError()
		r.log.Error().Err(err).Str("action", dec.Action.String()).Msg("sink write failed")
		return dec, fmt.Errorf("relay: write %s: %w", dec.Action, err)
	}
	return dec, nil
}

// Write logs every newline-terminated line in p, so a Relay can back a
// standard library log.Logger. A trailing fragment without a newline is
// logged as its own line.
func (r *Relay) Write(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		line, next := p[n:], len(p)
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line, next = line[:i], n+i+1
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if _, err := r.Log(string(line)); err != nil {
			return n, err
		}
		n = next
	}
	return n, nil
}

// Locked serializes access to a Relay shared between goroutines.
type Locked struct {
	mu sync.Mutex
	r  *Relay
}

func NewLocked(r *Relay) *Locked {
	return &Locked{r: r}
}

func (l *Locked) Log(msg string) (ratelimit.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Log(msg)
}

func (l *Locked) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Write(p)
}
