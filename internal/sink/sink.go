package sink

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Sink accepts rendered output lines.
type Sink interface {
	WriteLine(line string) error
}

// Func adapts a plain function to a Sink.
type Func func(line string) error

func (f Func) WriteLine(line string) error { return f(line) }

type writerSink struct {
	w io.Writer
}

// Writer writes each line to w followed by a newline.
func Writer(w io.Writer) Sink {
	return &writerSink{w: w}
}

func (s *writerSink) WriteLine(line string) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')
	_, err := s.w.Write(buf)
	return err
}

type zerologSink struct {
	logger zerolog.Logger
	level  zerolog.Level
}

// Zerolog emits one structured event per line at the given level.
func Zerolog(logger zerolog.Logger, level zerolog.Level) Sink {
	return &zerologSink{logger: logger, level: level}
}

func (s *zerologSink) WriteLine(line string) error {
	s.logger.WithLevel(s.level).Msg(line)
	return nil
}

// Memory keeps every line in order. Safe for concurrent use.
type Memory struct {
	mu    sync.Mutex
	lines []string
}

func (m *Memory) WriteLine(line string) error {
	m.mu.Lock()
	m.lines = append(m.lines, line)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

func (m *Memory) Reset() {
	m.mu.Lock()
	m.lines = nil
	m.mu.Unlock()
}
