package ratelimit

import (
	"fmt"
	"time"
)

type LimitKind int

const (
	ByCount LimitKind = iota + 1
	ByDuration
)

// Limit is the threshold that turns a run of repeats into a Notice.
// Exactly one of Count or Duration is meaningful, selected by Kind.
type Limit struct {
	Kind     LimitKind
	Count    int           // repeats of the same message
	Duration time.Duration // accumulated gap between repeats
}

func CountLimit(n int) Limit {
	return Limit{Kind: ByCount, Count: n}
}

func DurationLimit(d time.Duration) Limit {
	return Limit{Kind: ByDuration, Duration: d}
}

// Exceeded reports whether the running counters have reached the limit.
func (l Limit) Exceeded(count int, elapsed time.Duration) bool {
	switch l.Kind {
	case ByCount:
		return count >= l.Count
	case ByDuration:
		return elapsed >= l.Duration
	default:
		return false
	}
}

func (l Limit) String() string {
	switch l.Kind {
	case ByCount:
		return fmt.Sprintf("count(%d)", l.Count)
	case ByDuration:
		return fmt.Sprintf("duration(%s)", l.Duration)
	default:
		return "none"
	}
}

type Action int

const (
	Silent Action = iota
	Emit
	Notice
)

func (a Action) String() string {
	switch a {
	case Emit:
		return "emit"
	case Notice:
		return "notice"
	default:
		return "silent"
	}
}

type Decision struct {
	Action   Action
	Message  string
	Count    int           // captured repeat count (Notice only)
	Duration time.Duration // captured accumulated duration (Notice only)
}

// Text renders the line a sink should receive. ok is false for Silent.
func (d Decision) Text() (line string, ok bool) {
	switch d.Action {
	case Emit:
		return d.Message, true
	case Notice:
		return NoticeText(d.Message, d.Count, d.Duration), true
	default:
		return "", false
	}
}

// Tracker classifies each observed message against the one before it.
// Implementations are not safe for concurrent use.
type Tracker interface {
	Observe(msg string, now time.Time) Decision
}
