package memory

import (
	"time"

	"github.com/AlexKimmel/ratelog/internal/ratelimit"
)

type state struct {
	count    int
	elapsed  time.Duration
	lastSeen time.Time
	seen     bool
}

func (s *state) reset() {
	*s = state{}
}

// Tracker follows a single message at a time. Switching to a different
// message discards every counter kept for the previous one.
//
// A Tracker is not safe for concurrent use; callers sharing one must
// serialize access themselves.
type Tracker struct {
	limit    ratelimit.Limit
	message  string
	tracking bool // false until the first Observe, so "" is a real message
	current  state
}

var _ ratelimit.Tracker = (*Tracker)(nil)

func New(limit ratelimit.Limit) *Tracker {
	return &Tracker{limit: limit}
}

func (t *Tracker) Limit() ratelimit.Limit { return t.limit }

func (t *Tracker) Observe(msg string, now time.Time) ratelimit.Decision {
	if !t.tracking || t.message != msg {
		t.tracking = true
		t.message = msg
		t.current.reset()
		t.current.lastSeen = now
		t.current.seen = true
		return ratelimit.Decision{Action: ratelimit.Emit, Message: msg}
	}

	t.current.count++
	if t.current.seen {
		// a clock that went backwards contributes nothing
		if gap := now.Sub(t.current.lastSeen); gap > 0 {
			t.current.elapsed += gap
		}
	}
	t.current.lastSeen = now
	t.current.seen = true

	if !t.limit.Exceeded(t.current.count, t.current.elapsed) {
		return ratelimit.Decision{Action: ratelimit.Silent}
	}

	dec := ratelimit.Decision{
		Action:   ratelimit.Notice,
		Message:  msg,
		Count:    t.current.count,
		Duration: t.current.elapsed,
	}
	t.current.reset()
	return dec
}
