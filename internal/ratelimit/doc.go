// Package ratelimit decides what to do with a stream of log messages that
// tend to repeat.
//
// A Tracker watches one message at a time. The first occurrence of a message
// is emitted verbatim. Each identical message that follows is counted, along
// with the time elapsed since the one before it, and produces no output until
// the configured Limit is reached. At that point a single Notice summarizes
// the run:
//
//	Message: "disk full" repeat for 5 times in the past 3s
//
// and the counters start again from zero for the same message. A different
// message is emitted immediately and discards the counters of the previous
// one; there is no per-message table.
//
// # Limits
//
//   - CountLimit(n): a Notice after n repeats.
//   - DurationLimit(d): a Notice once the gaps between repeats add up to d.
//
// Both counters are always tracked, so a Notice carries the count and the
// accumulated duration whichever limit fired.
//
// # Time
//
// Observe takes the current time from the caller. Gaps are only measured
// between two observations of the same message, and a clock that moves
// backwards contributes a zero gap.
//
// Trackers hold no I/O. Writing the rendered text of a Decision somewhere is
// left to the caller (see the relay and sink packages).
package ratelimit
