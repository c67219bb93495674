package ratelimit

import (
	"strconv"
	"time"
)

// FormatDuration renders d in the coarsest whole unit that is non-zero:
// hours, minutes, seconds, then milliseconds. The value is truncated, never
// rounded, and units are not combined ("1h", never "1h5m").
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d >= time.Hour:
		return fmtInt(int64(d/time.Hour)) + "h"
	case d >= time.Minute:
		return fmtInt(int64(d/time.Minute)) + "m"
	case d >= time.Second:
		return fmtInt(int64(d/time.Second)) + "s"
	default:
		return fmtInt(d.Milliseconds()) + "ms"
	}
}

func NoticeText(msg string, count int, d time.Duration) string {
	return `Message: "` + msg + `" repeat for ` + strconv.Itoa(count) +
		" times in the past " + FormatDuration(d)
}

func fmtInt(i int64) string {
	var buf [32]byte
	return string(strconv.AppendInt(buf[:0], i, 10))
}
