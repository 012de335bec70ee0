package timex

import "time"

var boot = time.Now()

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Millis returns milliseconds since process start from the monotonic clock.
// Unaffected by wall-clock steps (e.g. setting the system time from the RTC).
func Millis() int64 { return time.Since(boot).Milliseconds() }

// Since returns now-then in ms, treating a then in the future as 0.
func Since(now, then int64) int64 {
	if now < then {
		return 0
	}
	return now - then
}
