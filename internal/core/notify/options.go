package notify

import (
	"strconv"
	"strings"
	"time"
)

// Option configures a single notification.
type Option func(*request)

type request struct {
	duration    time.Duration
	durationSet bool
}

// WithDuration sets how long the notification stays active. Zero or negative
// values make it persistent.
func WithDuration(d time.Duration) Option {
	return func(r *request) {
		r.duration = d
		r.durationSet = true
	}
}

// Persistent disables auto-expiry. The notification stays until it is
// removed or cleared.
func Persistent() Option {
	return WithDuration(0)
}

// ParseArgs resolves positional arguments into a kind and message. A single
// argument is the message of a default notification; otherwise the first
// argument is the kind and the second the message.
func ParseArgs(args ...string) (Kind, string) {
	switch len(args) {
	case 0:
		return KindDefault, ""
	case 1:
		return KindDefault, args[0]
	}

	kind := Kind(strings.ToLower(strings.TrimSpace(args[0])))
	if kind == "" {
		kind = KindDefault
	}
	return kind, args[1]
}

// ParseDuration converts textual durations from config, scripts or flags.
// Bare integers are milliseconds, anything else must be a Go duration
// string. The second return value is false when the input could not be used
// as-is; the duration is then 0, which means persistent.
func ParseDuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, false
		}
		return time.Duration(ms) * time.Millisecond, true
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}

func normalizeDuration(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
