package timer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidDuration is returned for a duration that is not H:M:S or H:M.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrZeroDuration is returned when a duration parses to zero seconds.
	ErrZeroDuration = errors.New("duration must be greater than zero")
)

// ParseHMS converts "HH:MM:SS" into whole seconds. The backend's
// LocalTime-style values drop zero seconds ("02:30"), so "HH:MM" is
// accepted too. The seconds field may carry a fractional part
// ("02:30:00.0000000"), which is truncated. Minutes and seconds must be
// below 60.
func ParseHMS(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		parts = append(parts, "0")
	case 3:
		if i := strings.IndexByte(parts[2], '.'); i >= 0 {
			frac := parts[2][i+1:]
			if frac == "" || !allDigits(frac) {
				return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
			}
			parts[2] = parts[2][:i]
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var fields [3]int
	for i, p := range parts {
		if p == "" || !allDigits(p) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		fields[i] = n
	}

	h, m, sec := fields[0], fields[1], fields[2]
	if m > 59 || sec > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	return h*3600 + m*60 + sec, nil
}

// ParsePositiveHMS is ParseHMS that also rejects a zero duration.
func ParsePositiveHMS(s string) (int, error) {
	secs, err := ParseHMS(s)
	if err != nil {
		return 0, err
	}
	if secs == 0 {
		return 0, fmt.Errorf("%w: %q", ErrZeroDuration, s)
	}
	return secs, nil
}

// FormatHMS renders seconds as zero-padded "HH:MM:SS". Hours grow past
// two digits when needed; negative input renders as zero.
func FormatHMS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Progress returns the completion percentage reported to the backend
// when a task finishes. Without extra time it is 100; after an extension
// of extra seconds on an allotment of original seconds it is
// round(100 * (original + extra) / original).
func Progress(original, extra int) int {
	if original <= 0 || extra <= 0 {
		return 100
	}
	return int(math.Round(float64(original+extra) * 100 / float64(original)))
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
