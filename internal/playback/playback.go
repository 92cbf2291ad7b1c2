// Package playback holds the transport-side helpers an editor needs around
// the timeline cursor: jump targets, skipping, rates and clock display.
package playback

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/subedit/internal/subtitle"
)

const (
	// skip buttons move by this much
	DefaultSkip = 15 * time.Second
	// skip buttons are disabled this close to either end
	SkipGuard = 5 * time.Second
	// period of the playback time observer
	DefaultTick = 250 * time.Millisecond
)

// playback rates offered to the user
var Rates = []float64{0.5, 1, 1.5, 1.75, 2}

// reports whether rate is one of allowed, or of Rates when allowed is empty
func ValidRate(rate float64, allowed []float64) bool {
	if len(allowed) == 0 {
		allowed = Rates
	}
	for _, r := range allowed {
		if r == rate {
			return true
		}
	}
	return false
}

// ParseClock reads "M:SS" or "H:M:SS" style input (any number of colon
// separated fields, rightmost is seconds) as sum(field[i] * 60^i).
// A single field is not a clock value.
func ParseClock(s string) (time.Duration, bool) {
	fields := strings.Split(strings.TrimSpace(s), ":")
	if len(fields) < 2 {
		return 0, false
	}

	var seconds float64
	for i := range fields {
		v, ok := parseField(fields[len(fields)-1-i])
		if !ok {
			return 0, false
		}
		seconds += v * math.Pow(60, float64(i))
	}
	return fromSeconds(seconds)
}

// ResolveJump turns user input into a playback position. A bare integer is
// a 1-based segment number and resolves to that segment's start; anything
// with colons is a clock value, clamped to [0, duration] when duration is
// known. Unusable input reports false.
func ResolveJump(
	target string,
	sub *subtitle.Subtitle,
	duration time.Duration,
) (time.Duration, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return 0, false
	}

	if !strings.Contains(target, ":") {
		n, err := strconv.Atoi(target)
		if err != nil {
			return 0, false
		}
		seg, ok := sub.ByID(n)
		if !ok {
			return 0, false
		}
		return seg.StartTime, true
	}

	d, ok := ParseClock(target)
	if !ok {
		return 0, false
	}
	return Clamp(d, duration), true
}

// ResolveTime accepts everything ResolveJump does plus plain seconds
// ("12.5"), used where a bare number means a time rather than a segment
func ResolveTime(target string, duration time.Duration) (time.Duration, bool) {
	target = strings.TrimSpace(target)
	if strings.Contains(target, ":") {
		d, ok := ParseClock(target)
		if !ok {
			return 0, false
		}
		return Clamp(d, duration), true
	}
	v, ok := parseField(target)
	if !ok {
		return 0, false
	}
	d, ok := fromSeconds(v)
	if !ok {
		return 0, false
	}
	return Clamp(d, duration), true
}

// limits d to [0, duration]; a non-positive duration means unknown
func Clamp(d, duration time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if duration > 0 && d > duration {
		return duration
	}
	return d
}

// moves cur by delta, staying inside [0, duration]
func Skip(cur, delta, duration time.Duration) time.Duration {
	return Clamp(cur+delta, duration)
}

func CanSkipBack(cur time.Duration) bool {
	return cur >= SkipGuard
}

func CanSkipForward(cur, duration time.Duration) bool {
	return cur+SkipGuard <= duration
}

// SkipBy applies a skip button press. A negative step skips back. A press
// on a disabled button leaves cur unchanged.
func SkipBy(cur, step, duration time.Duration) time.Duration {
	switch {
	case step < 0 && !CanSkipBack(cur):
		return cur
	case step > 0 && !CanSkipForward(cur, duration):
		return cur
	}
	return Skip(cur, step, duration)
}

// HH:MM:SS, truncating fractions
func FormatHMS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// sample times from 0 to duration inclusive, every interval
func Ticks(duration, interval time.Duration) []time.Duration {
	if interval <= 0 {
		interval = DefaultTick
	}
	if duration < 0 {
		return nil
	}
	ticks := make([]time.Duration, 0, int(duration/interval)+2)
	for t := time.Duration(0); t <= duration; t += interval {
		ticks = append(ticks, t)
	}
	if ticks[len(ticks)-1] != duration {
		ticks = append(ticks, duration)
	}
	return ticks
}

func parseField(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func fromSeconds(seconds float64) (time.Duration, bool) {
	if seconds > float64(math.MaxInt64)/float64(time.Second) {
		return 0, false
	}
	return time.Duration(math.Round(seconds * float64(time.Second))), true
}

// FromSeconds converts a floating point playback clock reading
func FromSeconds(seconds float64) time.Duration {
	d, ok := fromSeconds(math.Abs(seconds))
	if !ok {
		d = time.Duration(math.MaxInt64)
	}
	if seconds < 0 {
		return -d
	}
	return d
}
