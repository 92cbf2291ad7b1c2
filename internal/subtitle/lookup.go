package subtitle

import "time"

// Locate finds the segment active at t in segments sorted by StartTime.
//
// At a shared boundary the later segment wins: when t matches segment mid
// and segment mid+1 starts within Epsilon of t, mid+1 is returned. A t that
// falls in a gap less than Epsilon before the next start resolves to that
// next segment for the same reason. Otherwise a gap, an out-of-range t or
// an empty slice reports false.
func Locate(segments []Segment, t time.Duration) (int, bool) {
	lo, hi := 0, len(segments)
	for lo < hi {
		mid := lo + (hi-lo)/2
		switch {
		case t < segments[mid].StartTime:
			hi = mid
		case t > segments[mid].EndTime:
			lo = mid + 1
		default:
			if next := mid + 1; next < len(segments) &&
				nearBoundary(t, segments[next].StartTime) {
				return next, true
			}
			return mid, true
		}
	}

	// lo is the first segment starting after t
	if lo < len(segments) && nearBoundary(t, segments[lo].StartTime) {
		return lo, true
	}
	return 0, false
}

// |a-b| < Epsilon
func nearBoundary(a, b time.Duration) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < Epsilon
}

// Locate over the subtitle's segments
func (s *Subtitle) Locate(t time.Duration) (int, bool) {
	if s == nil {
		return 0, false
	}
	return Locate(s.Segments, t)
}
