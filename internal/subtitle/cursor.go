package subtitle

import "time"

// Step resolves the active segment at t starting from a previously resolved
// index. It returns the index to cache for the next call and the resolved
// segment index, if any.
//
// Forward playback (staying inside a segment, crossing into the next one,
// or sitting in the gap between them) resolves in O(1). Anything else,
// including seeks in either direction and a stale cache after reload, falls
// back to Locate. A miss never moves the cache.
func Step(
	cached int,
	segments []Segment,
	t time.Duration,
) (next int, index int, ok bool) {
	if idx, resolved, hit := fastStep(cached, segments, t); hit {
		if !resolved {
			return cached, 0, false
		}
		return idx, idx, true
	}

	if idx, found := Locate(segments, t); found {
		return idx, idx, true
	}
	return cached, 0, false
}

// hit reports whether the fast path decided; resolved is false for a gap
func fastStep(
	i int,
	segments []Segment,
	t time.Duration,
) (idx int, resolved bool, hit bool) {
	if i < 0 || i >= len(segments) {
		return 0, false, false
	}

	cur := segments[i]
	j := i + 1
	if j == len(segments) {
		if cur.Contains(t) {
			return i, true, true
		}
		return 0, false, false
	}

	nxt := segments[j]
	switch {
	case nearBoundary(t, nxt.StartTime):
		if afterNextStarts(segments, j, t) {
			return 0, false, false
		}
		return j, true, true
	case cur.Contains(t):
		return i, true, true
	case cur.EndTime < t && t < nxt.StartTime:
		return 0, false, true
	case nxt.Contains(t):
		if afterNextStarts(segments, j, t) {
			return 0, false, false
		}
		return j, true, true
	}
	return 0, false, false
}

// a boundary shared with the segment after j, e.g. behind a zero-length
// segment, belongs to Locate
func afterNextStarts(segments []Segment, j int, t time.Duration) bool {
	k := j + 1
	return k < len(segments) && nearBoundary(t, segments[k].StartTime)
}

// Cursor tracks the active segment while a playback clock advances.
//
// The zero value is ready to use. A Cursor must not be shared between
// goroutines without external locking.
type Cursor struct {
	index int
}

// resolves the active segment at t; ok is false in gaps and outside range
func (c *Cursor) Update(segments []Segment, t time.Duration) (int, bool) {
	next, idx, ok := Step(c.index, segments, t)
	c.index = next
	return idx, ok
}

// last resolved index, a hint only
func (c *Cursor) Index() int {
	return c.index
}

// forgets the cached position, e.g. after a reload
func (c *Cursor) Reset() {
	c.index = 0
}
