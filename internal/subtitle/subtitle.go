package subtitle

import (
	"fmt"
	"strings"
	"time"
)

// tolerance used to treat near-equal timestamps as the same boundary
const Epsilon = time.Millisecond

// single caption interval
type Segment struct {
	ID        int
	StartTime time.Duration
	EndTime   time.Duration
	Lines     []string
}

// reports whether t lies in the closed interval [StartTime, EndTime]
func (s Segment) Contains(t time.Duration) bool {
	return s.StartTime <= t && t <= s.EndTime
}

// joined view of the content, one line per row
func (s Segment) Text() string {
	return strings.Join(s.Lines, "\n")
}

// replaces the content from its joined view
func (s *Segment) SetText(text string) {
	s.Lines = SplitLines(text)
}

// content lines that would be drawn on an overlay
func (s Segment) DisplayLines() []string {
	out := make([]string, 0, len(s.Lines))
	for _, line := range s.Lines {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func (s Segment) Duration() time.Duration {
	return s.EndTime - s.StartTime
}

// ordered caption track for one media item
//
// Segments are ascending by StartTime. Non-overlap is assumed but never
// enforced. IDs are always position+1.
type Subtitle struct {
	Segments []Segment
}

// builds a Subtitle from an ordered list, assigning ids 1..N
func New(segments []Segment) *Subtitle {
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		out[i] = Segment{
			ID:        i + 1,
			StartTime: seg.StartTime,
			EndTime:   seg.EndTime,
			Lines:     append([]string(nil), seg.Lines...),
		}
	}
	return &Subtitle{Segments: out}
}

func (s *Subtitle) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Segments)
}

// segment by 1-based id
func (s *Subtitle) ByID(id int) (Segment, bool) {
	if id < 1 || id > s.Len() {
		return Segment{}, false
	}
	return s.Segments[id-1], true
}

// replaces the content of the segment at index (0-based)
func (s *Subtitle) SetText(index int, text string) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.Segments[index].SetText(text)
	return nil
}

// replaces the content lines of the segment at index (0-based)
func (s *Subtitle) SetLines(index int, lines []string) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.Segments[index].Lines = append([]string(nil), lines...)
	return nil
}

// recomputes ids from positions
func (s *Subtitle) Renumber() {
	for i := range s.Segments {
		s.Segments[i].ID = i + 1
	}
}

// deep copy, safe to hand to another reader
func (s *Subtitle) Clone() *Subtitle {
	if s == nil {
		return &Subtitle{}
	}
	return New(s.Segments)
}

// end of the last segment, zero when empty
func (s *Subtitle) End() time.Duration {
	if s.Len() == 0 {
		return 0
	}
	return s.Segments[len(s.Segments)-1].EndTime
}

func (s *Subtitle) checkIndex(index int) error {
	if index < 0 || index >= s.Len() {
		return fmt.Errorf(
			"index %d out of range (0-%d)",
			index,
			s.Len()-1,
		)
	}
	return nil
}

// splits on \r\n, \r or \n
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
