package subtitle

import (
	"reflect"
	"testing"
	"time"
)

func TestNewAssignsDenseIDs(t *testing.T) {
	sub := New([]Segment{
		{ID: 7, StartTime: 0, EndTime: time.Second, Lines: []string{"a"}},
		{ID: 3, StartTime: time.Second, EndTime: 2 * time.Second},
		{ID: 0, StartTime: 2 * time.Second, EndTime: 3 * time.Second},
	})

	for k, seg := range sub.Segments {
		if seg.ID != k+1 {
			t.Errorf("segment %d: id = %d, want %d", k, seg.ID, k+1)
		}
	}
}

func TestNewCopiesLines(t *testing.T) {
	lines := []string{"original"}
	sub := New([]Segment{{Lines: lines}})
	lines[0] = "changed"

	if sub.Segments[0].Lines[0] != "original" {
		t.Error("New should not alias caller line slices")
	}
}

func TestSegmentTextConversions(t *testing.T) {
	var seg Segment
	seg.SetText("first\r\nsecond\rthird\nfourth")

	want := []string{"first", "second", "third", "fourth"}
	if !reflect.DeepEqual(seg.Lines, want) {
		t.Fatalf("SetText lines = %q, want %q", seg.Lines, want)
	}
	if seg.Text() != "first\nsecond\nthird\nfourth" {
		t.Errorf("Text() = %q", seg.Text())
	}
}

func TestSegmentContainsIsClosed(t *testing.T) {
	seg := Segment{StartTime: time.Second, EndTime: 2 * time.Second}

	tests := []struct {
		t    time.Duration
		want bool
	}{
		{999 * time.Millisecond, false},
		{time.Second, true},
		{1500 * time.Millisecond, true},
		{2 * time.Second, true},
		{2001 * time.Millisecond, false},
	}
	for _, tt := range tests {
		if got := seg.Contains(tt.t); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestDisplayLinesDropsEmpty(t *testing.T) {
	seg := Segment{Lines: []string{"", "top", "", "bottom"}}
	want := []string{"top", "bottom"}
	if got := seg.DisplayLines(); !reflect.DeepEqual(got, want) {
		t.Errorf("DisplayLines() = %q, want %q", got, want)
	}
}

func TestSubtitleEdits(t *testing.T) {
	sub := New([]Segment{
		{StartTime: 0, EndTime: time.Second, Lines: []string{"Hello"}},
	})

	if err := sub.SetText(0, "Hi\nthere"); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}
	if !reflect.DeepEqual(sub.Segments[0].Lines, []string{"Hi", "there"}) {
		t.Errorf("SetText did not update lines: %q", sub.Segments[0].Lines)
	}

	if err := sub.SetLines(0, []string{"one"}); err != nil {
		t.Fatalf("SetLines failed: %v", err)
	}
	if sub.Segments[0].Text() != "one" {
		t.Errorf("SetLines did not update text: %q", sub.Segments[0].Text())
	}

	if err := sub.SetText(1, "nope"); err == nil {
		t.Error("expected error for out of range index")
	}
	if err := sub.SetLines(-1, nil); err == nil {
		t.Error("expected error for negative index")
	}
}

func TestByID(t *testing.T) {
	sub := New([]Segment{{Lines: []string{"a"}}, {Lines: []string{"b"}}})

	seg, ok := sub.ByID(2)
	if !ok || seg.Lines[0] != "b" {
		t.Errorf("ByID(2) = %+v, %v", seg, ok)
	}
	if _, ok := sub.ByID(0); ok {
		t.Error("ByID(0) should fail")
	}
	if _, ok := sub.ByID(3); ok {
		t.Error("ByID(3) should fail")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	sub := New([]Segment{{Lines: []string{"a"}}})
	clone := sub.Clone()
	clone.Segments[0].Lines[0] = "b"

	if sub.Segments[0].Lines[0] != "a" {
		t.Error("Clone shares line storage with the original")
	}
}
