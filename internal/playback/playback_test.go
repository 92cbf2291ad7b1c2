package playback

import (
	"testing"
	"time"

	"github.com/mgpai22/subedit/internal/subtitle"
)

func sampleSubtitle() *subtitle.Subtitle {
	return subtitle.New([]subtitle.Segment{
		{StartTime: 1 * time.Second, EndTime: 2 * time.Second, Lines: []string{"a"}},
		{StartTime: 65 * time.Second, EndTime: 70 * time.Second, Lines: []string{"b"}},
		{StartTime: 3700 * time.Second, EndTime: 3702 * time.Second, Lines: []string{"c"}},
	})
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"1:30", 90 * time.Second, true},
		{"0:05", 5 * time.Second, true},
		{"01:02:03", time.Hour + 2*time.Minute + 3*time.Second, true},
		{"1:2:3:4", (216000 + 7200 + 180 + 4) * time.Second, true},
		{" 2:00 ", 2 * time.Minute, true},
		{"0:1.5", 1500 * time.Millisecond, true},
		{"90", 0, false},
		{"", 0, false},
		{"1:", 0, false},
		{"a:10", 0, false},
		{"-1:10", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseClock(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf(
					"ParseClock(%q) = %v, %v, want %v, %v",
					tt.in,
					got,
					ok,
					tt.want,
					tt.ok,
				)
			}
		})
	}
}

func TestResolveJump(t *testing.T) {
	sub := sampleSubtitle()
	duration := 2 * time.Hour

	tests := []struct {
		target string
		want   time.Duration
		ok     bool
	}{
		{"1", 1 * time.Second, true},
		{"2", 65 * time.Second, true},
		{" 3 ", 3700 * time.Second, true},
		{"0", 0, false},
		{"4", 0, false},
		{"1:05", 65 * time.Second, true},
		{"3:00:00", duration, true},
		{"1.5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, ok := ResolveJump(tt.target, sub, duration)
			if ok != tt.ok || got != tt.want {
				t.Errorf(
					"ResolveJump(%q) = %v, %v, want %v, %v",
					tt.target,
					got,
					ok,
					tt.want,
					tt.ok,
				)
			}
		})
	}
}

func TestResolveJumpUnknownDuration(t *testing.T) {
	got, ok := ResolveJump("5:00:00", sampleSubtitle(), 0)
	if !ok || got != 5*time.Hour {
		t.Errorf("ResolveJump without duration = %v, %v, want 5h, true", got, ok)
	}
}

func TestResolveTime(t *testing.T) {
	tests := []struct {
		target string
		want   time.Duration
		ok     bool
	}{
		{"12.5", 12500 * time.Millisecond, true},
		{"0", 0, true},
		{"1:00", time.Minute, true},
		{"999", 10 * time.Minute, true},
		{"-3", 0, false},
		{"x", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, ok := ResolveTime(tt.target, 10*time.Minute)
			if ok != tt.ok || got != tt.want {
				t.Errorf(
					"ResolveTime(%q) = %v, %v, want %v, %v",
					tt.target,
					got,
					ok,
					tt.want,
					tt.ok,
				)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	duration := time.Minute
	if got := Skip(10*time.Second, -DefaultSkip, duration); got != 0 {
		t.Errorf("Skip back past start = %v, want 0", got)
	}
	if got := Skip(50*time.Second, DefaultSkip, duration); got != duration {
		t.Errorf("Skip forward past end = %v, want %v", got, duration)
	}
	if got := Skip(20*time.Second, DefaultSkip, duration); got != 35*time.Second {
		t.Errorf("Skip forward = %v, want 35s", got)
	}
}

func TestSkipGuards(t *testing.T) {
	duration := time.Minute
	if CanSkipBack(4 * time.Second) {
		t.Error("CanSkipBack(4s) = true, want false")
	}
	if !CanSkipBack(5 * time.Second) {
		t.Error("CanSkipBack(5s) = false, want true")
	}
	if CanSkipForward(56*time.Second, duration) {
		t.Error("CanSkipForward(56s) = true, want false")
	}
	if !CanSkipForward(55*time.Second, duration) {
		t.Error("CanSkipForward(55s) = false, want true")
	}
}

func TestFormatHMS(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Second, "00:00:00"},
		{59*time.Second + 999*time.Millisecond, "00:00:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{100 * time.Hour, "100:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatHMS(tt.in); got != tt.want {
				t.Errorf("FormatHMS(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidRate(t *testing.T) {
	for _, r := range []float64{0.5, 1, 1.5, 1.75, 2} {
		if !ValidRate(r, nil) {
			t.Errorf("ValidRate(%v) = false, want true", r)
		}
	}
	for _, r := range []float64{0, 0.25, 1.25, 3} {
		if ValidRate(r, nil) {
			t.Errorf("ValidRate(%v) = true, want false", r)
		}
	}

	custom := []float64{1, 3}
	if !ValidRate(3, custom) {
		t.Error("ValidRate(3, [1 3]) = false, want true")
	}
	if ValidRate(1.5, custom) {
		t.Error("ValidRate(1.5, [1 3]) = true, want false")
	}
}

func TestSkipBy(t *testing.T) {
	duration := 60 * time.Second
	tests := []struct {
		name string
		cur  time.Duration
		step time.Duration
		want time.Duration
	}{
		{"back near start is disabled", 4 * time.Second, -DefaultSkip, 4 * time.Second},
		{"back clamps to start", 10 * time.Second, -DefaultSkip, 0},
		{"back", 30 * time.Second, -DefaultSkip, 15 * time.Second},
		{"forward near end is disabled", 56 * time.Second, DefaultSkip, 56 * time.Second},
		{"forward clamps to end", 50 * time.Second, DefaultSkip, duration},
		{"forward custom step", 20 * time.Second, 10 * time.Second, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SkipBy(tt.cur, tt.step, duration); got != tt.want {
				t.Errorf("SkipBy(%v, %v) = %v, want %v", tt.cur, tt.step, got, tt.want)
			}
		})
	}
}

func TestTicks(t *testing.T) {
	ticks := Ticks(time.Second, 0)
	if len(ticks) != 5 {
		t.Fatalf("len(Ticks(1s)) = %d, want 5", len(ticks))
	}
	if ticks[0] != 0 || ticks[4] != time.Second {
		t.Errorf("Ticks(1s) = %v", ticks)
	}

	ticks = Ticks(600*time.Millisecond, 250*time.Millisecond)
	want := []time.Duration{0, 250 * time.Millisecond, 500 * time.Millisecond, 600 * time.Millisecond}
	if len(ticks) != len(want) {
		t.Fatalf("Ticks(600ms) = %v, want %v", ticks, want)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("Ticks(600ms)[%d] = %v, want %v", i, ticks[i], want[i])
		}
	}

	if Ticks(-time.Second, 0) != nil {
		t.Error("Ticks(negative) should be nil")
	}
}

func TestTicksAgreeWithCursor(t *testing.T) {
	sub := sampleSubtitle()
	var cursor subtitle.Cursor
	for _, tick := range Ticks(sub.End(), DefaultTick) {
		got, gotOK := cursor.Update(sub.Segments, tick)
		want, wantOK := subtitle.Locate(sub.Segments, tick)
		if got != want || gotOK != wantOK {
			t.Fatalf(
				"at %v cursor = %d, %v, locate = %d, %v",
				tick,
				got,
				gotOK,
				want,
				wantOK,
			)
		}
	}
}

func TestFromSeconds(t *testing.T) {
	if got := FromSeconds(1.25); got != 1250*time.Millisecond {
		t.Errorf("FromSeconds(1.25) = %v", got)
	}
	if got := FromSeconds(-0.5); got != -500*time.Millisecond {
		t.Errorf("FromSeconds(-0.5) = %v", got)
	}
}
