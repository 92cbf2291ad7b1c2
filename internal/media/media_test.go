package media

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ffmpegbin "github.com/mgpai22/subedit/internal/ffmpeg"
)

// reports whether want appears in args as a contiguous run
func hasSeq(args []string, want ...string) bool {
	for i := 0; i+len(want) <= len(args); i++ {
		match := true
		for j := range want {
			if args[i+j] != want[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestBurnInStreamArgs(t *testing.T) {
	opts := DefaultBurnOptions()
	args := BurnInStream("in.mp4", "subs.srt", "out.mp4", opts).GetArgs()

	if !hasSeq(args, "-i", "in.mp4") {
		t.Errorf("missing input: %v", args)
	}
	if !hasSeq(args, "-vf", "subtitles=filename='subs.srt':force_style='FontSize=24'") {
		t.Errorf("missing subtitles filter: %v", args)
	}
	if !hasSeq(args, "-c:a", "copy") {
		t.Errorf("audio should be copied: %v", args)
	}
	if !hasSeq(args, "-crf", "20") || !hasSeq(args, "-preset", "veryfast") {
		t.Errorf("missing encoder settings: %v", args)
	}
	if !hasSeq(args, "-y") {
		t.Errorf("output should be overwritten: %v", args)
	}
	if args[len(args)-2] != "out.mp4" && args[len(args)-1] != "out.mp4" {
		t.Errorf("output path not at end: %v", args)
	}
}

func TestSnapshotStreamArgs(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		args := SnapshotStream("in.mp4", "", "frame.png", 1500*time.Millisecond, BurnOptions{}).GetArgs()
		if !hasSeq(args, "-ss", "1.500", "-i", "in.mp4") {
			t.Errorf("expected input seek: %v", args)
		}
		if !hasSeq(args, "-vframes", "1") {
			t.Errorf("expected one frame: %v", args)
		}
		for _, a := range args {
			if a == "-vf" {
				t.Errorf("no filter expected without captions: %v", args)
			}
		}
	})

	t.Run("captioned", func(t *testing.T) {
		args := SnapshotStream("in.mp4", "subs.srt", "frame.png", -time.Second, BurnOptions{}).GetArgs()
		if !hasSeq(args, "-i", "in.mp4") || hasSeq(args, "-ss", "0.000", "-i") {
			t.Errorf("captioned snapshot should seek on output: %v", args)
		}
		if !hasSeq(args, "-ss", "0.000") {
			t.Errorf("negative time should clamp to zero: %v", args)
		}
		if !hasSeq(args, "-vf", "subtitles=filename='subs.srt'") {
			t.Errorf("missing subtitles filter: %v", args)
		}
	})
}

func TestSubtitlesFilterEscaping(t *testing.T) {
	got := subtitlesFilter(`C:\caps\it's.srt`, BurnOptions{FontName: "Noto Sans", FontSize: 30})
	want := `subtitles=filename='C\:/caps/it'\''s.srt':force_style='FontName=Noto Sans,FontSize=30'`
	if filepath.Separator == '/' {
		// backslashes are not separators here and get escaped instead
		want = `subtitles=filename='C\:\\caps\\it'\''s.srt':force_style='FontName=Noto Sans,FontSize=30'`
	}
	if got != want {
		t.Errorf("subtitlesFilter() =\n%s\nwant\n%s", got, want)
	}
}

func TestParseProbe(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    time.Duration
		wantErr bool
	}{
		{"ok", `{"format":{"duration":"12.500000"}}`, 12500 * time.Millisecond, false},
		{"missing", `{"format":{}}`, 0, true},
		{"garbage", `not json`, 0, true},
		{"negative", `{"format":{"duration":"-1"}}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbe([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseProbe() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseProbe() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRendererRejectsMissingInputs(t *testing.T) {
	r := NewRenderer(ffmpegbin.NewLocator("ffmpeg", "ffprobe"), nil)
	dir := t.TempDir()
	ctx := context.Background()

	if _, err := r.Duration(ctx, filepath.Join(dir, "missing.mp4")); err == nil {
		t.Error("Duration() should fail for a missing file")
	}
	err := r.BurnIn(ctx, filepath.Join(dir, "missing.mp4"), "subs.srt", filepath.Join(dir, "out.mp4"), DefaultBurnOptions())
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("BurnIn() error = %v, want not found", err)
	}
	err = r.Snapshot(ctx, filepath.Join(dir, "missing.mp4"), "", filepath.Join(dir, "f.png"), 0, BurnOptions{})
	if err == nil {
		t.Error("Snapshot() should fail for a missing file")
	}
}

func TestIsMediaFile(t *testing.T) {
	tests := []struct {
		path  string
		video bool
		audio bool
	}{
		{"movie.MP4", true, false},
		{"clip.webm", true, false},
		{"song.flac", false, true},
		{"subs.srt", false, false},
		{"noext", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsVideoFile(tt.path); got != tt.video {
				t.Errorf("IsVideoFile(%q) = %v, want %v", tt.path, got, tt.video)
			}
			if got := IsAudioFile(tt.path); got != tt.audio {
				t.Errorf("IsAudioFile(%q) = %v, want %v", tt.path, got, tt.audio)
			}
			if got := IsMediaFile(tt.path); got != (tt.video || tt.audio) {
				t.Errorf("IsMediaFile(%q) = %v", tt.path, got)
			}
		})
	}
}
