package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mgpai22/subedit/internal/config"
	"github.com/mgpai22/subedit/internal/severity"
	"github.com/mgpai22/subedit/internal/subtitle"
)

const messySRT = "\ufeff7\r\n" +
	"00:00:01,000 --> 00:00:02,500\r\n" +
	"Hello   there\r\n" +
	"\r\n" +
	"9\r\n" +
	"00:00:02,500 --> 00:00:04,000\r\n" +
	"This caption is much too long to read comfortably at all\r\n" +
	"\r\n" +
	"10\r\n" +
	"00:00:06,000 --> 00:00:08,000\r\n" +
	"Bye\r\n"

func writeSRT(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.srt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	if err := config.Write(path, config.Default()); err != nil {
		t.Fatal(err)
	}
	return path
}

// cobra keeps flag values between runs of the same command tree
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheck(t *testing.T) {
	path := writeSRT(t, messySRT)

	out, err := run(t, "check", path)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if !strings.Contains(out, "3 segments: 2 normal, 0 caution, 0 warning, 1 severe") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "Severe") || strings.Contains(out, "Hello") {
		t.Errorf("only flagged segments should be listed:\n%s", out)
	}

	out, err = run(t, "check", path, "--all")
	if err != nil {
		t.Fatalf("check --all error: %v", err)
	}
	if !strings.Contains(out, "Hello there") {
		t.Errorf("--all should list normal segments:\n%s", out)
	}

	_, err = run(t, "check", path, "--strict")
	if !errors.Is(err, errSevere) {
		t.Errorf("check --strict error = %v, want errSevere", err)
	}
}

func TestCheckStrictEncodeFailure(t *testing.T) {
	path := writeSRT(t, "1\n00:00:01,000 --> 00:00:02,000\n\n")
	_, err := run(t, "check", path, "--strict")
	if !errors.Is(err, subtitle.ErrEmptySegment) {
		t.Errorf("check --strict error = %v, want ErrEmptySegment", err)
	}
}

func TestCheckReportsParseErrors(t *testing.T) {
	path := writeSRT(t, "1\n00:00:01 --> 00:00:02\nHi\n")
	_, err := run(t, "check", path)
	if !errors.Is(err, subtitle.ErrBadTimestamp) {
		t.Errorf("check error = %v, want ErrBadTimestamp", err)
	}
}

func TestFmt(t *testing.T) {
	path := writeSRT(t, messySRT)

	out, err := run(t, "fmt", path)
	if err != nil {
		t.Fatalf("fmt error: %v", err)
	}
	want := "1\n00:00:01,000 --> 00:00:02,500\nHello there\n\n2\n"
	if !strings.HasPrefix(out, want) {
		t.Errorf("fmt output:\n%q\nwant prefix\n%q", out, want)
	}
	if strings.Contains(out, "\r") || strings.Contains(out, "\ufeff") {
		t.Error("fmt output should be LF without BOM")
	}

	if _, err := run(t, "fmt", path, "--in-place"); err != nil {
		t.Fatalf("fmt --in-place error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != out {
		t.Errorf("in-place result differs from stdout result:\n%q", data)
	}

	if _, err := run(t, "fmt", path, "--in-place", "-o", "x.srt"); err == nil {
		t.Error("expected error combining --in-place and --output")
	}
}

func TestLocate(t *testing.T) {
	path := writeSRT(t, messySRT)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"1.5"}, "#1"},
		{[]string{"2.5"}, "#2"},
		{[]string{"0:05"}, "no caption"},
		{[]string{"3", "--jump"}, "#3"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, append([]string{"locate", path}, tt.args...)...)
			if err != nil {
				t.Fatalf("locate error: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("locate output %q does not contain %q", out, tt.want)
			}
		})
	}

	if _, err := run(t, "locate", path, "soon"); err == nil {
		t.Error("expected error for an invalid target")
	}
}

func TestTransitions(t *testing.T) {
	sub := subtitle.New([]subtitle.Segment{
		{StartTime: 0, EndTime: time.Second, Lines: []string{"a"}},
		{StartTime: time.Second, EndTime: 2 * time.Second, Lines: []string{"b"}},
		{StartTime: 3 * time.Second, EndTime: 4 * time.Second, Lines: []string{"c"}},
	})

	got := transitions(sub, 5*time.Second, 500*time.Millisecond)
	want := []transition{
		{At: 0, Index: 0, Active: true},
		{At: time.Second, Index: 1, Active: true},
		{At: 2500 * time.Millisecond, Index: -1, Active: false},
		{At: 3 * time.Second, Index: 2, Active: true},
		{At: 4500 * time.Millisecond, Index: -1, Active: false},
	}
	if len(got) != len(want) {
		t.Fatalf("transitions = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transitions[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTimeline(t *testing.T) {
	path := writeSRT(t, messySRT)
	cfg := writeConfig(t)

	out, err := run(t, "timeline", path, "--config", cfg, "--tick", "500ms")
	if err != nil {
		t.Fatalf("timeline error: %v", err)
	}
	for _, want := range []string{"00:00:01,000  #1", "00:00:02,500  #2", "00:00:06,000  #3"} {
		if !strings.Contains(out, want) {
			t.Errorf("timeline output missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "timeline", path, "--config", cfg, "--rate", "3"); err == nil {
		t.Error("expected error for an unsupported rate")
	}
}

func TestTimelineRatesFromConfig(t *testing.T) {
	path := writeSRT(t, messySRT)
	c := config.Default()
	c.Playback.Rates = []float64{1, 3}
	cfg := filepath.Join(t.TempDir(), config.FileName)
	if err := config.Write(cfg, c); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "timeline", path, "--config", cfg, "--rate", "3")
	if err != nil {
		t.Fatalf("rate 3 listed in config: %v", err)
	}
	if !strings.Contains(out, "@") {
		t.Errorf("expected wall-clock column at rate 3:\n%s", out)
	}

	if _, err := run(t, "timeline", path, "--config", cfg, "--rate", "1.5"); err == nil {
		t.Error("rate 1.5 is not in the configured rates")
	}
}

func TestEdit(t *testing.T) {
	path := writeSRT(t, messySRT)

	out, err := run(t, "edit", path, "--segment", "2", "--text", `Far too long\nto read`)
	if err != nil {
		t.Fatalf("edit error: %v", err)
	}
	if !strings.Contains(out, "Severe") || !strings.Contains(out, "Normal") {
		t.Errorf("edit should report the tier change: %q", out)
	}

	sub, err := subtitle.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := sub.Segments[1].Lines; len(got) != 2 || got[1] != "to read" {
		t.Errorf("edited lines = %q", got)
	}

	if _, err := run(t, "edit", path, "--segment", "9", "--text", "x"); err == nil {
		t.Error("expected error for a missing segment")
	}
	if _, err := run(t, "edit", path, "--segment", "1", "--text", "  "); err == nil {
		t.Error("expected error for blank text")
	}
}

func TestCondenseDryRun(t *testing.T) {
	path := writeSRT(t, messySRT)
	cfg := writeConfig(t)

	out, err := run(t, "condense", path, "--config", cfg, "--dry-run")
	if err != nil {
		t.Fatalf("condense --dry-run error: %v", err)
	}
	if !strings.Contains(out, "1 segments would be rewritten") {
		t.Errorf("unexpected dry-run output:\n%s", out)
	}

	_, err = run(t, "condense", path, "--config", cfg, "--model", "made-up", "--dry-run")
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported model error, got %v", err)
	}

	_, err = run(t, "condense", path, "--config", cfg, "--threshold", "normal")
	if err == nil {
		t.Error("expected error for a normal threshold")
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    severity.Tier
		wantErr bool
	}{
		{"caution", severity.Caution, false},
		{" Warning ", severity.Warning, false},
		{"SEVERE", severity.Severe, false},
		{"loud", severity.Normal, true},
	}
	for _, tt := range tests {
		got, err := parseTier(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseTier(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestBurnRejectsNonVideo(t *testing.T) {
	path := writeSRT(t, messySRT)
	_, err := run(t, "burn", path, "--media", "song.mp3")
	if err == nil || !strings.Contains(err.Error(), "not a video") {
		t.Errorf("burn error = %v, want not a video", err)
	}
}

func TestMediaFlagRejectsNonMedia(t *testing.T) {
	path := writeSRT(t, messySRT)
	cfg := writeConfig(t)

	for _, args := range [][]string{
		{"timeline", path, "--config", cfg, "--media", "notes.txt"},
		{"locate", path, "3", "--config", cfg, "--media", "cover.png"},
	} {
		_, err := run(t, args...)
		if err == nil || !strings.Contains(err.Error(), "not an audio or video file") {
			t.Errorf("%s error = %v, want not an audio or video file", args[0], err)
		}
	}
}

func TestSnapshotFlagValidation(t *testing.T) {
	path := writeSRT(t, messySRT)

	if _, err := run(t, "snapshot", path, "--media", "v.mp4"); err == nil {
		t.Error("expected error without --segment or --at")
	}
	if _, err := run(t, "snapshot", path, "--media", "v.mp4", "--segment", "1", "--at", "2"); err == nil {
		t.Error("expected error with both --segment and --at")
	}
	if _, err := run(t, "snapshot", path, "--media", "v.mp4", "--segment", "5"); err == nil {
		t.Error("expected error for a missing segment")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subedit.yaml")

	if _, err := run(t, "config", "init", path); err != nil {
		t.Fatalf("config init error: %v", err)
	}
	if _, err := config.Load(path); err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if _, err := run(t, "config", "init", path); err == nil {
		t.Error("expected error when the file exists")
	}
	if _, err := run(t, "config", "init", path, "--force"); err != nil {
		t.Errorf("config init --force error: %v", err)
	}

	out, err := run(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show error: %v", err)
	}
	if !strings.Contains(out, "max_width: 36") {
		t.Errorf("config show output:\n%s", out)
	}
}

func TestDerivedPath(t *testing.T) {
	if got := derivedPath("/v/movie.mp4", ".captioned"); got != "/v/movie.captioned.mp4" {
		t.Errorf("derivedPath() = %q", got)
	}
}
