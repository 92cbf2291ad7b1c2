// Package media renders caption tracks onto video and probes media files.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/subedit/internal/ffmpeg"
	"github.com/mgpai22/subedit/internal/logging"
)

// BurnOptions controls how captions are drawn by the subtitles filter.
type BurnOptions struct {
	FontName string
	FontSize int
	CRF      int    // 0 keeps ffmpeg's default
	Preset   string // x264 preset, e.g. "veryfast"
}

func DefaultBurnOptions() BurnOptions {
	return BurnOptions{
		FontSize: 24,
		CRF:      20,
		Preset:   "veryfast",
	}
}

// Renderer runs ffmpeg and ffprobe from a Locator.
type Renderer struct {
	bins   *ffmpegbin.Locator
	logger *logging.Logger
}

func NewRenderer(bins *ffmpegbin.Locator, logger *logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Renderer{bins: bins, logger: logger}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration asks ffprobe for the container duration.
func (r *Renderer) Duration(ctx context.Context, path string) (time.Duration, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("media file not found: %s", path)
	}

	ffprobe, err := r.bins.FFprobePath(ctx)
	if err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbe(out.Bytes())
}

func parseProbe(data []byte) (time.Duration, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", probe.Format.Duration, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative duration %v", seconds)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// BurnInStream builds the ffmpeg graph that re-encodes video with the
// captions in subsPath drawn on every frame. Audio is copied.
func BurnInStream(videoPath, subsPath, outputPath string, opts BurnOptions) *ffmpeg.Stream {
	kwargs := ffmpeg.KwArgs{
		"vf":  subtitlesFilter(subsPath, opts),
		"c:a": "copy",
	}
	if opts.CRF > 0 {
		kwargs["crf"] = opts.CRF
	}
	if opts.Preset != "" {
		kwargs["preset"] = opts.Preset
	}
	return ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput()
}

// SnapshotStream grabs the single frame at `at`, with captions drawn when
// subsPath is set. Without captions the seek happens on the input, which is
// fast; the subtitles filter needs the original timestamps so captioned
// snapshots seek on the output instead.
func SnapshotStream(videoPath, subsPath, outputPath string, at time.Duration, opts BurnOptions) *ffmpeg.Stream {
	if at < 0 {
		at = 0
	}
	kwargs := ffmpeg.KwArgs{"vframes": 1}
	if subsPath == "" {
		return ffmpeg.Input(videoPath, ffmpeg.KwArgs{"ss": seconds(at)}).
			Output(outputPath, kwargs).
			OverWriteOutput()
	}

	kwargs["ss"] = seconds(at)
	kwargs["vf"] = subtitlesFilter(subsPath, opts)
	return ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput()
}

// BurnIn writes outputPath with subsPath drawn onto videoPath.
func (r *Renderer) BurnIn(
	ctx context.Context,
	videoPath, subsPath, outputPath string,
	opts BurnOptions,
) error {
	for _, p := range []string{videoPath, subsPath} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("input not found: %s", p)
		}
	}
	if err := ensureDir(outputPath); err != nil {
		return err
	}

	r.logger.Infow("burning captions", "video", videoPath, "subtitles", subsPath, "output", outputPath)
	if err := r.run(ctx, BurnInStream(videoPath, subsPath, outputPath, opts)); err != nil {
		return fmt.Errorf("burn-in failed: %w", err)
	}
	return nil
}

// Snapshot writes a single still frame at `at` to outputPath.
func (r *Renderer) Snapshot(
	ctx context.Context,
	videoPath, subsPath, outputPath string,
	at time.Duration,
	opts BurnOptions,
) error {
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if err := ensureDir(outputPath); err != nil {
		return err
	}

	r.logger.Debugw("snapshot", "video", videoPath, "at", at, "output", outputPath)
	if err := r.run(ctx, SnapshotStream(videoPath, subsPath, outputPath, at, opts)); err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}
	return nil
}

// runs the compiled graph under ctx so a cancelled command kills ffmpeg
func (r *Renderer) run(ctx context.Context, stream *ffmpeg.Stream) error {
	path, err := r.bins.FFmpegPath(ctx)
	if err != nil {
		return err
	}

	args := stream.GetArgs()
	r.logger.Debugw("running ffmpeg", "path", path, "args", args)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// subtitles=filename='...' with filtergraph escaping
func subtitlesFilter(path string, opts BurnOptions) string {
	filter := "subtitles=filename='" + escapeFilterValue(path) + "'"

	var style []string
	if opts.FontName != "" {
		style = append(style, "FontName="+opts.FontName)
	}
	if opts.FontSize > 0 {
		style = append(style, "FontSize="+strconv.Itoa(opts.FontSize))
	}
	if len(style) > 0 {
		filter += ":force_style='" + escapeFilterValue(strings.Join(style, ",")) + "'"
	}
	return filter
}

func escapeFilterValue(s string) string {
	s = filepath.ToSlash(s)
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `'\''`,
		`:`, `\:`,
	)
	return r.Replace(s)
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv",
		".webm", ".m4v", ".mpeg", ".mpg", ".3gp":
		return true
	}
	return false
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav", ".aac", ".flac", ".ogg", ".m4a", ".wma", ".aiff":
		return true
	}
	return false
}

func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}
