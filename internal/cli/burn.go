package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subedit/internal/media"
	"github.com/mgpai22/subedit/internal/playback"
	"github.com/mgpai22/subedit/internal/subtitle"
)

var burnCmd = &cobra.Command{
	Use:   "burn [subtitle_file]",
	Short: "Render captions permanently into a video",
	Long: `Re-encode --media with the track drawn onto every frame using ffmpeg's
subtitles filter. Audio is copied unchanged.

The track is validated first, so a file that would not encode is rejected
before ffmpeg runs.

Examples:
  subedit burn movie.srt --media movie.mp4
  subedit burn movie.srt --media movie.mp4 --font-size 28 -o preview.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: runBurn,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [subtitle_file]",
	Short: "Save one captioned frame for a segment",
	Long: `Grab a single frame from --media at the middle of segment N (or at
--at) with the captions drawn, to check how a line looks on screen.

Examples:
  subedit snapshot movie.srt --media movie.mp4 --segment 12
  subedit snapshot movie.srt --media movie.mp4 --at 1:02.5 -o frame.png`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(burnCmd)
	rootCmd.AddCommand(snapshotCmd)

	for _, c := range []*cobra.Command{burnCmd, snapshotCmd} {
		c.Flags().StringP("media", "m", "", "Video file (required)")
		c.Flags().String("font", "", "Font name passed to the subtitles filter")
		c.Flags().Int("font-size", 24, "Caption font size")
		_ = c.MarkFlagRequired("media")
	}
	burnCmd.Flags().Int("crf", 20, "x264 quality (lower is better)")
	burnCmd.Flags().String("preset", "veryfast", "x264 preset")

	snapshotCmd.Flags().IntP("segment", "s", 0, "Segment number, starting at 1")
	snapshotCmd.Flags().String("at", "", "Time to grab instead of a segment (seconds or H:MM:SS)")
}

func burnOptions(cmd *cobra.Command) media.BurnOptions {
	opts := media.DefaultBurnOptions()
	opts.FontName, _ = cmd.Flags().GetString("font")
	opts.FontSize, _ = cmd.Flags().GetInt("font-size")
	if cmd.Flags().Lookup("crf") != nil {
		opts.CRF, _ = cmd.Flags().GetInt("crf")
		opts.Preset, _ = cmd.Flags().GetString("preset")
	}
	return opts
}

func runBurn(cmd *cobra.Command, args []string) error {
	subsPath := args[0]
	mediaPath, _ := cmd.Flags().GetString("media")
	output := outputFlag(cmd)
	if output == "" {
		output = derivedPath(mediaPath, ".captioned")
	}

	if !media.IsVideoFile(mediaPath) {
		return fmt.Errorf("not a video file: %s", mediaPath)
	}

	sub, err := readSubtitle(subsPath)
	if err != nil {
		return err
	}
	if _, err := subtitle.Encode(sub); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	if err := newRenderer(cfg).BurnIn(ctx, mediaPath, subsPath, output, burnOptions(cmd)); err != nil {
		return err
	}

	logger.Infow("burn-in complete", "output", output, "elapsed", time.Since(start).Round(time.Millisecond))
	absOutput, _ := filepath.Abs(output)
	fmt.Fprintf(cmd.OutOrStdout(), "Captioned video written: %s\n", absOutput)
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	subsPath := args[0]
	mediaPath, _ := cmd.Flags().GetString("media")
	id, _ := cmd.Flags().GetInt("segment")
	atStr, _ := cmd.Flags().GetString("at")

	sub, err := readSubtitle(subsPath)
	if err != nil {
		return err
	}

	var at time.Duration
	switch {
	case atStr != "" && id != 0:
		return fmt.Errorf("use either --segment or --at")
	case atStr != "":
		var ok bool
		if at, ok = playback.ResolveTime(atStr, 0); !ok {
			return fmt.Errorf("invalid time %q", atStr)
		}
	case id != 0:
		seg, ok := sub.ByID(id)
		if !ok {
			return fmt.Errorf("segment %d out of range (1-%d)", id, sub.Len())
		}
		at = seg.StartTime + seg.Duration()/2
	default:
		return fmt.Errorf("one of --segment or --at is required")
	}

	output := outputFlag(cmd)
	if output == "" {
		base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
		output = fmt.Sprintf("%s.%d.png", base, at.Milliseconds())
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	if err := newRenderer(cfg).Snapshot(ctx, mediaPath, subsPath, output, at, burnOptions(cmd)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot at %s written: %s\n", subtitle.FormatTimestamp(at), output)
	return nil
}

// movie.mp4 -> movie<suffix>.mp4
func derivedPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}
