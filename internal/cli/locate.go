package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subedit/internal/config"
	"github.com/mgpai22/subedit/internal/media"
	"github.com/mgpai22/subedit/internal/playback"
	"github.com/mgpai22/subedit/internal/subtitle"
)

var locateCmd = &cobra.Command{
	Use:   "locate [subtitle_file] [target]",
	Short: "Show the segment on screen at a given time",
	Long: `Print the segment active at TARGET.

TARGET is seconds (12.5) or a clock value (1:02, 0:01:02.5). With --jump a
bare integer is a segment number instead, the same way the player's jump
box reads it. When --media is given, clock values are clamped to the
video's duration.

Examples:
  subedit locate movie.srt 95.2
  subedit locate movie.srt 1:35
  subedit locate movie.srt 12 --jump`,
	Args: cobra.ExactArgs(2),
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)

	locateCmd.Flags().Bool("jump", false, "Read a bare integer as a segment number")
	locateCmd.Flags().String("media", "", "Audio or video file used to clamp the target")
}

func runLocate(cmd *cobra.Command, args []string) error {
	jump, _ := cmd.Flags().GetBool("jump")
	mediaPath, _ := cmd.Flags().GetString("media")

	sub, err := readSubtitle(args[0])
	if err != nil {
		return err
	}

	var duration time.Duration
	if mediaPath != "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		duration, err = mediaDuration(cmd.Context(), cfg, mediaPath)
		if err != nil {
			return err
		}
	}

	var (
		at time.Duration
		ok bool
	)
	if jump {
		at, ok = playback.ResolveJump(args[1], sub, duration)
	} else {
		at, ok = playback.ResolveTime(args[1], duration)
	}
	if !ok {
		return fmt.Errorf("invalid target %q", args[1])
	}

	out := cmd.OutOrStdout()
	i, found := sub.Locate(at)
	if !found {
		fmt.Fprintf(out, "%s  no caption\n", subtitle.FormatTimestamp(at))
		return nil
	}

	seg := sub.Segments[i]
	fmt.Fprintf(out, "%s  #%d  %s\n", subtitle.FormatTimestamp(at), seg.ID, timeRange(seg))
	for _, line := range seg.DisplayLines() {
		fmt.Fprintf(out, "    %s\n", line)
	}
	return nil
}

func mediaDuration(ctx context.Context, cfg *config.Config, path string) (time.Duration, error) {
	if !media.IsMediaFile(path) {
		return 0, fmt.Errorf("not an audio or video file: %s", path)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d, err := newRenderer(cfg).Duration(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to read media duration: %w", err)
	}
	logger.Debugw("media duration", "path", path, "duration", d)
	return d, nil
}
