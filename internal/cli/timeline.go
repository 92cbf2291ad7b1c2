package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subedit/internal/playback"
	"github.com/mgpai22/subedit/internal/subtitle"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline [subtitle_file]",
	Short: "Simulate playback and print caption changes",
	Long: `Advance a playback clock in fixed ticks from the start to the end of the
track (or of --media) and print every point where the caption on screen
changes. The left column is media time; with --rate other than 1 the
wall-clock time at which the change appears is printed too.

Examples:
  subedit timeline movie.srt
  subedit timeline movie.srt --tick 100ms
  subedit timeline movie.srt --media movie.mp4 --rate 1.5`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeline,
}

func init() {
	rootCmd.AddCommand(timelineCmd)

	timelineCmd.Flags().Duration("tick", 0, "Clock period (default from config, 250ms)")
	timelineCmd.Flags().Float64("rate", 1, "Playback rate, one of playback.rates in the config")
	timelineCmd.Flags().String("media", "", "Audio or video file whose duration bounds the run")
}

type transition struct {
	At     time.Duration
	Index  int
	Active bool
}

// feeds every tick through a Cursor and keeps the points where the result
// differs from the previous tick
func transitions(sub *subtitle.Subtitle, duration, tick time.Duration) []transition {
	var (
		cursor subtitle.Cursor
		out    []transition
		prev   = transition{Index: -1}
	)
	for _, at := range playback.Ticks(duration, tick) {
		i, ok := cursor.Update(sub.Segments, at)
		if !ok {
			i = -1
		}
		if len(out) > 0 && i == prev.Index && ok == prev.Active {
			continue
		}
		prev = transition{At: at, Index: i, Active: ok}
		out = append(out, prev)
	}
	return out
}

func runTimeline(cmd *cobra.Command, args []string) error {
	tick, _ := cmd.Flags().GetDuration("tick")
	rate, _ := cmd.Flags().GetFloat64("rate")
	mediaPath, _ := cmd.Flags().GetString("media")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !playback.ValidRate(rate, cfg.Playback.Rates) {
		return fmt.Errorf("unsupported rate %v: use one of %v", rate, cfg.Playback.Rates)
	}
	if tick <= 0 {
		tick = cfg.Playback.Tick
	}

	sub, err := readSubtitle(args[0])
	if err != nil {
		return err
	}

	duration := sub.End()
	if mediaPath != "" {
		if duration, err = mediaDuration(cmd.Context(), cfg, mediaPath); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	changes := transitions(sub, duration, tick)
	for _, tr := range changes {
		stamp := subtitle.FormatTimestamp(tr.At)
		if rate != 1 {
			wall := time.Duration(float64(tr.At) / rate)
			stamp += dimStyle.Render(" @" + playback.FormatHMS(wall))
		}
		if !tr.Active {
			fmt.Fprintf(out, "%s  %s\n", stamp, dimStyle.Render("-"))
			continue
		}
		seg := sub.Segments[tr.Index]
		fmt.Fprintf(out, "%s  #%-4d %s\n", stamp, seg.ID, preview(seg, 60))
	}

	logger.Infow("timeline complete",
		"duration", playback.FormatHMS(duration),
		"tick", tick,
		"changes", len(changes),
	)
	return nil
}
