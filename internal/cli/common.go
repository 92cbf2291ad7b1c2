package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subedit/internal/config"
	"github.com/mgpai22/subedit/internal/ffmpeg"
	"github.com/mgpai22/subedit/internal/media"
	"github.com/mgpai22/subedit/internal/severity"
	"github.com/mgpai22/subedit/internal/subtitle"
	"github.com/mgpai22/subedit/internal/text"
)

var tierStyles = map[severity.Tier]lipgloss.Style{
	severity.Normal:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	severity.Caution: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	severity.Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	severity.Severe:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

func renderTier(t severity.Tier) string {
	return tierStyles[t].Render(fmt.Sprintf("%-7s", t))
}

func readSubtitle(path string) (*subtitle.Subtitle, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("subtitle file not found: %s", path)
	}
	sub, err := subtitle.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	logger.Debugw("parsed subtitle file", "path", path, "segments", sub.Len())
	return sub, nil
}

func outputFlag(cmd *cobra.Command) string {
	out, _ := cmd.Flags().GetString("output")
	return out
}

func newRenderer(cfg *config.Config) *media.Renderer {
	bins := ffmpeg.NewLocator(cfg.FFmpeg.FFmpegPath, cfg.FFmpeg.FFprobePath)
	bins.Logger = logger
	return media.NewRenderer(bins, logger)
}

// cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// segment content on one line, cut to limit runes
func preview(seg subtitle.Segment, limit int) string {
	lines := seg.DisplayLines()
	for i, line := range lines {
		lines[i] = text.Normalize(line)
	}
	s := strings.Join(lines, " / ")
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return s
}

func timeRange(seg subtitle.Segment) string {
	return subtitle.FormatTimestamp(seg.StartTime) + " --> " + subtitle.FormatTimestamp(seg.EndTime)
}
