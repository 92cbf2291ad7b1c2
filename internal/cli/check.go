package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subedit/internal/severity"
	"github.com/mgpai22/subedit/internal/subtitle"
	"github.com/mgpai22/subedit/internal/text"
)

var errSevere = errors.New("severe segments found")

var checkCmd = &cobra.Command{
	Use:   "check [subtitle_file]",
	Short: "Validate a track and report lines that are too wide",
	Long: `Decode an SRT file and classify every segment by line width:

  Normal   up to 36 cells
  Caution  37-39
  Warning  40-45
  Severe   46 or more, or more than two lines

Only segments above Normal are listed unless --all is given. With --strict
the command fails when any segment is Severe, or when the track would not
encode (a segment with no visible text).

Examples:
  subedit check movie.srt
  subedit check movie.srt --all
  subedit check movie.srt --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("strict", false, "Exit non-zero on Severe segments or encode errors")
	checkCmd.Flags().Bool("all", false, "List every segment, not only flagged ones")
}

func runCheck(cmd *cobra.Command, args []string) error {
	strict, _ := cmd.Flags().GetBool("strict")
	all, _ := cmd.Flags().GetBool("all")

	sub, err := readSubtitle(args[0])
	if err != nil {
		return err
	}

	findings := severity.Check(sub, text.Width)
	counts := printFindings(cmd.OutOrStdout(), sub, findings, all)

	_, encErr := subtitle.Encode(sub)
	if encErr != nil {
		logger.Warnw("track will not encode", "error", encErr)
	}

	worst := severity.Worst(findings)
	logger.Infow("check complete",
		"segments", sub.Len(),
		"worst", worst,
		"caution", counts[severity.Caution],
		"warning", counts[severity.Warning],
		"severe", counts[severity.Severe],
	)

	if strict {
		if encErr != nil {
			return encErr
		}
		if worst == severity.Severe {
			return fmt.Errorf("%w: %d", errSevere, counts[severity.Severe])
		}
	}
	return nil
}

func printFindings(
	w io.Writer,
	sub *subtitle.Subtitle,
	findings []severity.Finding,
	all bool,
) map[severity.Tier]int {
	counts := map[severity.Tier]int{}
	for i, f := range findings {
		counts[f.Tier]++
		if f.Tier == severity.Normal && !all {
			continue
		}
		seg := sub.Segments[i]
		fmt.Fprintf(w, "%4d  %s  %s  %s  %s\n",
			f.ID,
			dimStyle.Render(timeRange(seg)),
			renderTier(f.Tier),
			dimStyle.Render(fmt.Sprintf("w=%-3d l=%d", f.Width, f.Lines)),
			preview(seg, 60),
		)
	}

	fmt.Fprintf(w, "%d segments: %d normal, %d caution, %d warning, %d severe\n",
		len(findings),
		counts[severity.Normal],
		counts[severity.Caution],
		counts[severity.Warning],
		counts[severity.Severe],
	)
	return counts
}
