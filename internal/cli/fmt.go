package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subedit/internal/subtitle"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [subtitle_file]",
	Short: "Re-encode a track in canonical SRT form",
	Long: `Decode a track and encode it again: indexes are renumbered from 1,
line endings become LF, and whitespace inside each line is collapsed.

Output goes to stdout unless -o or --in-place is given.

Examples:
  subedit fmt movie.srt > clean.srt
  subedit fmt movie.srt -o clean.srt
  subedit fmt movie.srt --in-place`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolP("in-place", "i", false, "Rewrite the input file")
}

func runFmt(cmd *cobra.Command, args []string) error {
	inPlace, _ := cmd.Flags().GetBool("in-place")
	output := outputFlag(cmd)
	if inPlace {
		if output != "" {
			return fmt.Errorf("--in-place and --output cannot be combined")
		}
		output = args[0]
	}

	sub, err := readSubtitle(args[0])
	if err != nil {
		return err
	}

	if output != "" {
		if err := subtitle.WriteFile(sub, output); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		logger.Infow("formatted", "output", output, "segments", sub.Len())
		return nil
	}

	data, err := subtitle.Encode(sub)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
