package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subedit/internal/severity"
	"github.com/mgpai22/subedit/internal/subtitle"
	"github.com/mgpai22/subedit/internal/text"
)

var editCmd = &cobra.Command{
	Use:   "edit [subtitle_file]",
	Short: "Replace the text of one segment",
	Long: `Replace the content of segment N. A literal \n in --text starts a new
line. The file is rewritten in place unless -o is given.

Examples:
  subedit edit movie.srt --segment 12 --text "Where were you?"
  subedit edit movie.srt -s 3 -t "First line\nSecond line" -o fixed.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().IntP("segment", "s", 0, "Segment number, starting at 1 (required)")
	editCmd.Flags().StringP("text", "t", "", "New text (required)")

	_ = editCmd.MarkFlagRequired("segment")
	_ = editCmd.MarkFlagRequired("text")
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetInt("segment")
	newText, _ := cmd.Flags().GetString("text")
	output := outputFlag(cmd)
	if output == "" {
		output = args[0]
	}

	newText = strings.ReplaceAll(newText, `\n`, "\n")
	if strings.TrimSpace(newText) == "" {
		return fmt.Errorf("text must not be blank")
	}

	sub, err := readSubtitle(args[0])
	if err != nil {
		return err
	}
	if _, ok := sub.ByID(id); !ok {
		return fmt.Errorf("segment %d out of range (1-%d)", id, sub.Len())
	}

	before := severity.ForLines(sub.Segments[id-1].Lines, text.Width)
	if err := sub.SetText(id-1, newText); err != nil {
		return err
	}
	after := severity.ForLines(sub.Segments[id-1].Lines, text.Width)

	if err := subtitle.WriteFile(sub, output); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	logger.Infow("segment updated",
		"segment", id,
		"before", before,
		"after", after,
		"output", output,
	)
	fmt.Fprintf(cmd.OutOrStdout(), "#%d  %s -> %s\n", id, renderTier(before), renderTier(after))
	return nil
}
