package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subedit/internal/condense"
	"github.com/mgpai22/subedit/internal/severity"
	"github.com/mgpai22/subedit/internal/subtitle"
	"github.com/mgpai22/subedit/internal/text"
)

var condenseCmd = &cobra.Command{
	Use:   "condense [subtitle_file]",
	Short: "Shorten over-wide captions using AI",
	Long: `Send every segment at or above the threshold tier (Warning by default)
to an LLM and replace it with a shorter version that fits the target width.
Timings are never changed.

The file is rewritten in place unless -o is given; --dry-run only lists the
segments that would be sent.

Examples:
  subedit condense movie.srt
  subedit condense movie.srt --provider openai --model gpt-5-mini
  subedit condense movie.srt --threshold caution -o short.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runCondense,
}

func init() {
	rootCmd.AddCommand(condenseCmd)

	condenseCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	condenseCmd.Flags().
		String("provider", "", "LLM provider (gemini, openai, anthropic; default from config)")
	condenseCmd.Flags().
		String("model", "", "Model to use (provider-specific, uses sensible defaults)")
	condenseCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	condenseCmd.Flags().
		String("threshold", "warning", "Lowest tier to rewrite (caution, warning, severe)")
	condenseCmd.Flags().Int("max-width", 0, "Target line width (default from config)")
	condenseCmd.Flags().Int("concurrency", 0, "Parallel requests (default from config)")
	condenseCmd.Flags().Int("batch-size", 0, "Segments per request (default from config)")
	condenseCmd.Flags().String("prompt", "", "Extra instructions for the model")
	condenseCmd.Flags().Bool("dry-run", false, "List the segments that would be rewritten")
}

func parseTier(s string) (severity.Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return severity.Normal, nil
	case "caution":
		return severity.Caution, nil
	case "warning":
		return severity.Warning, nil
	case "severe":
		return severity.Severe, nil
	}
	return severity.Normal, fmt.Errorf("unknown tier %q", s)
}

func runCondense(cmd *cobra.Command, args []string) error {
	apiKey, _ := cmd.Flags().GetString("api-key")
	providerStr, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	thresholdStr, _ := cmd.Flags().GetString("threshold")
	maxWidth, _ := cmd.Flags().GetInt("max-width")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	prompt, _ := cmd.Flags().GetString("prompt")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	output := outputFlag(cmd)
	if output == "" {
		output = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if providerStr == "" {
		providerStr = cfg.Condense.Provider
	}
	if model == "" {
		model = cfg.Condense.Model
	}
	if maxWidth == 0 {
		maxWidth = cfg.Condense.MaxWidth
	}
	if concurrency == 0 {
		concurrency = cfg.Condense.Concurrency
	}
	if batchSize == 0 {
		batchSize = cfg.Condense.BatchSize
	}

	threshold, err := parseTier(thresholdStr)
	if err != nil {
		return err
	}
	if threshold == severity.Normal {
		return fmt.Errorf("threshold must be caution, warning or severe")
	}
	if maxWidth <= 0 || concurrency <= 0 || batchSize <= 0 {
		return fmt.Errorf("max-width, concurrency and batch-size must be positive")
	}

	provider := condense.Provider(strings.ToLower(providerStr))
	if model != "" && !modelOverride && !condense.ValidModel(provider, model) {
		return fmt.Errorf(
			"unsupported %s model %q: valid models are %s (use --model-override to bypass)",
			provider,
			model,
			strings.Join(condense.KnownModels(provider), ", "),
		)
	}

	sub, err := readSubtitle(args[0])
	if err != nil {
		return err
	}

	if dryRun {
		items := condense.Select(sub, text.Width, threshold)
		for _, it := range items {
			seg := sub.Segments[it.Index]
			fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s  %s\n",
				seg.ID,
				renderTier(severity.ForLines(seg.Lines, text.Width)),
				preview(seg, 60),
			)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d segments would be rewritten\n", len(items))
		return nil
	}

	if apiKey == "" {
		apiKey = cfg.Condense.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv(condense.APIKeyEnv(provider))
	}
	if apiKey == "" {
		envVar := condense.APIKeyEnv(provider)
		if envVar == "" {
			envVar = "API_KEY"
		}
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			envVar,
		)
	}

	ctx, cancel := signalContext()
	defer cancel()

	condenser, err := condense.Factory(ctx, provider, apiKey, condense.Options{
		Model:       model,
		MaxWidth:    maxWidth,
		Prompt:      prompt,
		BatchSize:   batchSize,
		Concurrency: concurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to create condenser: %w", err)
	}

	report, err := condense.Run(ctx, condenser, sub, text.Width, threshold, logger)
	if err != nil {
		return err
	}
	if report.Selected == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to condense")
		return nil
	}

	if err := subtitle.WriteFile(sub, output); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Condensed %d of %d segments: %s\n", report.Changed, report.Selected, output)
	if report.Remaining > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d segments are still at or above %s\n", report.Remaining, threshold)
	}
	return nil
}
