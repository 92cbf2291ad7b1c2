package cli

import (
	"github.com/spf13/cobra"

	"github.com/mgpai22/subedit/internal/config"
	"github.com/mgpai22/subedit/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "subedit",
	Short: "Check, fix and preview SRT caption tracks",
	Long: `Subedit works on SRT caption tracks: it validates and re-encodes
them, flags lines that are too wide to read, shortens them with an LLM,
and previews captions against a video.

Settings are read from subedit.yaml (or --config) and SUBEDIT_* environment
variables.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default ./subedit.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}

// loads settings for commands that need them
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if p := cfg.Path(); p != "" {
		logger.Debugw("loaded config", "path", p)
	}
	return cfg, nil
}
