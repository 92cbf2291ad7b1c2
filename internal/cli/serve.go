package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subedit/internal/server"
	"github.com/mgpai22/subedit/internal/text"
)

var serveCmd = &cobra.Command{
	Use:   "serve [subtitle_file]",
	Short: "Serve a track to a video player over HTTP and WebSocket",
	Long: `Start an HTTP server for editing a track from a browser-based player.

  GET  /api/segments          all segments with their tier
  GET  /api/segments/:id      one segment
  PUT  /api/segments/:id      {"text": "..."} replaces the content
  GET  /api/locate?t=         segment active at t (seconds or H:MM:SS)
  GET  /api/jump?target=      resolve a jump box entry to a time
  GET  /api/report            tier report
  POST /api/save              write the track back to disk
  POST /api/reload            re-read the file, dropping unsaved edits
  GET  /ws                    player sends {"type":"time","t":12.3}, server
                              replies when the active segment changes;
                              {"type":"skip","t":30,"direction":"back"}
                              moves by playback.skip unless disabled

Examples:
  subedit serve movie.srt
  subedit serve movie.srt --media movie.mp4 --addr :9000`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
	serveCmd.Flags().String("media", "", "Audio or video file; its duration bounds jump targets")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	mediaPath, _ := cmd.Flags().GetString("media")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, cancel := signalContext()
	defer cancel()

	var duration time.Duration
	if mediaPath != "" {
		if duration, err = mediaDuration(ctx, cfg, mediaPath); err != nil {
			return err
		}
	}

	if _, err := readSubtitle(args[0]); err != nil {
		return err
	}
	doc, err := server.OpenDocument(args[0], duration)
	if err != nil {
		return err
	}

	srv := server.New(doc, text.Width, logger)
	srv.SetSkip(cfg.Playback.Skip)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", args[0], addr)
	if err := srv.Run(ctx, addr); err != nil {
		return err
	}

	if doc.Dirty() {
		logger.Warnw("exiting with unsaved edits", "file", args[0])
	}
	return nil
}
