// Package server exposes a caption track over HTTP and streams the active
// segment to a player over a WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mgpai22/subedit/internal/logging"
	"github.com/mgpai22/subedit/internal/playback"
	"github.com/mgpai22/subedit/internal/severity"
	"github.com/mgpai22/subedit/internal/subtitle"
)

type Server struct {
	doc      *Document
	width    func(string) int
	logger   *logging.Logger
	upgrader websocket.Upgrader
	engine   *gin.Engine
	skip     time.Duration
}

// New wires the routes. width measures a caption line for tier reports.
func New(doc *Document, width func(string) int, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		doc:    doc,
		width:  width,
		logger: logger,
		skip:   playback.DefaultSkip,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")
	api.GET("/segments", s.listSegments)
	api.GET("/segments/:id", s.getSegment)
	api.PUT("/segments/:id", s.putSegment)
	api.GET("/locate", s.locate)
	api.GET("/jump", s.jump)
	api.GET("/report", s.report)
	api.POST("/save", s.save)
	api.POST("/reload", s.reload)
	r.GET("/ws", s.ws)

	s.engine = r
	return s
}

// SetSkip sets how far a skip message moves the clock. Non-positive values
// are ignored.
func (s *Server) SetSkip(d time.Duration) {
	if d > 0 {
		s.skip = d
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debugw("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

type segmentView struct {
	ID    int      `json:"id"`
	Start float64  `json:"start"`
	End   float64  `json:"end"`
	Lines []string `json:"lines"`
	Tier  string   `json:"tier"`
}

func (s *Server) view(seg subtitle.Segment) segmentView {
	lines := seg.Lines
	if lines == nil {
		lines = []string{}
	}
	return segmentView{
		ID:    seg.ID,
		Start: seg.StartTime.Seconds(),
		End:   seg.EndTime.Seconds(),
		Lines: lines,
		Tier:  severity.ForLines(seg.Lines, s.width).String(),
	}
}

func (s *Server) listSegments(c *gin.Context) {
	var (
		views   []segmentView
		version int
	)
	s.doc.ReadVersion(func(sub *subtitle.Subtitle, v int) {
		views = make([]segmentView, 0, sub.Len())
		for _, seg := range sub.Segments {
			views = append(views, s.view(seg))
		}
		version = v
	})
	c.JSON(http.StatusOK, gin.H{"segments": views, "version": version})
}

func segmentID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid segment id"})
		return 0, false
	}
	return id, true
}

func (s *Server) getSegment(c *gin.Context) {
	id, ok := segmentID(c)
	if !ok {
		return
	}
	var (
		seg   subtitle.Segment
		found bool
	)
	s.doc.Read(func(sub *subtitle.Subtitle, _ time.Duration) {
		seg, found = sub.ByID(id)
	})
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "segment not found"})
		return
	}
	c.JSON(http.StatusOK, s.view(seg))
}

type editRequest struct {
	Text *string `json:"text"`
}

func (s *Server) putSegment(c *gin.Context) {
	id, ok := segmentID(c)
	if !ok {
		return
	}
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"text\": ...}"})
		return
	}
	if strings.TrimSpace(*req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text must not be blank"})
		return
	}

	seg, err := s.doc.SetText(id, *req.Text)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	s.logger.Infow("segment edited", "id", id)
	c.JSON(http.StatusOK, s.view(seg))
}

// parses t as seconds or a clock value
func (s *Server) locate(c *gin.Context) {
	var (
		seg    subtitle.Segment
		at     time.Duration
		found  bool
		parsed bool
	)
	s.doc.Read(func(sub *subtitle.Subtitle, duration time.Duration) {
		at, parsed = playback.ResolveTime(c.Query("t"), duration)
		if !parsed {
			return
		}
		if i, ok := sub.Locate(at); ok {
			seg, found = sub.Segments[i], true
		}
	})
	if !parsed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "t must be seconds or H:MM:SS"})
		return
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"t": at.Seconds(), "active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"t": at.Seconds(), "active": true, "segment": s.view(seg)})
}

func (s *Server) jump(c *gin.Context) {
	var (
		at time.Duration
		ok bool
	)
	s.doc.Read(func(sub *subtitle.Subtitle, duration time.Duration) {
		at, ok = playback.ResolveJump(c.Query("target"), sub, duration)
	})
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target must be a segment number or H:MM:SS"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"t": at.Seconds(), "hms": playback.FormatHMS(at)})
}

func (s *Server) report(c *gin.Context) {
	var findings []severity.Finding
	s.doc.Read(func(sub *subtitle.Subtitle, _ time.Duration) {
		findings = severity.Check(sub, s.width)
	})

	type row struct {
		ID    int    `json:"id"`
		Tier  string `json:"tier"`
		Width int    `json:"width"`
		Lines int    `json:"lines"`
	}
	rows := make([]row, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, row{ID: f.ID, Tier: f.Tier.String(), Width: f.Width, Lines: f.Lines})
	}
	c.JSON(http.StatusOK, gin.H{"findings": rows, "worst": severity.Worst(findings).String()})
}

func (s *Server) save(c *gin.Context) {
	version, err := s.doc.Save()
	if err != nil {
		var verr *subtitle.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "id": verr.ID})
			return
		}
		s.logger.Errorw("save failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.logger.Infow("saved", "version", version)
	c.JSON(http.StatusOK, gin.H{"status": "saved", "version": version})
}

func (s *Server) reload(c *gin.Context) {
	version, err := s.doc.Reload()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "version": version})
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
