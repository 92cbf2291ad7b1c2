// Package ffmpeg finds the ffmpeg and ffprobe executables used for burn-in,
// snapshots and duration probing.
package ffmpeg

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/mgpai22/subedit/internal/logging"
)

const (
	releaseVersion = "6.1"
	releaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"

	EnvFFmpegPath  = "SUBEDIT_FFMPEG_PATH"
	EnvFFprobePath = "SUBEDIT_FFPROBE_PATH"
)

var ErrNotFound = errors.New("ffmpeg binaries not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// Locator resolves binaries once and caches the answer. Lookup order:
// explicit paths, SUBEDIT_FFMPEG_PATH / SUBEDIT_FFPROBE_PATH, $PATH, the
// user cache dir, and finally a download into the cache dir when Download
// is set.
type Locator struct {
	FFmpeg   string
	FFprobe  string
	CacheDir string
	Download bool
	Logger   *logging.Logger

	// overridable in tests
	lookPath func(string) (string, error)
	getenv   func(string) string
	client   *http.Client

	once  sync.Once
	paths BinaryPaths
	err   error
}

func NewLocator(ffmpegPath, ffprobePath string) *Locator {
	return &Locator{
		FFmpeg:   ffmpegPath,
		FFprobe:  ffprobePath,
		Download: true,
	}
}

func (l *Locator) Ensure(ctx context.Context) (BinaryPaths, error) {
	l.once.Do(func() {
		l.paths, l.err = l.resolve(ctx)
	})
	return l.paths, l.err
}

func (l *Locator) FFmpegPath(ctx context.Context) (string, error) {
	paths, err := l.Ensure(ctx)
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func (l *Locator) FFprobePath(ctx context.Context) (string, error) {
	paths, err := l.Ensure(ctx)
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func (l *Locator) logger() *logging.Logger {
	if l.Logger == nil {
		return logging.Nop()
	}
	return l.Logger
}

func (l *Locator) resolve(ctx context.Context) (BinaryPaths, error) {
	getenv := l.getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	lookPath := l.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	paths := BinaryPaths{FFmpeg: l.FFmpeg, FFprobe: l.FFprobe}
	if paths.FFmpeg == "" {
		paths.FFmpeg = getenv(EnvFFmpegPath)
	}
	if paths.FFprobe == "" {
		paths.FFprobe = getenv(EnvFFprobePath)
	}
	if paths.FFmpeg == "" {
		if found, err := lookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := lookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}
	if paths.FFmpeg != "" && paths.FFprobe != "" {
		l.logger().Debugw("using ffmpeg", "ffmpeg", paths.FFmpeg, "ffprobe", paths.FFprobe)
		return paths, nil
	}

	installDir, err := l.installDir()
	if err != nil {
		return BinaryPaths{}, err
	}
	cached := BinaryPaths{
		FFmpeg:  filepath.Join(installDir, "ffmpeg"+executableSuffix()),
		FFprobe: filepath.Join(installDir, "ffprobe"+executableSuffix()),
	}
	if binariesExist(cached) {
		return fillMissing(paths, cached), nil
	}

	if !l.Download {
		return BinaryPaths{}, fmt.Errorf(
			"%w: install ffmpeg or set %s and %s",
			ErrNotFound,
			EnvFFmpegPath,
			EnvFFprobePath,
		)
	}

	asset, err := assetForPlatform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return BinaryPaths{}, err
	}
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return BinaryPaths{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
	}

	l.logger().Infow("downloading ffmpeg", "asset", asset, "dir", installDir)
	if err := l.download(ctx, asset, installDir); err != nil {
		return BinaryPaths{}, err
	}
	if !binariesExist(cached) {
		return BinaryPaths{}, fmt.Errorf("%w after extraction", ErrNotFound)
	}
	if runtime.GOOS != "windows" {
		for _, p := range []string{cached.FFmpeg, cached.FFprobe} {
			if err := os.Chmod(p, 0o755); err != nil {
				return BinaryPaths{}, fmt.Errorf("chmod %s: %w", p, err)
			}
		}
	}
	return fillMissing(paths, cached), nil
}

func fillMissing(paths, fallback BinaryPaths) BinaryPaths {
	if paths.FFmpeg == "" {
		paths.FFmpeg = fallback.FFmpeg
	}
	if paths.FFprobe == "" {
		paths.FFprobe = fallback.FFprobe
	}
	return paths
}

func (l *Locator) installDir() (string, error) {
	base := l.CacheDir
	if base == "" {
		dir, err := os.UserCacheDir()
		if err != nil || dir == "" {
			dir = os.TempDir()
		}
		base = filepath.Join(dir, "subedit")
	}
	return filepath.Join(
		base,
		"ffmpeg",
		releaseVersion,
		runtime.GOOS,
		runtime.GOARCH,
	), nil
}

func assetForPlatform(goos, goarch string) (string, error) {
	var suffix string
	switch {
	case goos == "linux" && goarch == "amd64":
		suffix = "linux-64"
	case goos == "linux" && goarch == "arm64":
		suffix = "linux-arm-64"
	case goos == "darwin" && goarch == "amd64":
		suffix = "macos-64"
	case goos == "windows" && goarch == "amd64":
		suffix = "win-64"
	default:
		return "", fmt.Errorf("no prebuilt ffmpeg for %s/%s", goos, goarch)
	}
	return "ffmpeg-" + releaseVersion + "-" + suffix + ".zip", nil
}

func (l *Locator) download(ctx context.Context, asset, installDir string) error {
	client := l.client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}

	url := fmt.Sprintf("%s/v%s/%s", releaseBaseURL, releaseVersion, asset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "subedit-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	archivePath := tmp.Name()
	defer func() { _ = os.Remove(archivePath) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := extractArchive(archivePath, installDir); err != nil {
		return fmt.Errorf("extract %s: %w", asset, err)
	}
	return nil
}

// pulls ffmpeg and ffprobe out of a zip, ignoring directory layout
func extractArchive(archivePath, installDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	found := map[string]bool{}
	for _, file := range zr.File {
		name := binaryName(filepath.Base(file.Name))
		if name == "" || found[name] {
			continue
		}
		dest := filepath.Join(installDir, name+executableSuffix())
		if err := extractZipFile(file, dest); err != nil {
			return err
		}
		found[name] = true
	}

	if !found["ffmpeg"] || !found["ffprobe"] {
		return fmt.Errorf("ffmpeg archive missing required binaries")
	}
	return nil
}

func extractZipFile(file *zip.File, dest string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", file.Name, err)
	}
	defer func() { _ = reader.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create ffmpeg output dir: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

// "ffmpeg", "ffprobe" or "" for anything else in the bundle
func binaryName(base string) string {
	base = strings.TrimSuffix(strings.ToLower(base), ".exe")
	switch base {
	case "ffmpeg", "ffprobe":
		return base
	}
	return ""
}

func binariesExist(paths BinaryPaths) bool {
	return fileExists(paths.FFmpeg) && fileExists(paths.FFprobe)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
