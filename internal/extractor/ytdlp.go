// File: internal/extractor/ytdlp.go
// Subprocess adapter for the external extraction engine. Everything the
// engine knows about platforms, page formats and media muxing stays on its
// side of the exec boundary; this adapter only builds the option bundle,
// runs the binary, and decodes the metadata line it prints on success.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/dashvolt/grabbit-cli/api/schemas"
	"github.com/dashvolt/grabbit-cli/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Engine shells out to a yt-dlp compatible binary. Implements
// schemas.Extractor.
type Engine struct {
	binPath   string
	outputDir string
	logger    *zap.Logger
}

// NewEngine builds the adapter from engine configuration, creating the
// output directory if needed.
func NewEngine(cfg config.EngineConfig, logger *zap.Logger) (*Engine, error) {
	if cfg.ExtractorPath == "" {
		return nil, fmt.Errorf("extractor: binary path is required")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("extractor: creating output dir: %w", err)
	}
	return &Engine{
		binPath:   cfg.ExtractorPath,
		outputDir: cfg.OutputDir,
		logger:    logger.With(zap.String("component", "extractor")),
	}, nil
}

// Extract runs one engine invocation for url under the supplied options.
// On failure the returned error carries the engine's raw stderr text; the
// caller's classifier is the only component that interprets it.
func (e *Engine) Extract(ctx context.Context, url string, opts schemas.ExtractOptions) (*schemas.Artifact, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = e.outputDir
	}
	args := buildArgs(url, outputDir, opts)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("Invoking extraction engine",
		zap.String("url", url),
		zap.Int("max_height", opts.Constraint.MaxHeight),
	)

	started := time.Now()
	err := cmd.Run()
	elapsed := time.Since(started)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Timeout or cancellation killed the child. Surface a message
			// the classifier recognizes as transport-level trouble, but
			// keep the context error wrapped for errors.Is checks.
			return nil, fmt.Errorf("engine timed out after %s: %w", elapsed.Round(time.Millisecond), ctxErr)
		}
		return nil, fmt.Errorf("engine failed: %s", engineMessage(&stderr, err))
	}

	artifact, perr := parseMetadata(stdout.Bytes())
	if perr != nil {
		return nil, fmt.Errorf("engine succeeded but metadata was malformed: %w", perr)
	}

	// The metadata's filesize fields are estimates for some platforms;
	// prefer the bytes actually on disk.
	if info, serr := os.Stat(artifact.LocalPath); serr == nil {
		artifact.SizeBytes = info.Size()
	}

	e.logger.Info("Extraction complete",
		zap.String("title", artifact.Title),
		zap.Int64("size_bytes", artifact.SizeBytes),
		zap.Duration("elapsed", elapsed),
	)
	return artifact, nil
}

// buildArgs assembles the engine argv from the option bundle.
func buildArgs(url, outputDir string, opts schemas.ExtractOptions) []string {
	args := []string{
		"--no-playlist",
		"--no-progress",
		"--no-simulate",
		"--dump-json",
		"-o", filepath.Join(outputDir, "%(id)s.%(ext)s"),
		"-f", formatSelector(opts.Constraint),
	}
	if opts.UserAgent != "" {
		args = append(args, "--user-agent", opts.UserAgent)
	}
	for key, value := range opts.Headers {
		args = append(args, "--add-header", key+": "+value)
	}
	args = append(args, opts.ExtractorHints...)
	args = append(args, url)
	return args
}

// formatSelector translates a quality constraint into the engine's format
// expression. A zero height means "smallest available".
func formatSelector(c schemas.Constraint) string {
	if c.MaxHeight <= 0 {
		return "worst[ext=mp4]/worst"
	}
	return fmt.Sprintf("bv*[height<=%d]+ba/b[height<=%d]/b", c.MaxHeight, c.MaxHeight)
}

// metadata mirrors the subset of the engine's JSON dump we care about.
type metadata struct {
	Title           string  `json:"title"`
	Uploader        string  `json:"uploader"`
	DurationSeconds float64 `json:"duration"`
	Filename        string  `json:"_filename"`
	Filesize        int64   `json:"filesize"`
	FilesizeApprox  int64   `json:"filesize_approx"`
}

// parseMetadata decodes the last non-empty stdout line as the engine's
// metadata dump. Earlier lines can be playlist or warning noise.
func parseMetadata(out []byte) (*schemas.Artifact, error) {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	var last []byte
	for i := len(lines) - 1; i >= 0; i-- {
		if len(bytes.TrimSpace(lines[i])) > 0 {
			last = bytes.TrimSpace(lines[i])
			break
		}
	}
	if len(last) == 0 {
		return nil, fmt.Errorf("empty metadata output")
	}

	var meta metadata
	if err := json.Unmarshal(last, &meta); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	if meta.Filename == "" {
		return nil, fmt.Errorf("metadata missing output filename")
	}

	size := meta.Filesize
	if size == 0 {
		size = meta.FilesizeApprox
	}
	return &schemas.Artifact{
		Title:     meta.Title,
		Uploader:  meta.Uploader,
		Duration:  time.Duration(meta.DurationSeconds * float64(time.Second)),
		SizeBytes: size,
		LocalPath: meta.Filename,
	}, nil
}

// engineMessage prefers the engine's stderr over Go's exec error, trimmed to
// its final line where yt-dlp style engines put the actual cause.
func engineMessage(stderr *bytes.Buffer, err error) string {
	text := strings.TrimSpace(stderr.String())
	if text == "" {
		return err.Error()
	}
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" {
			return line
		}
	}
	return text
}
