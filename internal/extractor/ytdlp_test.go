// internal/extractor/ytdlp_test.go
package extractor

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dashvolt/grabbit-cli/api/schemas"
	"github.com/dashvolt/grabbit-cli/internal/config"
)

func TestNewEngine(t *testing.T) {
	t.Run("requires binary path", func(t *testing.T) {
		_, err := NewEngine(config.EngineConfig{OutputDir: t.TempDir()}, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("creates output dir", func(t *testing.T) {
		dir := t.TempDir() + "/nested/downloads"
		e, err := NewEngine(config.EngineConfig{ExtractorPath: "yt-dlp", OutputDir: dir}, zap.NewNop())
		require.NoError(t, err)
		assert.DirExists(t, dir)
		assert.NotNil(t, e)
	})
}

func TestBuildArgs(t *testing.T) {
	opts := schemas.ExtractOptions{
		UserAgent: "Mozilla/5.0 test",
		Headers:   map[string]string{"Referer": "https://example.com"},
		Constraint: schemas.Constraint{
			MaxHeight: 720,
			MaxBytes:  1024,
		},
		ExtractorHints: []string{"--extractor-args", "youtube:player_client=android"},
	}

	args := buildArgs("https://example.com/v/1", "/tmp/out", opts)

	assert.Contains(t, args, "--no-playlist")
	assert.Contains(t, args, "--dump-json")
	assert.Contains(t, args, "--user-agent")
	assert.Contains(t, args, "Mozilla/5.0 test")
	assert.Contains(t, args, "--add-header")
	assert.Contains(t, args, "Referer: https://example.com")
	assert.Contains(t, args, "--extractor-args")
	assert.Equal(t, "https://example.com/v/1", args[len(args)-1], "url must come last")
}

func TestFormatSelector(t *testing.T) {
	assert.Equal(t, "bv*[height<=720]+ba/b[height<=720]/b",
		formatSelector(schemas.Constraint{MaxHeight: 720}))
	assert.Equal(t, "worst[ext=mp4]/worst",
		formatSelector(schemas.Constraint{MaxHeight: 0}), "zero height selects the smallest stream")
}

func TestParseMetadata(t *testing.T) {
	t.Run("well formed dump", func(t *testing.T) {
		out := []byte(`{"title":"Test Clip","uploader":"someone","duration":12.5,"_filename":"/tmp/abc.mp4","filesize":2048}`)
		a, err := parseMetadata(out)
		require.NoError(t, err)
		assert.Equal(t, "Test Clip", a.Title)
		assert.Equal(t, "someone", a.Uploader)
		assert.Equal(t, 12500*time.Millisecond, a.Duration)
		assert.Equal(t, int64(2048), a.SizeBytes)
		assert.Equal(t, "/tmp/abc.mp4", a.LocalPath)
	})

	t.Run("takes the last non-empty line", func(t *testing.T) {
		out := []byte("WARNING: something upstream\n\n" +
			`{"title":"x","_filename":"/tmp/x.mp4","filesize_approx":99}` + "\n\n")
		a, err := parseMetadata(out)
		require.NoError(t, err)
		assert.Equal(t, int64(99), a.SizeBytes, "approx size is the fallback when filesize is absent")
	})

	t.Run("empty output", func(t *testing.T) {
		_, err := parseMetadata([]byte("  \n "))
		assert.Error(t, err)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := parseMetadata([]byte("download complete"))
		assert.Error(t, err)
	})

	t.Run("missing filename", func(t *testing.T) {
		_, err := parseMetadata([]byte(`{"title":"x"}`))
		assert.Error(t, err)
	})
}

func TestEngineMessage(t *testing.T) {
	execErr := errors.New("exit status 1")

	t.Run("last stderr line wins", func(t *testing.T) {
		stderr := bytes.NewBufferString("WARNING: unrelated\nERROR: HTTP Error 403: Forbidden\n")
		assert.Equal(t, "ERROR: HTTP Error 403: Forbidden", engineMessage(stderr, execErr))
	})

	t.Run("falls back to exec error", func(t *testing.T) {
		assert.Equal(t, "exit status 1", engineMessage(&bytes.Buffer{}, execErr))
	})
}
