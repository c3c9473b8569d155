package ffmpeg

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveBinary(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, "ffmpeg", ResolveBinary(""))
	assert.Equal(t, "/opt/ffmpeg", ResolveBinary(" /opt/ffmpeg "))

	t.Setenv(EnvPath, "/usr/local/bin/ffmpeg")
	assert.Equal(t, "/usr/local/bin/ffmpeg", ResolveBinary("/opt/ffmpeg"))
}

func TestArgs(t *testing.T) {
	t.Setenv(EnvPath, "")
	e := NewExtractor("", "", zap.NewNop())
	args := e.Args("/tmp/x/video-src.mp4", "/tmp/x")
	assert.Equal(t, []string{"-y", "-i", "/tmp/x/video-src.mp4", "-vf", "fps=1", "/tmp/x/frame-%03d.jpg"}, args)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a unix shell")
	}
	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestExtractFrames_NonZeroExit(t *testing.T) {
	t.Setenv(EnvPath, "")
	bin := writeScript(t, "echo 'invalid data' >&2\nexit 3\n")
	tmp := t.TempDir()
	e := NewExtractor(bin, tmp, zap.NewNop())

	frames, err := e.ExtractFrames(t.Context(), []byte("not a video"))
	require.Error(t, err)
	assert.Nil(t, frames)
	assert.ErrorIs(t, err, ErrFFmpegFailed)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Contains(t, exitErr.Output, "invalid data")

	// 失败时临时目录被清理
	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractFrames_CollectsFramesInOrder(t *testing.T) {
	t.Setenv(EnvPath, "")
	// 最后一个参数是输出模式，按模式目录写出三帧
	bin := writeScript(t, `for last; do :; done
dir=$(dirname "$last")
for n in 003 001 002; do echo frame > "$dir/frame-$n.jpg"; done
`)
	e := NewExtractor(bin, t.TempDir(), zap.NewNop())

	frames, err := e.ExtractFrames(t.Context(), []byte("video"))
	require.NoError(t, err)
	require.Len(t, frames.Paths, 3)
	assert.Equal(t, "frame-001.jpg", filepath.Base(frames.Paths[0]))
	assert.Equal(t, "frame-003.jpg", filepath.Base(frames.Paths[2]))

	require.NoError(t, frames.Cleanup())
	_, err = os.Stat(frames.Dir)
	assert.True(t, os.IsNotExist(err))
}

func TestExtractFrames_MissingBinary(t *testing.T) {
	t.Setenv(EnvPath, "")
	e := NewExtractor(filepath.Join(t.TempDir(), "nope"), t.TempDir(), zap.NewNop())
	_, err := e.ExtractFrames(t.Context(), []byte("video"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFFmpegFailed)
}

func TestSortFrames_NumericOrder(t *testing.T) {
	paths := []string{
		"/tmp/f/frame-1000.jpg",
		"/tmp/f/frame-999.jpg",
		"/tmp/f/frame-002.jpg",
		"/tmp/f/frame-1001.jpg",
		"/tmp/f/frame-001.jpg",
	}
	sortFrames(paths)

	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	assert.Equal(t, []string{"frame-001.jpg", "frame-002.jpg", "frame-999.jpg", "frame-1000.jpg", "frame-1001.jpg"}, names)
}

func TestNewExtractor_ResolvesConfiguredPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, "/opt/ffmpeg", NewExtractor(" /opt/ffmpeg ", "", nil).Binary())
	assert.Equal(t, DefaultBinary, NewExtractor("", "", nil).Binary())

	t.Setenv(EnvPath, "/usr/local/bin/ffmpeg")
	assert.Equal(t, "/usr/local/bin/ffmpeg", NewExtractor("/opt/ffmpeg", "", nil).Binary())
}
