// Package ffmpeg 调用外部 ffmpeg 从视频中按 1fps 抽帧
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// EnvPath 指定 ffmpeg 可执行文件的环境变量
const EnvPath = "FFMPEG_PATH"

// DefaultBinary 未配置时在 PATH 中查找
const DefaultBinary = "ffmpeg"

const framePattern = "frame-%03d.jpg"

// ErrFFmpegFailed ffmpeg 以非零状态退出
var ErrFFmpegFailed = errors.New("ffmpeg: non-zero exit")

// ExitError 携带退出码与截断后的输出
type ExitError struct {
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("ffmpeg failed with exit code %d: %s", e.Code, e.Output)
}

func (e *ExitError) Unwrap() error { return ErrFFmpegFailed }

// Frames 一次抽帧的结果，调用方负责 Cleanup
type Frames struct {
	Dir   string
	Paths []string
}

// Cleanup 删除本次抽帧使用的临时目录
func (f *Frames) Cleanup() error {
	if f == nil || f.Dir == "" {
		return nil
	}
	return os.RemoveAll(f.Dir)
}

// Extractor 抽帧器
type Extractor struct {
	binary string
	tmpDir string
	logger *zap.Logger
}

// ResolveBinary 环境变量优先，其次配置值，最后默认 ffmpeg
func ResolveBinary(configured string) string {
	if v := strings.TrimSpace(os.Getenv(EnvPath)); v != "" {
		return v
	}
	if v := strings.TrimSpace(configured); v != "" {
		return v
	}
	return DefaultBinary
}

// NewExtractor 创建抽帧器，tmpDir 为空时使用系统临时目录
func NewExtractor(binary, tmpDir string, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		binary: ResolveBinary(binary),
		tmpDir: tmpDir,
		logger: logger,
	}
}

// Binary 实际使用的可执行文件
func (e *Extractor) Binary() string {
	return e.binary
}

// Args 构造 ffmpeg 参数
func (e *Extractor) Args(src, outDir string) []string {
	return []string{"-y", "-i", src, "-vf", "fps=1", filepath.Join(outDir, framePattern)}
}

// ExtractFrames 将视频字节写入临时文件后抽帧，返回按抽取顺序排列的 JPEG 路径
func (e *Extractor) ExtractFrames(ctx context.Context, video []byte) (*Frames, error) {
	dir, err := os.MkdirTemp(e.tmpDir, "video-frames-")
	if err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}
	frames := &Frames{Dir: dir}

	src := filepath.Join(dir, "video-src.mp4")
	if err := os.WriteFile(src, video, 0o600); err != nil {
		_ = frames.Cleanup()
		return nil, fmt.Errorf("write temp video: %w", err)
	}

	args := e.Args(src, dir)
	e.logger.Info("running ffmpeg", zap.String("binary", e.binary), zap.Strings("args", args))

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		_ = frames.Cleanup()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			e.logger.Error("ffmpeg exited with error", zap.Int("exit_code", exitErr.ExitCode()))
			return nil, &ExitError{Code: exitErr.ExitCode(), Output: tail(out.String(), 512)}
		}
		return nil, fmt.Errorf("run ffmpeg: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "frame-*.jpg"))
	if err != nil {
		_ = frames.Cleanup()
		return nil, fmt.Errorf("list frames: %w", err)
	}
	sortFrames(matches)
	frames.Paths = matches

	e.logger.Info("extracted frames via ffmpeg", zap.Int("count", len(matches)))
	return frames, nil
}

// sortFrames 按文件名中的帧序号排序，超过 999 帧时序号位数不再固定
func sortFrames(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return frameIndex(paths[i]) < frameIndex(paths[j])
	})
}

func frameIndex(path string) int {
	name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "frame-"), ".jpg")
	n, err := strconv.Atoi(name)
	if err != nil {
		return math.MaxInt
	}
	return n
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
