// Package storage 本地磁盘上的视频文件存储，可选镜像到 MinIO
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/minio"
	"github.com/lk2023060901/ai-video-backend/internal/video/biz"
	"go.uber.org/zap"
)

// DefaultContentType 无法识别时的类型
const DefaultContentType = "application/octet-stream"

// sniffLen filetype 识别所需的头部长度
const sniffLen = 261

// Mirror 对象存储镜像，由 minio.Client 实现
type Mirror interface {
	FPutObject(ctx context.Context, objectName, filePath, contentType string) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, objectName string) error
}

// LocalStore 文件布局为 {root}/{userNo}/{uuid}{ext}
type LocalStore struct {
	root   string
	mirror Mirror
	logger *zap.Logger
}

var _ biz.MediaStore = (*LocalStore)(nil)

// NewLocalStore mirror 可为 nil
func NewLocalStore(root string, mirror Mirror, logger *zap.Logger) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{root: abs, mirror: mirror, logger: logger}, nil
}

// Put 先写临时文件再重命名，失败时不留下残缺文件
func (s *LocalStore) Put(ctx context.Context, userNo int64, src io.Reader, originalName, contentType string) (*biz.StoredFile, error) {
	dir := filepath.Join(s.root, strconv.FormatInt(userNo, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create user dir: %w", err)
	}

	storedName := uuid.NewString() + Extension(originalName)
	path := filepath.Join(dir, storedName)

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// 重命名成功后临时文件已不存在
		_ = os.Remove(tmpPath)
	}()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = tmp.Close()
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	size, err := io.Copy(tmp, io.MultiReader(bytes.NewReader(head), src))
	if err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return nil, fmt.Errorf("move upload: %w", err)
	}

	stored := &biz.StoredFile{
		Path:        path,
		StoredName:  storedName,
		Size:        size,
		ContentType: ResolveContentType(contentType, head),
	}
	s.mirrorPut(ctx, userNo, stored)
	return stored, nil
}

func (s *LocalStore) mirrorPut(ctx context.Context, userNo int64, f *biz.StoredFile) {
	if s.mirror == nil {
		return
	}
	object := fmt.Sprintf("%d/%s", userNo, f.StoredName)
	if _, err := s.mirror.FPutObject(ctx, object, f.Path, f.ContentType); err != nil {
		s.logger.Warn("failed to mirror video", zap.String("object", object), zap.Error(err))
	}
}

// Open 返回文件流与长度，文件不存在时错误满足 errors.Is(err, fs.ErrNotExist)
func (s *LocalStore) Open(path string) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, 0, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	return f, info.Size(), nil
}

func (s *LocalStore) ReadAll(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Delete 幂等，文件已不存在视为成功
func (s *LocalStore) Delete(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if s.mirror != nil {
		if rel, err := filepath.Rel(s.root, path); err == nil && !strings.HasPrefix(rel, "..") {
			object := filepath.ToSlash(rel)
			if err := s.mirror.RemoveObject(ctx, object); err != nil {
				s.logger.Warn("failed to remove mirrored video", zap.String("object", object), zap.Error(err))
			}
		}
	}
	return nil
}

// Extension 取原始文件名最后一个 "." 之后的后缀（含点），没有则为空
func Extension(originalName string) string {
	base := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if i := strings.LastIndex(base, "."); i >= 0 && i < len(base)-1 {
		return base[i:]
	}
	return ""
}

// ResolveContentType 上传头缺失或为 octet-stream 时按文件头识别
func ResolveContentType(declared string, head []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != DefaultContentType {
		return declared
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return DefaultContentType
	}
	return kind.MIME.Value
}
