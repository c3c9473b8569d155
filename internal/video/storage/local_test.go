package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/minio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMirror struct {
	put     []string
	removed []string
	err     error
}

func (m *fakeMirror) FPutObject(_ context.Context, objectName, _, _ string) (minio.UploadInfo, error) {
	m.put = append(m.put, objectName)
	return minio.UploadInfo{Key: objectName}, m.err
}

func (m *fakeMirror) RemoveObject(_ context.Context, objectName string) error {
	m.removed = append(m.removed, objectName)
	return m.err
}

// mp4Header ftyp box，足以被 filetype 识别为 video/mp4
var mp4Header = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0x00, 0x00, 0x00, 0x00, 'm', 'p', '4', '2', 'i', 's', 'o', 'm'}

func TestLocalStore_PutOpenDelete(t *testing.T) {
	root := t.TempDir()
	mirror := &fakeMirror{}
	s, err := NewLocalStore(root, mirror, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	f, err := s.Put(ctx, 7, strings.NewReader("hello video"), "cat.mp4", "video/mp4")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "7"), filepath.Dir(f.Path))
	assert.True(t, strings.HasSuffix(f.StoredName, ".mp4"))
	assert.Equal(t, int64(11), f.Size)
	assert.Equal(t, "video/mp4", f.ContentType)
	assert.Equal(t, []string{"7/" + f.StoredName}, mirror.put)

	entries, err := os.ReadDir(filepath.Join(root, "7"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	rc, size, err := s.Open(f.Path)
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "hello video", string(b))
	assert.Equal(t, int64(11), size)

	require.NoError(t, s.Delete(ctx, f.Path))
	require.NoError(t, s.Delete(ctx, f.Path))
	assert.Equal(t, []string{"7/" + f.StoredName, "7/" + f.StoredName}, mirror.removed)

	_, _, err = s.Open(f.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLocalStore_MirrorFailureIgnored(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), &fakeMirror{err: errors.New("down")}, zap.NewNop())
	require.NoError(t, err)

	f, err := s.Put(context.Background(), 1, strings.NewReader("x"), "a.webm", "video/webm")
	require.NoError(t, err)
	assert.FileExists(t, f.Path)
}

func TestLocalStore_SniffsContentType(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), nil, zap.NewNop())
	require.NoError(t, err)

	content := append(append([]byte{}, mp4Header...), make([]byte, 1024)...)
	f, err := s.Put(context.Background(), 1, strings.NewReader(string(content)), "clip", "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", f.ContentType)
	assert.Equal(t, int64(len(content)), f.Size)
	assert.False(t, strings.Contains(f.StoredName, "."))
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"cat.mp4", ".mp4"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
		{"dir/sub.mov", ".mov"},
		{"C:\\Users\\me\\clip.avi", ".avi"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Extension(tt.name), tt.name)
	}
}

func TestResolveContentType(t *testing.T) {
	assert.Equal(t, "video/webm", ResolveContentType("video/webm", nil))
	assert.Equal(t, "video/mp4", ResolveContentType("", mp4Header))
	assert.Equal(t, DefaultContentType, ResolveContentType("", []byte("plain text")))
}
