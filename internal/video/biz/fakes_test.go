package biz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
	apperrors "github.com/lk2023060901/ai-video-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/ffmpeg"
	"github.com/lk2023060901/ai-video-backend/internal/video/models"
)

type fakeVideoRepo struct {
	mu     sync.Mutex
	nextNo int64
	rows   map[int64]*models.Video
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{rows: map[int64]*models.Video{}}
}

func (r *fakeVideoRepo) add(v *models.Video) *models.Video {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextNo++
	v.VideoNo = r.nextNo
	if v.CreatedAt.IsZero() {
		v.CreatedAt = v.UploadDate
	}
	r.rows[v.VideoNo] = v
	return v
}

func (r *fakeVideoRepo) Create(_ context.Context, v *models.Video) error {
	r.add(v)
	return nil
}

func (r *fakeVideoRepo) Save(_ context.Context, v *models.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[v.VideoNo] = v
	return nil
}

func (r *fakeVideoRepo) Delete(_ context.Context, videoNo int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, videoNo)
	return nil
}

func (r *fakeVideoRepo) FindByID(_ context.Context, videoNo int64) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[videoNo]
	if !ok {
		return nil, ErrVideoNotFound
	}
	return v, nil
}

func (r *fakeVideoRepo) FindByIDForUpdate(ctx context.Context, videoNo int64) (*models.Video, error) {
	return r.FindByID(ctx, videoNo)
}

func (r *fakeVideoRepo) sorted(match func(*models.Video) bool) []*models.Video {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Video{}
	for _, v := range r.rows {
		if match(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VideoNo > out[j].VideoNo })
	return out
}

func (r *fakeVideoRepo) ListByUser(_ context.Context, userNo int64) ([]*models.Video, error) {
	return r.sorted(func(v *models.Video) bool { return v.UserNo == userNo }), nil
}

func (r *fakeVideoRepo) ListRecentPublic(_ context.Context, limit int) ([]*models.Video, error) {
	out := r.sorted((*models.Video).IsPublic)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeVideoRepo) ListByBlocked(_ context.Context, flag string) ([]*models.Video, error) {
	return r.sorted(func(v *models.Video) bool { return v.IsBlocked == flag }), nil
}

func (r *fakeVideoRepo) SearchPublic(_ context.Context, f PublicFilter) (*database.PageResult[*models.Video], error) {
	all := r.sorted(func(v *models.Video) bool {
		if !v.IsPublic() {
			return false
		}
		if f.Keyword != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(f.Keyword)) {
			return false
		}
		if len(f.Tags) == 0 {
			return true
		}
		for _, t := range v.Tags() {
			for _, want := range f.Tags {
				if t == want {
					return true
				}
			}
		}
		return false
	})
	page, size := database.NormalizePage(f.Page, f.Size)
	start := page * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return database.NewPageResult(all[start:end], page, size, int64(len(all))), nil
}

func (r *fakeVideoRepo) CountPublic(_ context.Context) (int64, error) {
	return int64(len(r.sorted((*models.Video).IsPublic))), nil
}

func (r *fakeVideoRepo) TopPublicBy(_ context.Context, column string) (*models.Video, error) {
	var best *models.Video
	for _, v := range r.sorted((*models.Video).IsPublic) {
		if best == nil || counter(v, column) > counter(best, column) {
			best = v
		}
	}
	return best, nil
}

func counter(v *models.Video, column string) int64 {
	switch column {
	case "like_count":
		return v.LikeCount
	case "view_count":
		return v.ViewCount
	default:
		return v.DislikeCount
	}
}

func (r *fakeVideoRepo) IncreaseViewCount(_ context.Context, videoNo int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[videoNo]
	if !ok {
		return 0, ErrVideoNotFound
	}
	v.ViewCount++
	return v.ViewCount, nil
}

func (r *fakeVideoRepo) UpdateReview(_ context.Context, videoNo int64, status, blocked string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[videoNo]
	if !ok {
		return ErrVideoNotFound
	}
	v.ReviewStatus, v.IsBlocked = status, blocked
	return nil
}

func (r *fakeVideoRepo) UpdateBlocked(_ context.Context, videoNo int64, blocked string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[videoNo].IsBlocked = blocked
	return nil
}

func (r *fakeVideoRepo) UpdateCounters(_ context.Context, videoNo int64, likes, dislikes int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[videoNo].LikeCount, r.rows[videoNo].DislikeCount = likes, dislikes
	return nil
}

func (r *fakeVideoRepo) UpdateTags(_ context.Context, v *models.Video) error {
	return nil
}

type fakeFeatureRepo struct {
	mu   sync.Mutex
	rows []*models.VideoFeature
}

func (r *fakeFeatureRepo) ListByVideo(_ context.Context, videoNo int64) ([]*models.VideoFeature, error) {
	return r.ListByVideos(context.Background(), []int64{videoNo})
}

func (r *fakeFeatureRepo) ListByVideos(_ context.Context, videoNos []int64) ([]*models.VideoFeature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.VideoFeature
	for _, f := range r.rows {
		for _, no := range videoNos {
			if f.VideoNo == no {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func (r *fakeFeatureRepo) ExistsByVideoAndSource(_ context.Context, videoNo int64, source string) (bool, error) {
	return len(r.find(videoNo, source)) > 0, nil
}

func (r *fakeFeatureRepo) find(videoNo int64, source string) []*models.VideoFeature {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.VideoFeature
	for _, f := range r.rows {
		if f.VideoNo == videoNo && f.Source == source {
			out = append(out, f)
		}
	}
	return out
}

func (r *fakeFeatureRepo) VideosWithSource(_ context.Context, videoNos []int64, source string) (map[int64]bool, error) {
	out := map[int64]bool{}
	for _, no := range videoNos {
		if len(r.find(no, source)) > 0 {
			out[no] = true
		}
	}
	return out, nil
}

func (r *fakeFeatureRepo) remove(match func(*models.VideoFeature) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, f := range r.rows {
		if !match(f) {
			kept = append(kept, f)
		}
	}
	r.rows = kept
}

func (r *fakeFeatureRepo) DeleteByVideo(_ context.Context, videoNo int64) error {
	r.remove(func(f *models.VideoFeature) bool { return f.VideoNo == videoNo })
	return nil
}

func (r *fakeFeatureRepo) DeleteByVideoAndSource(_ context.Context, videoNo int64, source string) error {
	r.remove(func(f *models.VideoFeature) bool { return f.VideoNo == videoNo && f.Source == source })
	return nil
}

func (r *fakeFeatureRepo) Save(_ context.Context, f *models.VideoFeature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.FeatureNo = int64(len(r.rows) + 1)
	r.rows = append(r.rows, f)
	return nil
}

type fakeReactionRepo struct {
	mu     sync.Mutex
	nextNo int64
	rows   map[int64]*models.VideoReaction
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{rows: map[int64]*models.VideoReaction{}}
}

func (r *fakeReactionRepo) Find(_ context.Context, videoNo, userNo int64) (*models.VideoReaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.rows {
		if x.VideoNo == videoNo && x.UserNo == userNo {
			cp := *x
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeReactionRepo) Save(_ context.Context, x *models.VideoReaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x.ReactionNo == 0 {
		r.nextNo++
		x.ReactionNo = r.nextNo
	}
	cp := *x
	r.rows[x.ReactionNo] = &cp
	return nil
}

func (r *fakeReactionRepo) Delete(_ context.Context, reactionNo int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, reactionNo)
	return nil
}

func (r *fakeReactionRepo) DeleteByVideo(_ context.Context, videoNo int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for no, x := range r.rows {
		if x.VideoNo == videoNo {
			delete(r.rows, no)
		}
	}
	return nil
}

func (r *fakeReactionRepo) Count(_ context.Context, videoNo int64, reactionType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, x := range r.rows {
		if x.VideoNo == videoNo && x.ReactionType == reactionType {
			n++
		}
	}
	return n, nil
}

func (r *fakeReactionRepo) ListByUserAndVideos(_ context.Context, userNo int64, videoNos []int64) ([]*models.VideoReaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.VideoReaction
	for _, x := range r.rows {
		for _, no := range videoNos {
			if x.UserNo == userNo && x.VideoNo == no {
				out = append(out, x)
			}
		}
	}
	return out, nil
}

type memStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}}
}

func (s *memStore) Put(_ context.Context, userNo int64, src io.Reader, originalName, contentType string) (*StoredFile, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name := fmt.Sprintf("f%d%s", len(s.files)+1, filepath.Ext(originalName))
	path := fmt.Sprintf("/videos/%d/%s", userNo, name)
	s.files[path] = b
	return &StoredFile{Path: path, StoredName: name, Size: int64(len(b)), ContentType: contentType}, nil
}

func (s *memStore) Open(path string) (io.ReadCloser, int64, error) {
	b, err := s.ReadAll(path)
	if err != nil {
		return nil, 0, err
	}
	return io.NopCloser(bytes.NewReader(b)), int64(len(b)), nil
}

func (s *memStore) ReadAll(path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return b, nil
}

func (s *memStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	s.deleted = append(s.deleted, path)
	return nil
}

type recordingDispatcher struct {
	mu  sync.Mutex
	ids []int64
}

func (d *recordingDispatcher) Dispatch(_ context.Context, videoNo int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, videoNo)
	return nil
}

type fakeUsers map[string]int64

func (u fakeUsers) ResolveUserNo(_ context.Context, userID string) (int64, error) {
	no, ok := u[userID]
	if !ok {
		return 0, apperrors.New(apperrors.ErrUserNotFound)
	}
	return no, nil
}

type recordingCache struct {
	invalidated []int64
}

func (c *recordingCache) Invalidate(videoNo int64) {
	c.invalidated = append(c.invalidated, videoNo)
}

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubClassifier struct {
	explicit bool
	err      error
	calls    int
}

func (c *stubClassifier) IsExplicit(_ context.Context, _ []byte) (bool, error) {
	c.calls++
	return c.explicit, c.err
}

type stubImageTagger struct {
	tags   []string
	err    error
	frames int
}

func (t *stubImageTagger) TagImages(_ context.Context, jpegs [][]byte) ([]string, error) {
	t.frames = len(jpegs)
	return t.tags, t.err
}

// dirExtractor 在临时目录写出 n 个假帧
type dirExtractor struct {
	dir string
	n   int
}

func (e *dirExtractor) ExtractFrames(_ context.Context, _ []byte) (*ffmpeg.Frames, error) {
	dir, err := os.MkdirTemp(e.dir, "frames-")
	if err != nil {
		return nil, err
	}
	frames := &ffmpeg.Frames{Dir: dir}
	for i := 1; i <= e.n; i++ {
		p := filepath.Join(dir, fmt.Sprintf("frame-%03d.jpg", i))
		if err := os.WriteFile(p, []byte{0xff, 0xd8, byte(i)}, 0o600); err != nil {
			return nil, err
		}
		frames.Paths = append(frames.Paths, p)
	}
	return frames, nil
}
