package biz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/video/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestReviewer(t *testing.T) {
	tests := []struct {
		name       string
		classifier *stubClassifier
		removeFile bool
		wantStatus string
		wantBlock  string
		wantTagged bool
	}{
		{"approved", &stubClassifier{}, false, models.ReviewApproved, models.FlagNo, true},
		{"explicit", &stubClassifier{explicit: true}, false, models.ReviewHeld, models.FlagYes, false},
		{"classifier error", &stubClassifier{err: errors.New("deadline exceeded")}, false, models.ReviewHeld, models.FlagYes, false},
		{"missing file", &stubClassifier{}, true, models.ReviewHeld, models.FlagYes, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTaggerFixture(t, 1)
			f.images.tags = []string{"tag"}
			v := f.public("clip")
			v.ReviewStatus = models.ReviewPending
			if tt.removeFile {
				delete(f.store.files, v.FilePath)
			}

			r := NewReviewer(f.videos, f.store, tt.classifier, f.tagger, time.Second, zap.NewNop())
			assert.NoError(t, r.Review(context.Background(), v.VideoNo))

			assert.Equal(t, tt.wantStatus, v.ReviewStatus)
			assert.Equal(t, tt.wantBlock, v.IsBlocked)
			assert.Equal(t, tt.wantTagged, len(f.features.rows) == 1)
			if tt.removeFile {
				assert.Zero(t, tt.classifier.calls)
			}
		})
	}
}

func TestReviewer_RepeatedHarmfulStaysHeld(t *testing.T) {
	f := newVideoFixture()
	v := f.public("clip")
	r := NewReviewer(f.videos, f.store, &stubClassifier{explicit: true}, nil, 0, zap.NewNop())

	assert.NoError(t, r.Review(context.Background(), v.VideoNo))
	assert.NoError(t, r.Review(context.Background(), v.VideoNo))
	assert.Equal(t, models.ReviewHeld, v.ReviewStatus)
	assert.Equal(t, models.FlagYes, v.IsBlocked)
}

func TestReviewer_UnknownVideo(t *testing.T) {
	f := newVideoFixture()
	r := NewReviewer(f.videos, f.store, &stubClassifier{}, nil, 0, zap.NewNop())
	assert.NoError(t, r.Review(context.Background(), 42))
}

// cancellingClassifier 模拟判定途中队列被停止
type cancellingClassifier struct {
	cancel context.CancelFunc
}

func (c cancellingClassifier) IsExplicit(ctx context.Context, _ []byte) (bool, error) {
	c.cancel()
	<-ctx.Done()
	return false, ctx.Err()
}

func TestReviewer_CancelledLeavesStatus(t *testing.T) {
	f := newTaggerFixture(t, 1)
	v := f.public("clip")
	v.ReviewStatus = models.ReviewPending
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewReviewer(f.videos, f.store, cancellingClassifier{cancel: cancel}, f.tagger, time.Minute, zap.NewNop())
	err := r.Review(ctx, v.VideoNo)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.ReviewPending, v.ReviewStatus)
	assert.Equal(t, models.FlagNo, v.IsBlocked)
	assert.Empty(t, f.features.rows)
}

func TestReviewer_ClassifierTimeoutHolds(t *testing.T) {
	f := newVideoFixture()
	v := f.public("clip")
	v.ReviewStatus = models.ReviewPending
	slow := classifierFunc(func(ctx context.Context, _ []byte) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})

	r := NewReviewer(f.videos, f.store, slow, nil, 10*time.Millisecond, zap.NewNop())
	assert.NoError(t, r.Review(context.Background(), v.VideoNo))
	assert.Equal(t, models.ReviewHeld, v.ReviewStatus)
	assert.Equal(t, models.FlagYes, v.IsBlocked)
}

type classifierFunc func(ctx context.Context, data []byte) (bool, error)

func (f classifierFunc) IsExplicit(ctx context.Context, data []byte) (bool, error) {
	return f(ctx, data)
}
