package biz

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/video/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Cat ", "cat", "", "DOG", "bird", "fish", "ant", "bee"}, 5)
	assert.Equal(t, []string{"cat", "dog", "bird", "fish", "ant"}, got)
}

func TestSelectDesktopTags(t *testing.T) {
	tests := []struct {
		name string
		doc  DesktopMLTags
		want []string
	}{
		{
			name: "present tags above threshold",
			doc: DesktopMLTags{PresentTags: []ScoredTag{
				{"food", 0.2}, {"game", 0.92}, {"space", 0.41},
			}},
			want: []string{"game", "space"},
		},
		{
			name: "capped at three",
			doc: DesktopMLTags{PresentTags: []ScoredTag{
				{"a", 0.5}, {"b", 0.9}, {"c", 0.7}, {"d", 0.6},
			}},
			want: []string{"b", "c", "d"},
		},
		{
			name: "fallback to main and sub tags",
			doc: DesktopMLTags{
				MainTag:     &ScoredTag{" Game ", 0.3},
				SubTags:     []ScoredTag{{"game", 0.2}, {"Action", 0.1}, {"rpg", 0.1}, {"extra", 0.1}},
				PresentTags: []ScoredTag{{"noise", 0.1}},
			},
			want: []string{"game", "action", "rpg"},
		},
		{
			name: "nothing",
			doc:  DesktopMLTags{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectDesktopTags(&tt.doc))
		})
	}
}

type taggerFixture struct {
	*videoFixture
	images *stubImageTagger
	cache  *recordingCache
	tagger *Tagger
}

func newTaggerFixture(t *testing.T, frames int) *taggerFixture {
	f := &taggerFixture{videoFixture: newVideoFixture(), images: &stubImageTagger{}, cache: &recordingCache{}}
	f.tagger = NewTagger(f.videos, f.features, f.store, &dirExtractor{dir: t.TempDir(), n: frames}, f.images, passthroughTx{}, f.cache, 3, zap.NewNop())
	return f
}

func TestTagVideo_FillsEmptySummary(t *testing.T) {
	f := newTaggerFixture(t, 5)
	v := f.public("clip")
	f.images.tags = []string{"고양이", " 고양이", "Cute", "a", "b", "c", "d"}

	require.NoError(t, f.tagger.TagVideo(context.Background(), v.VideoNo))

	assert.Equal(t, 3, f.images.frames)
	assert.Equal(t, []string{"고양이", "cute", "a", "b", "c"}, v.Tags())

	rows := f.features.find(v.VideoNo, models.SourceGPTImage)
	require.Len(t, rows, 1)
	var doc GPTImageTags
	require.NoError(t, json.Unmarshal(rows[0].TagsJSON, &doc))
	assert.Equal(t, v.Tags(), doc.Tags)
	assert.Equal(t, []int64{v.VideoNo}, f.cache.invalidated)
}

func TestTagVideo_KeepsExistingSummary(t *testing.T) {
	f := newTaggerFixture(t, 2)
	v := f.public("clip", "user-tag")
	f.images.tags = []string{"new"}

	require.NoError(t, f.tagger.TagVideo(context.Background(), v.VideoNo))
	require.NoError(t, f.tagger.TagVideo(context.Background(), v.VideoNo))

	assert.Equal(t, []string{"user-tag"}, v.Tags())
	assert.Len(t, f.features.find(v.VideoNo, models.SourceGPTImage), 1)
}

func TestTagVideo_TaggerError(t *testing.T) {
	f := newTaggerFixture(t, 1)
	v := f.public("clip")
	f.images.err = errors.New("rate limited")

	assert.Error(t, f.tagger.TagVideo(context.Background(), v.VideoNo))
	assert.Empty(t, f.features.rows)
	assert.Empty(t, f.cache.invalidated)
}

func TestSaveDesktopTags(t *testing.T) {
	f := newTaggerFixture(t, 0)
	v := f.public("clip", "a", "b", "c", "d", "e")
	doc := &DesktopMLTags{
		MainTag:     &ScoredTag{"game", 0.9},
		PresentTags: []ScoredTag{{"game", 0.92}, {"space", 0.41}, {"food", 0.2}},
		AllScores:   map[string]float64{"game": 0.92},
		FrameCount:  12,
	}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		tags, err := f.tagger.SaveDesktopTags(ctx, v.VideoNo, doc)
		require.NoError(t, err)
		assert.Equal(t, []string{"game", "space"}, tags)
	}

	assert.Equal(t, "game", *v.Tag1)
	assert.Equal(t, "space", *v.Tag2)
	assert.Nil(t, v.Tag3)
	assert.Nil(t, v.Tag4)
	assert.Nil(t, v.Tag5)
	assert.Len(t, f.features.find(v.VideoNo, models.SourceDesktopML), 1)
	assert.Equal(t, []int64{v.VideoNo, v.VideoNo}, f.cache.invalidated)

	_, err := f.tagger.SaveDesktopTags(ctx, 999, doc)
	assert.ErrorIs(t, err, ErrVideoNotFound)
	assert.Len(t, f.cache.invalidated, 2)
}

func TestPendingDesktop(t *testing.T) {
	f := newTaggerFixture(t, 0)
	ctx := context.Background()
	var vs []*models.Video
	for i := 0; i < 4; i++ {
		v := f.public("clip")
		v.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		vs = append(vs, v)
	}
	require.NoError(t, f.features.Save(ctx, &models.VideoFeature{VideoNo: vs[3].VideoNo, Source: models.SourceDesktopML}))

	pending, err := f.tagger.PendingDesktop(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, vs[2].VideoNo, pending[0].VideoNo)
	assert.Equal(t, vs[1].VideoNo, pending[1].VideoNo)
}

func TestClampPendingLimit(t *testing.T) {
	assert.Equal(t, 1, ClampPendingLimit(0))
	assert.Equal(t, 1, ClampPendingLimit(-3))
	assert.Equal(t, 7, ClampPendingLimit(7))
	assert.Equal(t, 50, ClampPendingLimit(1000))
}
