package biz

import (
	"context"
	"fmt"
	"os"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/metrics"
	"github.com/lk2023060901/ai-video-backend/internal/video/models"
	"go.uber.org/zap"
)

const (
	// DefaultFrameLimit 送给视觉模型的帧数
	DefaultFrameLimit = 3
	// DefaultPendingLimit 桌面端单次拉取的默认数量
	DefaultPendingLimit = 5
	// MaxPendingLimit 桌面端单次拉取上限
	MaxPendingLimit = 50
)

// Tagger 自动打标签：进程内 GPT 图片标签与桌面端 ML 结果
type Tagger struct {
	videos     VideoRepo
	features   FeatureRepo
	store      MediaStore
	extractor  FrameExtractor
	images     ImageTagger
	tx         Transactor
	cache      TagCache
	frameLimit int
	logger     *zap.Logger
}

func NewTagger(
	videos VideoRepo,
	features FeatureRepo,
	store MediaStore,
	extractor FrameExtractor,
	images ImageTagger,
	tx Transactor,
	cache TagCache,
	frameLimit int,
	logger *zap.Logger,
) *Tagger {
	if frameLimit <= 0 {
		frameLimit = DefaultFrameLimit
	}
	return &Tagger{
		videos:     videos,
		features:   features,
		store:      store,
		extractor:  extractor,
		images:     images,
		tx:         tx,
		cache:      cache,
		frameLimit: frameLimit,
		logger:     logger,
	}
}

// TagVideo 抽取前几帧请求图片标签，覆盖 GPT_IMAGE 特征；tag1..tag5 全空时回填
func (t *Tagger) TagVideo(ctx context.Context, videoNo int64) error {
	log := t.logger.With(zap.Int64("video_no", videoNo))

	tags, err := t.imageTags(ctx, videoNo)
	if err != nil {
		metrics.TaggingRunsTotal.WithLabelValues(models.SourceGPTImage, "error").Inc()
		return err
	}
	if len(tags) == 0 {
		metrics.TaggingRunsTotal.WithLabelValues(models.SourceGPTImage, "empty").Inc()
		log.Info("no image tags produced")
		return nil
	}

	doc, err := marshalDoc(GPTImageTags{Tags: tags})
	if err != nil {
		return err
	}

	filled := false
	err = t.tx.InTx(ctx, func(ctx context.Context) error {
		video, err := t.videos.FindByIDForUpdate(ctx, videoNo)
		if err != nil {
			return err
		}
		if err := t.replaceFeature(ctx, videoNo, models.SourceGPTImage, doc); err != nil {
			return err
		}
		if !video.TagsEmpty() {
			return nil
		}
		video.SetTags(tags)
		filled = true
		return t.videos.UpdateTags(ctx, video)
	})
	if err != nil {
		metrics.TaggingRunsTotal.WithLabelValues(models.SourceGPTImage, "error").Inc()
		return err
	}

	metrics.TaggingRunsTotal.WithLabelValues(models.SourceGPTImage, "ok").Inc()
	log.Info("image tags saved", zap.Strings("tags", tags), zap.Bool("filled_summary", filled))
	return nil
}

func (t *Tagger) imageTags(ctx context.Context, videoNo int64) ([]string, error) {
	video, err := t.videos.FindByID(ctx, videoNo)
	if err != nil {
		return nil, err
	}
	data, err := t.store.ReadAll(video.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read video file: %w", err)
	}

	frames, err := t.extractor.ExtractFrames(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("extract frames: %w", err)
	}
	defer func() {
		if err := frames.Cleanup(); err != nil {
			t.logger.Warn("failed to clean frame dir", zap.String("dir", frames.Dir), zap.Error(err))
		}
	}()

	paths := frames.Paths
	if len(paths) > t.frameLimit {
		paths = paths[:t.frameLimit]
	}
	if len(paths) == 0 {
		return nil, nil
	}

	images := make([][]byte, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}
		images = append(images, b)
	}

	raw, err := t.images.TagImages(ctx, images)
	if err != nil {
		return nil, fmt.Errorf("tag images: %w", err)
	}
	return NormalizeTags(raw, MaxSummaryTags), nil
}

// replaceFeature 同一 (videoNo, source) 先删后插，提交后失效标签缓存
func (t *Tagger) replaceFeature(ctx context.Context, videoNo int64, source string, doc []byte) error {
	if err := t.features.DeleteByVideoAndSource(ctx, videoNo, source); err != nil {
		return err
	}
	err := t.features.Save(ctx, &models.VideoFeature{
		VideoNo:  videoNo,
		Source:   source,
		TagsJSON: models.RawJSON(doc),
	})
	if err != nil {
		return err
	}
	if t.cache != nil {
		database.AfterCommit(ctx, func(context.Context) {
			t.cache.Invalidate(videoNo)
		})
	}
	return nil
}

// SaveDesktopTags 保存桌面端结果并改写 tag1..tag3，tag4 与 tag5 清空
func (t *Tagger) SaveDesktopTags(ctx context.Context, videoNo int64, doc *DesktopMLTags) ([]string, error) {
	payload, err := marshalDoc(doc)
	if err != nil {
		return nil, err
	}
	chosen := SelectDesktopTags(doc)

	err = t.tx.InTx(ctx, func(ctx context.Context) error {
		video, err := t.videos.FindByIDForUpdate(ctx, videoNo)
		if err != nil {
			return err
		}
		if err := t.replaceFeature(ctx, videoNo, models.SourceDesktopML, payload); err != nil {
			return err
		}
		video.SetTags(chosen)
		return t.videos.UpdateTags(ctx, video)
	})
	if err != nil {
		metrics.TaggingRunsTotal.WithLabelValues(models.SourceDesktopML, "error").Inc()
		return nil, err
	}

	metrics.TaggingRunsTotal.WithLabelValues(models.SourceDesktopML, "ok").Inc()
	t.logger.Info("desktop tags saved",
		zap.Int64("video_no", videoNo),
		zap.Strings("tags", chosen),
		zap.Int("frame_count", doc.FrameCount),
	)
	return chosen, nil
}

// ClampPendingLimit 限制在 [1, 50]，0 以下按 1 处理
func ClampPendingLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxPendingLimit {
		return MaxPendingLimit
	}
	return limit
}

// PendingDesktop 最近 200 个公开视频中尚无 DESKTOP_ML 特征的视频
func (t *Tagger) PendingDesktop(ctx context.Context, limit int) ([]*models.Video, error) {
	limit = ClampPendingLimit(limit)

	recent, err := t.videos.ListRecentPublic(ctx, PublicWindow)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return []*models.Video{}, nil
	}

	ids := make([]int64, len(recent))
	for i, v := range recent {
		ids[i] = v.VideoNo
	}
	done, err := t.features.VideosWithSource(ctx, ids, models.SourceDesktopML)
	if err != nil {
		return nil, err
	}

	pending := make([]*models.Video, 0, limit)
	for _, v := range recent {
		if len(pending) >= limit {
			break
		}
		if !done[v.VideoNo] {
			pending = append(pending, v)
		}
	}
	return pending, nil
}
