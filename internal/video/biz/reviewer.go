package biz

import (
	"context"
	"errors"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/metrics"
	"github.com/lk2023060901/ai-video-backend/internal/video/models"
	"go.uber.org/zap"
)

// ReviewTimeout 外部判定服务的调用期限
const ReviewTimeout = 5 * time.Minute

// Reviewer 上传后的不良内容审核，出错一律按不通过处理；被取消时不改动视频行
type Reviewer struct {
	videos     VideoRepo
	store      MediaStore
	classifier Classifier
	tagger     *Tagger
	timeout    time.Duration
	logger     *zap.Logger
}

func NewReviewer(videos VideoRepo, store MediaStore, classifier Classifier, tagger *Tagger, timeout time.Duration, logger *zap.Logger) *Reviewer {
	if timeout <= 0 {
		timeout = ReviewTimeout
	}
	return &Reviewer{
		videos:     videos,
		store:      store,
		classifier: classifier,
		tagger:     tagger,
		timeout:    timeout,
		logger:     logger,
	}
}

// Review 审核单个视频，通过后触发图片打标签。
// 只有读取或写入视频行失败时返回错误，供队列重试；视频已删除时直接丢弃。
// ctx 被取消时原样返回 ctx 的错误，审核状态保持不变。
func (r *Reviewer) Review(ctx context.Context, videoNo int64) error {
	log := r.logger.With(zap.Int64("video_no", videoNo))

	video, err := r.videos.FindByID(ctx, videoNo)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			log.Warn("review target no longer exists")
			return nil
		}
		return err
	}

	data, err := r.store.ReadAll(video.FilePath)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		log.Warn("video file unreadable, holding", zap.String("path", video.FilePath), zap.Error(err))
		return r.settle(ctx, log, videoNo, true, "unreadable")
	}

	harmful, err := r.classify(ctx, log, data)
	if err != nil {
		log.Warn("review interrupted, status left unchanged", zap.Error(err))
		return err
	}
	outcome := "approved"
	if harmful {
		outcome = "harmful"
	}
	if err := r.settle(ctx, log, videoNo, harmful, outcome); err != nil || harmful {
		return err
	}

	if r.tagger != nil {
		if err := r.tagger.TagVideo(ctx, videoNo); err != nil {
			log.Warn("image tagging failed", zap.Error(err))
		}
	}
	return nil
}

// classify 判定失败或超时按不良处理；只有上层 ctx 被取消时返回错误
func (r *Reviewer) classify(ctx context.Context, log *zap.Logger, data []byte) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	explicit, err := r.classifier.IsExplicit(callCtx, data)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	if err != nil {
		log.Warn("classifier failed, holding", zap.Error(err))
		return true, nil
	}
	return explicit, nil
}

// settle 一次写入审核状态与屏蔽标记
func (r *Reviewer) settle(ctx context.Context, log *zap.Logger, videoNo int64, harmful bool, outcome string) error {
	status, blocked := models.ReviewApproved, models.FlagNo
	if harmful {
		status, blocked = models.ReviewHeld, models.FlagYes
	}

	if err := r.videos.UpdateReview(ctx, videoNo, status, blocked); err != nil {
		log.Error("failed to persist review result", zap.String("status", status), zap.Error(err))
		return err
	}
	metrics.ReviewsTotal.WithLabelValues(outcome).Inc()
	log.Info("video reviewed", zap.String("status", status), zap.String("blocked", blocked))
	return nil
}
