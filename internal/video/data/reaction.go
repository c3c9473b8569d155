package data

import (
	"context"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-video-backend/internal/video/biz"
	"github.com/lk2023060901/ai-video-backend/internal/video/models"
)

type reactionRepo struct {
	db *database.DB
}

// NewReactionRepo 创建赞踩仓储
func NewReactionRepo(db *database.DB) biz.ReactionRepo {
	return &reactionRepo{db: db}
}

// Find 不存在时返回 nil, nil
func (r *reactionRepo) Find(ctx context.Context, videoNo, userNo int64) (*models.VideoReaction, error) {
	var rows []*models.VideoReaction
	err := r.db.GetDBFromContext(ctx).
		Where("video_no = ? AND user_no = ?", videoNo, userNo).
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *reactionRepo) Save(ctx context.Context, x *models.VideoReaction) error {
	return r.db.GetDBFromContext(ctx).Save(x).Error
}

func (r *reactionRepo) Delete(ctx context.Context, reactionNo int64) error {
	return r.db.GetDBFromContext(ctx).Delete(&models.VideoReaction{}, "reaction_no = ?", reactionNo).Error
}

func (r *reactionRepo) DeleteByVideo(ctx context.Context, videoNo int64) error {
	return r.db.GetDBFromContext(ctx).Delete(&models.VideoReaction{}, "video_no = ?", videoNo).Error
}

func (r *reactionRepo) Count(ctx context.Context, videoNo int64, reactionType string) (int64, error) {
	var n int64
	err := r.db.GetDBFromContext(ctx).Model(&models.VideoReaction{}).
		Where("video_no = ? AND reaction_type = ?", videoNo, reactionType).
		Count(&n).Error
	return n, err
}

func (r *reactionRepo) ListByUserAndVideos(ctx context.Context, userNo int64, videoNos []int64) ([]*models.VideoReaction, error) {
	var rows []*models.VideoReaction
	if len(videoNos) == 0 {
		return rows, nil
	}
	err := r.db.GetDBFromContext(ctx).
		Where("user_no = ? AND video_no IN ?", userNo, videoNos).
		Find(&rows).Error
	return rows, err
}
