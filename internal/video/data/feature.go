package data

import (
	"context"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-video-backend/internal/video/biz"
	"github.com/lk2023060901/ai-video-backend/internal/video/models"
)

type featureRepo struct {
	db *database.DB
}

// NewFeatureRepo 创建特征仓储
func NewFeatureRepo(db *database.DB) biz.FeatureRepo {
	return &featureRepo{db: db}
}

func (r *featureRepo) ListByVideo(ctx context.Context, videoNo int64) ([]*models.VideoFeature, error) {
	var rows []*models.VideoFeature
	err := r.db.GetDBFromContext(ctx).
		Where("video_no = ?", videoNo).
		Order("feature_no ASC").
		Find(&rows).Error
	return rows, err
}

func (r *featureRepo) ListByVideos(ctx context.Context, videoNos []int64) ([]*models.VideoFeature, error) {
	var rows []*models.VideoFeature
	if len(videoNos) == 0 {
		return rows, nil
	}
	err := r.db.GetDBFromContext(ctx).
		Where("video_no IN ?", videoNos).
		Order("video_no, feature_no ASC").
		Find(&rows).Error
	return rows, err
}

func (r *featureRepo) ExistsByVideoAndSource(ctx context.Context, videoNo int64, source string) (bool, error) {
	var n int64
	err := r.db.GetDBFromContext(ctx).Model(&models.VideoFeature{}).
		Where("video_no = ? AND source = ?", videoNo, source).
		Count(&n).Error
	return n > 0, err
}

func (r *featureRepo) VideosWithSource(ctx context.Context, videoNos []int64, source string) (map[int64]bool, error) {
	out := make(map[int64]bool)
	if len(videoNos) == 0 {
		return out, nil
	}

	var ids []int64
	err := r.db.GetDBFromContext(ctx).Model(&models.VideoFeature{}).
		Where("video_no IN ? AND source = ?", videoNos, source).
		Pluck("video_no", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *featureRepo) DeleteByVideo(ctx context.Context, videoNo int64) error {
	return r.db.GetDBFromContext(ctx).Delete(&models.VideoFeature{}, "video_no = ?", videoNo).Error
}

func (r *featureRepo) DeleteByVideoAndSource(ctx context.Context, videoNo int64, source string) error {
	return r.db.GetDBFromContext(ctx).
		Delete(&models.VideoFeature{}, "video_no = ? AND source = ?", videoNo, source).Error
}

func (r *featureRepo) Save(ctx context.Context, f *models.VideoFeature) error {
	return r.db.GetDBFromContext(ctx).Create(f).Error
}
