package data

import (
	"context"
	"strings"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-video-backend/internal/video/biz"
	"github.com/lk2023060901/ai-video-backend/internal/video/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// counterColumns TopPublicBy 允许的排序列
var counterColumns = map[string]bool{
	"like_count":    true,
	"view_count":    true,
	"dislike_count": true,
}

type videoRepo struct {
	db *database.DB
}

// NewVideoRepo 创建 gorm 视频仓储
func NewVideoRepo(db *database.DB) biz.VideoRepo {
	return &videoRepo{db: db}
}

func publicScope(db *gorm.DB) *gorm.DB {
	return db.Where("is_blocked = ? AND review_status = ?", models.FlagNo, models.ReviewApproved)
}

func (r *videoRepo) Create(ctx context.Context, v *models.Video) error {
	return r.db.GetDBFromContext(ctx).Create(v).Error
}

func (r *videoRepo) Save(ctx context.Context, v *models.Video) error {
	return r.db.GetDBFromContext(ctx).Save(v).Error
}

func (r *videoRepo) Delete(ctx context.Context, videoNo int64) error {
	return r.db.GetDBFromContext(ctx).Delete(&models.Video{}, "video_no = ?", videoNo).Error
}

func (r *videoRepo) FindByID(ctx context.Context, videoNo int64) (*models.Video, error) {
	return r.find(r.db.GetDBFromContext(ctx), videoNo)
}

func (r *videoRepo) FindByIDForUpdate(ctx context.Context, videoNo int64) (*models.Video, error) {
	return r.find(r.db.GetDBFromContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), videoNo)
}

func (r *videoRepo) find(db *gorm.DB, videoNo int64) (*models.Video, error) {
	var v models.Video
	if err := db.First(&v, "video_no = ?", videoNo).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrVideoNotFound.WithDetail("%d", videoNo)
		}
		return nil, err
	}
	return &v, nil
}

func (r *videoRepo) ListByUser(ctx context.Context, userNo int64) ([]*models.Video, error) {
	var videos []*models.Video
	err := r.db.GetDBFromContext(ctx).
		Where("user_no = ?", userNo).
		Order("upload_date DESC").
		Find(&videos).Error
	return videos, err
}

func (r *videoRepo) ListRecentPublic(ctx context.Context, limit int) ([]*models.Video, error) {
	var videos []*models.Video
	err := r.db.GetDBFromContext(ctx).
		Scopes(publicScope).
		Order("created_at DESC").
		Limit(limit).
		Find(&videos).Error
	return videos, err
}

func (r *videoRepo) ListByBlocked(ctx context.Context, flag string) ([]*models.Video, error) {
	var videos []*models.Video
	err := r.db.GetDBFromContext(ctx).
		Where("is_blocked = ?", flag).
		Order("upload_date DESC").
		Find(&videos).Error
	return videos, err
}

// SearchPublic 关键字对标题做大小写不敏感匹配，标签命中任意一列即可
func (r *videoRepo) SearchPublic(ctx context.Context, f biz.PublicFilter) (*database.PageResult[*models.Video], error) {
	page, size := database.NormalizePage(f.Page, f.Size)

	scoped := func() *gorm.DB {
		return r.db.GetDBFromContext(ctx).Model(&models.Video{}).Scopes(
			publicScope,
			database.WhereIf(f.Keyword != "", "LOWER(title) LIKE ?", "%"+strings.ToLower(f.Keyword)+"%"),
			database.WhereIf(len(f.Tags) > 0,
				"(tag1 IN ? OR tag2 IN ? OR tag3 IN ? OR tag4 IN ? OR tag5 IN ?)",
				f.Tags, f.Tags, f.Tags, f.Tags, f.Tags),
		)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, err
	}

	var videos []*models.Video
	if err := scoped().Order("upload_date DESC").Scopes(database.Paginate(page, size)).Find(&videos).Error; err != nil {
		return nil, err
	}
	return database.NewPageResult(videos, page, size, total), nil
}

func (r *videoRepo) CountPublic(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetDBFromContext(ctx).Model(&models.Video{}).Scopes(publicScope).Count(&n).Error
	return n, err
}

// TopPublicBy 没有公开视频时返回 nil, nil
func (r *videoRepo) TopPublicBy(ctx context.Context, column string) (*models.Video, error) {
	if !counterColumns[column] {
		return nil, biz.ErrInvalidRequest.WithDetail("%s", column)
	}

	var videos []*models.Video
	err := r.db.GetDBFromContext(ctx).
		Scopes(publicScope).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: true}).
		Order("video_no DESC").
		Limit(1).
		Find(&videos).Error
	if err != nil || len(videos) == 0 {
		return nil, err
	}
	return videos[0], nil
}

func (r *videoRepo) IncreaseViewCount(ctx context.Context, videoNo int64) (int64, error) {
	var count int64
	err := r.db.InTx(ctx, func(ctx context.Context) error {
		db := r.db.GetDBFromContext(ctx)
		res := db.Model(&models.Video{}).
			Where("video_no = ?", videoNo).
			UpdateColumn("view_count", gorm.Expr("view_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return biz.ErrVideoNotFound.WithDetail("%d", videoNo)
		}
		return db.Model(&models.Video{}).Where("video_no = ?", videoNo).Pluck("view_count", &count).Error
	})
	return count, err
}

func (r *videoRepo) UpdateReview(ctx context.Context, videoNo int64, status, blocked string) error {
	return r.updates(ctx, videoNo, map[string]any{"review_status": status, "is_blocked": blocked})
}

func (r *videoRepo) UpdateBlocked(ctx context.Context, videoNo int64, blocked string) error {
	return r.updates(ctx, videoNo, map[string]any{"is_blocked": blocked})
}

func (r *videoRepo) UpdateCounters(ctx context.Context, videoNo int64, likes, dislikes int64) error {
	return r.updates(ctx, videoNo, map[string]any{"like_count": likes, "dislike_count": dislikes})
}

// UpdateTags 写入全部五列，nil 会写成 NULL
func (r *videoRepo) UpdateTags(ctx context.Context, v *models.Video) error {
	return r.updates(ctx, v.VideoNo, map[string]any{
		"tag1": v.Tag1,
		"tag2": v.Tag2,
		"tag3": v.Tag3,
		"tag4": v.Tag4,
		"tag5": v.Tag5,
	})
}

func (r *videoRepo) updates(ctx context.Context, videoNo int64, values map[string]any) error {
	res := r.db.GetDBFromContext(ctx).Model(&models.Video{}).Where("video_no = ?", videoNo).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return biz.ErrVideoNotFound.WithDetail("%d", videoNo)
	}
	return nil
}
