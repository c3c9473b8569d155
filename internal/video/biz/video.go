package biz

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
	apperrors "github.com/lk2023060901/ai-video-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-video-backend/internal/video/models"
	"go.uber.org/zap"
)

// UploadInput 上传参数
type UploadInput struct {
	UserID      string
	Title       string
	Description *string
	FileName    string
	ContentType string
	Content     io.Reader
	Tags        []string
}

// UpdateInput 修改标题与简介，nil 表示不修改
type UpdateInput struct {
	Title       *string
	Description *string
}

// GalleryItem 画廊条目，附带当前用户的反应
type GalleryItem struct {
	Video      *models.Video
	MyReaction *string
}

// HomeSummary 首页汇总
type HomeSummary struct {
	TotalCount  int64
	TopLiked    *models.Video
	TopViewed   *models.Video
	TopDisliked *models.Video
}

// VideoUseCase 视频目录相关用例
type VideoUseCase struct {
	videos    VideoRepo
	features  FeatureRepo
	reactions ReactionRepo
	store     MediaStore
	review    ReviewDispatcher
	users     UserResolver
	tx        Transactor
	logger    *zap.Logger
	now       func() time.Time
}

func NewVideoUseCase(
	videos VideoRepo,
	features FeatureRepo,
	reactions ReactionRepo,
	store MediaStore,
	review ReviewDispatcher,
	users UserResolver,
	tx Transactor,
	logger *zap.Logger,
) *VideoUseCase {
	return &VideoUseCase{
		videos:    videos,
		features:  features,
		reactions: reactions,
		store:     store,
		review:    review,
		users:     users,
		tx:        tx,
		logger:    logger,
		now:       time.Now,
	}
}

// Upload 保存文件并创建待审核记录，事务提交后投递审核任务
func (uc *VideoUseCase) Upload(ctx context.Context, in UploadInput) (*models.Video, error) {
	userNo, err := uc.users.ResolveUserNo(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	stored, err := uc.store.Put(ctx, userNo, in.Content, in.FileName, in.ContentType)
	if err != nil {
		uc.logger.Error("failed to store video file", zap.Int64("user_no", userNo), zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrVideoStorageFailed)
	}

	now := uc.now()
	video := &models.Video{
		UserNo:       userNo,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		FileName:     in.FileName,
		ContentType:  stored.ContentType,
		FileSize:     stored.Size,
		FilePath:     stored.Path,
		IsBlocked:    models.FlagNo,
		ReviewStatus: models.ReviewPending,
		UploadDate:   now,
	}
	video.SetTags(in.Tags)

	err = uc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := uc.videos.Create(ctx, video); err != nil {
			return err
		}
		videoNo := video.VideoNo
		database.AfterCommit(ctx, func(ctx context.Context) {
			if err := uc.review.Dispatch(context.WithoutCancel(ctx), videoNo); err != nil {
				uc.logger.Error("failed to dispatch review", zap.Int64("video_no", videoNo), zap.Error(err))
			}
		})
		return nil
	})
	if err != nil {
		if delErr := uc.store.Delete(ctx, stored.Path); delErr != nil {
			uc.logger.Warn("failed to remove orphan file", zap.String("path", stored.Path), zap.Error(delErr))
		}
		return nil, err
	}

	uc.logger.Info("video uploaded",
		zap.Int64("video_no", video.VideoNo),
		zap.Int64("user_no", userNo),
		zap.Int64("size", stored.Size),
	)
	return video, nil
}

// ListMine 当前用户的视频，按上传时间倒序
func (uc *VideoUseCase) ListMine(ctx context.Context, userID string) ([]*models.Video, error) {
	userNo, err := uc.users.ResolveUserNo(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.videos.ListByUser(ctx, userNo)
}

// Gallery 公开视频分页，userID 非空时附带该用户的反应
func (uc *VideoUseCase) Gallery(ctx context.Context, userID string, filter PublicFilter) (*database.PageResult[*GalleryItem], error) {
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	filter.Tags = TrimTags(filter.Tags)

	page, err := uc.videos.SearchPublic(ctx, filter)
	if err != nil {
		return nil, err
	}

	mine := map[int64]string{}
	if userID != "" && len(page.Content) > 0 {
		mine, err = uc.myReactions(ctx, userID, page.Content)
		if err != nil {
			return nil, err
		}
	}

	return database.MapPage(page, func(v *models.Video) *GalleryItem {
		item := &GalleryItem{Video: v}
		if r, ok := mine[v.VideoNo]; ok {
			item.MyReaction = &r
		}
		return item
	}), nil
}

// myReactions 一次查询取回当前页的全部反应
func (uc *VideoUseCase) myReactions(ctx context.Context, userID string, videos []*models.Video) (map[int64]string, error) {
	userNo, err := uc.users.ResolveUserNo(ctx, userID)
	if err != nil {
		// token 对应的账号已不存在时按未登录处理
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return map[int64]string{}, nil
		}
		return nil, err
	}

	ids := make([]int64, len(videos))
	for i, v := range videos {
		ids[i] = v.VideoNo
	}
	reactions, err := uc.reactions.ListByUserAndVideos(ctx, userNo, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]string, len(reactions))
	for _, r := range reactions {
		out[r.VideoNo] = r.ReactionType
	}
	return out, nil
}

// Get 按编号查询
func (uc *VideoUseCase) Get(ctx context.Context, videoNo int64) (*models.Video, error) {
	return uc.videos.FindByID(ctx, videoNo)
}

// Update 仅作者可修改，空白标题忽略
func (uc *VideoUseCase) Update(ctx context.Context, userID string, videoNo int64, in UpdateInput) (*models.Video, error) {
	video, err := uc.ownedVideo(ctx, userID, videoNo)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if title := strings.TrimSpace(*in.Title); title != "" {
			video.Title = title
		}
	}
	if in.Description != nil {
		video.Description = in.Description
	}

	if err := uc.videos.Save(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// Delete 作者删除：先删特征、反应与视频行，提交后尽力删除文件
func (uc *VideoUseCase) Delete(ctx context.Context, userID string, videoNo int64) error {
	video, err := uc.ownedVideo(ctx, userID, videoNo)
	if err != nil {
		return err
	}

	return uc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := uc.deleteRows(ctx, videoNo); err != nil {
			return err
		}
		path := video.FilePath
		database.AfterCommit(ctx, func(ctx context.Context) {
			if err := uc.store.Delete(context.WithoutCancel(ctx), path); err != nil {
				uc.logger.Warn("failed to delete video file", zap.Int64("video_no", videoNo), zap.String("path", path), zap.Error(err))
			}
		})
		return nil
	})
}

func (uc *VideoUseCase) deleteRows(ctx context.Context, videoNo int64) error {
	if err := uc.features.DeleteByVideo(ctx, videoNo); err != nil {
		return err
	}
	if err := uc.reactions.DeleteByVideo(ctx, videoNo); err != nil {
		return err
	}
	return uc.videos.Delete(ctx, videoNo)
}

func (uc *VideoUseCase) ownedVideo(ctx context.Context, userID string, videoNo int64) (*models.Video, error) {
	userNo, err := uc.users.ResolveUserNo(ctx, userID)
	if err != nil {
		return nil, err
	}
	video, err := uc.videos.FindByID(ctx, videoNo)
	if err != nil {
		return nil, err
	}
	if video.UserNo != userNo {
		return nil, ErrNotOwner
	}
	return video, nil
}

// OpenStream 打开视频文件，文件缺失时返回 ErrFileMissing
func (uc *VideoUseCase) OpenStream(ctx context.Context, videoNo int64) (*models.Video, io.ReadCloser, int64, error) {
	video, err := uc.videos.FindByID(ctx, videoNo)
	if err != nil {
		return nil, nil, 0, err
	}

	rc, size, err := uc.store.Open(video.FilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, 0, ErrFileMissing
		}
		return nil, nil, 0, err
	}
	return video, rc, size, nil
}

// IncreaseView 播放数加一并返回新值
func (uc *VideoUseCase) IncreaseView(ctx context.Context, videoNo int64) (int64, error) {
	return uc.videos.IncreaseViewCount(ctx, videoNo)
}

// HomeSummary 公开视频总数与三项第一名
func (uc *VideoUseCase) HomeSummary(ctx context.Context) (*HomeSummary, error) {
	total, err := uc.videos.CountPublic(ctx)
	if err != nil {
		return nil, err
	}

	summary := &HomeSummary{TotalCount: total}
	tops := []struct {
		column string
		dst    **models.Video
	}{
		{"like_count", &summary.TopLiked},
		{"view_count", &summary.TopViewed},
		{"dislike_count", &summary.TopDisliked},
	}
	for _, t := range tops {
		v, err := uc.videos.TopPublicBy(ctx, t.column)
		if err != nil {
			return nil, err
		}
		*t.dst = v
	}
	return summary, nil
}

// ListBlocked 被屏蔽的视频
func (uc *VideoUseCase) ListBlocked(ctx context.Context) ([]*models.Video, error) {
	return uc.videos.ListByBlocked(ctx, models.FlagYes)
}

// Unblock 管理员放行，只修改屏蔽标记
func (uc *VideoUseCase) Unblock(ctx context.Context, videoNo int64) error {
	if _, err := uc.videos.FindByID(ctx, videoNo); err != nil {
		return err
	}
	if err := uc.videos.UpdateBlocked(ctx, videoNo, models.FlagNo); err != nil {
		return err
	}
	uc.logger.Info("video unblocked by admin", zap.Int64("video_no", videoNo))
	return nil
}

// ForceDelete 管理员删除，只删数据库行
func (uc *VideoUseCase) ForceDelete(ctx context.Context, videoNo int64) error {
	if _, err := uc.videos.FindByID(ctx, videoNo); err != nil {
		return err
	}
	if err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		return uc.deleteRows(ctx, videoNo)
	}); err != nil {
		return err
	}
	uc.logger.Info("video deleted by admin", zap.Int64("video_no", videoNo))
	return nil
}
