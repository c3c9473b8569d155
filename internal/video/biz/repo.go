package biz

import (
	"context"
	"io"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/ffmpeg"
	"github.com/lk2023060901/ai-video-backend/internal/video/models"
)

// PublicWindow 匹配器与桌面端拉取使用的最近公开视频数量
const PublicWindow = 200

// PublicFilter 公开视频检索条件
type PublicFilter struct {
	Keyword string
	Tags    []string
	Page    int
	Size    int
}

// VideoRepo 视频目录
type VideoRepo interface {
	Create(ctx context.Context, v *models.Video) error
	Save(ctx context.Context, v *models.Video) error
	Delete(ctx context.Context, videoNo int64) error
	FindByID(ctx context.Context, videoNo int64) (*models.Video, error)
	// FindByIDForUpdate 在事务中加行锁读取
	FindByIDForUpdate(ctx context.Context, videoNo int64) (*models.Video, error)
	ListByUser(ctx context.Context, userNo int64) ([]*models.Video, error)
	ListRecentPublic(ctx context.Context, limit int) ([]*models.Video, error)
	ListByBlocked(ctx context.Context, flag string) ([]*models.Video, error)
	SearchPublic(ctx context.Context, filter PublicFilter) (*database.PageResult[*models.Video], error)
	CountPublic(ctx context.Context) (int64, error)
	// TopPublicBy 按计数列取第一名，column 为 like_count / view_count / dislike_count
	TopPublicBy(ctx context.Context, column string) (*models.Video, error)
	IncreaseViewCount(ctx context.Context, videoNo int64) (int64, error)
	UpdateReview(ctx context.Context, videoNo int64, status, blocked string) error
	UpdateBlocked(ctx context.Context, videoNo int64, blocked string) error
	UpdateCounters(ctx context.Context, videoNo int64, likes, dislikes int64) error
	UpdateTags(ctx context.Context, v *models.Video) error
}

// FeatureRepo 特征存储
type FeatureRepo interface {
	ListByVideo(ctx context.Context, videoNo int64) ([]*models.VideoFeature, error)
	ListByVideos(ctx context.Context, videoNos []int64) ([]*models.VideoFeature, error)
	ExistsByVideoAndSource(ctx context.Context, videoNo int64, source string) (bool, error)
	// VideosWithSource 返回给定视频中已有该来源特征的 videoNo
	VideosWithSource(ctx context.Context, videoNos []int64, source string) (map[int64]bool, error)
	DeleteByVideo(ctx context.Context, videoNo int64) error
	DeleteByVideoAndSource(ctx context.Context, videoNo int64, source string) error
	Save(ctx context.Context, f *models.VideoFeature) error
}

// ReactionRepo 赞踩记录
type ReactionRepo interface {
	Find(ctx context.Context, videoNo, userNo int64) (*models.VideoReaction, error)
	Save(ctx context.Context, r *models.VideoReaction) error
	Delete(ctx context.Context, reactionNo int64) error
	DeleteByVideo(ctx context.Context, videoNo int64) error
	Count(ctx context.Context, videoNo int64, reactionType string) (int64, error)
	ListByUserAndVideos(ctx context.Context, userNo int64, videoNos []int64) ([]*models.VideoReaction, error)
}

// StoredFile 媒体存储写入结果
type StoredFile struct {
	Path        string
	StoredName  string
	Size        int64
	ContentType string
}

// MediaStore 视频文件存储
type MediaStore interface {
	Put(ctx context.Context, userNo int64, src io.Reader, originalName, contentType string) (*StoredFile, error)
	Open(path string) (io.ReadCloser, int64, error)
	ReadAll(path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// ReviewDispatcher 审核任务投递
type ReviewDispatcher interface {
	Dispatch(ctx context.Context, videoNo int64) error
}

// TagCache 特征标签缓存，特征写入提交后按视频失效
type TagCache interface {
	Invalidate(videoNo int64)
}

// Transactor 事务入口
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserResolver 登录 ID 到 userNo 的解析
type UserResolver interface {
	ResolveUserNo(ctx context.Context, userID string) (int64, error)
}

// Classifier 不良内容判定
type Classifier interface {
	IsExplicit(ctx context.Context, video []byte) (bool, error)
}

// ImageTagger 多帧图片打标签
type ImageTagger interface {
	TagImages(ctx context.Context, jpegs [][]byte) ([]string, error)
}

// FrameExtractor 抽帧，由 ffmpeg.Extractor 实现
type FrameExtractor interface {
	ExtractFrames(ctx context.Context, video []byte) (*ffmpeg.Frames, error)
}
