package types

import (
	"github.com/lk2023060901/ai-video-backend/internal/pkg/response"
	"github.com/lk2023060901/ai-video-backend/internal/video/biz"
	"github.com/lk2023060901/ai-video-backend/internal/video/models"
)

// 画廊默认分页
const (
	DefaultGalleryPage = 0
	DefaultGallerySize = 36
)

// UpdateVideoRequest 修改标题与简介
type UpdateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// VideoResponse 上传、修改与“我的视频”返回的完整信息
type VideoResponse struct {
	VideoNo      int64   `json:"videoNo"`
	UserNo       int64   `json:"userNo"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	FileName     string  `json:"fileName"`
	ContentType  string  `json:"contentType"`
	FileSize     int64   `json:"fileSize"`
	Tag1         *string `json:"tag1"`
	Tag2         *string `json:"tag2"`
	Tag3         *string `json:"tag3"`
	Tag4         *string `json:"tag4"`
	Tag5         *string `json:"tag5"`
	ViewCount    int64   `json:"viewCount"`
	LikeCount    int64   `json:"likeCount"`
	DislikeCount int64   `json:"dislikeCount"`
	ReviewStatus string  `json:"reviewStatus"`
	UploadDate   string  `json:"uploadDate"`
	Blocked      bool    `json:"blocked"`
}

func FromVideo(v *models.Video) *VideoResponse {
	return &VideoResponse{
		VideoNo:      v.VideoNo,
		UserNo:       v.UserNo,
		Title:        v.Title,
		Description:  v.Description,
		FileName:     v.FileName,
		ContentType:  v.ContentType,
		FileSize:     v.FileSize,
		Tag1:         v.Tag1,
		Tag2:         v.Tag2,
		Tag3:         v.Tag3,
		Tag4:         v.Tag4,
		Tag5:         v.Tag5,
		ViewCount:    v.ViewCount,
		LikeCount:    v.LikeCount,
		DislikeCount: v.DislikeCount,
		ReviewStatus: v.ReviewStatus,
		UploadDate:   response.FormatTime(v.UploadDate),
		Blocked:      v.IsBlocked == models.FlagYes,
	}
}

func FromVideos(videos []*models.Video) []*VideoResponse {
	out := make([]*VideoResponse, len(videos))
	for i, v := range videos {
		out[i] = FromVideo(v)
	}
	return out
}

// VideoSummary 画廊条目
type VideoSummary struct {
	VideoNo      int64   `json:"videoNo"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	MyReaction   *string `json:"myReaction"`
	UploadDate   string  `json:"uploadDate"`
	ViewCount    int64   `json:"viewCount"`
	LikeCount    int64   `json:"likeCount"`
	DislikeCount int64   `json:"dislikeCount"`
	Tag1         *string `json:"tag1"`
	Tag2         *string `json:"tag2"`
	Tag3         *string `json:"tag3"`
	Tag4         *string `json:"tag4"`
	Tag5         *string `json:"tag5"`
	ReviewStatus string  `json:"reviewStatus"`
	IsBlocked    string  `json:"isBlocked"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

func FromGalleryItem(item *biz.GalleryItem) *VideoSummary {
	v := item.Video
	return &VideoSummary{
		VideoNo:      v.VideoNo,
		Title:        v.Title,
		Description:  v.Description,
		MyReaction:   item.MyReaction,
		UploadDate:   response.FormatTime(v.UploadDate),
		ViewCount:    v.ViewCount,
		LikeCount:    v.LikeCount,
		DislikeCount: v.DislikeCount,
		Tag1:         v.Tag1,
		Tag2:         v.Tag2,
		Tag3:         v.Tag3,
		Tag4:         v.Tag4,
		Tag5:         v.Tag5,
		ReviewStatus: v.ReviewStatus,
		IsBlocked:    v.IsBlocked,
	}
}

// HomeVideoItem 首页卡片，缩略图与上传者昵称暂未提供
type HomeVideoItem struct {
	VideoNo          int64    `json:"videoNo"`
	Title            string   `json:"title"`
	Description      *string  `json:"description"`
	ThumbnailURL     *string  `json:"thumbnailUrl"`
	VideoURL         *string  `json:"videoUrl"`
	LikeCount        int64    `json:"likeCount"`
	DislikeCount     int64    `json:"dislikeCount"`
	ViewCount        int64    `json:"viewCount"`
	UploaderNickname *string  `json:"uploaderNickname"`
	CreatedAt        string   `json:"createdAt"`
	Tags             []string `json:"tags"`
}

// HomeSummaryResponse 首页汇总
type HomeSummaryResponse struct {
	TotalCount  int64          `json:"totalCount"`
	TopLiked    *HomeVideoItem `json:"topLiked"`
	TopViewed   *HomeVideoItem `json:"topViewed"`
	TopDisliked *HomeVideoItem `json:"topDisliked"`
}

func homeItem(v *models.Video) *HomeVideoItem {
	if v == nil {
		return nil
	}
	return &HomeVideoItem{
		VideoNo:      v.VideoNo,
		Title:        v.Title,
		Description:  v.Description,
		LikeCount:    v.LikeCount,
		DislikeCount: v.DislikeCount,
		ViewCount:    v.ViewCount,
		CreatedAt:    response.FormatTime(v.CreatedAt),
		Tags:         v.Tags(),
	}
}

func FromHomeSummary(s *biz.HomeSummary) *HomeSummaryResponse {
	return &HomeSummaryResponse{
		TotalCount:  s.TotalCount,
		TopLiked:    homeItem(s.TopLiked),
		TopViewed:   homeItem(s.TopViewed),
		TopDisliked: homeItem(s.TopDisliked),
	}
}

// ReactionResponse 切换反应后的计数
type ReactionResponse struct {
	LikeCount    int64   `json:"likeCount"`
	DislikeCount int64   `json:"dislikeCount"`
	MyReaction   *string `json:"myReaction"`
}

// ViewCountResponse 播放数
type ViewCountResponse struct {
	ViewCount int64 `json:"viewCount"`
}

// PendingVideo 待桌面端打标签的视频
type PendingVideo struct {
	VideoNo    int64  `json:"videoNo"`
	Title      string `json:"title"`
	CreatedAt  string `json:"createdAt"`
	UploadDate string `json:"uploadDate"`
}

func FromPending(videos []*models.Video) []*PendingVideo {
	out := make([]*PendingVideo, len(videos))
	for i, v := range videos {
		out[i] = &PendingVideo{
			VideoNo:    v.VideoNo,
			Title:      v.Title,
			CreatedAt:  response.FormatTime(v.CreatedAt),
			UploadDate: response.FormatTime(v.UploadDate),
		}
	}
	return out
}

// AutoTagsRequest 桌面端推送的识别结果
type AutoTagsRequest struct {
	VideoNo     *int64             `json:"videoNo"`
	MainTag     *biz.ScoredTag     `json:"mainTag"`
	SubTags     []biz.ScoredTag    `json:"subTags"`
	PresentTags []biz.ScoredTag    `json:"presentTags"`
	AllScores   map[string]float64 `json:"allScores"`
	FrameCount  int                `json:"frameCount"`
}

// Doc 转为 DESKTOP_ML 特征文档
func (r *AutoTagsRequest) Doc() *biz.DesktopMLTags {
	return &biz.DesktopMLTags{
		MainTag:     r.MainTag,
		SubTags:     r.SubTags,
		PresentTags: r.PresentTags,
		AllScores:   r.AllScores,
		FrameCount:  r.FrameCount,
	}
}

// AutoTagsResponse 写入 tag1..tag3 的结果
type AutoTagsResponse struct {
	VideoNo int64    `json:"videoNo"`
	Tags    []string `json:"tags"`
}
