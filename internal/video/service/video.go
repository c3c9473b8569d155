package service

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/ai-video-backend/internal/auth/middleware"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
	apperrors "github.com/lk2023060901/ai-video-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/response"
	"github.com/lk2023060901/ai-video-backend/internal/video/biz"
	"github.com/lk2023060901/ai-video-backend/internal/video/types"
	"go.uber.org/zap"
)

// MaxUploadTags 上传时只取前五个标签
const MaxUploadTags = 5

// VideoService 视频接口 (/api/videos)
type VideoService struct {
	videos *biz.VideoUseCase
	tagger *biz.Tagger
	logger *zap.Logger
}

func NewVideoService(videos *biz.VideoUseCase, tagger *biz.Tagger, logger *zap.Logger) *VideoService {
	return &VideoService{
		videos: videos,
		tagger: tagger,
		logger: logger,
	}
}

// RegisterRoutes GET 接口公开（可带 token），其余需要登录
func (s *VideoService) RegisterRoutes(r *gin.RouterGroup, authed, optional gin.HandlerFunc) {
	g := r.Group("/videos")
	{
		g.GET("/public", optional, s.Gallery)
		g.GET("/home-summary", optional, s.HomeSummary)
		g.GET("/my", optional, s.ListMine)
		g.GET("/:videoNo/stream", optional, s.Stream)
		g.GET("/features/pending-desktop", optional, s.PendingDesktop)

		g.POST("", authed, s.Upload)
		g.PATCH("/:videoNo", authed, s.Update)
		g.DELETE("/:videoNo", authed, s.Delete)
		g.PATCH("/:videoNo/reaction", authed, s.ToggleReaction)
		g.POST("/:videoNo/view", authed, s.IncreaseView)
		g.POST("/features/auto-tags", authed, s.SaveAutoTags)
	}
}

func (s *VideoService) Upload(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		response.BadRequest(c, "title은(는) 필수입니다.")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file은(는) 필수입니다.")
		return
	}

	var description *string
	if d, ok := c.GetPostForm("description"); ok {
		description = &d
	}

	tags := c.PostFormArray("tags")
	if len(tags) == 0 {
		tags = c.PostFormArray("tags[]")
	}
	if len(tags) > MaxUploadTags {
		tags = tags[:MaxUploadTags]
	}

	file, err := fh.Open()
	if err != nil {
		s.handleError(c, err)
		return
	}
	defer file.Close()

	video, err := s.videos.Upload(c.Request.Context(), biz.UploadInput{
		UserID:      userID,
		Title:       title,
		Description: description,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     file,
		Tags:        tags,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.FromVideo(video))
}

func (s *VideoService) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "인증이 필요합니다.")
		return
	}

	videos, err := s.videos.ListMine(c.Request.Context(), userID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.FromVideos(videos))
}

func (s *VideoService) Gallery(c *gin.Context) {
	page := queryInt(c, "page", types.DefaultGalleryPage)
	size := queryInt(c, "size", types.DefaultGallerySize)
	userID, _ := middleware.GetUserID(c)

	result, err := s.videos.Gallery(c.Request.Context(), userID, biz.PublicFilter{
		Keyword: c.Query("keyword"),
		Tags:    splitTags(c.Query("tags")),
		Page:    page,
		Size:    size,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, database.MapPage(result, types.FromGalleryItem))
}

func (s *VideoService) HomeSummary(c *gin.Context) {
	summary, err := s.videos.HomeSummary(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.FromHomeSummary(summary))
}

func (s *VideoService) Stream(c *gin.Context) {
	videoNo, ok := videoNoParam(c)
	if !ok {
		return
	}

	video, rc, size, err := s.videos.OpenStream(c.Request.Context(), videoNo)
	if err != nil {
		s.handleError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, size, video.ContentType, rc, map[string]string{
		"Content-Disposition": `inline; filename="` + url.QueryEscape(video.FileName) + `"`,
	})
}

func (s *VideoService) Update(c *gin.Context) {
	videoNo, ok := videoNoParam(c)
	if !ok {
		return
	}
	var req types.UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "요청 형식이 올바르지 않습니다.")
		return
	}

	userID, _ := middleware.GetUserID(c)
	video, err := s.videos.Update(c.Request.Context(), userID, videoNo, biz.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.FromVideo(video))
}

func (s *VideoService) Delete(c *gin.Context) {
	videoNo, ok := videoNoParam(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := s.videos.Delete(c.Request.Context(), userID, videoNo); err != nil {
		s.handleError(c, err)
		return
	}
	response.NoContent(c)
}

func (s *VideoService) ToggleReaction(c *gin.Context) {
	videoNo, ok := videoNoParam(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := s.videos.ToggleReaction(c.Request.Context(), userID, videoNo, c.Query("action"))
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, &types.ReactionResponse{
		LikeCount:    result.LikeCount,
		DislikeCount: result.DislikeCount,
		MyReaction:   result.MyReaction,
	})
}

func (s *VideoService) IncreaseView(c *gin.Context) {
	videoNo, ok := videoNoParam(c)
	if !ok {
		return
	}

	count, err := s.videos.IncreaseView(c.Request.Context(), videoNo)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, &types.ViewCountResponse{ViewCount: count})
}

func (s *VideoService) PendingDesktop(c *gin.Context) {
	limit := queryInt(c, "limit", biz.DefaultPendingLimit)

	videos, err := s.tagger.PendingDesktop(c.Request.Context(), limit)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.FromPending(videos))
}

func (s *VideoService) SaveAutoTags(c *gin.Context) {
	var req types.AutoTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "요청 형식이 올바르지 않습니다.")
		return
	}
	if req.VideoNo == nil {
		response.BadRequest(c, "videoNo는 필수입니다.")
		return
	}

	tags, err := s.tagger.SaveDesktopTags(c.Request.Context(), *req.VideoNo, req.Doc())
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, &types.AutoTagsResponse{VideoNo: *req.VideoNo, Tags: tags})
}

func (s *VideoService) handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus() >= http.StatusInternalServerError {
		s.logger.Error("video operation failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.HandleError(c, err)
}

func videoNoParam(c *gin.Context) (int64, bool) {
	videoNo, err := strconv.ParseInt(c.Param("videoNo"), 10, 64)
	if err != nil || videoNo <= 0 {
		response.BadRequest(c, "videoNo 값이 올바르지 않습니다.")
		return 0, false
	}
	return videoNo, true
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// splitTags 逗号分隔的标签参数
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
