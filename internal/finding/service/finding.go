package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/ai-video-backend/internal/finding/biz"
	"github.com/lk2023060901/ai-video-backend/internal/finding/types"
	apperrors "github.com/lk2023060901/ai-video-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// Searcher 提示词检索
type Searcher interface {
	Search(ctx context.Context, prompt, sortKey string) (*biz.SearchResult, error)
}

// FindingService 提示词检索接口 (/api/finding)
type FindingService struct {
	matcher Searcher
	logger  *zap.Logger
}

func NewFindingService(matcher Searcher, logger *zap.Logger) *FindingService {
	return &FindingService{matcher: matcher, logger: logger}
}

// RegisterRoutes limiter 为限流中间件，可为 nil
func (s *FindingService) RegisterRoutes(r *gin.RouterGroup, optional, limiter gin.HandlerFunc) {
	g := r.Group("/finding", optional)
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/search", s.Search)
}

func (s *FindingService) Search(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "요청 형식이 올바르지 않습니다.")
		return
	}

	result, err := s.matcher.Search(c.Request.Context(), req.Prompt, req.Sort)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.FromResult(result))
}

func (s *FindingService) handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus() >= http.StatusInternalServerError {
		s.logger.Error("prompt search failed", zap.Error(err))
	}
	response.HandleError(c, err)
}
