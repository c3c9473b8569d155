package service

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/ai-video-backend/internal/admin/biz"
	"github.com/lk2023060901/ai-video-backend/internal/admin/types"
	apperrors "github.com/lk2023060901/ai-video-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/response"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/validator"
	"go.uber.org/zap"
)

// AdminService 管理员接口 (/api/admin)
type AdminService struct {
	admins *biz.AdminUseCase
	logger *zap.Logger
}

func NewAdminService(admins *biz.AdminUseCase, logger *zap.Logger) *AdminService {
	return &AdminService{admins: admins, logger: logger}
}

// RegisterRoutes 登录公开，其余接口需要 ADMIN 角色
func (s *AdminService) RegisterRoutes(r *gin.RouterGroup, guards ...gin.HandlerFunc) {
	g := r.Group("/admin")
	g.POST("/login", s.Login)

	m := g.Group("", guards...)
	{
		m.GET("/users", s.ListUsers)
		m.GET("/videos/blocked", s.ListBlockedVideos)
		m.POST("/videos/:videoNo/approve", s.ApproveVideo)
		m.DELETE("/videos/:videoNo", s.DeleteVideo)
	}
}

func (s *AdminService) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	result, err := s.admins.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.FromLogin(result))
}

func (s *AdminService) ListUsers(c *gin.Context) {
	users, err := s.admins.ListUsers(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.FromUsers(users))
}

func (s *AdminService) ListBlockedVideos(c *gin.Context) {
	items, err := s.admins.ListBlockedVideos(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.FromBlocked(items))
}

func (s *AdminService) ApproveVideo(c *gin.Context) {
	videoNo, ok := videoNoParam(c)
	if !ok {
		return
	}
	if err := s.admins.ApproveVideo(c.Request.Context(), videoNo); err != nil {
		s.handleError(c, err)
		return
	}
	response.OK(c)
}

func (s *AdminService) DeleteVideo(c *gin.Context) {
	videoNo, ok := videoNoParam(c)
	if !ok {
		return
	}
	if err := s.admins.DeleteVideo(c.Request.Context(), videoNo); err != nil {
		s.handleError(c, err)
		return
	}
	response.OK(c)
}

func (s *AdminService) handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus() >= http.StatusInternalServerError {
		s.logger.Error("admin operation failed", zap.String("path", c.FullPath()), zap.Error(err))
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
