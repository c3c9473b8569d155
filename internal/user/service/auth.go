package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/ai-video-backend/internal/auth/middleware"
	apperrors "github.com/lk2023060901/ai-video-backend/internal/pkg/errors"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/response"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/validator"
	"github.com/lk2023060901/ai-video-backend/internal/user/biz"
	"github.com/lk2023060901/ai-video-backend/internal/user/types"
	"go.uber.org/zap"
)

// AuthService 会员认证与资料接口 (/api/auth)
type AuthService struct {
	users    *biz.UserUseCase
	verifier *biz.VerificationUseCase
	logger   *zap.Logger
}

func NewAuthService(users *biz.UserUseCase, verifier *biz.VerificationUseCase, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		verifier: verifier,
		logger:   logger,
	}
}

// RegisterRoutes 注册路由，authed 为需要登录的中间件
func (s *AuthService) RegisterRoutes(r *gin.RouterGroup, authed gin.HandlerFunc) {
	g := r.Group("/auth")
	{
		g.POST("/register", s.Register)
		g.POST("/login", s.Login)
		g.GET("/check-userid", s.CheckUserID)
		g.GET("/check-nickname", s.CheckNickname)
		g.GET("/check-email", s.CheckEmail)
		g.POST("/email/send-code", s.SendEmailCode)
		g.POST("/email/verify-code", s.VerifyEmailCode)

		g.GET("/me", authed, s.Me)
		g.PATCH("/nickname", authed, s.UpdateNickname)
		g.POST("/password", authed, s.ChangePassword)
		g.PATCH("/profile-image", authed, s.UpdateProfileImage)
	}
}

func (s *AuthService) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	user, err := s.users.Register(c.Request.Context(), biz.RegisterInput{
		UserID:       req.UserID,
		Password:     req.Password,
		Nickname:     req.Nickname,
		Email:        req.Email,
		Gender:       req.Gender,
		Age:          req.Age,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.FromUser(user))
}

func (s *AuthService) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	token, user, err := s.users.Login(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, &types.LoginResponse{Token: token, User: types.FromUser(user)})
}

func (s *AuthService) Me(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	user, err := s.users.Me(c.Request.Context(), userID)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.FromUser(user))
}

func (s *AuthService) CheckUserID(c *gin.Context) {
	s.check(c, "userId", "아이디", s.users.IsUserIDAvailable)
}

func (s *AuthService) CheckNickname(c *gin.Context) {
	s.check(c, "nickname", "닉네임", s.users.IsNicknameAvailable)
}

func (s *AuthService) CheckEmail(c *gin.Context) {
	s.check(c, "email", "이메일", s.users.IsEmailAvailable)
}

func (s *AuthService) check(c *gin.Context, param, label string, available func(ctx context.Context, v string) (bool, error)) {
	value := strings.TrimSpace(c.Query(param))
	if value == "" {
		response.BadRequest(c, param+"은(는) 필수입니다.")
		return
	}

	ok, err := available(c.Request.Context(), value)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.NewDuplicateCheckResponse(ok, label))
}

func (s *AuthService) SendEmailCode(c *gin.Context) {
	var req types.EmailCodeSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	if err := s.verifier.SendCode(c.Request.Context(), req.Email); err != nil {
		s.handleError(c, err)
		return
	}
	response.Message(c, "인증번호를 전송했습니다. 이메일을 확인해 주세요.")
}

func (s *AuthService) VerifyEmailCode(c *gin.Context) {
	var req types.EmailCodeVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	if err := s.verifier.VerifyCode(c.Request.Context(), req.Email, req.Code); err != nil {
		s.handleError(c, err)
		return
	}
	response.Message(c, "이메일 인증이 완료되었습니다.")
}

func (s *AuthService) UpdateNickname(c *gin.Context) {
	var req types.NicknameUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	userID, _ := middleware.GetUserID(c)
	user, err := s.users.UpdateNickname(c.Request.Context(), userID, req.Nickname)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.FromUser(user))
}

func (s *AuthService) ChangePassword(c *gin.Context) {
	var req types.PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.Message(err))
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := s.users.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		s.handleError(c, err)
		return
	}
	response.OK(c)
}

func (s *AuthService) UpdateProfileImage(c *gin.Context) {
	var req types.ProfileImageUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "프로필 이미지를 선택해 주세요.")
		return
	}

	userID, _ := middleware.GetUserID(c)
	user, err := s.users.UpdateProfileImage(c.Request.Context(), userID, req.ProfileImage)
	if err != nil {
		s.handleError(c, err)
		return
	}
	response.Success(c, types.FromUser(user))
}

// handleError 业务错误按 AppError 映射，其余记录后返回 500
func (s *AuthService) handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus() >= http.StatusInternalServerError {
		s.logger.Error("auth operation failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.HandleError(c, err)
}
