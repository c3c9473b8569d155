package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/ai-video-backend/internal/auth"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// 上下文键
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// TokenVerifier 校验 access token
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.JWTClaims, error)
}

// JWTAuth JWT 认证中间件，未认证返回 401
func JWTAuth(verifier TokenVerifier, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "인증이 필요합니다.")
			return
		}

		token, err := auth.ExtractTokenFromHeader(authHeader)
		if err != nil {
			response.Unauthorized(c, "인증이 필요합니다.")
			return
		}

		claims, err := verifier.VerifyAccessToken(token)
		if err != nil {
			log.Warn("invalid access token",
				zap.Error(err),
				zap.String("ip", c.ClientIP()))
			response.Unauthorized(c, "유효하지 않은 토큰입니다.")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth 可选的 JWT 认证中间件（token 无效不拦截）
func OptionalJWTAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		token, err := auth.ExtractTokenFromHeader(authHeader)
		if err != nil {
			c.Next()
			return
		}

		claims, err := verifier.VerifyAccessToken(token)
		if err != nil {
			c.Next()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequireRole 角色验证中间件（需要先经过 JWTAuth）
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			response.Forbidden(c, "접근 권한이 없습니다.")
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "접근 권한이 없습니다.")
	}
}

func setClaims(c *gin.Context, claims *auth.JWTClaims) {
	c.Set(ContextUserID, claims.Subject)
	c.Set(ContextRole, claims.Role)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.Subject))
}

// GetUserID 从上下文获取登录 ID
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserID)
	return userID, userID != ""
}

// GetRole 从上下文获取角色
func GetRole(c *gin.Context) string {
	return c.GetString(ContextRole)
}
