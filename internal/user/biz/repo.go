package biz

import (
	"context"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/user/models"
)

// UserRepo 用户存储
type UserRepo interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
	GetByUserNo(ctx context.Context, userNo int64) (*models.User, error)
	ListByUserNos(ctx context.Context, userNos []int64) ([]*models.User, error)
	ListAll(ctx context.Context) ([]*models.User, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// VerificationRepo 邮箱验证码存储
type VerificationRepo interface {
	Create(ctx context.Context, v *models.EmailVerification) error
	Update(ctx context.Context, v *models.EmailVerification) error
	// Latest 返回该邮箱最新的一条记录，不存在时返回 nil, nil
	Latest(ctx context.Context, email string) (*models.EmailVerification, error)
}

// Transactor 事务入口，由 database.DB 实现
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TokenIssuer 签发 access token
type TokenIssuer interface {
	GenerateAccessToken(subject, role string) (string, error)
}

// CodeSender 发送验证码邮件
type CodeSender interface {
	SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error
}

// PasswordHasher 密码哈希
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Matches(plain, hash string) bool
}
