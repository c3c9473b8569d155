package biz

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/user/models"
	"go.uber.org/zap"
)

const (
	// CodeTTL 验证码有效期
	CodeTTL = 10 * time.Minute
	// VerifiedWindow 注册前邮箱验证的有效窗口
	VerifiedWindow = 24 * time.Hour
)

// VerificationUseCase 邮箱验证码的发送与校验
type VerificationUseCase struct {
	repo   VerificationRepo
	users  UserRepo
	sender CodeSender
	hasher PasswordHasher
	logger *zap.Logger

	now     func() time.Time
	newCode func() (string, error)
}

func NewVerificationUseCase(repo VerificationRepo, users UserRepo, sender CodeSender, hasher PasswordHasher, logger *zap.Logger) *VerificationUseCase {
	return &VerificationUseCase{
		repo:    repo,
		users:   users,
		sender:  sender,
		hasher:  hasher,
		logger:  logger,
		now:     time.Now,
		newCode: sixDigits,
	}
}

// SendCode 先发送邮件，成功后再保存验证码哈希
func (uc *VerificationUseCase) SendCode(ctx context.Context, rawEmail string) error {
	email := NormalizeEmail(rawEmail)

	exists, err := uc.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailTaken
	}

	code, err := uc.newCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	hash, err := uc.hasher.Hash(code)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	if err := uc.sender.SendVerificationCode(ctx, email, code, CodeTTL); err != nil {
		uc.logger.Error("failed to send verification mail", zap.String("email", email), zap.Error(err))
		return ErrMailFailed
	}

	now := uc.now()
	record := &models.EmailVerification{
		Email:     email,
		CodeHash:  hash,
		ExpiresAt: now.Add(CodeTTL),
		CreatedAt: now,
	}
	if err := uc.repo.Create(ctx, record); err != nil {
		return err
	}

	uc.logger.Info("verification code sent", zap.String("email", email), zap.Time("expires_at", record.ExpiresAt))
	return nil
}

// VerifyCode 校验最新一条验证码，已验证过的直接通过
func (uc *VerificationUseCase) VerifyCode(ctx context.Context, rawEmail, rawCode string) error {
	email := NormalizeEmail(rawEmail)
	code := strings.TrimSpace(rawCode)
	now := uc.now()

	latest, err := uc.repo.Latest(ctx, email)
	if err != nil {
		return err
	}
	if latest == nil {
		return ErrCodeNotRequested
	}
	if latest.IsVerified() {
		return nil
	}
	if now.After(latest.ExpiresAt) {
		return ErrCodeExpired
	}

	if !uc.hasher.Matches(code, latest.CodeHash) {
		latest.Attempts++
		if err := uc.repo.Update(ctx, latest); err != nil {
			return err
		}
		return ErrCodeMismatch
	}

	latest.VerifiedAt = &now
	return uc.repo.Update(ctx, latest)
}

// IsRecentlyVerified 最新记录在 24 小时内完成验证
func (uc *VerificationUseCase) IsRecentlyVerified(ctx context.Context, rawEmail string) (bool, error) {
	latest, err := uc.repo.Latest(ctx, NormalizeEmail(rawEmail))
	if err != nil || latest == nil {
		return false, err
	}
	if latest.VerifiedAt == nil {
		return false, nil
	}
	return latest.VerifiedAt.After(uc.now().Add(-VerifiedWindow)), nil
}

func sixDigits() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
