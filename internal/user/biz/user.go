package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lk2023060901/ai-video-backend/internal/auth"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-video-backend/internal/user/models"
	"go.uber.org/zap"
)

// ProfileImages 可选的头像配色键
var ProfileImages = []string{"blue", "purple", "orange", "green", "pink", "mono"}

// RegisterInput 注册参数
type RegisterInput struct {
	UserID       string
	Password     string
	Nickname     string
	Email        string
	Gender       *string
	Age          *int
	ProfileImage *string
}

// UserUseCase 会员注册、登录与资料维护
type UserUseCase struct {
	repo     UserRepo
	verifier *VerificationUseCase
	tx       Transactor
	hasher   PasswordHasher
	tokens   TokenIssuer
	logger   *zap.Logger
}

func NewUserUseCase(repo UserRepo, verifier *VerificationUseCase, tx Transactor, hasher PasswordHasher, tokens TokenIssuer, logger *zap.Logger) *UserUseCase {
	return &UserUseCase{
		repo:     repo,
		verifier: verifier,
		tx:       tx,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register 注册，要求邮箱在 24 小时内完成验证
func (uc *UserUseCase) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := NormalizeEmail(in.Email)

	var user *models.User
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := uc.ensureAvailable(ctx, in.UserID, in.Nickname, email); err != nil {
			return err
		}

		verified, err := uc.verifier.IsRecentlyVerified(ctx, email)
		if err != nil {
			return err
		}
		if !verified {
			return ErrEmailNotVerified
		}

		hash, err := uc.hasher.Hash(in.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		user = &models.User{
			UserID:       in.UserID,
			Password:     hash,
			Nickname:     in.Nickname,
			Email:        email,
			Gender:       in.Gender,
			Age:          in.Age,
			ProfileImage: in.ProfileImage,
			TokenCount:   models.InitialTokenCount,
		}
		if err := uc.repo.Create(ctx, user); err != nil {
			if database.IsDuplicateKeyError(err) {
				// 并发注册时由唯一索引兜底
				return ErrUserIDTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.Int64("user_no", user.UserNo), zap.String("user_id", user.UserID))
	return user, nil
}

func (uc *UserUseCase) ensureAvailable(ctx context.Context, userID, nickname, email string) error {
	checks := []struct {
		exists func(context.Context, string) (bool, error)
		value  string
		err    error
	}{
		{uc.repo.ExistsByUserID, userID, ErrUserIDTaken},
		{uc.repo.ExistsByNickname, nickname, ErrNicknameTaken},
		{uc.repo.ExistsByEmail, email, ErrEmailTaken},
	}
	for _, c := range checks {
		exists, err := c.exists(ctx, c.value)
		if err != nil {
			return err
		}
		if exists {
			return c.err
		}
	}
	return nil
}

// Login 校验密码并签发 USER 角色 token
func (uc *UserUseCase) Login(ctx context.Context, userID, password string) (string, *models.User, error) {
	user, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !uc.hasher.Matches(password, user.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := uc.tokens.GenerateAccessToken(user.UserID, auth.RoleUser)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// Me 当前用户
func (uc *UserUseCase) Me(ctx context.Context, userID string) (*models.User, error) {
	return uc.repo.GetByUserID(ctx, userID)
}

// IsUserIDAvailable 登录 ID 是否可用
func (uc *UserUseCase) IsUserIDAvailable(ctx context.Context, userID string) (bool, error) {
	exists, err := uc.repo.ExistsByUserID(ctx, userID)
	return !exists, err
}

// IsNicknameAvailable 昵称是否可用
func (uc *UserUseCase) IsNicknameAvailable(ctx context.Context, nickname string) (bool, error) {
	exists, err := uc.repo.ExistsByNickname(ctx, nickname)
	return !exists, err
}

// IsEmailAvailable 邮箱是否可用
func (uc *UserUseCase) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	exists, err := uc.repo.ExistsByEmail(ctx, NormalizeEmail(email))
	return !exists, err
}

// UpdateNickname 修改昵称，与他人重复时拒绝
func (uc *UserUseCase) UpdateNickname(ctx context.Context, userID, nickname string) (*models.User, error) {
	nickname = strings.TrimSpace(nickname)

	user, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Nickname == nickname {
		return user, nil
	}

	exists, err := uc.repo.ExistsByNickname(ctx, nickname)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrNicknameTaken
	}

	user.Nickname = nickname
	if err := uc.repo.Update(ctx, user); err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, ErrNicknameTaken
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword 校验当前密码后更新
func (uc *UserUseCase) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if !uc.hasher.Matches(current, user.Password) {
		return ErrWrongPassword
	}

	hash, err := uc.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash
	return uc.repo.Update(ctx, user)
}

// UpdateProfileImage 修改头像配色键
func (uc *UserUseCase) UpdateProfileImage(ctx context.Context, userID, key string) (*models.User, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !isProfileImage(key) {
		return nil, ErrInvalidImage.WithDetail("%s", key)
	}

	user, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.ProfileImage = &key
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers 全部会员，供管理端使用
func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*models.User, error) {
	return uc.repo.ListAll(ctx)
}

// FindByUserNos 按 userNo 批量查询，返回以 userNo 为键的映射
func (uc *UserUseCase) FindByUserNos(ctx context.Context, userNos []int64) (map[int64]*models.User, error) {
	users, err := uc.repo.ListByUserNos(ctx, userNos)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*models.User, len(users))
	for _, u := range users {
		out[u.UserNo] = u
	}
	return out, nil
}

// ResolveUserNo 登录 ID 转 userNo
func (uc *UserUseCase) ResolveUserNo(ctx context.Context, userID string) (int64, error) {
	user, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.UserNo, nil
}

func isProfileImage(key string) bool {
	for _, k := range ProfileImages {
		if k == key {
			return true
		}
	}
	return false
}

// NormalizeEmail 去空白并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
