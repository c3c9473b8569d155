package biz

import (
	"context"
	"strings"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/admin/models"
	"github.com/lk2023060901/ai-video-backend/internal/auth"
	usermodels "github.com/lk2023060901/ai-video-backend/internal/user/models"
	videomodels "github.com/lk2023060901/ai-video-backend/internal/video/models"
	"go.uber.org/zap"
)

// LoginResult 管理员登录结果
type LoginResult struct {
	Token string
	Admin *models.Admin
	Role  string
}

// BlockedVideo 被屏蔽视频及其上传者，上传者已删除时 Uploader 为 nil
type BlockedVideo struct {
	Video    *videomodels.Video
	Uploader *usermodels.User
}

// AdminUseCase 管理员登录与内容管理
type AdminUseCase struct {
	admins AdminRepo
	users  UserDirectory
	videos VideoModerator
	hasher PasswordHasher
	tokens TokenIssuer
	logger *zap.Logger

	now func() time.Time
}

func NewAdminUseCase(admins AdminRepo, users UserDirectory, videos VideoModerator, hasher PasswordHasher, tokens TokenIssuer, logger *zap.Logger) *AdminUseCase {
	return &AdminUseCase{
		admins: admins,
		users:  users,
		videos: videos,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Login username 即 adminId
func (uc *AdminUseCase) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	admin, err := uc.admins.GetByAdminID(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if !uc.hasher.Matches(password, admin.Password) {
		return nil, ErrInvalidCredentials
	}
	if admin.Status == models.StatusBlock {
		return nil, ErrAdminBlocked
	}

	role := NormalizeRole(admin.AdminRole)
	token, err := uc.tokens.GenerateAccessToken(admin.AdminID, role)
	if err != nil {
		return nil, err
	}

	at := uc.now()
	if err := uc.admins.UpdateLastLogin(ctx, admin.AdminNo, at); err != nil {
		return nil, err
	}
	admin.LastLoginAt = &at

	uc.logger.Info("admin logged in", zap.String("admin_id", admin.AdminID), zap.String("role", role))
	return &LoginResult{Token: token, Admin: admin, Role: role}, nil
}

// NormalizeRole 去掉 ROLE_ 前缀，未设置时为 ADMIN
func NormalizeRole(role *string) string {
	if role == nil {
		return auth.RoleAdmin
	}
	r := strings.TrimPrefix(strings.TrimSpace(*role), "ROLE_")
	if r == "" {
		return auth.RoleAdmin
	}
	return r
}

func (uc *AdminUseCase) ListUsers(ctx context.Context) ([]*usermodels.User, error) {
	return uc.users.ListUsers(ctx)
}

// ListBlockedVideos 一次查询补齐上传者
func (uc *AdminUseCase) ListBlockedVideos(ctx context.Context) ([]*BlockedVideo, error) {
	videos, err := uc.videos.ListBlocked(ctx)
	if err != nil {
		return nil, err
	}

	userNos := make([]int64, 0, len(videos))
	seen := make(map[int64]struct{}, len(videos))
	for _, v := range videos {
		if _, ok := seen[v.UserNo]; ok {
			continue
		}
		seen[v.UserNo] = struct{}{}
		userNos = append(userNos, v.UserNo)
	}
	uploaders, err := uc.users.FindByUserNos(ctx, userNos)
	if err != nil {
		return nil, err
	}

	out := make([]*BlockedVideo, 0, len(videos))
	for _, v := range videos {
		out = append(out, &BlockedVideo{Video: v, Uploader: uploaders[v.UserNo]})
	}
	return out, nil
}

// ApproveVideo 只解除屏蔽，审核状态保持不变
func (uc *AdminUseCase) ApproveVideo(ctx context.Context, videoNo int64) error {
	return uc.videos.Unblock(ctx, videoNo)
}

// DeleteVideo 删除特征、反应与视频行，不删除文件
func (uc *AdminUseCase) DeleteVideo(ctx context.Context, videoNo int64) error {
	return uc.videos.ForceDelete(ctx, videoNo)
}
