package biz

import (
	"context"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/admin/models"
	usermodels "github.com/lk2023060901/ai-video-backend/internal/user/models"
	videomodels "github.com/lk2023060901/ai-video-backend/internal/video/models"
)

// AdminRepo 管理员账号存储
type AdminRepo interface {
	GetByAdminID(ctx context.Context, adminID string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, adminNo int64, at time.Time) error
}

// UserDirectory 会员查询，由 user 领域提供
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]*usermodels.User, error)
	FindByUserNos(ctx context.Context, userNos []int64) (map[int64]*usermodels.User, error)
}

// VideoModerator 视频屏蔽管理，由 video 领域提供
type VideoModerator interface {
	ListBlocked(ctx context.Context) ([]*videomodels.Video, error)
	Unblock(ctx context.Context, videoNo int64) error
	ForceDelete(ctx context.Context, videoNo int64) error
}

type TokenIssuer interface {
	GenerateAccessToken(subject, role string) (string, error)
}

type PasswordHasher interface {
	Matches(plain, hash string) bool
}
