package data

import (
	"context"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/admin/biz"
	"github.com/lk2023060901/ai-video-backend/internal/admin/models"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
)

type adminRepo struct {
	db *database.DB
}

// NewAdminRepo 创建 gorm 管理员仓储
func NewAdminRepo(db *database.DB) biz.AdminRepo {
	return &adminRepo{db: db}
}

func (r *adminRepo) GetByAdminID(ctx context.Context, adminID string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.GetDBFromContext(ctx).Where("admin_id = ?", adminID).First(&admin).Error
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrAdminNotFound
		}
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepo) UpdateLastLogin(ctx context.Context, adminNo int64, at time.Time) error {
	return r.db.GetDBFromContext(ctx).
		Model(&models.Admin{}).
		Where("admin_no = ?", adminNo).
		Update("last_login_at", at).Error
}
