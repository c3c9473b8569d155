package data

import (
	"context"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-video-backend/internal/user/biz"
	"github.com/lk2023060901/ai-video-backend/internal/user/models"
)

type verificationRepo struct {
	db *database.DB
}

// NewVerificationRepo 创建邮箱验证码仓储
func NewVerificationRepo(db *database.DB) biz.VerificationRepo {
	return &verificationRepo{db: db}
}

func (r *verificationRepo) Create(ctx context.Context, v *models.EmailVerification) error {
	return r.db.GetDBFromContext(ctx).Create(v).Error
}

func (r *verificationRepo) Update(ctx context.Context, v *models.EmailVerification) error {
	return r.db.GetDBFromContext(ctx).Save(v).Error
}

func (r *verificationRepo) Latest(ctx context.Context, email string) (*models.EmailVerification, error) {
	var v models.EmailVerification
	err := r.db.GetDBFromContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		Order("created_at DESC").
		Order("id DESC").
		First(&v).Error
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}
