package data

import (
	"context"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-video-backend/internal/user/biz"
	"github.com/lk2023060901/ai-video-backend/internal/user/models"
)

type userRepo struct {
	db *database.DB
}

// NewUserRepo 创建 gorm 用户仓储
func NewUserRepo(db *database.DB) biz.UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return r.db.GetDBFromContext(ctx).Create(user).Error
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	return r.db.GetDBFromContext(ctx).Save(user).Error
}

func (r *userRepo) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.db.GetDBFromContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByUserNo(ctx context.Context, userNo int64) (*models.User, error) {
	var user models.User
	err := r.db.GetDBFromContext(ctx).First(&user, "user_no = ?", userNo).Error
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, biz.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ListByUserNos(ctx context.Context, userNos []int64) ([]*models.User, error) {
	var users []*models.User
	if len(userNos) == 0 {
		return users, nil
	}
	err := r.db.GetDBFromContext(ctx).Where("user_no IN ?", userNos).Find(&users).Error
	return users, err
}

func (r *userRepo) ListAll(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.GetDBFromContext(ctx).Order("user_no ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	return r.exists(ctx, "user_id = ?", userID)
}

func (r *userRepo) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	return r.exists(ctx, "nickname = ?", nickname)
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "LOWER(email) = LOWER(?)", email)
}

func (r *userRepo) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	err := r.db.GetDBFromContext(ctx).Model(&models.User{}).Where(query, arg).Limit(1).Count(&count).Error
	return count > 0, err
}
