package biz

import apperrors "github.com/lk2023060901/ai-video-backend/internal/pkg/errors"

// 用户相关错误
var (
	ErrUserNotFound       = apperrors.New(apperrors.ErrUserNotFound)
	ErrUserIDTaken        = apperrors.New(apperrors.ErrUserIDExists)
	ErrNicknameTaken      = apperrors.New(apperrors.ErrUserNicknameTaken)
	ErrEmailTaken         = apperrors.New(apperrors.ErrUserEmailTaken)
	ErrInvalidCredentials = apperrors.New(apperrors.ErrAuthInvalidCredentials)
	ErrWrongPassword      = apperrors.New(apperrors.ErrUserWrongPassword)
	ErrInvalidImage       = apperrors.New(apperrors.ErrUserInvalidImage)
)

// 邮箱验证相关错误
var (
	ErrEmailNotVerified = apperrors.New(apperrors.ErrAuthEmailNotVerified)
	ErrCodeNotRequested = apperrors.New(apperrors.ErrAuthCodeNotRequested)
	ErrCodeExpired      = apperrors.New(apperrors.ErrAuthCodeExpired)
	ErrCodeMismatch     = apperrors.New(apperrors.ErrAuthCodeMismatch)
	ErrMailFailed       = apperrors.New(apperrors.ErrAuthMailFailed)
)
