package biz

import apperrors "github.com/lk2023060901/ai-video-backend/internal/pkg/errors"

var (
	ErrAdminNotFound      = apperrors.New(apperrors.ErrAdminNotFound)
	ErrInvalidCredentials = apperrors.New(apperrors.ErrAuthInvalidCredentials)
	ErrAdminBlocked       = apperrors.New(apperrors.ErrAuthAccountBlocked)
)
