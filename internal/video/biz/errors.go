package biz

import apperrors "github.com/lk2023060901/ai-video-backend/internal/pkg/errors"

// 视频相关错误
var (
	ErrVideoNotFound   = apperrors.New(apperrors.ErrVideoNotFound)
	ErrNotOwner        = apperrors.New(apperrors.ErrVideoForbidden)
	ErrFileMissing     = apperrors.New(apperrors.ErrVideoFileMissing)
	ErrInvalidReaction = apperrors.New(apperrors.ErrVideoInvalidAction)
	ErrInvalidRequest  = apperrors.New(apperrors.ErrVideoInvalidRequest)
)
