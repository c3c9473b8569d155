package biz

import apperrors "github.com/lk2023060901/ai-video-backend/internal/pkg/errors"

var ErrBlankPrompt = apperrors.New(apperrors.ErrFindingEmptyPrompt)
