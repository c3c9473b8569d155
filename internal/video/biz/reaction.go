package biz

import (
	"context"
	"strings"

	"github.com/lk2023060901/ai-video-backend/internal/video/models"
)

// ReactionResult 切换后的计数与当前用户的反应
type ReactionResult struct {
	LikeCount    int64
	DislikeCount int64
	MyReaction   *string
}

// ParseReaction 解析 LIKE / DISLIKE，大小写不敏感
func ParseReaction(action string) (string, error) {
	switch a := strings.ToUpper(strings.TrimSpace(action)); a {
	case models.ReactionLike, models.ReactionDislike:
		return a, nil
	default:
		return "", ErrInvalidReaction.WithDetail("%s", action)
	}
}

// ToggleReaction 相同反应再次提交时撤销，否则写入新反应，随后按记录重算计数
func (uc *VideoUseCase) ToggleReaction(ctx context.Context, userID string, videoNo int64, action string) (*ReactionResult, error) {
	reaction, err := ParseReaction(action)
	if err != nil {
		return nil, err
	}
	userNo, err := uc.users.ResolveUserNo(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &ReactionResult{}
	err = uc.tx.InTx(ctx, func(ctx context.Context) error {
		// 行锁保证同一视频的计数重算串行
		if _, err := uc.videos.FindByIDForUpdate(ctx, videoNo); err != nil {
			return err
		}

		current, err := uc.reactions.Find(ctx, videoNo, userNo)
		if err != nil {
			return err
		}

		switch {
		case current != nil && current.ReactionType == reaction:
			if err := uc.reactions.Delete(ctx, current.ReactionNo); err != nil {
				return err
			}
		case current != nil:
			current.ReactionType = reaction
			if err := uc.reactions.Save(ctx, current); err != nil {
				return err
			}
			result.MyReaction = &reaction
		default:
			if err := uc.reactions.Save(ctx, &models.VideoReaction{
				VideoNo:      videoNo,
				UserNo:       userNo,
				ReactionType: reaction,
			}); err != nil {
				return err
			}
			result.MyReaction = &reaction
		}

		if result.LikeCount, err = uc.reactions.Count(ctx, videoNo, models.ReactionLike); err != nil {
			return err
		}
		if result.DislikeCount, err = uc.reactions.Count(ctx, videoNo, models.ReactionDislike); err != nil {
			return err
		}
		return uc.videos.UpdateCounters(ctx, videoNo, result.LikeCount, result.DislikeCount)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
