package types

import (
	"github.com/lk2023060901/ai-video-backend/internal/finding/biz"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/response"
)

// SearchRequest POST /api/finding/search
type SearchRequest struct {
	Prompt string `json:"prompt"`
	Sort   string `json:"sort"`
}

// VideoMatch 单条匹配结果
type VideoMatch struct {
	VideoNo     int64    `json:"videoNo"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Views       int64    `json:"views"`
	Likes       int64    `json:"likes"`
	Dislikes    int64    `json:"dislikes"`
	CreatedAt   string   `json:"createdAt"`
	DurationSec int64    `json:"durationSec"`
	Tags        []string `json:"tags"`
	MatchScore  float64  `json:"matchScore"`
	MatchLevel  string   `json:"matchLevel"`
}

type SearchResponse struct {
	OriginalPrompt string        `json:"originalPrompt"`
	IntentSummary  string        `json:"intentSummary"`
	PredictedTags  []string      `json:"predictedTags"`
	Videos         []*VideoMatch `json:"videos"`
}

// FromResult 视频时长暂未采集，durationSec 固定为 0
func FromResult(r *biz.SearchResult) *SearchResponse {
	videos := make([]*VideoMatch, 0, len(r.Matches))
	for _, m := range r.Matches {
		videos = append(videos, &VideoMatch{
			VideoNo:     m.Video.VideoNo,
			Title:       m.Video.Title,
			Description: m.Video.Description,
			Views:       m.Video.ViewCount,
			Likes:       m.Video.LikeCount,
			Dislikes:    m.Video.DislikeCount,
			CreatedAt:   response.FormatTime(m.Video.CreatedAt),
			Tags:        m.Tags,
			MatchScore:  m.Score,
			MatchLevel:  m.MatchLevel,
		})
	}
	return &SearchResponse{
		OriginalPrompt: r.OriginalPrompt,
		IntentSummary:  r.IntentSummary,
		PredictedTags:  r.PredictedTags,
		Videos:         videos,
	}
}
