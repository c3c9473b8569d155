package biz

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/metrics"
	videobiz "github.com/lk2023060901/ai-video-backend/internal/video/biz"
	"github.com/lk2023060901/ai-video-backend/internal/video/models"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// 匹配等级
const (
	LevelHigh   = "HIGH"
	LevelMedium = "MEDIUM"
	LevelLow    = "LOW"
)

// 排序方式
const (
	SortViews    = "views"
	SortLikes    = "likes"
	SortDislikes = "dislikes"
	SortLatest   = "latest"
	SortOldest   = "oldest"
)

const maxFallbackTokens = 30

var (
	nonWordPattern = regexp.MustCompile(`[^가-힣a-z0-9\s]`)
	tagSeparator   = regexp.MustCompile(`[,\n]`)
)

// Analyzer 把检索语句拆成意图摘要和标签，失败时自行降级
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, []string)
}

// CandidateRepo 提供候选视频
type CandidateRepo interface {
	ListRecentPublic(ctx context.Context, limit int) ([]*models.Video, error)
}

// FeatureReader 批量读取视频特征
type FeatureReader interface {
	ListByVideos(ctx context.Context, videoNos []int64) ([]*models.VideoFeature, error)
}

// Match 单个命中的视频
type Match struct {
	Video      *models.Video
	Tags       []string
	Score      float64
	MatchLevel string
}

// SearchResult 检索结果
type SearchResult struct {
	OriginalPrompt string
	IntentSummary  string
	PredictedTags  []string
	Matches        []*Match
}

// Matcher 提示词检索：LLM 拆标签后与最近的公开视频逐一打分
type Matcher struct {
	analyzer Analyzer
	videos   CandidateRepo
	features FeatureReader
	cache    *expirable.LRU[int64, []string]
	logger   *zap.Logger
}

// NewMatcher cacheSize <= 0 时不缓存特征标签
func NewMatcher(analyzer Analyzer, videos CandidateRepo, features FeatureReader, cacheSize int, cacheTTL time.Duration, logger *zap.Logger) *Matcher {
	m := &Matcher{
		analyzer: analyzer,
		videos:   videos,
		features: features,
		logger:   logger,
	}
	if cacheSize > 0 {
		m.cache = expirable.NewLRU[int64, []string](cacheSize, nil, cacheTTL)
	}
	return m
}

// Search 空白 prompt 返回 ErrBlankPrompt；没有命中时 Matches 为空切片
func (m *Matcher) Search(ctx context.Context, prompt, sortKey string) (*SearchResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrBlankPrompt
	}
	metrics.PromptSearchesTotal.Inc()

	summary, tags := m.analyzer.Analyze(ctx, prompt)
	if tags == nil {
		tags = []string{}
	}
	query := lowerSet(tags)

	candidates, err := m.videos.ListRecentPublic(ctx, videobiz.PublicWindow)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	featureTags, err := m.featureTags(ctx, candidates)
	if err != nil {
		return nil, err
	}

	promptLower := strings.ToLower(prompt)
	matches := make([]*Match, 0)
	for _, v := range candidates {
		videoTags := featureTags[v.VideoNo]
		if len(videoTags) == 0 {
			videoTags = fallbackTags(v)
		}
		score := Score(v, videoTags, query, promptLower)
		if score <= 0 {
			continue
		}
		normalized := Normalize(score, len(query))
		matches = append(matches, &Match{
			Video:      v,
			Tags:       videoTags,
			Score:      normalized,
			MatchLevel: Level(normalized),
		})
	}
	SortMatches(matches, sortKey)

	m.logger.Info("prompt search finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matches)),
		zap.Strings("tags", tags))

	return &SearchResult{
		OriginalPrompt: prompt,
		IntentSummary:  summary,
		PredictedTags:  tags,
		Matches:        matches,
	}, nil
}

// Invalidate 丢弃单个视频的缓存标签
func (m *Matcher) Invalidate(videoNo int64) {
	if m.cache != nil {
		m.cache.Remove(videoNo)
	}
}

// featureTags 先查缓存，未命中的视频一次性批量读取特征
func (m *Matcher) featureTags(ctx context.Context, candidates []*models.Video) (map[int64][]string, error) {
	resolved := make(map[int64][]string, len(candidates))
	missing := make([]int64, 0, len(candidates))
	for _, v := range candidates {
		if m.cache != nil {
			if tags, ok := m.cache.Get(v.VideoNo); ok {
				metrics.TagCacheLookups.WithLabelValues("hit").Inc()
				resolved[v.VideoNo] = tags
				continue
			}
			metrics.TagCacheLookups.WithLabelValues("miss").Inc()
		}
		missing = append(missing, v.VideoNo)
	}
	if len(missing) == 0 {
		return resolved, nil
	}

	features, err := m.features.ListByVideos(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	grouped := make(map[int64][]*models.VideoFeature, len(missing))
	for _, f := range features {
		grouped[f.VideoNo] = append(grouped[f.VideoNo], f)
	}
	for _, videoNo := range missing {
		tags := m.tagsFromFeatures(videoNo, grouped[videoNo])
		resolved[videoNo] = tags
		if m.cache != nil {
			m.cache.Add(videoNo, tags)
		}
	}
	return resolved, nil
}

// tagsFromFeatures 合并所有特征的 tags 字段，支持数组或逗号分隔字符串，保序去重
func (m *Matcher) tagsFromFeatures(videoNo int64, features []*models.VideoFeature) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	add := func(raw string) {
		t := strings.TrimSpace(raw)
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}

	for _, f := range features {
		if len(f.TagsJSON) == 0 {
			continue
		}
		if !gjson.ValidBytes(f.TagsJSON) {
			m.logger.Warn("malformed feature tags",
				zap.Int64("video_no", videoNo),
				zap.String("source", f.Source))
			continue
		}
		field := gjson.GetBytes(f.TagsJSON, "tags")
		switch {
		case field.IsArray():
			field.ForEach(func(_, value gjson.Result) bool {
				if value.Type != gjson.Null {
					add(value.String())
				}
				return true
			})
		case field.Type == gjson.String:
			for _, part := range tagSeparator.Split(field.String(), -1) {
				add(part)
			}
		}
	}
	return tags
}

// fallbackTags 没有特征标签时从标题与描述切词
func fallbackTags(v *models.Video) []string {
	text := strings.ToLower(v.Title + " " + description(v))
	text = nonWordPattern.ReplaceAllString(text, " ")

	tokens := make([]string, 0)
	for _, token := range strings.Fields(text) {
		if utf8.RuneCountInString(token) < 2 {
			continue
		}
		tokens = append(tokens, token)
		if len(tokens) == maxFallbackTokens {
			break
		}
	}
	return tokens
}

// Score 标签重合 ×3，标题命中 ×2，描述命中 ×1，整句出现在标题 +2、描述 +1
func Score(v *models.Video, videoTags []string, query map[string]struct{}, promptLower string) float64 {
	title := strings.ToLower(v.Title)
	desc := strings.ToLower(description(v))

	overlap := 0
	for t := range lowerSet(videoTags) {
		if _, ok := query[t]; ok {
			overlap++
		}
	}

	titleHits, descHits := 0, 0
	for q := range query {
		if strings.Contains(title, q) {
			titleHits++
		}
		if strings.Contains(desc, q) {
			descHits++
		}
	}

	score := float64(overlap)*3 + float64(titleHits)*2 + float64(descHits)
	if strings.Contains(title, promptLower) {
		score += 2
	}
	if strings.Contains(desc, promptLower) {
		score++
	}
	return score
}

// Normalize 压到 [0,1]
func Normalize(score float64, queryTags int) float64 {
	maxScore := math.Max(3*float64(max(1, queryTags))+5, 8)
	return math.Min(1, score/maxScore)
}

// Level HIGH ≥ 0.66，MEDIUM ≥ 0.33
func Level(normalized float64) string {
	switch {
	case normalized >= 0.66:
		return LevelHigh
	case normalized >= 0.33:
		return LevelMedium
	default:
		return LevelLow
	}
}

// SortMatches 未知排序方式按 latest 处理，主键相同按分数降序
func SortMatches(matches []*Match, sortKey string) {
	primary := func(a, b *Match) int {
		switch sortKey {
		case SortViews:
			return compareDesc(a.Video.ViewCount, b.Video.ViewCount)
		case SortLikes:
			return compareDesc(a.Video.LikeCount, b.Video.LikeCount)
		case SortDislikes:
			return compareDesc(a.Video.DislikeCount, b.Video.DislikeCount)
		case SortOldest:
			return a.Video.CreatedAt.Compare(b.Video.CreatedAt)
		default:
			return b.Video.CreatedAt.Compare(a.Video.CreatedAt)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if c := primary(matches[i], matches[j]); c != 0 {
			return c < 0
		}
		return matches[i].Score > matches[j].Score
	})
}

func compareDesc(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if t := strings.ToLower(strings.TrimSpace(item)); t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

func description(v *models.Video) string {
	if v.Description == nil {
		return ""
	}
	return *v.Description
}
