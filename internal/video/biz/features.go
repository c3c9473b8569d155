package biz

import (
	"encoding/json"
	"sort"
	"strings"
)

const (
	// MaxSummaryTags tag1..tag5 的容量
	MaxSummaryTags = 5
	// MaxDesktopTags 桌面端结果写入 tag1..tag3
	MaxDesktopTags = 3
	// PresentTagThreshold presentTags 入选的最低分
	PresentTagThreshold = 0.40
)

// GPTImageTags GPT_IMAGE 来源的 tagsJson
type GPTImageTags struct {
	Tags []string `json:"tags"`
}

// ScoredTag 带置信度的标签
type ScoredTag struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// DesktopMLTags DESKTOP_ML 来源的 tagsJson
type DesktopMLTags struct {
	MainTag     *ScoredTag         `json:"mainTag"`
	SubTags     []ScoredTag        `json:"subTags"`
	PresentTags []ScoredTag        `json:"presentTags"`
	AllScores   map[string]float64 `json:"allScores"`
	FrameCount  int                `json:"frameCount"`
}

func marshalDoc(doc any) ([]byte, error) {
	return json.Marshal(doc)
}

// NormalizeTags 去空白、转小写、去重，最多保留 limit 个
func NormalizeTags(raw []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		if len(out) >= limit {
			break
		}
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// TrimTags 去空白、去重，保留原始大小写
func TrimTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SelectDesktopTags 按分数降序选取 >= 0.40 的 presentTags，无结果时回退到 mainTag 与 subTags
func SelectDesktopTags(doc *DesktopMLTags) []string {
	present := make([]ScoredTag, len(doc.PresentTags))
	copy(present, doc.PresentTags)
	sort.SliceStable(present, func(i, j int) bool {
		return present[i].Score > present[j].Score
	})

	candidates := make([]string, 0, len(present))
	for _, t := range present {
		if t.Score >= PresentTagThreshold {
			candidates = append(candidates, t.Name)
		}
	}
	if chosen := NormalizeTags(candidates, MaxDesktopTags); len(chosen) > 0 {
		return chosen
	}

	fallback := make([]string, 0, len(doc.SubTags)+1)
	if doc.MainTag != nil {
		fallback = append(fallback, doc.MainTag.Name)
	}
	for _, t := range doc.SubTags {
		fallback = append(fallback, t.Name)
	}
	return NormalizeTags(fallback, MaxDesktopTags)
}
