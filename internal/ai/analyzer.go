package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// MaxPromptTags 单次分析最多返回的标签数
const MaxPromptTags = 12

const analyzerSystemPrompt = `너는 '영상'을 찾기 위한 태그 추출기이다.
사용자가 원하는 영상을 자연어로 설명하면, 아래 JSON 형식만 반환해라.

{
  "intentSummary": "사용자가 찾는 영상 내용을 한 문장으로 요약 (한국어)",
  "tags": ["짧은 키워드1", "짧은 키워드2", ...]
}

규칙:
- tags는 최대 12개까지.
- 각 태그는 1~3단어짜리 짧은 키워드로(예: "RAG", "PyTorch", "Transformer", "입문", "실습", "강의").
- 따옴표, 줄바꿈 등으로 인해 JSON이 깨지지 않게 주의해라.
- JSON 이외의 텍스트는 절대 출력하지 말 것.`

var errMalformedAnalysis = errors.New("analysis is not a json object")

// PromptAnalyzer 把自然语言检索语句拆成意图摘要和标签
type PromptAnalyzer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewPromptAnalyzer 创建分析器
func NewPromptAnalyzer(cfg *Config, logger *zap.Logger) (*PromptAnalyzer, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromptAnalyzer{
		client: client,
		model:  modelOr(cfg.ChatModel),
		logger: logger,
	}, nil
}

// Analyze 调用失败或解析失败时退化为 (prompt, 空标签)，不返回错误
func (a *PromptAnalyzer) Analyze(ctx context.Context, prompt string) (string, []string) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analyzerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		a.logger.Error("prompt analysis request failed", zap.Error(err))
		return prompt, []string{}
	}
	if len(resp.Choices) == 0 {
		a.logger.Warn("prompt analysis returned no choices")
		return prompt, []string{}
	}

	summary, tags, err := parseAnalysis(resp.Choices[0].Message.Content, prompt)
	if err != nil {
		a.logger.Error("failed to parse prompt analysis", zap.Error(err))
		return prompt, []string{}
	}

	a.logger.Info("prompt analyzed",
		zap.String("intent", summary),
		zap.Strings("tags", tags))
	return summary, tags
}

// parseAnalysis 解析 {"intentSummary","tags"}，容忍 markdown 代码块包裹；
// intentSummary 必须是字符串，tags 必须是数组
func parseAnalysis(content, prompt string) (string, []string, error) {
	content = stripCodeFence(content)
	if !gjson.Valid(content) {
		return "", nil, errMalformedAnalysis
	}
	doc := gjson.Parse(content)
	if !doc.IsObject() {
		return "", nil, errMalformedAnalysis
	}

	summary := prompt
	switch s := doc.Get("intentSummary"); s.Type {
	case gjson.Null:
	case gjson.String:
		summary = s.String()
	default:
		return "", nil, errMalformedAnalysis
	}

	field := doc.Get("tags")
	if field.Type != gjson.Null && !field.IsArray() {
		return "", nil, errMalformedAnalysis
	}
	tags := make([]string, 0)
	field.ForEach(func(_, value gjson.Result) bool {
		if value.Type == gjson.Null {
			return true
		}
		if t := strings.TrimSpace(value.String()); t != "" {
			tags = append(tags, t)
		}
		return len(tags) < MaxPromptTags
	})
	return summary, tags, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
