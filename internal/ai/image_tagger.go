package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	imageTagPrompt = `다음 이미지들에서 공통적인 주제를 잘 설명하는 한글 태그를 최대 10개까지만 뽑아줘.
형식은 "태그1, 태그2, 태그3" 처럼 콤마로 구분된 한 줄 텍스트로만 답변해.
설명 문장은 쓰지 마.`

	maxImageTagTokens = 256
)

var tagSeparator = regexp.MustCompile(`[,\n]`)

// ImageTagger 用视觉模型为关键帧生成标签
type ImageTagger struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewImageTagger 创建图像打标器
func NewImageTagger(cfg *Config, logger *zap.Logger) (*ImageTagger, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageTagger{
		client: client,
		model:  modelOr(cfg.VisionModel),
		logger: logger,
	}, nil
}

// TagImages 返回模型给出的原始标签，规范化由调用方负责
func (t *ImageTagger) TagImages(ctx context.Context, frames [][]byte) ([]string, error) {
	if len(frames) == 0 {
		return []string{}, nil
	}

	parts := make([]openai.ChatMessagePart, 0, len(frames)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: imageTagPrompt,
	})
	for _, frame := range frames {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(frame),
			},
		})
	}

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       t.model,
		MaxTokens:   maxImageTagTokens,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("image tagging request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("image tagging returned no choices")
	}

	tags := SplitTags(resp.Choices[0].Message.Content)
	t.logger.Debug("frames tagged",
		zap.Int("frames", len(frames)),
		zap.Strings("tags", tags))
	return tags, nil
}

// SplitTags 按逗号或换行拆分，去掉空项与重复项
func SplitTags(text string) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, raw := range tagSeparator.Split(text, -1) {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
