package ai

import (
	"errors"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Config OpenAI 接入配置
type Config struct {
	APIKey      string
	BaseURL     string
	ChatModel   string
	VisionModel string
	Timeout     time.Duration
}

const defaultModel = "gpt-4.1-mini"

func newClient(cfg *Config) (*openai.Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return openai.NewClientWithConfig(clientCfg), nil
}

func modelOr(model string) string {
	if model == "" {
		return defaultModel
	}
	return model
}
