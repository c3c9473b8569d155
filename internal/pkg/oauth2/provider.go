package oauth2

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenProvider 定义获取访问令牌的接口
type TokenProvider interface {
	// GetAccessToken 获取有效的访问令牌（自动刷新）
	GetAccessToken(ctx context.Context) (string, error)
}

// Config OAuth2 刷新令牌配置
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Scopes       []string

	// 可选：自定义端点（默认使用 Google 端点）
	TokenURL string
}

// RefreshTokenProvider 以长期 refresh token 换取 access token，过期前复用缓存
type RefreshTokenProvider struct {
	config *oauth2.Config
	seed   *oauth2.Token

	mu     sync.Mutex
	source oauth2.TokenSource
}

// NewRefreshTokenProvider 创建 TokenProvider
func NewRefreshTokenProvider(cfg *Config) (*RefreshTokenProvider, error) {
	if cfg == nil {
		return nil, errors.New("oauth2 config is required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("client_id and client_secret are required")
	}
	if cfg.RefreshToken == "" {
		return nil, errors.New("refresh_token is required")
	}

	endpoint := google.Endpoint
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	return &RefreshTokenProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       cfg.Scopes,
		},
		seed: &oauth2.Token{RefreshToken: cfg.RefreshToken},
	}, nil
}

// GetAccessToken 获取有效的访问令牌
func (p *RefreshTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.source == nil {
		// ReuseTokenSource 自带并发保护，只在首次调用时绑定 ctx 中的 HTTP client
		p.source = oauth2.ReuseTokenSource(nil, p.config.TokenSource(context.WithoutCancel(ctx), p.seed))
	}
	source := p.source
	p.mu.Unlock()

	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	return token.AccessToken, nil
}
