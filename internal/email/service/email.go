package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/email/types"
	oauth2pkg "github.com/lk2023060901/ai-video-backend/internal/pkg/oauth2"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// 验证码邮件
const (
	VerificationSubject = "[AI 콜렉터] 이메일 인증번호"
	verificationBody    = `<div style="font-family: system-ui,-apple-system,BlinkMacSystemFont,'Noto Sans KR',sans-serif;">
  <h2>이메일 인증</h2>
  <p>아래 인증번호를 %d분 이내에 입력해 주세요.</p>
  <div style="margin-top:16px;font-size:28px;font-weight:700;letter-spacing:4px;">%s</div>
</div>`
)

// EmailService 生产级邮件服务
type EmailService struct {
	config        *types.EmailConfig
	tokenProvider oauth2pkg.TokenProvider
	logger        *zap.Logger
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *types.EmailConfig, tokenProvider oauth2pkg.TokenProvider, logger *zap.Logger) (*EmailService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("email config is required")
	}

	// OAuth2 模式下必须提供 TokenProvider
	if cfg.OAuth2Enabled && tokenProvider == nil {
		return nil, fmt.Errorf("token provider is required when oauth2 is enabled")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// 设置默认值
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = 2 * time.Second
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = 30 * time.Second
	}

	return &EmailService{
		config:        cfg,
		tokenProvider: tokenProvider,
		logger:        logger,
	}, nil
}

// SendVerificationCode 发送邮箱验证码
func (s *EmailService) SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error {
	_, err := s.SendEmail(ctx, &types.Email{
		To:      []string{to},
		Subject: VerificationSubject,
		Body:    fmt.Sprintf(verificationBody, int(ttl.Minutes()), code),
		IsHTML:  true,
	})
	return err
}

// SendEmail 发送邮件
func (s *EmailService) SendEmail(ctx context.Context, email *types.Email) (*types.EmailStatus, error) {
	if email == nil {
		return nil, fmt.Errorf("email is required")
	}

	if err := s.validateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}

	client, err := s.createClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	defer client.Close()

	msg, err := s.buildMessage(email)
	if err != nil {
		return nil, fmt.Errorf("build message: %w", err)
	}

	// 发送邮件（带重试）
	var lastErr error
	for attempt := 1; attempt <= s.config.MaxRetries; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, s.config.SendTimeout)
		err := client.DialAndSendWithContext(sendCtx, msg)
		cancel()

		if err == nil {
			messageID := ""
			if ids := msg.GetGenHeader(mail.HeaderMessageID); len(ids) > 0 {
				messageID = ids[0]
			}
			return &types.EmailStatus{MessageID: messageID, SentAt: time.Now()}, nil
		}

		lastErr = err
		s.logger.Warn("send email failed",
			zap.Int("attempt", attempt),
			zap.Strings("to", email.To),
			zap.Error(err))

		if attempt < s.config.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.config.RetryInterval):
			}
		}
	}

	return nil, fmt.Errorf("failed to send email after %d attempts: %w", s.config.MaxRetries, lastErr)
}

// createClient 创建邮件客户端
func (s *EmailService) createClient(ctx context.Context) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(s.config.SMTPPort),
		mail.WithTimeout(s.config.ConnectTimeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}

	username := s.config.Username
	switch {
	case s.config.OAuth2Enabled:
		accessToken, err := s.tokenProvider.GetAccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("get access token: %w", err)
		}
		if username == "" {
			username = s.config.FromAddr
		}
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthXOAUTH2),
			mail.WithUsername(username),
			mail.WithPassword(accessToken),
		)
	case username != "":
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(s.config.Password),
		)
	}

	client, err := mail.NewClient(s.config.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return client, nil
}

// buildMessage 构建邮件消息
func (s *EmailService) buildMessage(email *types.Email) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.From(formatAddress(s.config.FromAddr, s.config.FromName)); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("set to: %w", err)
	}

	msg.Subject(email.Subject)
	if email.IsHTML {
		msg.SetBodyString(mail.TypeTextHTML, email.Body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, email.Body)
	}

	for key, value := range email.Headers {
		msg.SetGenHeader(mail.Header(key), value)
	}

	msg.SetGenHeader(mail.HeaderXMailer, "AI-Video-Backend")
	msg.SetDate()
	msg.SetMessageID()

	return msg, nil
}

// validateEmail 验证邮件
func (s *EmailService) validateEmail(email *types.Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if email.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if email.Body == "" {
		return fmt.Errorf("body is required")
	}
	return nil
}

// formatAddress 格式化邮件地址
func formatAddress(addr, name string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%q <%s>", name, addr)
}
