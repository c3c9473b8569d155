package types

import "time"

// EmailConfig 邮件服务配置
type EmailConfig struct {
	// SMTP 配置
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	FromAddr string // 发件人地址
	FromName string // 发件人名称

	// OAuth2 配置，启用时以 XOAUTH2 认证，Username 为空则使用 FromAddr
	OAuth2Enabled bool

	// 重试配置
	MaxRetries    int
	RetryInterval time.Duration

	// 超时配置
	ConnectTimeout time.Duration
	SendTimeout    time.Duration
}

// Email 邮件结构
type Email struct {
	To      []string          // 收件人
	Subject string            // 主题
	Body    string            // 正文（纯文本或 HTML）
	IsHTML  bool              // 是否为 HTML 正文
	Headers map[string]string // 自定义邮件头
}

// EmailStatus 邮件发送状态
type EmailStatus struct {
	MessageID string    // 邮件 ID
	SentAt    time.Time // 发送时间
}
