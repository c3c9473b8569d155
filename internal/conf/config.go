package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/database"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/logger"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/minio"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/redis"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 AIVIDEO_DATABASE_HOST
const EnvPrefix = "AIVIDEO"

// 审核任务分发模式
const (
	ReviewQueueMemory = "memory"
	ReviewQueueRedis  = "redis"
)

// 邮件认证方式
const (
	MailAuthPlain   = "plain"
	MailAuthXOAuth2 = "xoauth2"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   database.Config  `mapstructure:"database"`
	Redis      redis.Config     `mapstructure:"redis"`
	MinIO      minio.Config     `mapstructure:"minio"`
	Log        logger.Config    `mapstructure:"log"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Video      VideoConfig      `mapstructure:"video"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Mail       MailConfig       `mapstructure:"mail"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Review     ReviewConfig     `mapstructure:"review"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	TagCache   TagCacheConfig   `mapstructure:"tag_cache"`
}

type ServerConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	MaxUploadMB     int64         `mapstructure:"max_upload_mb"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTIssuer      string        `mapstructure:"jwt_issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type VideoConfig struct {
	StorageDir string `mapstructure:"storage_dir"`
	FFmpegPath string `mapstructure:"ffmpeg_path"` // FFMPEG_PATH 环境变量优先
	FrameLimit int    `mapstructure:"frame_limit"`
	TmpDir     string `mapstructure:"tmp_dir"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	ChatModel   string        `mapstructure:"chat_model"`
	VisionModel string        `mapstructure:"vision_model"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type ClassifierConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type MailConfig struct {
	SMTPHost       string        `mapstructure:"smtp_host"`
	SMTPPort       int           `mapstructure:"smtp_port"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	From           string        `mapstructure:"from"`
	FromName       string        `mapstructure:"from_name"`
	Auth           string        `mapstructure:"auth"` // plain, xoauth2
	OAuth2         OAuth2Config  `mapstructure:"oauth2"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryInterval  time.Duration `mapstructure:"retry_interval"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	SendTimeout    time.Duration `mapstructure:"send_timeout"`
}

type OAuth2Config struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	TokenURL     string `mapstructure:"token_url"`
}

type CORSConfig struct {
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	MaxAge         time.Duration `mapstructure:"max_age"`
}

type ReviewConfig struct {
	Queue      string `mapstructure:"queue"` // memory, redis
	Workers    int    `mapstructure:"workers"`
	QueueSize  int    `mapstructure:"queue_size"`
	MaxRetries int    `mapstructure:"max_retries"`
}

type RateLimitConfig struct {
	Finding WindowLimit `mapstructure:"finding"`
}

type WindowLimit struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type TagCacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// Default 返回带默认值的配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{HTTP: HTTPConfig{
			Addr:            ":8080",
			Mode:            "release",
			MaxUploadMB:     500,
			ReadTimeout:     5 * time.Minute,
			WriteTimeout:    10 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
		}},
		Database: *database.DefaultConfig(),
		Redis:    *redis.DefaultConfig(),
		MinIO:    *minio.DefaultConfig(),
		Log:      *logger.DefaultConfig(),
		Auth: AuthConfig{
			JWTIssuer:      "ai-video-backend",
			AccessTokenTTL: 24 * time.Hour,
		},
		Video: VideoConfig{
			StorageDir: "/data/videos",
			FFmpegPath: "ffmpeg",
			FrameLimit: 3,
		},
		OpenAI: OpenAIConfig{
			ChatModel:   "gpt-4.1-mini",
			VisionModel: "gpt-4.1-mini",
			Timeout:     60 * time.Second,
		},
		Classifier: ClassifierConfig{
			Enabled: true,
			Timeout: 5 * time.Minute,
		},
		Mail: MailConfig{
			SMTPPort:       587,
			From:           "no-reply@aicollector.co.kr",
			FromName:       "AI 콜렉터",
			Auth:           MailAuthPlain,
			MaxRetries:     3,
			RetryInterval:  2 * time.Second,
			ConnectTimeout: 10 * time.Second,
			SendTimeout:    30 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://localhost:3000",
				"https://aicollector.co.kr",
				"https://www.aicollector.co.kr",
			},
			MaxAge: time.Hour,
		},
		Review: ReviewConfig{
			Queue:      ReviewQueueMemory,
			Workers:    4,
			QueueSize:  1000,
			MaxRetries: 3,
		},
		RateLimit: RateLimitConfig{
			Finding: WindowLimit{MaxRequests: 20, WindowSeconds: 60},
		},
		TagCache: TagCacheConfig{Size: 2048, TTL: 5 * time.Minute},
	}
}

// LoadConfig 读取 YAML 配置并应用环境变量覆盖；path 为空时只使用默认值与环境变量
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	config := Default()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// bindDefaults 注册默认值，使 AutomaticEnv 能覆盖配置文件中未出现的键
func bindDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.http.addr", d.Server.HTTP.Addr)
	v.SetDefault("server.http.mode", d.Server.HTTP.Mode)
	v.SetDefault("server.http.max_upload_mb", d.Server.HTTP.MaxUploadMB)
	v.SetDefault("server.http.read_timeout", d.Server.HTTP.ReadTimeout)
	v.SetDefault("server.http.write_timeout", d.Server.HTTP.WriteTimeout)
	v.SetDefault("server.http.shutdown_timeout", d.Server.HTTP.ShutdownTimeout)

	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.dbname", d.Database.DBName)
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.timezone", d.Database.Timezone)
	v.SetDefault("database.log_level", d.Database.LogLevel)
	v.SetDefault("database.auto_migrate", d.Database.AutoMigrate)

	v.SetDefault("redis.mode", d.Redis.Mode)
	v.SetDefault("redis.master_addr", d.Redis.MasterAddr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)

	v.SetDefault("minio.enabled", d.MinIO.Enabled)
	v.SetDefault("minio.endpoint", d.MinIO.Endpoint)
	v.SetDefault("minio.access_key_id", d.MinIO.AccessKeyID)
	v.SetDefault("minio.secret_access_key", d.MinIO.SecretAccessKey)
	v.SetDefault("minio.bucket", d.MinIO.Bucket)
	v.SetDefault("minio.use_ssl", d.MinIO.UseSSL)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", d.Log.Output)

	v.SetDefault("auth.jwt_secret", d.Auth.JWTSecret)
	v.SetDefault("auth.jwt_issuer", d.Auth.JWTIssuer)
	v.SetDefault("auth.access_token_ttl", d.Auth.AccessTokenTTL)

	v.SetDefault("video.storage_dir", d.Video.StorageDir)
	v.SetDefault("video.ffmpeg_path", d.Video.FFmpegPath)
	v.SetDefault("video.frame_limit", d.Video.FrameLimit)
	v.SetDefault("video.tmp_dir", d.Video.TmpDir)

	v.SetDefault("openai.api_key", d.OpenAI.APIKey)
	v.SetDefault("openai.base_url", d.OpenAI.BaseURL)
	v.SetDefault("openai.chat_model", d.OpenAI.ChatModel)
	v.SetDefault("openai.vision_model", d.OpenAI.VisionModel)
	v.SetDefault("openai.timeout", d.OpenAI.Timeout)

	v.SetDefault("classifier.enabled", d.Classifier.Enabled)
	v.SetDefault("classifier.credentials_file", d.Classifier.CredentialsFile)
	v.SetDefault("classifier.timeout", d.Classifier.Timeout)

	v.SetDefault("mail.smtp_host", d.Mail.SMTPHost)
	v.SetDefault("mail.smtp_port", d.Mail.SMTPPort)
	v.SetDefault("mail.username", d.Mail.Username)
	v.SetDefault("mail.password", d.Mail.Password)
	v.SetDefault("mail.from", d.Mail.From)
	v.SetDefault("mail.from_name", d.Mail.FromName)
	v.SetDefault("mail.auth", d.Mail.Auth)
	v.SetDefault("mail.oauth2.client_id", d.Mail.OAuth2.ClientID)
	v.SetDefault("mail.oauth2.client_secret", d.Mail.OAuth2.ClientSecret)
	v.SetDefault("mail.oauth2.refresh_token", d.Mail.OAuth2.RefreshToken)
	v.SetDefault("mail.oauth2.token_url", d.Mail.OAuth2.TokenURL)

	v.SetDefault("cors.allowed_origins", d.CORS.AllowedOrigins)
	v.SetDefault("cors.max_age", d.CORS.MaxAge)

	v.SetDefault("review.queue", d.Review.Queue)
	v.SetDefault("review.workers", d.Review.Workers)
	v.SetDefault("review.queue_size", d.Review.QueueSize)
	v.SetDefault("review.max_retries", d.Review.MaxRetries)

	v.SetDefault("rate_limit.finding.max_requests", d.RateLimit.Finding.MaxRequests)
	v.SetDefault("rate_limit.finding.window_seconds", d.RateLimit.Finding.WindowSeconds)

	v.SetDefault("tag_cache.size", d.TagCache.Size)
	v.SetDefault("tag_cache.ttl", d.TagCache.TTL)
}

// Validate 启动时校验配置
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return errors.New("auth.access_token_ttl must be > 0")
	}
	if strings.TrimSpace(c.Video.StorageDir) == "" {
		return errors.New("video.storage_dir is required")
	}
	if c.Video.FrameLimit <= 0 {
		return errors.New("video.frame_limit must be > 0")
	}

	switch c.Review.Queue {
	case ReviewQueueMemory, ReviewQueueRedis:
	default:
		return fmt.Errorf("review.queue must be memory or redis, got %q", c.Review.Queue)
	}
	if c.Review.Workers <= 0 {
		return errors.New("review.workers must be > 0")
	}

	switch c.Mail.Auth {
	case MailAuthPlain, MailAuthXOAuth2:
	default:
		return fmt.Errorf("mail.auth must be plain or xoauth2, got %q", c.Mail.Auth)
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		return errors.New("cors.allowed_origins must not be empty")
	}

	if c.TagCache.Size <= 0 {
		return errors.New("tag_cache.size must be > 0")
	}

	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if c.Review.Queue == ReviewQueueRedis {
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}
	return c.MinIO.Validate()
}

// MaxUploadBytes 上传大小上限（字节）
func (c *HTTPConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
