package logger

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Config 日志配置
type Config struct {
	Level            string     `mapstructure:"level"`  // debug, info, warn, error
	Format           string     `mapstructure:"format"` // json, console
	Output           string     `mapstructure:"output"` // stdout, file, both
	File             FileConfig `mapstructure:"file"`
	EnableStacktrace bool       `mapstructure:"enable_stacktrace"`
}

// FileConfig 滚动文件配置 (lumberjack)
type FileConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxAge     int    `mapstructure:"max_age"`  // 天
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Level:            "info",
		Format:           "json",
		Output:           "stdout",
		EnableStacktrace: true,
		File: FileConfig{
			Filename:   "logs/ai-video.log",
			MaxSize:    100,
			MaxAge:     30,
			MaxBackups: 10,
			Compress:   true,
		},
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Level)) {
		return fmt.Errorf("invalid log level %q", c.Level)
	}
	if c.Format != "json" && c.Format != "console" {
		return errors.New("log format must be 'json' or 'console'")
	}
	switch c.Output {
	case "stdout":
	case "file", "both":
		if c.File.Filename == "" {
			return errors.New("log file name is required when output is 'file' or 'both'")
		}
		if c.File.MaxSize <= 0 || c.File.MaxAge <= 0 || c.File.MaxBackups < 0 {
			return errors.New("log file rotation settings must be positive")
		}
	default:
		return errors.New("log output must be 'stdout', 'file' or 'both'")
	}
	return nil
}
