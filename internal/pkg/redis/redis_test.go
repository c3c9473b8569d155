package redis

import (
	"errors"
	"testing"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "default", mutate: func(c *Config) {}},
		{name: "missing master addr", mutate: func(c *Config) { c.MasterAddr = "" }, wantErr: true},
		{name: "sentinel without name", mutate: func(c *Config) {
			c.Mode = ModeSentinel
			c.SentinelAddrs = []string{"s1:26379"}
		}, wantErr: true},
		{name: "sentinel ok", mutate: func(c *Config) {
			c.Mode = ModeSentinel
			c.SentinelAddrs = []string{"s1:26379"}
			c.MasterName = "mymaster"
		}},
		{name: "cluster without addrs", mutate: func(c *Config) { c.Mode = ModeCluster }, wantErr: true},
		{name: "unknown mode", mutate: func(c *Config) { c.Mode = "read-write" }, wantErr: true},
		{name: "db out of range", mutate: func(c *Config) { c.DB = 16 }, wantErr: true},
		{name: "pool size zero", mutate: func(c *Config) { c.PoolSize = 0 }, wantErr: true},
		{name: "idle above pool", mutate: func(c *Config) { c.MinIdleConns = 11 }, wantErr: true},
		{name: "zero dial timeout", mutate: func(c *Config) { c.DialTimeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Addrs(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []string{"localhost:6379"}, cfg.addrs())

	cfg.Mode = ModeCluster
	cfg.ClusterAddrs = []string{"a:1", "b:2"}
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.addrs())
}

func TestPopValue(t *testing.T) {
	v, err := popValue([]string{"review:queue", "42"})
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	_, err = popValue([]string{"only-key"})
	assert.Error(t, err)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PoolSize = 0
	_, err := New(cfg, logger.NewNop())
	assert.Error(t, err)
}

func TestLoadTLSConfig_MissingCA(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableTLS = true
	cfg.TLSCAFile = t.TempDir() + "/missing.pem"
	_, err := loadTLSConfig(cfg)
	assert.Error(t, err)
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsNil(goredis.Nil))
	assert.False(t, IsNil(errors.New("x")))
	assert.True(t, IsClosed(goredis.ErrClosed))
}

func TestClient_NotInitialized(t *testing.T) {
	c := &Client{logger: logger.NewNop(), config: DefaultConfig()}
	assert.ErrorIs(t, c.Ping(t.Context()), ErrNotInitialized)
	assert.NoError(t, c.Close())
}
