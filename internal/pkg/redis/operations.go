package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ============ List 操作 ============

// LPush 从左侧推入
func (c *Client) LPush(ctx context.Context, key string, values ...any) (int64, error) {
	n, err := c.rdb.LPush(ctx, key, values...).Result()
	if err != nil {
		c.logger.Error("redis lpush failed", zap.String("key", key), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// BRPop 阻塞地从右侧弹出，超时返回 ErrNil
func (c *Client) BRPop(ctx context.Context, timeout time.Duration, key string) (string, error) {
	res, err := c.rdb.BRPop(ctx, timeout, key).Result()
	if err != nil {
		return "", err
	}
	return popValue(res)
}

// popValue 解析 BRPOP 的 [key, value] 返回
func popValue(res []string) (string, error) {
	if len(res) != 2 {
		return "", fmt.Errorf("redis: unexpected brpop reply of length %d", len(res))
	}
	return res[1], nil
}

// ============ Set 操作 ============

// SAdd 添加成员，返回新加入的数量
func (c *Client) SAdd(ctx context.Context, key string, members ...any) (int64, error) {
	n, err := c.rdb.SAdd(ctx, key, members...).Result()
	if err != nil {
		c.logger.Error("redis sadd failed", zap.String("key", key), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// SRem 删除成员
func (c *Client) SRem(ctx context.Context, key string, members ...any) (int64, error) {
	n, err := c.rdb.SRem(ctx, key, members...).Result()
	if err != nil {
		c.logger.Error("redis srem failed", zap.String("key", key), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// ============ Script 操作 ============

// Eval 执行 Lua 脚本
func (c *Client) Eval(ctx context.Context, script string, keys []string, args ...any) (any, error) {
	result, err := c.rdb.Eval(ctx, script, keys, args...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Error("redis eval failed", zap.Strings("keys", keys), zap.Error(err))
		return nil, err
	}
	return result, err
}

// LLen 列表长度
func (c *Client) LLen(ctx context.Context, key string) (int64, error) {
	return c.rdb.LLen(ctx, key).Result()
}
