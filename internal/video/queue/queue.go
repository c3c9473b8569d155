// Package queue 审核任务的投递与消费：进程内 worker pool 或 Redis 列表
package queue

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler 处理一个审核任务，返回错误时 Redis 队列会重试
type Handler func(ctx context.Context, videoNo int64) error

// Job Redis 队列中的任务载荷
type Job struct {
	VideoNo    int64 `json:"video_no"`
	RetryCount int   `json:"retry_count"`
}

func encodeJob(j Job) (string, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}
	return string(b), nil
}

func decodeJob(s string) (Job, error) {
	var j Job
	if err := json.Unmarshal([]byte(s), &j); err != nil {
		return Job{}, fmt.Errorf("unmarshal job: %w", err)
	}
	if j.VideoNo <= 0 {
		return Job{}, fmt.Errorf("invalid job payload: %s", s)
	}
	return j, nil
}
