package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/metrics"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/redis"
	"go.uber.org/zap"
)

const (
	// DefaultQueueKey 待审核列表
	DefaultQueueKey = "video:review:queue"
	// DefaultProcessingKey 正在处理的 videoNo 集合
	DefaultProcessingKey = "video:review:processing"

	popTimeout = 2 * time.Second
)

// ListClient RedisDispatcher 用到的 Redis 操作，由 redis.Client 实现
type ListClient interface {
	LPush(ctx context.Context, key string, values ...any) (int64, error)
	BRPop(ctx context.Context, timeout time.Duration, key string) (string, error)
	SAdd(ctx context.Context, key string, members ...any) (int64, error)
	SRem(ctx context.Context, key string, members ...any) (int64, error)
	LLen(ctx context.Context, key string) (int64, error)
}

// RedisConfig 队列参数
type RedisConfig struct {
	QueueKey      string
	ProcessingKey string
	Workers       int
	MaxRetries    int
}

// RedisDispatcher LPUSH 投递，多个 worker BRPOP 消费，失败后按次数重新入队
type RedisDispatcher struct {
	client  ListClient
	handler Handler
	cfg     RedisConfig
	logger  *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

func NewRedisDispatcher(client ListClient, handler Handler, cfg RedisConfig, logger *zap.Logger) *RedisDispatcher {
	if cfg.QueueKey == "" {
		cfg.QueueKey = DefaultQueueKey
	}
	if cfg.ProcessingKey == "" {
		cfg.ProcessingKey = DefaultProcessingKey
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &RedisDispatcher{
		client:  client,
		handler: handler,
		cfg:     cfg,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Dispatch 入队
func (d *RedisDispatcher) Dispatch(ctx context.Context, videoNo int64) error {
	return d.push(ctx, Job{VideoNo: videoNo})
}

func (d *RedisDispatcher) push(ctx context.Context, job Job) error {
	payload, err := encodeJob(job)
	if err != nil {
		return err
	}
	depth, err := d.client.LPush(ctx, d.cfg.QueueKey, payload)
	if err != nil {
		return err
	}
	metrics.ReviewQueueDepth.Set(float64(depth))
	return nil
}

// Start 启动 worker
func (d *RedisDispatcher) Start() {
	d.logger.Info("starting review queue workers",
		zap.String("queue", d.cfg.QueueKey),
		zap.Int("workers", d.cfg.Workers),
	)
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

// Stop 通知 worker 退出并等待当前任务结束
func (d *RedisDispatcher) Stop() {
	d.once.Do(func() {
		close(d.stopCh)
	})
	d.wg.Wait()
	d.logger.Info("review queue workers stopped")
}

func (d *RedisDispatcher) worker(id int) {
	defer d.wg.Done()
	log := d.logger.With(zap.Int("worker_id", id))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-d.stopCh
		cancel()
	}()

	for {
		select {
		case <-d.stopCh:
			return
		default:
		}

		raw, err := d.client.BRPop(ctx, popTimeout, d.cfg.QueueKey)
		if err != nil {
			if redis.IsNil(err) || errors.Is(err, context.Canceled) {
				continue
			}
			log.Error("failed to pop review job", zap.Error(err))
			select {
			case <-d.stopCh:
				return
			case <-time.After(time.Second):
			}
			continue
		}

		d.process(ctx, log, raw)
	}
}

// process 处理单个任务；同一 videoNo 正在处理时跳过。
// ctx 只约束 handler，队列簿记在 Stop 之后仍需完成
func (d *RedisDispatcher) process(ctx context.Context, log *zap.Logger, raw string) {
	bookkeeping := context.WithoutCancel(ctx)
	job, err := decodeJob(raw)
	if err != nil {
		log.Error("dropping malformed review job", zap.String("payload", raw), zap.Error(err))
		return
	}
	log = log.With(zap.Int64("video_no", job.VideoNo))
	member := strconv.FormatInt(job.VideoNo, 10)

	added, err := d.client.SAdd(bookkeeping, d.cfg.ProcessingKey, member)
	if err != nil {
		log.Error("failed to mark job processing", zap.Error(err))
		d.retry(bookkeeping, log, job)
		return
	}
	if added == 0 {
		log.Warn("review job already in progress, skipping")
		return
	}
	defer func() {
		if _, err := d.client.SRem(bookkeeping, d.cfg.ProcessingKey, member); err != nil {
			log.Warn("failed to clear processing mark", zap.Error(err))
		}
		if depth, err := d.client.LLen(bookkeeping, d.cfg.QueueKey); err == nil {
			metrics.ReviewQueueDepth.Set(float64(depth))
		}
	}()

	if err := d.handler(ctx, job.VideoNo); err != nil {
		if ctx.Err() != nil {
			// 被 Stop 打断：原样放回队列，不计重试次数
			log.Warn("review job interrupted, requeued", zap.Error(err))
			if err := d.push(bookkeeping, job); err != nil {
				log.Error("failed to requeue interrupted review job", zap.Error(err))
			}
			return
		}
		log.Error("review job failed", zap.Int("retry_count", job.RetryCount), zap.Error(err))
		d.retry(bookkeeping, log, job)
		return
	}
	log.Debug("review job done")
}

func (d *RedisDispatcher) retry(ctx context.Context, log *zap.Logger, job Job) {
	if job.RetryCount >= d.cfg.MaxRetries {
		log.Error("review job exceeded max retries, dropped", zap.Int("max_retries", d.cfg.MaxRetries))
		return
	}
	job.RetryCount++
	if err := d.push(ctx, job); err != nil {
		log.Error("failed to requeue review job", zap.Error(err))
	}
}
