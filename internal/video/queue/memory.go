package queue

import (
	"context"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/metrics"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/workerpool"
	"go.uber.org/zap"
)

// MemoryDispatcher 投递到进程内 worker pool，进程退出时未执行的任务丢失
type MemoryDispatcher struct {
	pool    *workerpool.Pool
	handler Handler
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewMemoryDispatcher(pool *workerpool.Pool, handler Handler, logger *zap.Logger) *MemoryDispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &MemoryDispatcher{
		pool:    pool,
		handler: handler,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Dispatch 提交审核任务，不阻塞调用方；任务脱离请求生命周期，Stop 时被取消
func (d *MemoryDispatcher) Dispatch(ctx context.Context, videoNo int64) error {
	detached := context.WithoutCancel(ctx)
	err := d.pool.Submit(func() {
		defer metrics.ReviewQueueDepth.Set(float64(d.pool.QueueLength()))
		jobCtx, cancel := context.WithCancel(detached)
		defer cancel()
		stop := context.AfterFunc(d.ctx, cancel)
		defer stop()

		if err := d.handler(jobCtx, videoNo); err != nil {
			if jobCtx.Err() != nil {
				d.logger.Warn("review job interrupted", zap.Int64("video_no", videoNo), zap.Error(err))
				return
			}
			d.logger.Error("review job failed", zap.Int64("video_no", videoNo), zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	metrics.ReviewQueueDepth.Set(float64(d.pool.QueueLength()))
	d.logger.Debug("review job submitted", zap.Int64("video_no", videoNo))
	return nil
}

// Start 与 RedisDispatcher 对齐，worker pool 创建后即在运行
func (d *MemoryDispatcher) Start() {}

// Stop 取消运行中的任务并等待其返回
func (d *MemoryDispatcher) Stop() {
	d.cancel()
	d.pool.Shutdown()
	stats := d.pool.Stats()
	d.logger.Info("review pool stopped",
		zap.Int64("submitted", stats.Submitted),
		zap.Int64("completed", stats.Completed),
		zap.Int64("failed", stats.Failed),
	)
}
