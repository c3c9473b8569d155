package workerpool

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Priority 优先级定义
type Priority int

const (
	PriorityLow    Priority = 0
	PriorityNormal Priority = 5
	PriorityHigh   Priority = 10
)

var (
	ErrPoolClosed = errors.New("worker pool is closed")
	ErrQueueFull  = errors.New("worker pool queue is full")
)

// ============= 配置 =============

// Config Worker Pool 配置
type Config struct {
	Workers        int           `mapstructure:"workers"`         // worker 数量
	QueueSize      int           `mapstructure:"queue_size"`      // 优先级队列容量
	EnablePriority bool          `mapstructure:"enable_priority"` // 是否启用优先级队列
	ReleaseTimeout time.Duration `mapstructure:"release_timeout"` // 关闭时等待运行中任务的时长
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Workers:        4,
		QueueSize:      1000,
		EnablePriority: true,
		ReleaseTimeout: 30 * time.Second,
	}
}

// ============= 统计信息 =============

// Statistics 统计快照
type Statistics struct {
	Submitted int64 // 已提交
	Completed int64 // 已完成
	Failed    int64 // panic 或调度失败
	Running   int64 // 运行中
}

type counters struct {
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	running   atomic.Int64
}

func (c *counters) snapshot() Statistics {
	return Statistics{
		Submitted: c.submitted.Load(),
		Completed: c.completed.Load(),
		Failed:    c.failed.Load(),
		Running:   c.running.Load(),
	}
}

// ============= 优先级队列 =============

type priorityTask struct {
	Priority  Priority
	Task      func()
	Timestamp time.Time
	seq       uint64
	index     int
}

type priorityQueue []*priorityTask

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].Priority != pq[j].Priority {
		return pq[i].Priority > pq[j].Priority
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	task := x.(*priorityTask)
	task.index = len(*pq)
	*pq = append(*pq, task)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	task.index = -1
	*pq = old[:n-1]
	return task
}

// ============= Worker Pool =============

// Pool 基于 ants 的后台任务池，可选优先级调度
type Pool struct {
	pool   *ants.Pool
	config *Config

	priorityQueue *priorityQueue
	queueMu       sync.Mutex
	notEmpty      chan struct{}
	seq           uint64

	stats counters

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *zap.Logger
}

// New 创建 Worker Pool
func New(config *Config, logger *zap.Logger) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers <= 0 {
		return nil, fmt.Errorf("workers must be > 0, got %d", config.Workers)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	antsPool, err := ants.NewPool(config.Workers,
		ants.WithPanicHandler(func(err any) {
			logger.Error("worker panic", zap.Any("error", err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		pool:   antsPool,
		config: config,
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}

	if config.EnablePriority {
		pq := make(priorityQueue, 0, config.QueueSize)
		heap.Init(&pq)
		p.priorityQueue = &pq
		p.notEmpty = make(chan struct{}, 1)

		p.wg.Add(1)
		go p.scheduler()
	}

	return p, nil
}

// Submit 提交任务
func (p *Pool) Submit(task func()) error {
	return p.SubmitWithPriority(PriorityNormal, task)
}

// SubmitWithPriority 提交带优先级的任务
func (p *Pool) SubmitWithPriority(priority Priority, task func()) error {
	select {
	case <-p.ctx.Done():
		return ErrPoolClosed
	default:
	}

	if p.config.EnablePriority {
		p.queueMu.Lock()
		if p.config.QueueSize > 0 && p.priorityQueue.Len() >= p.config.QueueSize {
			p.queueMu.Unlock()
			return ErrQueueFull
		}
		p.seq++
		heap.Push(p.priorityQueue, &priorityTask{
			Priority:  priority,
			Task:      task,
			Timestamp: time.Now(),
			seq:       p.seq,
		})
		p.queueMu.Unlock()

		p.stats.submitted.Add(1)

		select {
		case p.notEmpty <- struct{}{}:
		default:
		}
		return nil
	}

	p.stats.submitted.Add(1)
	if err := p.pool.Submit(p.wrap(task)); err != nil {
		p.stats.failed.Add(1)
		return err
	}
	return nil
}

// wrap 统计运行状态，panic 计入失败后继续抛给 ants
func (p *Pool) wrap(task func()) func() {
	return func() {
		p.stats.running.Add(1)
		completed := false
		defer func() {
			p.stats.running.Add(-1)
			if completed {
				p.stats.completed.Add(1)
			} else {
				p.stats.failed.Add(1)
			}
		}()
		task()
		completed = true
	}
}

// scheduler 调度器（仅在启用优先级队列时运行）
func (p *Pool) scheduler() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.notEmpty:
			p.dispatch()
		}
	}
}

func (p *Pool) dispatch() {
	for {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		p.queueMu.Lock()
		if p.priorityQueue.Len() == 0 {
			p.queueMu.Unlock()
			return
		}
		pt := heap.Pop(p.priorityQueue).(*priorityTask)
		p.queueMu.Unlock()

		// ants 默认阻塞直到有空闲 worker
		if err := p.pool.Submit(p.wrap(pt.Task)); err != nil {
			p.queueMu.Lock()
			heap.Push(p.priorityQueue, pt)
			p.queueMu.Unlock()
			p.logger.Warn("dispatch task failed, requeued", zap.Error(err))
			time.Sleep(10 * time.Millisecond)
			return
		}
	}
}

// QueueLength 获取等待调度的任务数量
func (p *Pool) QueueLength() int {
	if !p.config.EnablePriority {
		return 0
	}
	p.queueMu.Lock()
	defer p.queueMu.Unlock()
	return p.priorityQueue.Len()
}

// Stats 获取统计信息
func (p *Pool) Stats() Statistics {
	return p.stats.snapshot()
}

// Shutdown 停止接收任务并等待运行中的任务结束，未调度的任务被丢弃
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()

	dropped := p.QueueLength()
	if dropped > 0 {
		p.logger.Warn("worker pool shutdown with queued tasks", zap.Int("dropped", dropped))
	}

	timeout := p.config.ReleaseTimeout
	if timeout <= 0 {
		p.pool.Release()
		return
	}
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		p.logger.Warn("worker pool release timeout", zap.Error(err))
	}
}
