package database

import (
	"context"
	"database/sql"
	"sync"

	"github.com/lk2023060901/ai-video-backend/internal/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TxFunc 事务内执行的函数，ctx 已携带事务
type TxFunc func(ctx context.Context, tx *gorm.DB) error

type txKey struct{}

// txState 一个事务及其提交后回调
type txState struct {
	tx    *gorm.DB
	mu    sync.Mutex
	hooks []func(context.Context)
}

func (s *txState) register(fn func(context.Context)) {
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// flush 按注册顺序执行回调；单个回调 panic 不影响后续回调
func (s *txState) flush(ctx context.Context, log *logger.Logger) {
	s.mu.Lock()
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	for _, hook := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil && log != nil {
					log.Error("after-commit hook panicked", zap.Any("panic", r))
				}
			}()
			hook(ctx)
		}()
	}
}

// Transaction 在事务内执行 fn。已处于事务中时直接复用外层事务。
// 事务提交后依次执行 AfterCommit 注册的回调，回滚时丢弃。
func (db *DB) Transaction(ctx context.Context, fn TxFunc) error {
	return db.TransactionWithOptions(ctx, nil, fn)
}

// TransactionWithOptions 带隔离级别等选项的事务
func (db *DB) TransactionWithOptions(ctx context.Context, opts *sql.TxOptions, fn TxFunc) error {
	if st, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx, st.tx)
	}

	st := &txState{}
	var txOpts []*sql.TxOptions
	if opts != nil {
		txOpts = append(txOpts, opts)
	}

	err := db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st.tx = tx
		if err := fn(context.WithValue(ctx, txKey{}, st), tx); err != nil {
			db.logger.WithContext(ctx).Debug("transaction rolled back", zap.Error(err))
			return err
		}
		return nil
	}, txOpts...)
	if err != nil {
		return err
	}

	st.flush(context.WithoutCancel(ctx), db.logger)
	return nil
}

// InTx 供 biz 层使用的事务入口，不暴露 gorm
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.Transaction(ctx, func(ctx context.Context, _ *gorm.DB) error {
		return fn(ctx)
	})
}

// AfterCommit 注册提交后执行的回调。ctx 中没有事务时立即执行。
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	if st, ok := ctx.Value(txKey{}).(*txState); ok {
		st.register(fn)
		return
	}
	fn(ctx)
}

// TransactionFromContext 取出 ctx 中的事务
func TransactionFromContext(ctx context.Context) (*gorm.DB, bool) {
	st, ok := ctx.Value(txKey{}).(*txState)
	if !ok || st.tx == nil {
		return nil, false
	}
	return st.tx, true
}

// GetDBFromContext ctx 中有事务则返回事务，否则返回普通连接
func (db *DB) GetDBFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := TransactionFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.DB.WithContext(ctx)
}
