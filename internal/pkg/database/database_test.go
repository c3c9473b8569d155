package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestConfig_Validate(t *testing.T) {
	base := func() *Config { return DefaultConfig() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "default config", mutate: func(c *Config) {}},
		{name: "missing host", mutate: func(c *Config) { c.Host = "" }, wantErr: true},
		{name: "invalid port", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "missing user", mutate: func(c *Config) { c.User = "" }, wantErr: true},
		{name: "invalid SSL mode", mutate: func(c *Config) { c.SSLMode = "invalid" }, wantErr: true},
		{name: "invalid log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: true},
		{
			name: "idle exceeds open",
			mutate: func(c *Config) {
				c.MaxIdleConns = 100
				c.MaxOpenConns = 10
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = ""

	dsn := cfg.DSN()
	for _, part := range []string{"host=localhost", "port=5432", "dbname=aivideo", "sslmode=disable", "TimeZone=UTC"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN %q missing %q", dsn, part)
		}
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name             string
		page, size       int
		wantPage, wantSz int
	}{
		{name: "valid", page: 2, size: 36, wantPage: 2, wantSz: 36},
		{name: "negative page", page: -1, size: 10, wantPage: 0, wantSz: 10},
		{name: "zero size", page: 0, size: 0, wantPage: 0, wantSz: 10},
		{name: "size above max", page: 1, size: 500, wantPage: 1, wantSz: MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := NormalizePage(tt.page, tt.size)
			if page != tt.wantPage || size != tt.wantSz {
				t.Errorf("NormalizePage(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.size, page, size, tt.wantPage, tt.wantSz)
			}
		})
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		size      int
		wantPages int
	}{
		{name: "empty", total: 0, size: 36, wantPages: 0},
		{name: "exact", total: 72, size: 36, wantPages: 2},
		{name: "remainder", total: 73, size: 36, wantPages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPageResult[int](nil, 0, tt.size, tt.total)
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
			if p.Content == nil {
				t.Error("Content should never be nil")
			}
		})
	}
}

func TestMapPage(t *testing.T) {
	p := NewPageResult([]int{1, 2, 3}, 1, 3, 9)
	out := MapPage(p, func(v int) string { return strings.Repeat("x", v) })

	if len(out.Content) != 3 || out.Content[2] != "xxx" {
		t.Errorf("unexpected content %v", out.Content)
	}
	if out.TotalPages != 3 || out.Page != 1 {
		t.Errorf("page metadata not carried over: %+v", out)
	}
}

func TestAfterCommit_NoTransactionRunsImmediately(t *testing.T) {
	called := false
	AfterCommit(context.Background(), func(ctx context.Context) { called = true })
	if !called {
		t.Error("hook should run immediately outside a transaction")
	}
}

func TestAfterCommit_DeferredUntilFlush(t *testing.T) {
	st := &txState{}
	ctx := context.WithValue(context.Background(), txKey{}, st)

	var order []int
	AfterCommit(ctx, func(context.Context) { order = append(order, 1) })
	AfterCommit(ctx, func(context.Context) { panic("boom") })
	AfterCommit(ctx, func(context.Context) { order = append(order, 3) })

	if len(order) != 0 {
		t.Fatalf("hooks ran before commit: %v", order)
	}

	st.flush(context.Background(), nil)

	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Errorf("hooks order = %v, want [1 3]", order)
	}

	st.flush(context.Background(), nil)
	if len(order) != 2 {
		t.Error("hooks must run only once")
	}
}

func TestTransactionFromContext(t *testing.T) {
	if _, ok := TransactionFromContext(context.Background()); ok {
		t.Error("empty context should not carry a transaction")
	}

	ctx := context.WithValue(context.Background(), txKey{}, &txState{tx: &gorm.DB{}})
	if _, ok := TransactionFromContext(ctx); !ok {
		t.Error("expected transaction in context")
	}
}

func TestErrorClassifiers(t *testing.T) {
	if IsRecordNotFoundError(nil) {
		t.Error("nil is not a not-found error")
	}
	if !IsRecordNotFoundError(errors.Join(errors.New("wrap"), gorm.ErrRecordNotFound)) {
		t.Error("wrapped ErrRecordNotFound should match")
	}
	if !IsDuplicateKeyError(&pgconn.PgError{Code: "23505"}) {
		t.Error("SQLSTATE 23505 should be a duplicate key error")
	}
	if IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation is not a duplicate key error")
	}
}
