package database

import (
	"gorm.io/gorm"
)

// MaxPageSize 单页上限
const MaxPageSize = 100

// Paginate 分页 scope，page 从 0 开始
func Paginate(page, size int) func(db *gorm.DB) *gorm.DB {
	page, size = NormalizePage(page, size)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(page * size).Limit(size)
	}
}

// NormalizePage 修正非法分页参数
func NormalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 10
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// WhereIf 条件成立时追加 where
func WhereIf(condition bool, query interface{}, args ...interface{}) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if condition {
			return db.Where(query, args...)
		}
		return db
	}
}

// PageResult 分页结果
type PageResult[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPageResult 计算总页数
func NewPageResult[T any](content []T, page, size int, total int64) *PageResult[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return &PageResult[T]{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

// MapPage 转换分页内容类型
func MapPage[T, R any](p *PageResult[T], fn func(T) R) *PageResult[R] {
	out := make([]R, len(p.Content))
	for i, v := range p.Content {
		out[i] = fn(v)
	}
	return &PageResult[R]{
		Content:       out,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}
