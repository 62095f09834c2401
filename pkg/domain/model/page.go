package model

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageResult 通用分页结果
type PageResult[T any] struct {
	Records []T   `json:"records"`
	Total   int64 `json:"total"`
	Size    int   `json:"size"`
	Current int   `json:"current"`
	Pages   int64 `json:"pages"`
}

// NormalizePage 修正非法的分页参数
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Offset 计算查询偏移量
func Offset(page, size int) int {
	return (page - 1) * size
}

// TotalPages 向上取整计算总页数
func TotalPages(total int64, size int) int64 {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + int64(size) - 1) / int64(size)
}

func NewPageResult[T any](records []T, total int64, page, size int) *PageResult[T] {
	if records == nil {
		records = []T{}
	}
	return &PageResult[T]{
		Records: records,
		Total:   total,
		Size:    size,
		Current: page,
		Pages:   TotalPages(total, size),
	}
}
