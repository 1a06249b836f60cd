package product

import (
	"context"
)

// Repository 商品仓储接口(依赖倒置原则)
// 由domain层定义接口,infrastructure层实现,便于Mock测试。
type Repository interface {
	// FindByID 根据ID查找商品
	FindByID(ctx context.Context, id string) (*Product, error)

	// EnsureExists 确保商品存在,不存在则以占位信息建档
	// 已存在时不覆盖任何字段(INSERT IGNORE语义)。
	EnsureExists(ctx context.Context, id string) error
}
