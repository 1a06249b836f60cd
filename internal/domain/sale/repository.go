package sale

import (
	"context"
)

// Repository 销售仓储接口(依赖倒置原则)
type Repository interface {
	// Create 创建销售记录(包含批次明细)
	// 销售主记录和明细必须在同一事务中写入,
	// 写入前校验明细扣减量之和等于销售数量。
	Create(ctx context.Context, sale *Sale) error

	// ListByProduct 分页查询商品的销售记录(最新在前)
	ListByProduct(ctx context.Context, productID string, page, pageSize int) ([]*Sale, int64, error)
}
