package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status 单个商品的库存状态(读模型)
// 由仓储层聚合查询得出,不是持久化实体。
type Status struct {
	ProductID       string          // 商品ID
	ProductName     string          // 商品名称
	TotalQuantity   int             // 剩余总量(各批次剩余量之和)
	TotalValue      decimal.Decimal // 剩余库存价值(Σ 剩余量×单价)
	WeightedAvgCost decimal.Decimal // 加权平均成本(总价值÷总量,总量为0时为0)
	ActiveBatches   int             // 未耗尽批次数
	OldestBatchTime *time.Time      // 最旧未耗尽批次的采购时间(无库存时为nil)
}

// Repository 库存仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 锁定与扣减必须在同一事务中调用(通过context传递事务)
type Repository interface {
	// CreateBatch 创建采购批次
	CreateBatch(ctx context.Context, batch *Batch) error

	// AvailableQuantity 查询商品当前可用总量(未加锁的快照)
	// 用于事务外的快速预检,权威判定以LockAvailableByProduct结果为准。
	AvailableQuantity(ctx context.Context, productID string) (int, error)

	// LockAvailableByProduct 锁定商品的全部未耗尽批次
	// 使用SELECT FOR UPDATE按(purchase_timestamp ASC, id ASC)锁定,
	// 并发销售在此串行化,防止超卖。必须在事务内调用。
	LockAvailableByProduct(ctx context.Context, productID string) ([]*Batch, error)

	// DeductBatch 扣减批次剩余量(原子操作)
	// 带剩余量守卫条件,扣减后为负时返回ErrBatchNotFound之外的冲突错误,
	// 正常流程中锁已持有,守卫只是最后一道防线。
	DeductBatch(ctx context.Context, batchID uint, quantity int) error

	// ListByProduct 分页查询商品的批次(含已耗尽,按消耗顺序)
	ListByProduct(ctx context.Context, productID string, page, pageSize int) ([]*Batch, int64, error)

	// StatusByProduct 查询单个商品的库存状态
	// 商品不存在时返回product.ErrProductNotFound;存在但无批次时返回零值状态。
	StatusByProduct(ctx context.Context, productID string) (*Status, error)

	// StatusAll 查询全部商品的库存状态(含无批次商品)
	StatusAll(ctx context.Context) ([]*Status, error)
}
