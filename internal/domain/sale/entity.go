package sale

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/inventory/internal/domain/inventory"
)

// Sale 销售记录实体(聚合根)
// DDD设计说明:
// 1. Sale是聚合根,BatchDetail是子实体,必须同一事务写入
// 2. TotalCost/AverageUnitCost冗余存储下单时刻的成本(历史快照,
//    后续采购价变化不影响已成交记录)
// 3. BatchDetail只保存BatchID,不跨聚合引用Batch对象
type Sale struct {
	ID              uint
	SaleNo          string          // 销售单号(业务主键,全局唯一)
	ProductID       string          // 商品ID
	Quantity        int             // 销售数量
	TotalCost       decimal.Decimal // 总成本(各批次成本之和)
	AverageUnitCost decimal.Decimal // 混合平均单位成本
	SaleTimestamp   time.Time       // 销售时间
	Details         []BatchDetail   // 批次扣减明细(聚合内的子实体)
	CreatedAt       time.Time
}

// BatchDetail 销售的批次扣减明细
// 记录该笔销售从哪些批次各扣了多少、按什么单价计成本,
// 是成本可追溯的依据。
type BatchDetail struct {
	ID        uint
	SaleID    uint            // 所属销售ID
	BatchID   uint            // 批次ID
	Quantity  int             // 从该批次扣减的数量
	UnitPrice decimal.Decimal // 批次采购单价(成本快照)
	Cost      decimal.Decimal // 该笔扣减成本(数量×单价)
}

// NewSale 根据分摊方案创建销售记录(工厂方法)
// plan由inventory.PlanAllocation计算得出,明细顺序即消耗顺序。
func NewSale(saleNo, productID string, quantity int, plan *inventory.Plan, soldAt time.Time) *Sale {
	if soldAt.IsZero() {
		soldAt = time.Now()
	}

	details := make([]BatchDetail, 0, len(plan.Allocations))
	for _, alloc := range plan.Allocations {
		details = append(details, BatchDetail{
			BatchID:   alloc.BatchID,
			Quantity:  alloc.Quantity,
			UnitPrice: alloc.UnitPrice,
			Cost:      alloc.Cost(),
		})
	}

	return &Sale{
		SaleNo:          saleNo,
		ProductID:       productID,
		Quantity:        quantity,
		TotalCost:       plan.TotalCost,
		AverageUnitCost: plan.AverageUnitCost,
		SaleTimestamp:   soldAt,
		Details:         details,
		CreatedAt:       time.Now(),
	}
}

// DetailQuantitySum 明细扣减量之和
// 不变式:必须等于Quantity,仓储层写入前校验。
func (s *Sale) DetailQuantitySum() int {
	sum := 0
	for _, d := range s.Details {
		sum += d.Quantity
	}
	return sum
}
