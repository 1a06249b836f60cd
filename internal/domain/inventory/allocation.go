package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Allocation 一次销售对单个批次的扣减明细
type Allocation struct {
	BatchID   uint            // 批次ID
	Quantity  int             // 从该批次扣减的数量
	UnitPrice decimal.Decimal // 批次采购单价(成本快照)
}

// Cost 该笔扣减的成本(数量×单价)
func (a Allocation) Cost() decimal.Decimal {
	return a.UnitPrice.Mul(decimal.NewFromInt(int64(a.Quantity)))
}

// Plan 一次销售的完整分摊方案
// 由PlanAllocation纯函数计算得出,不产生副作用;
// 批次的实际扣减由仓储层在同一事务内执行。
type Plan struct {
	Allocations     []Allocation    // 按消耗顺序排列的批次扣减明细
	TotalCost       decimal.Decimal // 总成本(各批次成本之和)
	AverageUnitCost decimal.Decimal // 混合平均单位成本(总成本÷销售数量)
}

// SortFIFO 按消耗顺序排序批次
// 排序键:(PurchaseTimestamp ASC, ID ASC)。
// 采购时间相同的批次按入库先后(自增ID)排序,保证顺序确定。
func SortFIFO(batches []*Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		if batches[i].PurchaseTimestamp.Equal(batches[j].PurchaseTimestamp) {
			return batches[i].ID < batches[j].ID
		}
		return batches[i].PurchaseTimestamp.Before(batches[j].PurchaseTimestamp)
	})
}

// PlanAllocation 计算FIFO分摊方案(纯函数)
//
// 入参batches必须已按消耗顺序排列(SortFIFO或仓储层按相同排序键查出),
// quantity是请求销售数量。
//
// 算法:从最旧批次开始,每个批次取min(剩余量,还需数量),直到凑够为止。
// 批次总量不足时返回InsufficientError(携带可用总量),不做部分分摊。
//
// 平均成本使用decimal除法(默认16位精度),除不尽时保留足够精度,
// 持久化时由存储层按列定义四舍五入。
func PlanAllocation(productID string, batches []*Batch, quantity int) (*Plan, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// 先验证总量,不足直接失败(批次一个都不动)
	available := 0
	for _, b := range batches {
		available += b.RemainingQuantity
	}
	if available < quantity {
		return nil, NewInsufficientError(productID, available, quantity)
	}

	plan := &Plan{
		Allocations: make([]Allocation, 0, 2),
		TotalCost:   decimal.Zero,
	}

	remaining := quantity
	for _, b := range batches {
		if remaining == 0 {
			break
		}
		if b.IsExhausted() {
			// 已耗尽的批次跳过,不占用分摊明细
			continue
		}

		take := b.RemainingQuantity
		if take > remaining {
			take = remaining
		}

		alloc := Allocation{
			BatchID:   b.ID,
			Quantity:  take,
			UnitPrice: b.UnitPrice,
		}
		plan.Allocations = append(plan.Allocations, alloc)
		plan.TotalCost = plan.TotalCost.Add(alloc.Cost())
		remaining -= take
	}

	plan.AverageUnitCost = plan.TotalCost.Div(decimal.NewFromInt(int64(quantity)))
	return plan, nil
}
