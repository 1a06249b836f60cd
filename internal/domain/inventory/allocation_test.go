package inventory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mkBatch(id uint, remaining int, price string, purchasedAt time.Time) *Batch {
	return &Batch{
		ID:                id,
		ProductID:         "PRD001",
		Quantity:          remaining,
		RemainingQuantity: remaining,
		UnitPrice:         decimal.RequireFromString(price),
		PurchaseTimestamp: purchasedAt,
	}
}

// TestPlanAllocation_CrossBatch 测试跨批次分摊
// 批次1: 100件@50, 批次2: 80件@55, 销售120件
// 期望: 批次1出100件, 批次2出20件, 总成本6100, 平均成本50.8333...
func TestPlanAllocation_CrossBatch(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	batches := []*Batch{
		mkBatch(1, 100, "50", t0),
		mkBatch(2, 80, "55", t0.Add(24*time.Hour)),
	}

	plan, err := PlanAllocation("PRD001", batches, 120)
	if err != nil {
		t.Fatalf("期望分摊成功,实际失败: %v", err)
	}

	if len(plan.Allocations) != 2 {
		t.Fatalf("期望消耗2个批次,实际%d个", len(plan.Allocations))
	}

	if plan.Allocations[0].BatchID != 1 || plan.Allocations[0].Quantity != 100 {
		t.Errorf("期望批次1出100件,实际批次%d出%d件",
			plan.Allocations[0].BatchID, plan.Allocations[0].Quantity)
	}
	if plan.Allocations[1].BatchID != 2 || plan.Allocations[1].Quantity != 20 {
		t.Errorf("期望批次2出20件,实际批次%d出%d件",
			plan.Allocations[1].BatchID, plan.Allocations[1].Quantity)
	}

	wantCost := decimal.RequireFromString("6100")
	if !plan.TotalCost.Equal(wantCost) {
		t.Errorf("期望总成本%s,实际%s", wantCost, plan.TotalCost)
	}

	// 6100/120 = 50.8333...(循环),校验到4位小数
	wantAvg := decimal.RequireFromString("50.8333")
	if !plan.AverageUnitCost.Round(4).Equal(wantAvg) {
		t.Errorf("期望平均成本%s,实际%s", wantAvg, plan.AverageUnitCost.Round(4))
	}
}

// TestPlanAllocation_SingleBatch 测试单批次内扣减
func TestPlanAllocation_SingleBatch(t *testing.T) {
	batches := []*Batch{
		mkBatch(1, 100, "50", time.Now()),
	}

	plan, err := PlanAllocation("PRD001", batches, 30)
	if err != nil {
		t.Fatalf("期望分摊成功,实际失败: %v", err)
	}

	if len(plan.Allocations) != 1 {
		t.Fatalf("期望消耗1个批次,实际%d个", len(plan.Allocations))
	}
	if plan.Allocations[0].Quantity != 30 {
		t.Errorf("期望扣减30件,实际%d件", plan.Allocations[0].Quantity)
	}
	if !plan.TotalCost.Equal(decimal.RequireFromString("1500")) {
		t.Errorf("期望总成本1500,实际%s", plan.TotalCost)
	}
	if !plan.AverageUnitCost.Equal(decimal.RequireFromString("50")) {
		t.Errorf("期望平均成本50,实际%s", plan.AverageUnitCost)
	}
}

// TestPlanAllocation_ExactDrain 测试恰好清空全部库存
func TestPlanAllocation_ExactDrain(t *testing.T) {
	t0 := time.Now()
	batches := []*Batch{
		mkBatch(1, 10, "5", t0),
		mkBatch(2, 20, "6", t0.Add(time.Hour)),
	}

	plan, err := PlanAllocation("PRD001", batches, 30)
	if err != nil {
		t.Fatalf("期望分摊成功,实际失败: %v", err)
	}
	if plan.Allocations[0].Quantity != 10 || plan.Allocations[1].Quantity != 20 {
		t.Errorf("期望扣减10+20,实际%d+%d",
			plan.Allocations[0].Quantity, plan.Allocations[1].Quantity)
	}
	// 10*5 + 20*6 = 170
	if !plan.TotalCost.Equal(decimal.RequireFromString("170")) {
		t.Errorf("期望总成本170,实际%s", plan.TotalCost)
	}
}

// TestPlanAllocation_Insufficient 测试库存不足
// 不足时不做部分分摊,错误携带可用量与请求量。
func TestPlanAllocation_Insufficient(t *testing.T) {
	batches := []*Batch{
		mkBatch(1, 50, "50", time.Now()),
	}

	_, err := PlanAllocation("PRD001", batches, 60)
	if err == nil {
		t.Fatal("期望返回库存不足错误,实际成功")
	}

	insErr, ok := err.(*InsufficientError)
	if !ok {
		t.Fatalf("期望*InsufficientError,实际%T", err)
	}
	if insErr.Available != 50 || insErr.Requested != 60 {
		t.Errorf("期望可用50请求60,实际可用%d请求%d", insErr.Available, insErr.Requested)
	}
	if !IsInsufficient(err) {
		t.Error("IsInsufficient应识别库存不足错误")
	}
}

// TestPlanAllocation_SkipExhausted 测试跳过已耗尽批次
func TestPlanAllocation_SkipExhausted(t *testing.T) {
	t0 := time.Now()
	exhausted := mkBatch(1, 0, "40", t0)
	batches := []*Batch{
		exhausted,
		mkBatch(2, 30, "50", t0.Add(time.Hour)),
	}

	plan, err := PlanAllocation("PRD001", batches, 10)
	if err != nil {
		t.Fatalf("期望分摊成功,实际失败: %v", err)
	}
	if len(plan.Allocations) != 1 || plan.Allocations[0].BatchID != 2 {
		t.Errorf("期望只消耗批次2,实际%+v", plan.Allocations)
	}
}

// TestPlanAllocation_InvalidQuantity 测试非法数量
func TestPlanAllocation_InvalidQuantity(t *testing.T) {
	batches := []*Batch{mkBatch(1, 100, "50", time.Now())}

	for _, q := range []int{0, -5} {
		if _, err := PlanAllocation("PRD001", batches, q); err != ErrInvalidQuantity {
			t.Errorf("数量%d期望ErrInvalidQuantity,实际%v", q, err)
		}
	}
}

// TestSortFIFO 测试消耗顺序排序
// 采购时间相同的批次按ID升序,保证顺序确定。
func TestSortFIFO(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	batches := []*Batch{
		mkBatch(3, 10, "1", t0.Add(time.Hour)),
		mkBatch(2, 10, "1", t0),
		mkBatch(1, 10, "1", t0),
	}

	SortFIFO(batches)

	wantOrder := []uint{1, 2, 3}
	for i, want := range wantOrder {
		if batches[i].ID != want {
			t.Errorf("位置%d期望批次%d,实际批次%d", i, want, batches[i].ID)
		}
	}
}

// TestPlanAllocation_CostPrecision 测试成本精度
// 单价带小数时跨批次成本逐项累加,不使用浮点数。
func TestPlanAllocation_CostPrecision(t *testing.T) {
	t0 := time.Now()
	batches := []*Batch{
		mkBatch(1, 3, "0.10", t0),
		mkBatch(2, 3, "0.20", t0.Add(time.Hour)),
	}

	plan, err := PlanAllocation("PRD001", batches, 6)
	if err != nil {
		t.Fatalf("期望分摊成功,实际失败: %v", err)
	}

	// 3*0.10 + 3*0.20 = 0.90 (float64下0.1*3会出现0.30000000000000004)
	if !plan.TotalCost.Equal(decimal.RequireFromString("0.90")) {
		t.Errorf("期望总成本0.90,实际%s", plan.TotalCost)
	}
	if !plan.AverageUnitCost.Equal(decimal.RequireFromString("0.15")) {
		t.Errorf("期望平均成本0.15,实际%s", plan.AverageUnitCost)
	}
}
