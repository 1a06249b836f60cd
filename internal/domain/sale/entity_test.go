package sale

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/inventory/internal/domain/inventory"
)

// TestNewSale 测试根据分摊方案创建销售记录
func TestNewSale(t *testing.T) {
	plan := &inventory.Plan{
		Allocations: []inventory.Allocation{
			{BatchID: 1, Quantity: 100, UnitPrice: decimal.RequireFromString("50")},
			{BatchID: 2, Quantity: 20, UnitPrice: decimal.RequireFromString("55")},
		},
		TotalCost:       decimal.RequireFromString("6100"),
		AverageUnitCost: decimal.RequireFromString("6100").Div(decimal.NewFromInt(120)),
	}

	soldAt := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	s := NewSale("SAL123", "PRD001", 120, plan, soldAt)

	if s.SaleNo != "SAL123" || s.ProductID != "PRD001" {
		t.Errorf("基本字段不符: %+v", s)
	}
	if len(s.Details) != 2 {
		t.Fatalf("期望2条明细,实际%d条", len(s.Details))
	}
	if s.DetailQuantitySum() != s.Quantity {
		t.Errorf("明细扣减量之和应等于销售数量,实际%d != %d", s.DetailQuantitySum(), s.Quantity)
	}

	// 明细成本 = 数量×单价
	if !s.Details[0].Cost.Equal(decimal.RequireFromString("5000")) {
		t.Errorf("期望批次1明细成本5000,实际%s", s.Details[0].Cost)
	}
	if !s.Details[1].Cost.Equal(decimal.RequireFromString("1100")) {
		t.Errorf("期望批次2明细成本1100,实际%s", s.Details[1].Cost)
	}
	if !s.TotalCost.Equal(decimal.RequireFromString("6100")) {
		t.Errorf("期望总成本6100,实际%s", s.TotalCost)
	}
	if !s.SaleTimestamp.Equal(soldAt) {
		t.Errorf("期望销售时间%v,实际%v", soldAt, s.SaleTimestamp)
	}
}

// TestNewSale_DefaultTimestamp 测试缺省销售时间
func TestNewSale_DefaultTimestamp(t *testing.T) {
	plan := &inventory.Plan{
		Allocations:     []inventory.Allocation{{BatchID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
		TotalCost:       decimal.NewFromInt(1),
		AverageUnitCost: decimal.NewFromInt(1),
	}

	s := NewSale("SAL1", "PRD001", 1, plan, time.Time{})
	if s.SaleTimestamp.IsZero() {
		t.Error("未指定销售时间时应使用当前时间")
	}
}

// TestGenerateSaleNo 测试销售单号生成
func TestGenerateSaleNo(t *testing.T) {
	no := GenerateSaleNo()
	if !strings.HasPrefix(no, "SAL") {
		t.Errorf("销售单号应以SAL开头,实际%s", no)
	}
	// SAL + 10位时间戳 + 6位随机数
	if len(no) != 19 {
		t.Errorf("销售单号长度应为19,实际%d (%s)", len(no), no)
	}
}
