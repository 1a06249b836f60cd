package inventory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// TestNewBatch 测试批次创建
func TestNewBatch(t *testing.T) {
	purchasedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	b, err := NewBatch("PRD001", 100, decimal.RequireFromString("50"), purchasedAt)
	if err != nil {
		t.Fatalf("期望创建成功,实际失败: %v", err)
	}

	if b.RemainingQuantity != b.Quantity {
		t.Errorf("新批次剩余量应等于入库量,实际%d != %d", b.RemainingQuantity, b.Quantity)
	}
	if !b.PurchaseTimestamp.Equal(purchasedAt) {
		t.Errorf("期望采购时间%v,实际%v", purchasedAt, b.PurchaseTimestamp)
	}
}

// TestNewBatch_DefaultTimestamp 测试缺省采购时间
func TestNewBatch_DefaultTimestamp(t *testing.T) {
	b, err := NewBatch("PRD001", 10, decimal.RequireFromString("5"), time.Time{})
	if err != nil {
		t.Fatalf("期望创建成功,实际失败: %v", err)
	}
	if b.PurchaseTimestamp.IsZero() {
		t.Error("未指定采购时间时应使用当前时间")
	}
}

// TestNewBatch_Validation 测试创建参数校验
func TestNewBatch_Validation(t *testing.T) {
	price := decimal.RequireFromString("50")

	cases := []struct {
		name      string
		productID string
		quantity  int
		unitPrice decimal.Decimal
		wantErr   error
	}{
		{"空商品ID", "", 10, price, ErrInvalidProductID},
		{"零数量", "PRD001", 0, price, ErrInvalidQuantity},
		{"负数量", "PRD001", -1, price, ErrInvalidQuantity},
		{"零单价", "PRD001", 10, decimal.Zero, ErrInvalidUnitPrice},
		{"负单价", "PRD001", 10, decimal.RequireFromString("-1"), ErrInvalidUnitPrice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBatch(tc.productID, tc.quantity, tc.unitPrice, time.Now())
			if err != tc.wantErr {
				t.Errorf("期望%v,实际%v", tc.wantErr, err)
			}
		})
	}
}

// TestBatch_Consume 测试批次消耗
func TestBatch_Consume(t *testing.T) {
	b, _ := NewBatch("PRD001", 100, decimal.RequireFromString("50"), time.Now())

	if err := b.Consume(60); err != nil {
		t.Fatalf("期望消耗成功,实际失败: %v", err)
	}
	if b.RemainingQuantity != 40 {
		t.Errorf("期望剩余40,实际%d", b.RemainingQuantity)
	}

	// 超出剩余量应失败,且剩余量不变
	if err := b.Consume(50); err == nil {
		t.Fatal("超出剩余量应返回错误")
	}
	if b.RemainingQuantity != 40 {
		t.Errorf("失败的消耗不应改变剩余量,实际%d", b.RemainingQuantity)
	}

	// 消耗到0后为耗尽状态
	if err := b.Consume(40); err != nil {
		t.Fatalf("期望消耗成功,实际失败: %v", err)
	}
	if !b.IsExhausted() {
		t.Error("剩余量为0的批次应为耗尽状态")
	}
}

// TestBatch_Value 测试批次剩余价值
func TestBatch_Value(t *testing.T) {
	b, _ := NewBatch("PRD001", 80, decimal.RequireFromString("55"), time.Now())
	if !b.Value().Equal(decimal.RequireFromString("4400")) {
		t.Errorf("期望价值4400,实际%s", b.Value())
	}
}
