package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch 采购批次实体(聚合根)
// DDD设计说明:
// 1. 每次采购生成一个独立批次,记录采购时刻的单价(历史成本快照)
// 2. RemainingQuantity随销售递减,耗尽后批次保留(审计追溯用),不删除
// 3. 消耗顺序由(PurchaseTimestamp ASC, ID ASC)决定,同一时刻入库的批次按入库先后排序
// 4. 单价使用decimal存储,销售成本是单价乘数量的累加,浮点数会累积误差
type Batch struct {
	ID                uint
	ProductID         string          // 商品ID
	Quantity          int             // 入库数量(不变)
	RemainingQuantity int             // 剩余数量(0 <= remaining <= quantity)
	UnitPrice         decimal.Decimal // 采购单价
	PurchaseTimestamp time.Time       // 采购时间(FIFO排序主键)
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewBatch 创建新批次(工厂方法)
// 业务规则:数量必须>0,单价必须>0。
func NewBatch(productID string, quantity int, unitPrice decimal.Decimal, purchasedAt time.Time) (*Batch, error) {
	if productID == "" {
		return nil, ErrInvalidProductID
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !unitPrice.IsPositive() {
		return nil, ErrInvalidUnitPrice
	}
	if purchasedAt.IsZero() {
		purchasedAt = time.Now()
	}

	now := time.Now()
	return &Batch{
		ProductID:         productID,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		UnitPrice:         unitPrice,
		PurchaseTimestamp: purchasedAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// IsExhausted 批次是否已耗尽
func (b *Batch) IsExhausted() bool {
	return b.RemainingQuantity <= 0
}

// Consume 从批次中消耗指定数量(领域行为)
// 业务规则:消耗后剩余数量不能为负。
func (b *Batch) Consume(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.RemainingQuantity < quantity {
		return NewInsufficientError(b.ProductID, b.RemainingQuantity, quantity)
	}
	b.RemainingQuantity -= quantity
	b.UpdatedAt = time.Now()
	return nil
}

// Value 批次剩余价值(剩余数量×单价)
func (b *Batch) Value() decimal.Decimal {
	return b.UnitPrice.Mul(decimal.NewFromInt(int64(b.RemainingQuantity)))
}
