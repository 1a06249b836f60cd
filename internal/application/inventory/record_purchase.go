package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/inventory/internal/domain/event"
	"github.com/xiebiao/inventory/internal/domain/inventory"
	"github.com/xiebiao/inventory/internal/domain/product"
	"github.com/xiebiao/inventory/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/inventory/pkg/metrics"
	"github.com/xiebiao/inventory/pkg/tracing"
)

// RecordPurchaseUseCase 采购入账用例
// 设计说明:
// 1. 每次采购生成独立批次,不合并同价批次(历史成本必须按批次追溯)
// 2. 商品不存在时自动建档(占位信息),采购事件是商品的第一信息来源
// 3. 来自消息流的采购携带事件键,幂等标记与批次写入同一事务
type RecordPurchaseUseCase struct {
	productRepo   product.Repository
	inventoryRepo inventory.Repository
	processedRepo event.ProcessedRepository
	txManager     *mysql.TxManager
}

// NewRecordPurchaseUseCase 创建采购入账用例
func NewRecordPurchaseUseCase(
	productRepo product.Repository,
	inventoryRepo inventory.Repository,
	processedRepo event.ProcessedRepository,
	txManager *mysql.TxManager,
) *RecordPurchaseUseCase {
	return &RecordPurchaseUseCase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		processedRepo: processedRepo,
		txManager:     txManager,
	}
}

// RecordPurchaseRequest 采购入账请求DTO
type RecordPurchaseRequest struct {
	ProductID string          // 商品ID
	Quantity  int             // 采购数量(正整数)
	UnitPrice decimal.Decimal // 采购单价(>0)
	Timestamp time.Time       // 采购时间(零值取当前时间)
	EventKey  string          // 事件键(消息流入口携带,HTTP入口为空)
}

// RecordPurchaseResponse 采购入账响应DTO
type RecordPurchaseResponse struct {
	BatchID           uint   `json:"batch_id"`
	ProductID         string `json:"product_id"`
	Quantity          int    `json:"quantity"`
	RemainingQuantity int    `json:"remaining_quantity"`
	UnitPrice         string `json:"unit_price"`
	PurchaseTimestamp string `json:"purchase_timestamp"`
}

// Execute 执行采购入账
// 事务内顺序:幂等标记 → 商品建档 → 批次写入。
// 幂等标记放最前,重复事件在写任何业务数据之前就被拦截。
func (uc *RecordPurchaseUseCase) Execute(ctx context.Context, req RecordPurchaseRequest) (*RecordPurchaseResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "application.inventory", "RecordPurchase")
	defer span.End()

	// 1. 领域校验(工厂方法内完成)
	batch, err := inventory.NewBatch(req.ProductID, req.Quantity, req.UnitPrice, req.Timestamp)
	if err != nil {
		return nil, err
	}

	// 2. 事务执行
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if req.EventKey != "" {
			if err := uc.processedRepo.MarkProcessed(txCtx, req.EventKey); err != nil {
				return err
			}
		}

		if err := uc.productRepo.EnsureExists(txCtx, batch.ProductID); err != nil {
			return err
		}

		return uc.inventoryRepo.CreateBatch(txCtx, batch)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounter(metrics.PurchasesRecordedTotal)

	return &RecordPurchaseResponse{
		BatchID:           batch.ID,
		ProductID:         batch.ProductID,
		Quantity:          batch.Quantity,
		RemainingQuantity: batch.RemainingQuantity,
		UnitPrice:         batch.UnitPrice.String(),
		PurchaseTimestamp: batch.PurchaseTimestamp.Format(time.RFC3339),
	}, nil
}
