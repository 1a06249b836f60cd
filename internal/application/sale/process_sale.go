package sale

import (
	"context"
	"errors"
	"time"

	"github.com/xiebiao/inventory/internal/domain/event"
	"github.com/xiebiao/inventory/internal/domain/inventory"
	"github.com/xiebiao/inventory/internal/domain/product"
	"github.com/xiebiao/inventory/internal/domain/sale"
	"github.com/xiebiao/inventory/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/inventory/pkg/errors"
	"github.com/xiebiao/inventory/pkg/metrics"
	"github.com/xiebiao/inventory/pkg/tracing"
)

// ProcessSaleUseCase 销售处理用例
// 这是整个系统最核心的用例:FIFO成本分摊 + 并发防超卖
//
// 核心问题:并发销售超卖
// 场景:商品剩余100个,两个销售各要60个同时到达
// 错误实现:
//  1. 查询剩余量 → 100
//  2. 判断够不够 → 够
//  3. 各自扣减 → 卖出120个(超卖20个!)
//
// 正确实现:悲观锁串行化
//  1. SELECT FOR UPDATE锁定该商品全部未耗尽批次
//  2. 在锁内计算FIFO分摊方案(总量不足则失败)
//  3. 按方案逐批扣减 + 写销售记录
//  4. COMMIT释放锁,后到的销售看到扣减后的余量
type ProcessSaleUseCase struct {
	productRepo   product.Repository
	inventoryRepo inventory.Repository
	saleRepo      sale.Repository
	processedRepo event.ProcessedRepository
	txManager     *mysql.TxManager
}

// NewProcessSaleUseCase 创建销售处理用例
func NewProcessSaleUseCase(
	productRepo product.Repository,
	inventoryRepo inventory.Repository,
	saleRepo sale.Repository,
	processedRepo event.ProcessedRepository,
	txManager *mysql.TxManager,
) *ProcessSaleUseCase {
	return &ProcessSaleUseCase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		saleRepo:      saleRepo,
		processedRepo: processedRepo,
		txManager:     txManager,
	}
}

// ProcessSaleRequest 销售处理请求DTO
type ProcessSaleRequest struct {
	ProductID string    // 商品ID
	Quantity  int       // 销售数量(正整数)
	Timestamp time.Time // 销售时间(零值取当前时间)
	EventKey  string    // 事件键(消息流入口携带,HTTP入口为空)
}

// SaleBatchDetail 批次扣减明细DTO
type SaleBatchDetail struct {
	BatchID   uint   `json:"batch_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Cost      string `json:"cost"`
}

// ProcessSaleResponse 销售处理响应DTO
type ProcessSaleResponse struct {
	SaleID          uint              `json:"sale_id"`
	SaleNo          string            `json:"sale_no"`
	ProductID       string            `json:"product_id"`
	Quantity        int               `json:"quantity"`
	TotalCost       string            `json:"total_cost"`
	AverageUnitCost string            `json:"average_unit_cost"`
	SaleTimestamp   string            `json:"sale_timestamp"`
	Details         []SaleBatchDetail `json:"details"`
}

// Execute 执行销售处理
//
// 进事务前先做一次未加锁的可用量预检,明显不足的请求直接拒绝,
// 不占用锁队列。预检通过不代表最终成功,权威判定在锁内。
//
// 事务内顺序:
//  1. 幂等标记(重复事件在锁定任何批次之前拦截)
//  2. 商品存在性检查
//  3. 锁定未耗尽批次(FOR UPDATE,按消耗顺序)
//  4. 计算FIFO分摊方案(纯函数,总量不足直接失败)
//  5. 按方案逐批扣减(带余量守卫)
//  6. 写销售记录(主记录+明细)
//
// 任何一步失败整个事务回滚:批次不会扣减,销售不会落库,
// 幂等标记也随之回滚,事件重投后可重试。
func (uc *ProcessSaleUseCase) Execute(ctx context.Context, req ProcessSaleRequest) (*ProcessSaleResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "application.sale", "ProcessSale")
	defer span.End()

	start := time.Now()

	// 事务外快速预检:明显不足的请求不进事务排队等锁
	// 只在快照显示有货但不够时短路,快照为0时仍走事务,
	// 由锁内权威判定区分"商品不存在"和"库存不足"
	if available, err := uc.inventoryRepo.AvailableQuantity(ctx, req.ProductID); err == nil &&
		available > 0 && available < req.Quantity {
		metrics.ObserveHistogram(metrics.SaleProcessingDuration, time.Since(start).Seconds())
		metrics.IncCounterVec(metrics.SalesProcessedTotal, map[string]string{"result": "insufficient"})
		return nil, inventory.NewInsufficientError(req.ProductID, available, req.Quantity)
	}

	var result *sale.Sale

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 幂等标记
		if req.EventKey != "" {
			if err := uc.processedRepo.MarkProcessed(txCtx, req.EventKey); err != nil {
				return err
			}
		}

		// 2. 商品存在性检查
		// 销售不自动建档:没有采购过的商品不可能有库存可卖
		if _, err := uc.productRepo.FindByID(txCtx, req.ProductID); err != nil {
			return err
		}

		// 3. 锁定未耗尽批次
		// 并发销售在此串行化:后到的事务阻塞到先到的COMMIT
		batches, err := uc.inventoryRepo.LockAvailableByProduct(txCtx, req.ProductID)
		if err != nil {
			return err
		}

		// 4. 计算FIFO分摊方案
		plan, err := inventory.PlanAllocation(req.ProductID, batches, req.Quantity)
		if err != nil {
			return err
		}

		// 5. 按方案逐批扣减
		// 先在锁内实体上执行领域消耗,实体状态与数据库扣减保持一致,
		// 数据库侧的余量守卫仍是最后一道防线
		byID := make(map[uint]*inventory.Batch, len(batches))
		for _, b := range batches {
			byID[b.ID] = b
		}
		for _, alloc := range plan.Allocations {
			if err := byID[alloc.BatchID].Consume(alloc.Quantity); err != nil {
				return err
			}
			if err := uc.inventoryRepo.DeductBatch(txCtx, alloc.BatchID, alloc.Quantity); err != nil {
				return err
			}
		}

		// 6. 写销售记录
		newSale := sale.NewSale(sale.GenerateSaleNo(), req.ProductID, req.Quantity, plan, req.Timestamp)
		if err := uc.saleRepo.Create(txCtx, newSale); err != nil {
			return err
		}

		result = newSale
		return nil
	})

	metrics.ObserveHistogram(metrics.SaleProcessingDuration, time.Since(start).Seconds())
	metrics.IncCounterVec(metrics.SalesProcessedTotal, map[string]string{"result": saleResult(err)})

	if err != nil {
		return nil, err
	}

	metrics.ObserveHistogram(metrics.BatchesConsumedPerSale, float64(len(result.Details)))

	return toProcessSaleResponse(result), nil
}

// saleResult 将处理结果归类为指标标签
func saleResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case inventory.IsInsufficient(err):
		return "insufficient"
	case errors.Is(err, apperrors.ErrConcurrencyTimeout):
		return "timeout"
	default:
		return "failure"
	}
}

func toProcessSaleResponse(s *sale.Sale) *ProcessSaleResponse {
	details := make([]SaleBatchDetail, len(s.Details))
	for i, d := range s.Details {
		details[i] = SaleBatchDetail{
			BatchID:   d.BatchID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice.StringFixed(4),
			Cost:      d.Cost.StringFixed(4),
		}
	}

	return &ProcessSaleResponse{
		SaleID:          s.ID,
		SaleNo:          s.SaleNo,
		ProductID:       s.ProductID,
		Quantity:        s.Quantity,
		TotalCost:       s.TotalCost.StringFixed(4),
		AverageUnitCost: s.AverageUnitCost.StringFixed(4),
		SaleTimestamp:   s.SaleTimestamp.Format(time.RFC3339),
		Details:         details,
	}
}
