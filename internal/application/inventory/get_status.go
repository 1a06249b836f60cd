package inventory

import (
	"context"
	"time"

	"github.com/xiebiao/inventory/internal/domain/inventory"
)

// GetStatusUseCase 库存状态查询用例
// 状态是批次表的聚合投影,实时计算,不做缓存:
// 库存数字用于成本核算,宁慢勿错。
type GetStatusUseCase struct {
	inventoryRepo inventory.Repository
}

// NewGetStatusUseCase 创建库存状态查询用例
func NewGetStatusUseCase(inventoryRepo inventory.Repository) *GetStatusUseCase {
	return &GetStatusUseCase{inventoryRepo: inventoryRepo}
}

// StatusItem 库存状态DTO
type StatusItem struct {
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	TotalQuantity   int    `json:"total_quantity"`
	TotalValue      string `json:"total_value"`
	WeightedAvgCost string `json:"weighted_avg_cost"`
	ActiveBatches   int    `json:"active_batches"`
	OldestBatchTime string `json:"oldest_batch_time,omitempty"`
}

// ExecuteOne 查询单个商品的库存状态
// 商品不存在返回ErrProductNotFound;存在但无库存返回零值状态。
func (uc *GetStatusUseCase) ExecuteOne(ctx context.Context, productID string) (*StatusItem, error) {
	status, err := uc.inventoryRepo.StatusByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toStatusItem(status), nil
}

// ExecuteAll 查询全部商品的库存状态
func (uc *GetStatusUseCase) ExecuteAll(ctx context.Context) ([]StatusItem, error) {
	statuses, err := uc.inventoryRepo.StatusAll(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]StatusItem, len(statuses))
	for i, s := range statuses {
		items[i] = *toStatusItem(s)
	}
	return items, nil
}

func toStatusItem(s *inventory.Status) *StatusItem {
	item := &StatusItem{
		ProductID:       s.ProductID,
		ProductName:     s.ProductName,
		TotalQuantity:   s.TotalQuantity,
		TotalValue:      s.TotalValue.StringFixed(4),
		WeightedAvgCost: s.WeightedAvgCost.StringFixed(4),
		ActiveBatches:   s.ActiveBatches,
	}
	if s.OldestBatchTime != nil {
		item.OldestBatchTime = s.OldestBatchTime.Format(time.RFC3339)
	}
	return item
}
