package inventory

import (
	"context"
	"time"

	"github.com/xiebiao/inventory/internal/domain/inventory"
)

// ListBatchesUseCase 批次列表查询用例
// 按消耗顺序返回商品的全部批次(含已耗尽),用于核对FIFO消耗进度。
type ListBatchesUseCase struct {
	inventoryRepo inventory.Repository
}

// NewListBatchesUseCase 创建批次列表查询用例
func NewListBatchesUseCase(inventoryRepo inventory.Repository) *ListBatchesUseCase {
	return &ListBatchesUseCase{inventoryRepo: inventoryRepo}
}

// ListBatchesRequest 批次列表请求DTO
type ListBatchesRequest struct {
	ProductID string
	Page      int
	PageSize  int
}

// BatchItem 批次DTO
type BatchItem struct {
	ID                uint   `json:"id"`
	ProductID         string `json:"product_id"`
	Quantity          int    `json:"quantity"`
	RemainingQuantity int    `json:"remaining_quantity"`
	UnitPrice         string `json:"unit_price"`
	Exhausted         bool   `json:"exhausted"`
	PurchaseTimestamp string `json:"purchase_timestamp"`
}

// ListBatchesResponse 批次列表响应DTO
type ListBatchesResponse struct {
	List       []BatchItem `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// Execute 执行批次列表查询
func (uc *ListBatchesUseCase) Execute(ctx context.Context, req ListBatchesRequest) (*ListBatchesResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	batches, total, err := uc.inventoryRepo.ListByProduct(ctx, req.ProductID, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	list := make([]BatchItem, len(batches))
	for i, b := range batches {
		list[i] = BatchItem{
			ID:                b.ID,
			ProductID:         b.ProductID,
			Quantity:          b.Quantity,
			RemainingQuantity: b.RemainingQuantity,
			UnitPrice:         b.UnitPrice.StringFixed(4),
			Exhausted:         b.IsExhausted(),
			PurchaseTimestamp: b.PurchaseTimestamp.Format(time.RFC3339),
		}
	}

	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &ListBatchesResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}
