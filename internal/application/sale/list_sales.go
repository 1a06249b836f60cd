package sale

import (
	"context"
	"time"

	"github.com/xiebiao/inventory/internal/domain/sale"
)

// ListSalesUseCase 销售记录查询用例
// 返回完整的批次扣减明细,支持按单笔销售核对成本来源。
type ListSalesUseCase struct {
	saleRepo sale.Repository
}

// NewListSalesUseCase 创建销售记录查询用例
func NewListSalesUseCase(saleRepo sale.Repository) *ListSalesUseCase {
	return &ListSalesUseCase{saleRepo: saleRepo}
}

// ListSalesRequest 销售记录查询请求DTO
type ListSalesRequest struct {
	ProductID string
	Page      int
	PageSize  int
}

// SaleItem 销售记录DTO
type SaleItem struct {
	ID              uint              `json:"id"`
	SaleNo          string            `json:"sale_no"`
	ProductID       string            `json:"product_id"`
	Quantity        int               `json:"quantity"`
	TotalCost       string            `json:"total_cost"`
	AverageUnitCost string            `json:"average_unit_cost"`
	SaleTimestamp   string            `json:"sale_timestamp"`
	Details         []SaleBatchDetail `json:"details"`
}

// ListSalesResponse 销售记录查询响应DTO
type ListSalesResponse struct {
	List       []SaleItem `json:"list"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// Execute 执行销售记录查询
func (uc *ListSalesUseCase) Execute(ctx context.Context, req ListSalesRequest) (*ListSalesResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	sales, total, err := uc.saleRepo.ListByProduct(ctx, req.ProductID, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	list := make([]SaleItem, len(sales))
	for i, s := range sales {
		details := make([]SaleBatchDetail, len(s.Details))
		for j, d := range s.Details {
			details[j] = SaleBatchDetail{
				BatchID:   d.BatchID,
				Quantity:  d.Quantity,
				UnitPrice: d.UnitPrice.StringFixed(4),
				Cost:      d.Cost.StringFixed(4),
			}
		}
		list[i] = SaleItem{
			ID:              s.ID,
			SaleNo:          s.SaleNo,
			ProductID:       s.ProductID,
			Quantity:        s.Quantity,
			TotalCost:       s.TotalCost.StringFixed(4),
			AverageUnitCost: s.AverageUnitCost.StringFixed(4),
			SaleTimestamp:   s.SaleTimestamp.Format(time.RFC3339),
			Details:         details,
		}
	}

	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &ListSalesResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}
