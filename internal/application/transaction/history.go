package transaction

import (
	"context"
	"time"

	"github.com/xiebiao/inventory/internal/domain/transaction"
	apperrors "github.com/xiebiao/inventory/pkg/errors"
)

// HistoryUseCase 交易流水查询用例
// 统一视图:采购和销售合并为一条时间线,最新交易在前。
type HistoryUseCase struct {
	transactionRepo transaction.Repository
}

// NewHistoryUseCase 创建交易流水查询用例
func NewHistoryUseCase(transactionRepo transaction.Repository) *HistoryUseCase {
	return &HistoryUseCase{transactionRepo: transactionRepo}
}

// HistoryRequest 流水查询请求DTO
type HistoryRequest struct {
	ProductID string // 商品ID过滤(可选)
	Type      string // 交易类型过滤(可选,purchase/sale)
	Page      int
	PageSize  int
}

// TransactionItem 流水DTO
type TransactionItem struct {
	Type        string `json:"type"`
	RefID       uint   `json:"ref_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalAmount string `json:"total_amount"`
	Timestamp   string `json:"timestamp"`
}

// HistoryResponse 流水查询响应DTO
type HistoryResponse struct {
	List       []TransactionItem `json:"list"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// Execute 执行流水查询
func (uc *HistoryUseCase) Execute(ctx context.Context, req HistoryRequest) (*HistoryResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	var txnType transaction.Type
	if req.Type != "" {
		txnType = transaction.Type(req.Type)
		if txnType != transaction.TypePurchase && txnType != transaction.TypeSale {
			return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "type只支持purchase/sale")
		}
	}

	txns, total, err := uc.transactionRepo.List(ctx, transaction.ListParams{
		ProductID: req.ProductID,
		Type:      txnType,
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	list := make([]TransactionItem, len(txns))
	for i, t := range txns {
		list[i] = TransactionItem{
			Type:        string(t.Type),
			RefID:       t.RefID,
			ProductID:   t.ProductID,
			ProductName: t.ProductName,
			Quantity:    t.Quantity,
			UnitPrice:   t.UnitPrice.StringFixed(4),
			TotalAmount: t.TotalAmount.StringFixed(4),
			Timestamp:   t.Timestamp.Format(time.RFC3339),
		}
	}

	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &HistoryResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}
