package inventory

import (
	"fmt"

	apperrors "github.com/xiebiao/inventory/pkg/errors"
)

// 库存领域错误定义
var (
	// ErrBatchNotFound 批次不存在
	ErrBatchNotFound = apperrors.New(apperrors.ErrCodeBatchNotFound, "批次不存在")

	// ErrInvalidProductID 商品ID不合法
	ErrInvalidProductID = apperrors.New(apperrors.ErrCodeInvalidParams, "商品ID不能为空")

	// ErrInvalidQuantity 数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrInvalidUnitPrice 单价不合法
	ErrInvalidUnitPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "单价必须大于0")

	// ErrConcurrencyTimeout 行锁等待超时
	// MySQL错误1205,调用方可重试
	ErrConcurrencyTimeout = apperrors.ErrConcurrencyTimeout
)

// InsufficientError 库存不足错误
// 携带可用量与请求量,调用方可据此给出准确提示或决定补货。
// 可用量是判定时刻的快照,返回给调用方时可能已经变化。
type InsufficientError struct {
	ProductID string // 商品ID
	Available int    // 判定时刻的可用总量
	Requested int    // 请求数量
}

// NewInsufficientError 创建库存不足错误
func NewInsufficientError(productID string, available, requested int) *InsufficientError {
	return &InsufficientError{
		ProductID: productID,
		Available: available,
		Requested: requested,
	}
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("库存不足: 商品%s 可用%d 请求%d", e.ProductID, e.Available, e.Requested)
}

// Unwrap 映射为业务错误码40001,供response层统一处理
func (e *InsufficientError) Unwrap() error {
	return apperrors.New(apperrors.ErrCodeInsufficientInventory, e.Error())
}

// IsInsufficient 判断是否为库存不足错误
func IsInsufficient(err error) bool {
	if err == nil {
		return false
	}
	appErr := apperrors.GetAppError(err)
	return appErr.Code == apperrors.ErrCodeInsufficientInventory
}
