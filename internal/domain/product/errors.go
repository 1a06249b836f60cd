package product

import (
	apperrors "github.com/xiebiao/inventory/pkg/errors"
)

// 商品领域错误定义
var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = apperrors.New(apperrors.ErrCodeProductNotFound, "商品不存在")

	// ErrInvalidProductID 商品ID不合法
	ErrInvalidProductID = apperrors.New(apperrors.ErrCodeInvalidParams, "商品ID不能为空")
)
