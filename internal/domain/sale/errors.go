package sale

import (
	apperrors "github.com/xiebiao/inventory/pkg/errors"
)

// 销售领域错误定义
var (
	// ErrDetailMismatch 明细扣减量与销售数量不一致
	ErrDetailMismatch = apperrors.New(apperrors.ErrCodeInternal, "批次明细数量与销售数量不一致")
)
