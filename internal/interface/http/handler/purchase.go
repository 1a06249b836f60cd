package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appinventory "github.com/xiebiao/inventory/internal/application/inventory"
	"github.com/xiebiao/inventory/internal/interface/http/dto"
	apperrors "github.com/xiebiao/inventory/pkg/errors"
	"github.com/xiebiao/inventory/pkg/response"
)

// PurchaseHandler 采购入账HTTP处理器
// HTTP入口的采购不经过消息流,没有事件键,不参与幂等去重:
// 调用方自己对重试负责(消息流入口才有至少一次投递问题)。
type PurchaseHandler struct {
	recordPurchaseUseCase *appinventory.RecordPurchaseUseCase
}

// NewPurchaseHandler 创建采购处理器
func NewPurchaseHandler(recordPurchaseUseCase *appinventory.RecordPurchaseUseCase) *PurchaseHandler {
	return &PurchaseHandler{recordPurchaseUseCase: recordPurchaseUseCase}
}

// RecordPurchase 采购入账
// @Summary      采购入账
// @Description  创建新采购批次，商品不存在时自动建档
// @Tags         采购
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PurchaseRequest true "采购信息"
// @Success      200 {object} response.Response{data=inventory.RecordPurchaseResponse} "入账成功"
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/purchases [post]
func (h *PurchaseHandler) RecordPurchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	var purchasedAt time.Time
	if req.Timestamp != "" {
		t, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			response.Error(c, apperrors.New(apperrors.ErrCodeInvalidParams, "timestamp需要RFC3339格式"))
			return
		}
		purchasedAt = t
	}

	result, err := h.recordPurchaseUseCase.Execute(c.Request.Context(), appinventory.RecordPurchaseRequest{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Timestamp: purchasedAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
