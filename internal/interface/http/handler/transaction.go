package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apptransaction "github.com/xiebiao/inventory/internal/application/transaction"
	"github.com/xiebiao/inventory/pkg/response"
)

// TransactionHandler 交易流水HTTP处理器
type TransactionHandler struct {
	historyUseCase *apptransaction.HistoryUseCase
}

// NewTransactionHandler 创建交易流水处理器
func NewTransactionHandler(historyUseCase *apptransaction.HistoryUseCase) *TransactionHandler {
	return &TransactionHandler{historyUseCase: historyUseCase}
}

// History 查询交易流水
// @Summary      交易流水
// @Description  采购和销售的统一时间线，最新在前
// @Tags         流水
// @Produce      json
// @Param        product_id query string false "商品ID过滤"
// @Param        type query string false "交易类型过滤" Enums(purchase, sale)
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=transaction.HistoryResponse} "查询成功"
// @Router       /api/v1/transactions [get]
func (h *TransactionHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.historyUseCase.Execute(c.Request.Context(), apptransaction.HistoryRequest{
		ProductID: c.Query("product_id"),
		Type:      c.Query("type"),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
