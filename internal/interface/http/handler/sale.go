package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appsale "github.com/xiebiao/inventory/internal/application/sale"
	"github.com/xiebiao/inventory/internal/interface/http/dto"
	apperrors "github.com/xiebiao/inventory/pkg/errors"
	"github.com/xiebiao/inventory/pkg/response"
)

// SaleHandler 销售HTTP处理器
type SaleHandler struct {
	processSaleUseCase *appsale.ProcessSaleUseCase
	listSalesUseCase   *appsale.ListSalesUseCase
}

// NewSaleHandler 创建销售处理器
func NewSaleHandler(
	processSaleUseCase *appsale.ProcessSaleUseCase,
	listSalesUseCase *appsale.ListSalesUseCase,
) *SaleHandler {
	return &SaleHandler{
		processSaleUseCase: processSaleUseCase,
		listSalesUseCase:   listSalesUseCase,
	}
}

// ProcessSale 销售处理
// @Summary      销售处理
// @Description  按FIFO顺序扣减批次并计算销售成本
// @Tags         销售
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.SaleRequest true "销售信息"
// @Success      200 {object} response.Response{data=sale.ProcessSaleResponse} "处理成功"
// @Failure      400 {object} response.Response "库存不足"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/sales [post]
func (h *SaleHandler) ProcessSale(c *gin.Context) {
	var req dto.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	var soldAt time.Time
	if req.Timestamp != "" {
		t, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			response.Error(c, apperrors.New(apperrors.ErrCodeInvalidParams, "timestamp需要RFC3339格式"))
			return
		}
		soldAt = t
	}

	result, err := h.processSaleUseCase.Execute(c.Request.Context(), appsale.ProcessSaleRequest{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Timestamp: soldAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListSales 查询商品销售记录
// @Summary      商品销售记录
// @Description  返回销售记录及批次扣减明细(最新在前)
// @Tags         销售
// @Produce      json
// @Param        productId path string true "商品ID"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=sale.ListSalesResponse} "查询成功"
// @Router       /api/v1/sales/{productId} [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listSalesUseCase.Execute(c.Request.Context(), appsale.ListSalesRequest{
		ProductID: c.Param("productId"),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
