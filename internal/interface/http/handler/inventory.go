package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appinventory "github.com/xiebiao/inventory/internal/application/inventory"
	"github.com/xiebiao/inventory/pkg/response"
)

// InventoryHandler 库存查询HTTP处理器
// 设计说明:
// 1. Handler只负责HTTP相关的事情:解析请求、调用应用层、返回响应
// 2. 库存状态是批次表的实时聚合,不走缓存
type InventoryHandler struct {
	getStatusUseCase   *appinventory.GetStatusUseCase
	listBatchesUseCase *appinventory.ListBatchesUseCase
}

// NewInventoryHandler 创建库存查询处理器
func NewInventoryHandler(
	getStatusUseCase *appinventory.GetStatusUseCase,
	listBatchesUseCase *appinventory.ListBatchesUseCase,
) *InventoryHandler {
	return &InventoryHandler{
		getStatusUseCase:   getStatusUseCase,
		listBatchesUseCase: listBatchesUseCase,
	}
}

// GetStatusAll 查询全部商品库存状态
// @Summary      全部库存状态
// @Description  返回所有商品的剩余量、库存价值、加权平均成本
// @Tags         库存
// @Produce      json
// @Success      200 {object} response.Response{data=[]inventory.StatusItem} "查询成功"
// @Router       /api/v1/inventory [get]
func (h *InventoryHandler) GetStatusAll(c *gin.Context) {
	items, err := h.getStatusUseCase.ExecuteAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// GetStatus 查询单个商品库存状态
// @Summary      单个商品库存状态
// @Tags         库存
// @Produce      json
// @Param        productId path string true "商品ID"
// @Success      200 {object} response.Response{data=inventory.StatusItem} "查询成功"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/inventory/{productId} [get]
func (h *InventoryHandler) GetStatus(c *gin.Context) {
	productID := c.Param("productId")

	item, err := h.getStatusUseCase.ExecuteOne(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, item)
}

// ListBatches 查询商品批次列表
// @Summary      商品批次列表
// @Description  按消耗顺序返回商品的全部批次(含已耗尽)
// @Tags         库存
// @Produce      json
// @Param        productId path string true "商品ID"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=inventory.ListBatchesResponse} "查询成功"
// @Router       /api/v1/inventory/{productId}/batches [get]
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listBatchesUseCase.Execute(c.Request.Context(), appinventory.ListBatchesRequest{
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
