package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/inventory/internal/domain/event"
	"github.com/xiebiao/inventory/internal/infrastructure/config"
	"github.com/xiebiao/inventory/internal/interface/http/dto"
	"github.com/xiebiao/inventory/internal/interface/stream"
	"github.com/xiebiao/inventory/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/inventory/pkg/errors"
	"github.com/xiebiao/inventory/pkg/metrics"
	"github.com/xiebiao/inventory/pkg/mq"
	"github.com/xiebiao/inventory/pkg/response"
)

// StreamHandler 事件流管理HTTP处理器
// 设计说明:
// 1. 发布经过熔断器:RabbitMQ不可用时快速失败,不让请求堆积
// 2. 消费者的启停是运维操作,需要登录
// 3. simulate发布一段演示事件序列,走与生产事件相同的链路
type StreamHandler struct {
	cfg       *config.Config
	publisher *mq.Publisher
	breaker   *circuitbreaker.CircuitBreaker
	consumer  *stream.Consumer
}

// NewStreamHandler 创建事件流管理处理器
func NewStreamHandler(cfg *config.Config, publisher *mq.Publisher, breaker *circuitbreaker.CircuitBreaker, consumer *stream.Consumer) *StreamHandler {
	return &StreamHandler{
		cfg:       cfg,
		publisher: publisher,
		breaker:   breaker,
		consumer:  consumer,
	}
}

// publish 经熔断器发布一条事件
func (h *StreamHandler) publish(evt event.InventoryEvent) error {
	routingKey := stream.RoutingKeyFor(evt.EventType)

	err := h.breaker.Execute(func() error {
		return h.publisher.Publish(routingKey, evt)
	})
	if err != nil {
		return &apperrors.AppError{
			Code:    apperrors.ErrCodeMQError,
			Message: "事件发布失败",
			Err:     err,
		}
	}

	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
		"exchange":    h.cfg.MQ.Exchange,
		"routing_key": routingKey,
	})
	return nil
}

// SendEvent 发布单条库存事件
// @Summary      发布库存事件
// @Description  向事件流发布一条purchase/sale事件
// @Tags         事件流
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.StreamEventRequest true "事件内容"
// @Success      200 {object} response.Response "发布成功"
// @Failure      503 {object} response.Response "消息队列不可用"
// @Router       /api/v1/stream/send [post]
func (h *StreamHandler) SendEvent(c *gin.Context) {
	var req dto.StreamEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	evt := event.InventoryEvent{
		ProductID: req.ProductID,
		EventType: req.EventType,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Timestamp: req.Timestamp,
	}

	// 发布前校验,明显非法的事件不占用消息流
	if err := evt.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.publish(evt); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"routing_key": stream.RoutingKeyFor(evt.EventType),
		"event_key":   evt.Key(),
	})
}

// Simulate 发布演示事件序列
// @Summary      发布演示事件序列
// @Description  发布一段覆盖FIFO典型场景的事件序列
// @Tags         事件流
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "发布成功"
// @Router       /api/v1/stream/simulate [post]
func (h *StreamHandler) Simulate(c *gin.Context) {
	script := stream.SimulationScript()

	sent := 0
	for _, se := range script {
		if err := h.publish(se.Event); err != nil {
			response.Error(c, err)
			return
		}
		sent++
	}

	response.Success(c, gin.H{
		"message": "演示事件已发布",
		"count":   sent,
	})
}

// Status 查询消费者状态
// @Summary      消费者状态
// @Tags         事件流
// @Produce      json
// @Success      200 {object} response.Response{data=stream.ConsumerStatus} "查询成功"
// @Router       /api/v1/stream/status [get]
func (h *StreamHandler) Status(c *gin.Context) {
	response.Success(c, h.consumer.Status())
}

// Start 启动消费者
// @Summary      启动消费者
// @Tags         事件流
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "启动成功"
// @Router       /api/v1/stream/start [post]
func (h *StreamHandler) Start(c *gin.Context) {
	if err := h.consumer.Start(); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.consumer.Status())
}

// Stop 停止消费者
// @Summary      停止消费者
// @Tags         事件流
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "停止成功"
// @Router       /api/v1/stream/stop [post]
func (h *StreamHandler) Stop(c *gin.Context) {
	if err := h.consumer.Stop(); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.consumer.Status())
}
