package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	appinventory "github.com/xiebiao/inventory/internal/application/inventory"
	appsale "github.com/xiebiao/inventory/internal/application/sale"
	"github.com/xiebiao/inventory/internal/domain/event"
	"github.com/xiebiao/inventory/internal/domain/inventory"
	"github.com/xiebiao/inventory/internal/domain/product"
	apperrors "github.com/xiebiao/inventory/pkg/errors"
	"github.com/xiebiao/inventory/pkg/metrics"
)

// PurchaseRecorder 采购入账入口(便于测试时Mock)
type PurchaseRecorder interface {
	Execute(ctx context.Context, req appinventory.RecordPurchaseRequest) (*appinventory.RecordPurchaseResponse, error)
}

// SaleProcessor 销售处理入口(便于测试时Mock)
type SaleProcessor interface {
	Execute(ctx context.Context, req appsale.ProcessSaleRequest) (*appsale.ProcessSaleResponse, error)
}

// EventHandler 库存事件处理器
// 负责把消息流入口的事件翻译成用例调用,并决定每条消息的处置:
//
// 确认并跳过(返回nil,消息不再投递):
//   - JSON解析失败、校验失败:重投也不会变合法,重新入队只会死循环
//   - 重复事件:幂等标记已存在,说明此前已成功处理
//   - 库存不足的销售:业务性拒绝,是合法的处理结果
//   - 销售的商品无采购记录:可用量为0的业务性拒绝,重投不会让商品出现
//   - 存储故障:记录日志后丢弃该条消息,单条坏消息不阻塞整个消费循环
//
// 重新入队(返回错误,消息稍后重投):
//   - 锁等待超时:并发冲突,稍后重试大概率成功
type EventHandler struct {
	purchaseUC PurchaseRecorder
	saleUC     SaleProcessor
}

// NewEventHandler 创建事件处理器
func NewEventHandler(purchaseUC PurchaseRecorder, saleUC SaleProcessor) *EventHandler {
	return &EventHandler{
		purchaseUC: purchaseUC,
		saleUC:     saleUC,
	}
}

// Handle 处理一条库存事件消息
func (h *EventHandler) Handle(body []byte) error {
	start := time.Now()
	result, err := h.handle(body)
	metrics.ObserveHistogram(metrics.MessageProcessingDuration, time.Since(start).Seconds())
	metrics.IncCounterVec(metrics.MessagesConsumedTotal, map[string]string{
		"queue":  "inventory.engine",
		"result": result,
	})
	return err
}

func (h *EventHandler) handle(body []byte) (string, error) {
	ctx := context.Background()

	// 1. 解析
	var evt event.InventoryEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		log.Printf("⚠️ 事件JSON解析失败,确认并跳过: %v, Body=%s", err, string(body))
		return "invalid", nil
	}

	// 2. 校验(同时规范化event_type)
	if err := evt.Validate(); err != nil {
		log.Printf("⚠️ 事件校验失败,确认并跳过: %v, Body=%s", err, string(body))
		return "invalid", nil
	}

	// 3. 分发
	var err error
	switch evt.EventType {
	case event.TypePurchase:
		_, err = h.purchaseUC.Execute(ctx, appinventory.RecordPurchaseRequest{
			ProductID: evt.ProductID,
			Quantity:  evt.Quantity,
			UnitPrice: evt.UnitPrice,
			Timestamp: evt.EffectiveTime(),
			EventKey:  evt.Key(),
		})
	case event.TypeSale:
		_, err = h.saleUC.Execute(ctx, appsale.ProcessSaleRequest{
			ProductID: evt.ProductID,
			Quantity:  evt.Quantity,
			Timestamp: evt.EffectiveTime(),
			EventKey:  evt.Key(),
		})
	}

	// 4. 处置
	switch {
	case err == nil:
		return "success", nil

	case errors.Is(err, apperrors.ErrDuplicateEvent):
		// 幂等拦截:此前已成功处理过,确认即可
		metrics.IncCounter(metrics.DuplicateEventsTotal)
		log.Printf("♻️ 重复事件已跳过: ProductID=%s, Type=%s", evt.ProductID, evt.EventType)
		return "duplicate", nil

	case inventory.IsInsufficient(err):
		// 库存不足是业务结果,不是故障,重投不会凭空长出库存
		log.Printf("⚠️ 销售因库存不足被拒绝: %v", err)
		return "insufficient", nil

	case errors.Is(err, product.ErrProductNotFound):
		// 销售先于采购到达:该商品可用量为0,与库存不足同类,
		// 预取窗口为1时重投会永远卡住队头,必须确认并跳过
		log.Printf("⚠️ 销售的商品无采购记录,确认并跳过: ProductID=%s", evt.ProductID)
		return "rejected", nil

	case errors.Is(err, apperrors.ErrConcurrencyTimeout):
		// 锁等待超时是瞬态并发冲突,交给消费循环Nack重新入队
		return "timeout", err

	default:
		// 存储故障等非预期错误:记录后确认跳过,不让单条消息阻塞队列
		log.Printf("❌ 事件处理失败,确认并跳过: %v, Body=%s", err, string(body))
		return "failure", nil
	}
}
