package stream

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/inventory/internal/domain/event"
)

// SimulatedEvent 模拟事件(带说明)
type SimulatedEvent struct {
	Event event.InventoryEvent
	Desc  string
}

// SimulationScript 演示用的事件序列
// 覆盖FIFO的典型场景:多商品建仓、不同单价补货、跨批次销售。
// 每次调用按当前时间生成timestamp,保证事件键不与历史运行重复。
func SimulationScript() []SimulatedEvent {
	now := time.Now()
	seq := 0

	purchase := func(productID string, quantity int, price string, desc string) SimulatedEvent {
		seq++
		return SimulatedEvent{
			Event: event.InventoryEvent{
				ProductID: productID,
				EventType: event.TypePurchase,
				Quantity:  quantity,
				UnitPrice: decimal.RequireFromString(price),
				Timestamp: now.Add(time.Duration(seq) * time.Second).Format(time.RFC3339),
			},
			Desc: desc,
		}
	}
	sale := func(productID string, quantity int, desc string) SimulatedEvent {
		seq++
		return SimulatedEvent{
			Event: event.InventoryEvent{
				ProductID: productID,
				EventType: event.TypeSale,
				Quantity:  quantity,
				Timestamp: now.Add(time.Duration(seq) * time.Second).Format(time.RFC3339),
			},
			Desc: desc,
		}
	}

	return []SimulatedEvent{
		// 建仓
		purchase("PRD001", 100, "50.0", "Widget A 初始入库"),
		purchase("PRD002", 200, "30.0", "Gadget B 初始入库"),
		purchase("PRD003", 150, "75.0", "Tool C 初始入库"),

		// 首轮销售
		sale("PRD001", 25, "Widget A 第一笔销售"),
		sale("PRD002", 50, "Gadget B 第一笔销售"),

		// 不同单价补货
		purchase("PRD001", 80, "55.0", "Widget A 高价补货"),
		purchase("PRD002", 120, "32.0", "Gadget B 补货"),

		// 跨批次销售(验证旧批次先消耗)
		sale("PRD001", 40, "Widget A 第二笔销售"),
		sale("PRD003", 30, "Tool C 第一笔销售"),
		sale("PRD001", 50, "Widget A 第三笔销售(跨两个批次)"),
		sale("PRD002", 80, "Gadget B 第二笔销售"),

		// 尾轮
		purchase("PRD003", 100, "80.0", "Tool C 高价补货"),
		sale("PRD003", 60, "Tool C 第二笔销售"),
	}
}

// RoutingKeyFor 事件类型对应的路由键
func RoutingKeyFor(eventType string) string {
	if eventType == event.TypeSale {
		return "inventory.sale"
	}
	return "inventory.purchase"
}
