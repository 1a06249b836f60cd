// 事件发布命令行工具
//
// 用法:
//
//	go run ./cmd/producer purchase PRD001 100 50.0
//	go run ./cmd/producer sale PRD001 25
//	go run ./cmd/producer simulate
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/inventory/internal/domain/event"
	"github.com/xiebiao/inventory/internal/infrastructure/config"
	"github.com/xiebiao/inventory/internal/interface/stream"
	"github.com/xiebiao/inventory/pkg/mq"
)

func printUsage() {
	fmt.Println("\n📖 用法:")
	fmt.Println("  采购: go run ./cmd/producer purchase <product_id> <quantity> <unit_price>")
	fmt.Println("  销售: go run ./cmd/producer sale <product_id> <quantity>")
	fmt.Println("  演示: go run ./cmd/producer simulate")
	fmt.Println("\n📝 示例:")
	fmt.Println("  go run ./cmd/producer purchase PRD001 100 50.0")
	fmt.Println("  go run ./cmd/producer sale PRD001 25")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType)
	if err != nil {
		log.Fatalf("连接消息队列失败: %v", err)
	}
	defer publisher.Close()

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "purchase":
		if len(args) != 4 {
			fmt.Println("❌ purchase命令参数错误")
			printUsage()
			os.Exit(1)
		}
		quantity, err := strconv.Atoi(args[2])
		if err != nil {
			log.Fatalf("quantity必须是整数: %v", err)
		}
		unitPrice, err := decimal.NewFromString(args[3])
		if err != nil {
			log.Fatalf("unit_price格式错误: %v", err)
		}
		publish(publisher, event.InventoryEvent{
			ProductID: args[1],
			EventType: event.TypePurchase,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			Timestamp: time.Now().Format(time.RFC3339),
		})

	case "sale":
		if len(args) != 3 {
			fmt.Println("❌ sale命令参数错误")
			printUsage()
			os.Exit(1)
		}
		quantity, err := strconv.Atoi(args[2])
		if err != nil {
			log.Fatalf("quantity必须是整数: %v", err)
		}
		publish(publisher, event.InventoryEvent{
			ProductID: args[1],
			EventType: event.TypeSale,
			Quantity:  quantity,
			Timestamp: time.Now().Format(time.RFC3339),
		})

	case "simulate":
		simulate(publisher)

	default:
		fmt.Printf("❌ 未知命令: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func publish(publisher *mq.Publisher, evt event.InventoryEvent) {
	if err := evt.Validate(); err != nil {
		log.Fatalf("事件校验失败: %v", err)
	}
	if err := publisher.Publish(stream.RoutingKeyFor(evt.EventType), evt); err != nil {
		log.Fatalf("发布失败: %v", err)
	}
	fmt.Printf("✅ 事件已发布: %s %s x%d\n", evt.EventType, evt.ProductID, evt.Quantity)
}

// simulate 发布演示事件序列
// 事件间隔500ms,给消费侧留出按序处理的时间
func simulate(publisher *mq.Publisher) {
	script := stream.SimulationScript()
	fmt.Printf("🎭 开始发布演示事件(共%d条)...\n\n", len(script))

	for i, se := range script {
		fmt.Printf("📦 事件 %d/%d: %s\n", i+1, len(script), se.Desc)
		if err := publisher.Publish(stream.RoutingKeyFor(se.Event.EventType), se.Event); err != nil {
			log.Fatalf("发布失败: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("\n🎉 演示事件发布完成!")
}
