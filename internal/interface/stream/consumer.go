package stream

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/xiebiao/inventory/internal/infrastructure/config"
	apperrors "github.com/xiebiao/inventory/pkg/errors"
	"github.com/xiebiao/inventory/pkg/mq"
)

// 消费者生命周期状态
const (
	StateStopped  = "stopped"
	StateStarting = "starting"
	StateRunning  = "running"
	StateStopping = "stopping"
)

// Consumer 库存事件流消费者
// 设计说明:
// 1. 生命周期由状态机管理(stopped → starting → running → stopping → stopped),
//    Start/Stop可通过管理接口随时调用,重复调用返回错误而不是panic
// 2. 每次Start新建MQ连接,Stop后连接关闭,不复用旧Channel
// 3. 消费循环跑在独立goroutine中,异常退出时状态自动回到stopped
type Consumer struct {
	cfg     *config.Config
	handler *EventHandler

	mu       sync.Mutex
	state    string
	cancel   context.CancelFunc
	consumer *mq.Consumer
	startAt  time.Time
}

// NewConsumer 创建事件流消费者(未启动)
func NewConsumer(cfg *config.Config, handler *EventHandler) *Consumer {
	return &Consumer{
		cfg:     cfg,
		handler: handler,
		state:   StateStopped,
	}
}

// Start 启动消费
// 已在运行时返回错误。连接RabbitMQ失败时状态回到stopped,可重试。
func (c *Consumer) Start() error {
	c.mu.Lock()
	if c.state != StateStopped {
		c.mu.Unlock()
		return apperrors.New(apperrors.ErrCodeInvalidParams, "消费者已在运行,当前状态: "+c.state)
	}
	c.state = StateStarting
	c.mu.Unlock()

	consumer, err := mq.NewConsumer(
		c.cfg.MQ.URL,
		c.cfg.MQ.Exchange,
		c.cfg.MQ.ExchangeType,
		c.cfg.MQ.Queue,
		c.cfg.MQ.RoutingKeys,
	)
	if err != nil {
		c.mu.Lock()
		c.state = StateStopped
		c.mu.Unlock()
		return &apperrors.AppError{
			Code:    apperrors.ErrCodeMQError,
			Message: "连接消息队列失败",
			Err:     err,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.consumer = consumer
	c.cancel = cancel
	c.state = StateRunning
	c.startAt = time.Now()
	c.mu.Unlock()

	go func() {
		if err := consumer.Consume(ctx, c.handler.Handle); err != nil {
			log.Printf("❌ 消费循环异常退出: %v", err)
		}
		consumer.Close()

		c.mu.Lock()
		c.state = StateStopped
		c.consumer = nil
		c.cancel = nil
		c.mu.Unlock()
	}()

	return nil
}

// Stop 停止消费
// 未在运行时返回错误。取消消费循环的context,等待其自行退出。
func (c *Consumer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning {
		return apperrors.New(apperrors.ErrCodeInvalidParams, "消费者未在运行,当前状态: "+c.state)
	}

	c.state = StateStopping
	c.cancel()
	return nil
}

// ConsumerStatus 消费者状态快照
type ConsumerStatus struct {
	State    string `json:"state"`
	Queue    string `json:"queue"`
	Exchange string `json:"exchange"`
	StartAt  string `json:"start_at,omitempty"`
}

// Status 查询消费者状态
func (c *Consumer) Status() ConsumerStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := ConsumerStatus{
		State:    c.state,
		Queue:    c.cfg.MQ.Queue,
		Exchange: c.cfg.MQ.Exchange,
	}
	if c.state == StateRunning || c.state == StateStopping {
		status.StartAt = c.startAt.Format(time.RFC3339)
	}
	return status
}
