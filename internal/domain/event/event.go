// Package event 定义库存事件的数据模型与幂等支持
//
// 事件来自外部消息流(至少一次投递),同一事件可能被重复投递,
// 消费侧通过内容派生的事件键去重:键在业务事务内写入processed_events表,
// 唯一索引冲突即视为重复事件,跳过处理。
package event

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/inventory/pkg/errors"
)

// 事件类型
const (
	TypePurchase = "purchase"
	TypeSale     = "sale"
)

// InventoryEvent 库存事件(外部系统的语言,不是领域实体)
//
// 字段约定:
//   - product_id: 必填,非空字符串
//   - event_type: 必填,purchase/sale(大小写不敏感)
//   - quantity:   必填,正整数
//   - unit_price: purchase必填且>0,sale忽略
//   - timestamp:  可选,RFC3339,缺省为处理时刻
type InventoryEvent struct {
	ProductID string          `json:"product_id"`
	EventType string          `json:"event_type"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// Validate 校验事件并规范化事件类型
// 校验失败返回40903(InvalidEvent),这类事件重投也不会变合法,
// 消费侧应确认后丢弃而不是重新入队。
func (e *InventoryEvent) Validate() error {
	if strings.TrimSpace(e.ProductID) == "" {
		return apperrors.New(apperrors.ErrCodeInvalidEvent, "事件缺少product_id")
	}

	e.EventType = strings.ToLower(strings.TrimSpace(e.EventType))
	if e.EventType != TypePurchase && e.EventType != TypeSale {
		return apperrors.New(apperrors.ErrCodeInvalidEvent,
			fmt.Sprintf("非法的event_type: %q (只支持purchase/sale)", e.EventType))
	}

	if e.Quantity <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidEvent,
			fmt.Sprintf("quantity必须为正整数,实际%d", e.Quantity))
	}

	if e.EventType == TypePurchase && !e.UnitPrice.IsPositive() {
		return apperrors.New(apperrors.ErrCodeInvalidEvent, "purchase事件的unit_price必须大于0")
	}

	if e.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, e.Timestamp); err != nil {
			return apperrors.New(apperrors.ErrCodeInvalidEvent,
				fmt.Sprintf("非法的timestamp: %q (需要RFC3339格式)", e.Timestamp))
		}
	}

	return nil
}

// EffectiveTime 事件的业务时间
// timestamp缺省时取当前时间。须在Validate之后调用。
func (e *InventoryEvent) EffectiveTime() time.Time {
	if e.Timestamp == "" {
		return time.Now()
	}
	t, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return time.Now()
	}
	return t
}

// Key 内容派生的事件键(幂等去重用)
// 对规范化后的字段取SHA-256,同一事件重复投递得到相同的键;
// timestamp参与哈希,字段相同但时间不同的事件是两笔不同业务。
func (e *InventoryEvent) Key() string {
	canonical := fmt.Sprintf("%s|%s|%d|%s|%s",
		strings.TrimSpace(e.ProductID),
		strings.ToLower(strings.TrimSpace(e.EventType)),
		e.Quantity,
		e.UnitPrice.String(),
		e.Timestamp,
	)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// ProcessedRepository 已处理事件仓储接口
// MarkProcessed必须与业务变更共用同一事务:事务回滚时标记一并回滚,
// 事件重投后可正常重试。
type ProcessedRepository interface {
	// MarkProcessed 记录事件键
	// 键已存在时返回apperrors.ErrDuplicateEvent。
	MarkProcessed(ctx context.Context, key string) error
}
