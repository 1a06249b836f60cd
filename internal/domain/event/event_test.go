package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/xiebiao/inventory/pkg/errors"
)

// TestInventoryEvent_Validate 测试事件校验规则
func TestInventoryEvent_Validate(t *testing.T) {
	price := decimal.RequireFromString("50")

	cases := []struct {
		name    string
		event   InventoryEvent
		wantErr bool
	}{
		{"合法purchase", InventoryEvent{ProductID: "PRD001", EventType: "purchase", Quantity: 100, UnitPrice: price}, false},
		{"合法sale(无单价)", InventoryEvent{ProductID: "PRD001", EventType: "sale", Quantity: 10}, false},
		{"大写事件类型", InventoryEvent{ProductID: "PRD001", EventType: "PURCHASE", Quantity: 1, UnitPrice: price}, false},
		{"带合法时间戳", InventoryEvent{ProductID: "PRD001", EventType: "sale", Quantity: 1, Timestamp: "2026-01-15T10:00:00Z"}, false},
		{"缺少商品ID", InventoryEvent{EventType: "sale", Quantity: 1}, true},
		{"空白商品ID", InventoryEvent{ProductID: "   ", EventType: "sale", Quantity: 1}, true},
		{"未知事件类型", InventoryEvent{ProductID: "PRD001", EventType: "refund", Quantity: 1}, true},
		{"零数量", InventoryEvent{ProductID: "PRD001", EventType: "sale", Quantity: 0}, true},
		{"负数量", InventoryEvent{ProductID: "PRD001", EventType: "sale", Quantity: -3}, true},
		{"purchase缺单价", InventoryEvent{ProductID: "PRD001", EventType: "purchase", Quantity: 1}, true},
		{"purchase负单价", InventoryEvent{ProductID: "PRD001", EventType: "purchase", Quantity: 1, UnitPrice: decimal.RequireFromString("-1")}, true},
		{"非法时间戳", InventoryEvent{ProductID: "PRD001", EventType: "sale", Quantity: 1, Timestamp: "2026/01/15"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.event.Validate()
			if tc.wantErr && err == nil {
				t.Error("期望校验失败,实际通过")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("期望校验通过,实际失败: %v", err)
			}
			if tc.wantErr && err != nil {
				if apperrors.GetAppError(err).Code != apperrors.ErrCodeInvalidEvent {
					t.Errorf("校验错误应为InvalidEvent码,实际%d", apperrors.GetAppError(err).Code)
				}
			}
		})
	}
}

// TestInventoryEvent_ValidateNormalizesType 测试事件类型规范化
func TestInventoryEvent_ValidateNormalizesType(t *testing.T) {
	e := InventoryEvent{ProductID: "PRD001", EventType: " Sale ", Quantity: 1}
	if err := e.Validate(); err != nil {
		t.Fatalf("期望校验通过,实际失败: %v", err)
	}
	if e.EventType != TypeSale {
		t.Errorf("期望规范化为%q,实际%q", TypeSale, e.EventType)
	}
}

// TestInventoryEvent_EffectiveTime 测试业务时间解析
func TestInventoryEvent_EffectiveTime(t *testing.T) {
	e := InventoryEvent{ProductID: "PRD001", EventType: "sale", Quantity: 1, Timestamp: "2026-01-15T10:00:00Z"}
	want := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	if !e.EffectiveTime().Equal(want) {
		t.Errorf("期望%v,实际%v", want, e.EffectiveTime())
	}

	// 缺省时间戳取当前时间
	e2 := InventoryEvent{ProductID: "PRD001", EventType: "sale", Quantity: 1}
	if time.Since(e2.EffectiveTime()) > time.Minute {
		t.Error("缺省时间戳应接近当前时间")
	}
}

// TestInventoryEvent_Key 测试幂等键
func TestInventoryEvent_Key(t *testing.T) {
	e1 := InventoryEvent{ProductID: "PRD001", EventType: "purchase", Quantity: 100,
		UnitPrice: decimal.RequireFromString("50"), Timestamp: "2026-01-15T10:00:00Z"}
	e2 := InventoryEvent{ProductID: "PRD001", EventType: "PURCHASE", Quantity: 100,
		UnitPrice: decimal.RequireFromString("50"), Timestamp: "2026-01-15T10:00:00Z"}

	// 同一事件(类型大小写差异)应得到相同的键
	if e1.Key() != e2.Key() {
		t.Error("规范化后相同的事件应有相同的幂等键")
	}

	// 任一字段不同则键不同
	e3 := e1
	e3.Quantity = 101
	if e1.Key() == e3.Key() {
		t.Error("数量不同的事件不应有相同的幂等键")
	}

	e4 := e1
	e4.Timestamp = "2026-01-15T10:00:01Z"
	if e1.Key() == e4.Key() {
		t.Error("时间不同的事件不应有相同的幂等键")
	}
}

// TestInventoryEvent_JSONRoundTrip 测试与消息体的JSON映射
func TestInventoryEvent_JSONRoundTrip(t *testing.T) {
	body := []byte(`{"product_id":"PRD001","event_type":"purchase","quantity":100,"unit_price":50.5,"timestamp":"2026-01-15T10:00:00Z"}`)

	var e InventoryEvent
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("期望校验通过,实际失败: %v", err)
	}
	if !e.UnitPrice.Equal(decimal.RequireFromString("50.5")) {
		t.Errorf("期望单价50.5,实际%s", e.UnitPrice)
	}
}
