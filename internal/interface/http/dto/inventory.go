package dto

import "github.com/shopspring/decimal"

// PurchaseRequest 采购入账请求
// unit_price接受JSON数字或字符串,decimal反序列化时保留精确值。
type PurchaseRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
	Timestamp string          `json:"timestamp"` // RFC3339,可选
}

// SaleRequest 销售处理请求
type SaleRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Timestamp string `json:"timestamp"` // RFC3339,可选
}

// StreamEventRequest 事件流发送请求(管理接口)
// 字段约定与消费侧的事件格式一致,最终校验在消费侧完成。
type StreamEventRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	EventType string          `json:"event_type" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Timestamp string          `json:"timestamp"`
}
