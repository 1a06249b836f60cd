package product

import (
	"strings"
	"time"
)

// Product 商品实体(聚合根)
// DDD设计说明:
// 1. ID是外部系统定义的业务主键(如"PRD001"),不使用自增ID
// 2. 商品可由事件流自动创建(占位名称),后续可补全信息
// 3. 批次不挂在Product聚合内,库存是独立聚合(batch数量可能很大)
type Product struct {
	ID          string // 商品ID(业务主键,由上游系统给定)
	Name        string // 商品名称
	Description string // 商品描述
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct 创建新商品(工厂方法)
func NewProduct(id, name, description string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidProductID
	}
	now := time.Now()
	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewPlaceholder 创建占位商品
// 事件流中出现未知商品ID时自动建档,名称用可识别的占位文本,
// 后续人工补全不影响已有批次和销售记录。
func NewPlaceholder(id string) *Product {
	now := time.Now()
	return &Product{
		ID:          id,
		Name:        "Product " + id,
		Description: "Auto-generated product " + id,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdateInfo 更新商品基本信息
func (p *Product) UpdateInfo(name, description string) {
	if name != "" {
		p.Name = name
	}
	if description != "" {
		p.Description = description
	}
	p.UpdatedAt = time.Now()
}
