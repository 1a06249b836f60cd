// Package transaction 提供统一交易流水读模型
//
// 交易流水不是持久化表,而是采购批次和销售记录的投影视图:
// 每个批次对应一条purchase流水,每笔销售对应一条sale流水。
// 由仓储层UNION查询拼装,与底层表天然一致,无需双写。
package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Type 交易类型
type Type string

const (
	TypePurchase Type = "purchase" // 采购入库
	TypeSale     Type = "sale"     // 销售出库
)

// Transaction 交易流水(读模型)
// UnitPrice对purchase是采购单价,对sale是混合平均单位成本;
// TotalAmount对purchase是入库金额,对sale是总成本。
type Transaction struct {
	Type        Type            // 交易类型
	RefID       uint            // 源记录ID(批次ID或销售ID)
	ProductID   string          // 商品ID
	ProductName string          // 商品名称
	Quantity    int             // 数量
	UnitPrice   decimal.Decimal // 单价/平均单位成本
	TotalAmount decimal.Decimal // 总金额/总成本
	Timestamp   time.Time       // 业务时间(采购时间或销售时间)
	CreatedAt   time.Time       // 入库时间(同一业务时间下的次级排序键)
}

// ListParams 流水查询参数
type ListParams struct {
	ProductID string // 商品ID过滤(空表示全部)
	Type      Type   // 交易类型过滤(空表示全部)
	Page      int    // 页码(从1开始)
	PageSize  int    // 每页数量
}

// Repository 交易流水仓储接口
type Repository interface {
	// List 分页查询交易流水
	// 按(Timestamp DESC, CreatedAt DESC)排序,最新交易在前。
	List(ctx context.Context, params ListParams) ([]*Transaction, int64, error)
}
