package mysql

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xiebiao/inventory/internal/domain/transaction"
	apperrors "github.com/xiebiao/inventory/pkg/errors"
)

// transactionRepository 交易流水仓储实现(MySQL)
// 设计说明:
// 交易流水没有独立的表,是batches和sales两张表的UNION ALL投影:
// - 每个批次对应一条purchase流水(单价=采购单价,金额=数量×单价)
// - 每笔销售对应一条sale流水(单价=平均单位成本,金额=总成本)
// 投影与底层表天然一致,无需双写,也不存在对账问题。
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建交易流水仓储
func NewTransactionRepository(db *gorm.DB) transaction.Repository {
	return &transactionRepository{db: db}
}

// txnRow 流水查询的扫描目标
type txnRow struct {
	TxnType      string
	RefID        uint
	ProductID    string
	ProductName  string
	Quantity     int
	UnitPrice    decimal.Decimal
	TotalAmount  decimal.Decimal
	TxnTimestamp time.Time
	CreatedAt    time.Time
}

// unionSubquery 采购与销售的统一投影
const unionSubquery = `
	SELECT 'purchase' AS txn_type, b.id AS ref_id, b.product_id, p.name AS product_name,
	       b.quantity, b.unit_price, b.quantity * b.unit_price AS total_amount,
	       b.purchase_timestamp AS txn_timestamp, b.created_at
	FROM batches b
	JOIN products p ON p.id = b.product_id
	UNION ALL
	SELECT 'sale' AS txn_type, s.id AS ref_id, s.product_id, p.name AS product_name,
	       s.quantity, s.average_unit_cost AS unit_price, s.total_cost AS total_amount,
	       s.sale_timestamp AS txn_timestamp, s.created_at
	FROM sales s
	JOIN products p ON p.id = s.product_id`

// List 分页查询交易流水
// 按(业务时间 DESC, 入库时间 DESC)排序,最新交易在前。
func (r *transactionRepository) List(ctx context.Context, params transaction.ListParams) ([]*transaction.Transaction, int64, error) {
	where := "1 = 1"
	args := make([]interface{}, 0, 2)
	if params.ProductID != "" {
		where += " AND t.product_id = ?"
		args = append(args, params.ProductID)
	}
	if params.Type != "" {
		where += " AND t.txn_type = ?"
		args = append(args, string(params.Type))
	}

	db := r.getDB(ctx)

	// 查询总数
	var total int64
	countSQL := "SELECT COUNT(*) FROM (" + unionSubquery + ") t WHERE " + where
	if err := db.Raw(countSQL, args...).Scan(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询流水总数失败")
	}

	// 查询数据
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listSQL := "SELECT t.* FROM (" + unionSubquery + `) t
	WHERE ` + where + `
	ORDER BY t.txn_timestamp DESC, t.created_at DESC
	LIMIT ? OFFSET ?`

	var rows []txnRow
	listArgs := append(append([]interface{}{}, args...), pageSize, offset)
	if err := db.Raw(listSQL, listArgs...).Scan(&rows).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询流水失败")
	}

	txns := make([]*transaction.Transaction, len(rows))
	for i, row := range rows {
		txns[i] = &transaction.Transaction{
			Type:        transaction.Type(row.TxnType),
			RefID:       row.RefID,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			TotalAmount: row.TotalAmount,
			Timestamp:   row.TxnTimestamp,
			CreatedAt:   row.CreatedAt,
		}
	}
	return txns, total, nil
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *transactionRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
