package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/inventory/internal/domain/inventory"
	"github.com/xiebiao/inventory/internal/domain/product"
	apperrors "github.com/xiebiao/inventory/pkg/errors"
)

// batchRepository 库存批次仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/inventory/repository.go定义的接口
// 2. FIFO排序统一为(purchase_timestamp ASC, id ASC),
//    锁定查询和列表查询使用同一排序键,保证读写视角一致
// 3. 锁等待超时(1205)翻译为ConcurrencyTimeout,调用方可重试
type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository 创建库存批次仓储
func NewBatchRepository(db *gorm.DB) inventory.Repository {
	return &batchRepository{db: db}
}

// CreateBatch 创建采购批次
func (r *batchRepository) CreateBatch(ctx context.Context, b *inventory.Batch) error {
	model := &BatchModel{
		ProductID:         b.ProductID,
		Quantity:          b.Quantity,
		RemainingQuantity: b.RemainingQuantity,
		UnitPrice:         b.UnitPrice,
		PurchaseTimestamp: b.PurchaseTimestamp,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建批次失败")
	}

	// 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// AvailableQuantity 查询商品当前可用总量(未加锁的快照)
func (r *batchRepository) AvailableQuantity(ctx context.Context, productID string) (int, error) {
	var total int64
	err := r.getDB(ctx).Model(&BatchModel{}).
		Where("product_id = ? AND remaining_quantity > 0", productID).
		Select("COALESCE(SUM(remaining_quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "查询可用库存失败")
	}
	return int(total), nil
}

// LockAvailableByProduct 锁定商品的全部未耗尽批次
// SELECT ... FOR UPDATE按FIFO排序键锁定,并发销售在此串行化。
// 必须在事务内调用(事务DB通过context传入)。
func (r *batchRepository) LockAvailableByProduct(ctx context.Context, productID string) ([]*inventory.Batch, error) {
	var models []BatchModel
	err := r.getDB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND remaining_quantity > 0", productID).
		Order("purchase_timestamp ASC, id ASC").
		Find(&models).Error

	if err != nil {
		if isLockWaitTimeout(err) {
			return nil, inventory.ErrConcurrencyTimeout
		}
		return nil, apperrors.Wrap(err, "锁定批次失败")
	}

	batches := make([]*inventory.Batch, len(models))
	for i := range models {
		batches[i] = toBatchEntity(&models[i])
	}
	return batches, nil
}

// DeductBatch 扣减批次剩余量(原子操作)
// UPDATE带剩余量守卫条件,扣减后为负时不更新任何行。
// 正常流程中行锁已持有,守卫只是最后一道防线。
func (r *batchRepository) DeductBatch(ctx context.Context, batchID uint, quantity int) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}

	db := r.getDB(ctx)
	result := db.Model(&BatchModel{}).
		Where("id = ?", batchID).
		Where("remaining_quantity - ? >= 0", quantity).
		Update("remaining_quantity", gorm.Expr("remaining_quantity - ?", quantity))

	if result.Error != nil {
		if isLockWaitTimeout(result.Error) {
			return inventory.ErrConcurrencyTimeout
		}
		return apperrors.Wrap(result.Error, "扣减批次失败")
	}

	if result.RowsAffected == 0 {
		// 批次不存在,或剩余量不足
		var model BatchModel
		if err := db.First(&model, batchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return inventory.ErrBatchNotFound
			}
			return apperrors.Wrap(err, "查询批次失败")
		}
		return inventory.NewInsufficientError(model.ProductID, model.RemainingQuantity, quantity)
	}

	return nil
}

// ListByProduct 分页查询商品的批次(含已耗尽,按消耗顺序)
func (r *batchRepository) ListByProduct(ctx context.Context, productID string, page, pageSize int) ([]*inventory.Batch, int64, error) {
	var models []BatchModel
	var total int64

	query := r.getDB(ctx).Model(&BatchModel{}).Where("product_id = ?", productID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询批次总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("purchase_timestamp ASC, id ASC").
		Limit(pageSize).Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询批次列表失败")
	}

	batches := make([]*inventory.Batch, len(models))
	for i := range models {
		batches[i] = toBatchEntity(&models[i])
	}
	return batches, total, nil
}

// statusRow 库存状态聚合查询的扫描目标
type statusRow struct {
	ProductID       string
	ProductName     string
	TotalQuantity   int
	TotalValue      decimal.Decimal
	ActiveBatches   int
	OldestBatchTime *time.Time
}

// statusSelect 库存状态聚合的SELECT子句
// LEFT JOIN只关联未耗尽批次:无库存商品也出现在结果中(数量为0)。
const statusSelect = `
		p.id AS product_id,
		p.name AS product_name,
		COALESCE(SUM(b.remaining_quantity), 0) AS total_quantity,
		COALESCE(SUM(b.remaining_quantity * b.unit_price), 0) AS total_value,
		COUNT(b.id) AS active_batches,
		MIN(b.purchase_timestamp) AS oldest_batch_time`

// StatusByProduct 查询单个商品的库存状态
func (r *batchRepository) StatusByProduct(ctx context.Context, productID string) (*inventory.Status, error) {
	var row statusRow
	result := r.getDB(ctx).Raw(`
		SELECT`+statusSelect+`
		FROM products p
		LEFT JOIN batches b ON b.product_id = p.id AND b.remaining_quantity > 0
		WHERE p.id = ?
		GROUP BY p.id, p.name`, productID).Scan(&row)

	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, "查询库存状态失败")
	}
	if result.RowsAffected == 0 {
		return nil, product.ErrProductNotFound
	}

	return toStatus(&row), nil
}

// StatusAll 查询全部商品的库存状态
func (r *batchRepository) StatusAll(ctx context.Context) ([]*inventory.Status, error) {
	var rows []statusRow
	err := r.getDB(ctx).Raw(`
		SELECT` + statusSelect + `
		FROM products p
		LEFT JOIN batches b ON b.product_id = p.id AND b.remaining_quantity > 0
		GROUP BY p.id, p.name
		ORDER BY p.id ASC`).Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询库存状态失败")
	}

	statuses := make([]*inventory.Status, len(rows))
	for i := range rows {
		statuses[i] = toStatus(&rows[i])
	}
	return statuses, nil
}

// toStatus 聚合行 → 读模型
// 加权平均成本在Go侧计算:总价值÷总量,无库存时为0。
func toStatus(row *statusRow) *inventory.Status {
	s := &inventory.Status{
		ProductID:       row.ProductID,
		ProductName:     row.ProductName,
		TotalQuantity:   row.TotalQuantity,
		TotalValue:      row.TotalValue,
		WeightedAvgCost: decimal.Zero,
		ActiveBatches:   row.ActiveBatches,
		OldestBatchTime: row.OldestBatchTime,
	}
	if row.TotalQuantity > 0 {
		s.WeightedAvgCost = row.TotalValue.Div(decimal.NewFromInt(int64(row.TotalQuantity)))
	}
	return s
}

// toBatchEntity GORM模型 → 领域实体
func toBatchEntity(model *BatchModel) *inventory.Batch {
	return &inventory.Batch{
		ID:                model.ID,
		ProductID:         model.ProductID,
		Quantity:          model.Quantity,
		RemainingQuantity: model.RemainingQuantity,
		UnitPrice:         model.UnitPrice,
		PurchaseTimestamp: model.PurchaseTimestamp,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *batchRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
