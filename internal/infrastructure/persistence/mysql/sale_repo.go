package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/inventory/internal/domain/sale"
	apperrors "github.com/xiebiao/inventory/pkg/errors"
)

// saleRepository 销售仓储实现(MySQL)
type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository 创建销售仓储
func NewSaleRepository(db *gorm.DB) sale.Repository {
	return &saleRepository{db: db}
}

// Create 创建销售记录(包含批次明细)
// 主记录和明细通过GORM关联一次写入,调用方保证外层事务。
func (r *saleRepository) Create(ctx context.Context, s *sale.Sale) error {
	// 不变式:明细扣减量之和必须等于销售数量
	if s.DetailQuantitySum() != s.Quantity {
		return sale.ErrDetailMismatch
	}

	model := &SaleModel{
		SaleNo:          s.SaleNo,
		ProductID:       s.ProductID,
		Quantity:        s.Quantity,
		TotalCost:       s.TotalCost.Round(4),
		AverageUnitCost: s.AverageUnitCost.Round(4),
		SaleTimestamp:   s.SaleTimestamp,
	}
	for _, d := range s.Details {
		model.Details = append(model.Details, SaleBatchDetailModel{
			BatchID:   d.BatchID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			Cost:      d.Cost.Round(4),
		})
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "销售单号已存在")
		}
		return apperrors.Wrap(err, "创建销售记录失败")
	}

	// 回填自增ID
	s.ID = model.ID
	s.CreatedAt = model.CreatedAt
	for i := range model.Details {
		s.Details[i].ID = model.Details[i].ID
		s.Details[i].SaleID = model.ID
	}

	return nil
}

// ListByProduct 分页查询商品的销售记录(最新在前)
func (r *saleRepository) ListByProduct(ctx context.Context, productID string, page, pageSize int) ([]*sale.Sale, int64, error) {
	var models []SaleModel
	var total int64

	query := r.getDB(ctx).Model(&SaleModel{}).Where("product_id = ?", productID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询销售总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Details").
		Order("sale_timestamp DESC, id DESC").
		Limit(pageSize).Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询销售列表失败")
	}

	sales := make([]*sale.Sale, len(models))
	for i := range models {
		sales[i] = toSaleEntity(&models[i])
	}
	return sales, total, nil
}

// toSaleEntity GORM模型 → 领域实体
func toSaleEntity(model *SaleModel) *sale.Sale {
	s := &sale.Sale{
		ID:              model.ID,
		SaleNo:          model.SaleNo,
		ProductID:       model.ProductID,
		Quantity:        model.Quantity,
		TotalCost:       model.TotalCost,
		AverageUnitCost: model.AverageUnitCost,
		SaleTimestamp:   model.SaleTimestamp,
		CreatedAt:       model.CreatedAt,
	}
	for _, d := range model.Details {
		s.Details = append(s.Details, sale.BatchDetail{
			ID:        d.ID,
			SaleID:    d.SaleID,
			BatchID:   d.BatchID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			Cost:      d.Cost,
		})
	}
	return s
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *saleRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
