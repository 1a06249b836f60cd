package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/inventory/internal/domain/product"
	apperrors "github.com/xiebiao/inventory/pkg/errors"
)

// productRepository 商品仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/product/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepository{db: db}
}

// FindByID 根据ID查找商品
func (r *productRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	var model ProductModel
	err := r.getDB(ctx).Where("id = ?", id).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}

	return toProductEntity(&model), nil
}

// EnsureExists 确保商品存在,不存在则以占位信息建档
// 使用INSERT ... ON DUPLICATE KEY的DoNothing语义,
// 已存在时不覆盖任何字段,并发建档也不会报错。
func (r *productRepository) EnsureExists(ctx context.Context, id string) error {
	placeholder := product.NewPlaceholder(id)
	model := &ProductModel{
		ID:          placeholder.ID,
		Name:        placeholder.Name,
		Description: placeholder.Description,
	}

	err := r.getDB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
	if err != nil {
		return apperrors.Wrap(err, "商品建档失败")
	}

	return nil
}

// toProductEntity GORM模型 → 领域实体
func toProductEntity(model *ProductModel) *product.Product {
	return &product.Product{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *productRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
