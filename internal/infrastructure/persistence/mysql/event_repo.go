package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/inventory/internal/domain/event"
	apperrors "github.com/xiebiao/inventory/pkg/errors"
)

// processedEventRepository 已处理事件仓储实现(MySQL)
type processedEventRepository struct {
	db *gorm.DB
}

// NewProcessedEventRepository 创建已处理事件仓储
func NewProcessedEventRepository(db *gorm.DB) event.ProcessedRepository {
	return &processedEventRepository{db: db}
}

// MarkProcessed 记录事件指纹
// 依赖event_key的唯一索引实现幂等:重复事件返回ErrDuplicateEvent。
// 必须与业务写操作在同一事务内调用,事务回滚时指纹一并回滚,
// 消息重投后可以正常重试。
func (r *processedEventRepository) MarkProcessed(ctx context.Context, key string) error {
	model := &ProcessedEventModel{EventKey: key}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrDuplicateEvent
		}
		return apperrors.Wrap(err, "记录事件指纹失败")
	}
	return nil
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *processedEventRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
