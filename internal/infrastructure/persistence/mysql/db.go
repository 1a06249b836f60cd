package mysql

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/inventory/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	// 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 最大打开连接数（建议：CPU核数 * 2 + 磁盘数量）
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	// 最大空闲连接数（建议：MaxOpenConns的1/4到1/2）
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// 连接最大存活时间（防止数据库主动断开连接）
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	// 行锁等待超时通过DSN的innodb_lock_wait_timeout会话变量下发,
	// 连接池的每个连接建立时即生效(见config.DatabaseConfig.DSN)。
	// 热点商品的并发销售在FOR UPDATE处排队,超时由MySQL返回1205,
	// 仓储层翻译为ConcurrencyTimeout(可重试)

	log.Println("✓ 数据库连接成功")

	// 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段。
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ProductModel{},
		&BatchModel{},
		&SaleModel{},
		&SaleBatchDetailModel{},
		&ProcessedEventModel{},
	)
}

// ProductModel GORM商品模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/product/entity.go是领域实体，不依赖GORM
// 3. ID是上游系统给定的业务主键,不用自增ID
type ProductModel struct {
	ID          string    `gorm:"primaryKey;size:64;comment:商品ID(业务主键)"`
	Name        string    `gorm:"size:200;not null;comment:商品名称"`
	Description string    `gorm:"type:text;comment:商品描述"`
	CreatedAt   time.Time `gorm:"comment:创建时间"`
	UpdatedAt   time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ProductModel) TableName() string {
	return "products"
}

// BatchModel GORM采购批次模型
// 设计说明:
// 1. 金额使用decimal(20,4)存储,浮点数在成本累加时会出现误差
// 2. 复合索引idx_fifo覆盖FIFO锁定查询:
//    WHERE product_id=? AND remaining_quantity>0 ORDER BY purchase_timestamp, id
// 3. CHECK约束兜底剩余量不变式,正常路径由守卫UPDATE保证
type BatchModel struct {
	ID                uint            `gorm:"primaryKey"`
	ProductID         string          `gorm:"index:idx_fifo,priority:1;size:64;not null;comment:商品ID"`
	Quantity          int             `gorm:"not null;comment:入库数量"`
	RemainingQuantity int             `gorm:"not null;check:remaining_quantity >= 0 AND remaining_quantity <= quantity;comment:剩余数量"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(20,4);not null;comment:采购单价"`
	PurchaseTimestamp time.Time       `gorm:"index:idx_fifo,priority:2;not null;comment:采购时间"`
	CreatedAt         time.Time       `gorm:"comment:创建时间"`
	UpdatedAt         time.Time       `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BatchModel) TableName() string {
	return "batches"
}

// SaleModel GORM销售记录模型
// 设计说明:
// 1. 与SaleBatchDetailModel是一对多关系
// 2. SaleNo有唯一索引(业务主键)
// 3. TotalCost/AverageUnitCost是成交时刻的成本快照
type SaleModel struct {
	ID              uint                   `gorm:"primaryKey"`
	SaleNo          string                 `gorm:"uniqueIndex;size:32;not null;comment:销售单号"`
	ProductID       string                 `gorm:"index;size:64;not null;comment:商品ID"`
	Quantity        int                    `gorm:"not null;comment:销售数量"`
	TotalCost       decimal.Decimal        `gorm:"type:decimal(20,4);not null;comment:总成本"`
	AverageUnitCost decimal.Decimal        `gorm:"type:decimal(20,4);not null;comment:平均单位成本"`
	SaleTimestamp   time.Time              `gorm:"index;not null;comment:销售时间"`
	Details         []SaleBatchDetailModel `gorm:"foreignKey:SaleID"` // 一对多关联
	CreatedAt       time.Time              `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (SaleModel) TableName() string {
	return "sales"
}

// SaleBatchDetailModel GORM销售批次明细模型
// 记录每笔销售从哪些批次各扣了多少(成本追溯依据)。
type SaleBatchDetailModel struct {
	ID        uint            `gorm:"primaryKey"`
	SaleID    uint            `gorm:"index;not null;comment:销售ID"`
	BatchID   uint            `gorm:"index;not null;comment:批次ID"`
	Quantity  int             `gorm:"not null;comment:扣减数量"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);not null;comment:批次单价(成本快照)"`
	Cost      decimal.Decimal `gorm:"type:decimal(20,4);not null;comment:扣减成本"`
}

// TableName 指定表名
func (SaleBatchDetailModel) TableName() string {
	return "sale_batch_details"
}

// ProcessedEventModel GORM已处理事件模型(幂等去重表)
// EventKey是事件内容派生的SHA-256,唯一索引冲突即为重复事件。
// 与业务变更同一事务写入:事务回滚时标记一并回滚。
type ProcessedEventModel struct {
	ID        uint      `gorm:"primaryKey"`
	EventKey  string    `gorm:"uniqueIndex;size:64;not null;comment:事件键(SHA-256)"`
	CreatedAt time.Time `gorm:"comment:处理时间"`
}

// TableName 指定表名
func (ProcessedEventModel) TableName() string {
	return "processed_events"
}
