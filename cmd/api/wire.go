//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appinventory "github.com/xiebiao/inventory/internal/application/inventory"
	appsale "github.com/xiebiao/inventory/internal/application/sale"
	apptransaction "github.com/xiebiao/inventory/internal/application/transaction"
	"github.com/xiebiao/inventory/internal/infrastructure/config"
	"github.com/xiebiao/inventory/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/inventory/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/inventory/internal/interface/http/handler"
	"github.com/xiebiao/inventory/internal/interface/http/middleware"
	"github.com/xiebiao/inventory/internal/interface/stream"
	"github.com/xiebiao/inventory/pkg/circuitbreaker"
	"github.com/xiebiao/inventory/pkg/jwt"
	"github.com/xiebiao/inventory/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,     // 加载配置文件
	mysql.NewDB,     // 创建MySQL连接
	redis.NewClient, // 创建Redis连接
	providePublisher,
	provideCircuitBreaker,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewProductRepository,        // 商品仓储
	mysql.NewBatchRepository,          // 批次仓储
	mysql.NewSaleRepository,           // 销售仓储
	mysql.NewTransactionRepository,    // 交易流水仓储
	mysql.NewProcessedEventRepository, // 已处理事件仓储
	mysql.NewTxManager,                // 事务管理器
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appinventory.NewRecordPurchaseUseCase, // 采购入账用例
	appinventory.NewGetStatusUseCase,      // 库存状态查询用例
	appinventory.NewListBatchesUseCase,    // 批次列表查询用例
	appsale.NewProcessSaleUseCase,         // 销售处理用例
	appsale.NewListSalesUseCase,           // 销售记录查询用例
	apptransaction.NewHistoryUseCase,      // 交易流水查询用例
)

// streamSet 事件流依赖
// wire.Bind把具体用例绑定到消费侧的接口
var streamSet = wire.NewSet(
	stream.NewEventHandler,
	stream.NewConsumer,
	wire.Bind(new(stream.PurchaseRecorder), new(*appinventory.RecordPurchaseUseCase)),
	wire.Bind(new(stream.SaleProcessor), new(*appsale.ProcessSaleUseCase)),
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,            // JWT管理器（需要从config提取参数）
	provideSessionStore,          // Session存储（需要从Redis创建）
	middleware.NewAuthMiddleware, // 认证中间件
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewAuthHandler,        // 认证处理器
	handler.NewInventoryHandler,   // 库存查询处理器
	handler.NewPurchaseHandler,    // 采购处理器
	handler.NewSaleHandler,        // 销售处理器
	handler.NewTransactionHandler, // 交易流水处理器
	handler.NewStreamHandler,      // 事件流管理处理器
)

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// providePublisher 从配置创建消息发布者
func providePublisher(cfg *config.Config) (*mq.Publisher, error) {
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType)
}

// provideCircuitBreaker 创建事件发布熔断器
func provideCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.NewCircuitBreaker("event-publisher", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	inventoryHandler *handler.InventoryHandler,
	purchaseHandler *handler.PurchaseHandler,
	saleHandler *handler.SaleHandler,
	transactionHandler *handler.TransactionHandler,
	streamHandler *handler.StreamHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())

	// Swagger文档
	// 访问 http://localhost:8080/swagger/index.html 查看API文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	registerRoutes(r, authHandler, inventoryHandler, purchaseHandler, saleHandler, transactionHandler, streamHandler, authMiddleware)

	return r
}

// InitializeApp 初始化整个应用
//
// wire.Build 的参数是所有的 Provider，
// Wire会在编译期分析依赖关系，按正确顺序生成初始化代码：
//
// *gin.Engine 需要 → *handler.SaleHandler
// *handler.SaleHandler 需要 → *appsale.ProcessSaleUseCase
// *appsale.ProcessSaleUseCase 需要 → inventory.Repository
// inventory.Repository 需要 → *gorm.DB
// *gorm.DB 需要 → *config.Config
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		streamSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil
}
