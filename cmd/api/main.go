package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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
	"github.com/xiebiao/inventory/pkg/metrics"
	"github.com/xiebiao/inventory/pkg/mq"
	"github.com/xiebiao/inventory/pkg/response"
	"github.com/xiebiao/inventory/pkg/tracing"
)

// main 主程序入口
// 说明：手动依赖注入（wire.go提供Wire版本的注入器）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())
	fmt.Printf("  - 消息队列: Exchange=%s, Queue=%s\n", cfg.MQ.Exchange, cfg.MQ.Queue)

	// 2. 初始化指标与链路追踪
	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer("inventory-engine", cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Printf("关闭链路追踪失败: %v", err)
			}
		}()
	}

	// 3. 初始化数据库与Redis连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 4. 初始化消息发布者(带熔断保护)
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType)
	if err != nil {
		log.Fatalf("初始化消息发布者失败: %v", err)
	}
	defer publisher.Close()

	breaker := circuitbreaker.NewCircuitBreaker("event-publisher", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("⚡ 熔断器[%s]状态变化: %s → %s", name, from, to)
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
	})

	// 5. 依赖注入（手动组装）
	// 依赖链：Repository ← UseCase ← Handler

	// 基础设施层
	productRepo := mysql.NewProductRepository(db)
	inventoryRepo := mysql.NewBatchRepository(db)
	saleRepo := mysql.NewSaleRepository(db)
	transactionRepo := mysql.NewTransactionRepository(db)
	processedRepo := mysql.NewProcessedEventRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 应用层
	recordPurchaseUseCase := appinventory.NewRecordPurchaseUseCase(productRepo, inventoryRepo, processedRepo, txManager)
	getStatusUseCase := appinventory.NewGetStatusUseCase(inventoryRepo)
	listBatchesUseCase := appinventory.NewListBatchesUseCase(inventoryRepo)
	processSaleUseCase := appsale.NewProcessSaleUseCase(productRepo, inventoryRepo, saleRepo, processedRepo, txManager)
	listSalesUseCase := appsale.NewListSalesUseCase(saleRepo)
	historyUseCase := apptransaction.NewHistoryUseCase(transactionRepo)

	// 事件流消费者
	eventHandler := stream.NewEventHandler(recordPurchaseUseCase, processSaleUseCase)
	consumer := stream.NewConsumer(cfg, eventHandler)

	// 接口层
	authHandler := handler.NewAuthHandler(cfg, jwtManager, sessionStore)
	inventoryHandler := handler.NewInventoryHandler(getStatusUseCase, listBatchesUseCase)
	purchaseHandler := handler.NewPurchaseHandler(recordPurchaseUseCase)
	saleHandler := handler.NewSaleHandler(processSaleUseCase, listSalesUseCase)
	transactionHandler := handler.NewTransactionHandler(historyUseCase)
	streamHandler := handler.NewStreamHandler(cfg, publisher, breaker, consumer)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 6. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	registerRoutes(r, authHandler, inventoryHandler, purchaseHandler, saleHandler, transactionHandler, streamHandler, authMiddleware)

	// 7. 启动消费者(按配置决定是否随服务启动)
	if cfg.MQ.AutoStart {
		if err := consumer.Start(); err != nil {
			log.Fatalf("启动事件流消费者失败: %v", err)
		}
	}

	// 8. 启动HTTP服务(支持优雅关闭)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", addr)
		fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
		fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", addr)
		fmt.Printf("   指标采集: http://localhost%s/metrics\n", addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	// 9. 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("\n正在关闭服务...")

	// 先停消费者:HTTP关闭前让在途消息处理完并Ack
	if consumer.Status().State == stream.StateRunning {
		if err := consumer.Stop(); err != nil {
			log.Printf("停止消费者失败: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("关闭服务失败: %v", err)
	}

	fmt.Println("服务已关闭")
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	authHandler *handler.AuthHandler,
	inventoryHandler *handler.InventoryHandler,
	purchaseHandler *handler.PurchaseHandler,
	saleHandler *handler.SaleHandler,
	transactionHandler *handler.TransactionHandler,
	streamHandler *handler.StreamHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 认证模块
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authMiddleware.RequireAuth(), authHandler.Logout)
		}

		// 库存查询(公开接口)
		inventory := v1.Group("/inventory")
		{
			inventory.GET("", inventoryHandler.GetStatusAll)
			inventory.GET("/:productId", inventoryHandler.GetStatus)
			inventory.GET("/:productId/batches", inventoryHandler.ListBatches)
		}

		// 采购与销售的写入口(需要登录)
		v1.POST("/purchases", authMiddleware.RequireAuth(), purchaseHandler.RecordPurchase)
		v1.POST("/sales", authMiddleware.RequireAuth(), saleHandler.ProcessSale)

		// 销售记录与流水查询(公开接口)
		v1.GET("/sales/:productId", saleHandler.ListSales)
		v1.GET("/transactions", transactionHandler.History)

		// 事件流管理
		streamGroup := v1.Group("/stream")
		{
			streamGroup.GET("/status", streamHandler.Status)

			// 发布与启停是运维操作,需要登录
			streamGroup.POST("/send", authMiddleware.RequireAuth(), streamHandler.SendEvent)
			streamGroup.POST("/simulate", authMiddleware.RequireAuth(), streamHandler.Simulate)
			streamGroup.POST("/start", authMiddleware.RequireAuth(), streamHandler.Start)
			streamGroup.POST("/stop", authMiddleware.RequireAuth(), streamHandler.Stop)
		}
	}
}
