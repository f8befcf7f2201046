// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"costwise-go/internal/config"
	"costwise-go/internal/handler"
	"costwise-go/internal/middleware"
	"costwise-go/internal/model"
	"costwise-go/internal/pipeline"
	"costwise-go/internal/repository"
	"costwise-go/internal/service"
	"costwise-go/pkg/database"
	"costwise-go/pkg/embedding"
	"costwise-go/pkg/es"
	"costwise-go/pkg/kafka"
	"costwise-go/pkg/llm"
	"costwise-go/pkg/log"
	"costwise-go/pkg/storage"
	"costwise-go/pkg/tika"
	"costwise-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化基础设施客户端
	database.InitMySQL(cfg.Database.MySQL.DSN)
	if err := database.DB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Project{},
		&model.ProductionCost{},
		&model.TransportationCost{},
		&model.InstallationCost{},
		&model.Document{},
		&model.DocumentChunk{},
	); err != nil {
		log.Fatalf("数据库表结构迁移失败: %v", err)
	}
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	index, err := es.New(cfg.Elasticsearch, cfg.Embedding.Dimensions)
	if err != nil {
		log.Fatalf("向量索引初始化失败: %v", err)
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	productRepo := repository.NewProductRepository(database.DB)
	projectRepo := repository.NewProjectRepository(database.DB)
	costRepo := repository.NewCostRepository(database.DB)
	docRepo := repository.NewDocumentRepository(database.DB)
	chunkRepo := repository.NewChunkRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.RDB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	tikaClient := tika.NewClient(cfg.Tika)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)

	userService := service.NewUserService(userRepo, jwtManager)
	productService := service.NewProductService(productRepo)
	projectService := service.NewProjectService(projectRepo, costRepo)
	costService := service.NewCostService(costRepo, productRepo, projectRepo)
	documentService := service.NewDocumentService(docRepo, cfg.MinIO)
	contextBuilder := service.NewCostContextBuilder(costRepo, projectRepo)
	queryService := service.NewQueryService(embeddingClient, index, docRepo, contextBuilder, llmClient, service.NewBreakdownExtractor())
	chatService := service.NewChatService(embeddingClient, index, contextBuilder, llmClient, conversationRepo)
	conversationService := service.NewConversationService(conversationRepo)

	// 6. 初始化文档索引管线 (Processor)
	indexer := pipeline.NewIndexer(embeddingClient, index, chunkRepo, docRepo, cfg.Embedding.Model, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	processor := pipeline.NewProcessor(tikaClient, cfg.MinIO, indexer)

	// 7. 启动后台 Kafka 消费者
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 9. 注册路由
	authRequired := middleware.AuthMiddleware(jwtManager, userService)
	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", handler.NewUserHandler(userService).RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			// 无需认证的路由 (公开访问)
			users.POST("/register", handler.NewUserHandler(userService).Register)
			users.POST("/login", handler.NewUserHandler(userService).Login)

			// 需要认证的路由 (仅限登录用户访问)
			authed := users.Group("/")
			authed.Use(authRequired)
			{
				authed.GET("/me", handler.NewUserHandler(userService).GetProfile)
				authed.POST("/logout", handler.NewUserHandler(userService).Logout)
				authed.GET("/conversation", handler.NewConversationHandler(conversationService).GetHistory)
			}
		}

		// Product 路由组，需要认证
		products := apiV1.Group("/products")
		products.Use(authRequired)
		{
			ph := handler.NewProductHandler(productService)
			products.POST("", ph.Create)
			products.GET("", ph.List)
			products.GET("/:id", ph.Get)
			products.PUT("/:id", ph.Update)
			products.DELETE("/:id", ph.Delete)
		}

		// Project 路由组，需要认证
		projects := apiV1.Group("/projects")
		projects.Use(authRequired)
		{
			ph := handler.NewProjectHandler(projectService)
			projects.POST("", ph.Create)
			projects.GET("", ph.List)
			projects.GET("/:id", ph.Get)
			projects.PUT("/:id", ph.Update)
			projects.DELETE("/:id", ph.Delete)
			projects.GET("/:id/cost-summary", ph.CostSummary)
		}

		// Cost 路由组，需要认证
		costs := apiV1.Group("/costs")
		costs.Use(authRequired)
		{
			ch := handler.NewCostHandler(costService)
			costs.POST("/production", ch.RecordProduction)
			costs.GET("/production", ch.ListProduction)
			costs.POST("/transportation", ch.RecordTransportation)
			costs.GET("/transportation", ch.ListTransportation)
			costs.POST("/installation", ch.RecordInstallation)
			costs.GET("/installation", ch.ListInstallation)
		}

		// Document 路由组，需要认证
		documents := apiV1.Group("/documents")
		documents.Use(authRequired)
		{
			dh := handler.NewDocumentHandler(documentService)
			documents.POST("/upload", dh.Upload)
			documents.GET("", dh.List)
			documents.GET("/:id", dh.Get)
			documents.POST("/:id/reindex", dh.Reindex)
			documents.GET("/:id/download", dh.DownloadURL)
		}

		// Query 路由，需要认证
		query := apiV1.Group("/query")
		query.Use(authRequired)
		{
			query.POST("", handler.NewQueryHandler(queryService).Query)
		}

		// Chat 路由 (WebSocket)
		chatHandler := handler.NewChatHandler(chatService, userService, jwtManager)
		chatGroup := apiV1.Group("/chat")
		chatGroup.Use(authRequired)
		{
			chatGroup.GET("/websocket-token", chatHandler.GetWebsocketStopToken)
		}
		r.GET("/chat/:token", chatHandler.Handle)
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	// Kafka 消费者是一个前台循环，随进程退出自然结束
	log.Info("服务已优雅关闭")
}
