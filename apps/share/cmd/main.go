package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ShareServer/apps/share/internal/handler"
	"ShareServer/apps/share/internal/middleware"
	"ShareServer/apps/share/internal/repository"
	"ShareServer/apps/share/internal/router"
	"ShareServer/apps/share/internal/service"
	"ShareServer/apps/share/mq"
	"ShareServer/config"
	pkgasync "ShareServer/pkg/async"
	pkgkafka "ShareServer/pkg/kafka"
	"ShareServer/pkg/llm"
	"ShareServer/pkg/logger"
	pkgminio "ShareServer/pkg/minio"
	pkgmysql "ShareServer/pkg/mysql"
	pkgredis "ShareServer/pkg/redis"
	"ShareServer/pkg/util"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx := context.Background()
	//设置trace_id 为 0
	ctx = context.WithValue(ctx, "trace_id", "0")

	// 1. 初始化日志
	loggerCfg := config.DefaultLoggerConfig()
	l, err := logger.Build(loggerCfg)
	if err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	logger.ReplaceGlobal(l)
	defer func() {
		// 同步日志缓冲区（stdout 场景的报错可以忽略）
		_ = logger.L().Sync()
	}()

	logger.Info(ctx, "Share 服务初始化中...")

	// 2. 初始化雪花 ID 生成器
	// TODO: 多实例部署时 nodeID 从环境变量注入
	if err := repository.InitIDGenerator(1); err != nil {
		logger.Error(ctx, "初始化 ID 生成器失败", logger.ErrorField("error", err))
		os.Exit(1)
	}

	// 3. 初始化 MySQL（核心依赖，失败直接退出）
	mysqlCfg := config.DefaultMySQLConfig()
	db, err := pkgmysql.Build(mysqlCfg)
	if err != nil {
		logger.Error(ctx, "初始化 MySQL 失败", logger.ErrorField("error", err))
		os.Exit(1)
	}
	pkgmysql.ReplaceGlobal(db)
	logger.Info(ctx, "MySQL 初始化成功")

	// 4. 初始化 Redis（可降级：失败时缓存与分布式限流退化，不阻塞启动）
	redisCfg := config.DefaultRedisConfig()
	redisClient, err := pkgredis.Build(redisCfg)
	if err != nil {
		logger.Error(ctx, "初始化 Redis 失败，缓存与限流降级",
			logger.ErrorField("error", err),
		)
		redisClient = nil
	} else {
		pkgredis.ReplaceGlobal(redisClient)
		logger.Info(ctx, "Redis 初始化成功", logger.String("addr", redisCfg.Addr))
	}

	// 5. 初始化协程池（Feed 扇出与回填的异步执行）
	asyncCfg := config.DefaultAsyncConfig()
	if err := pkgasync.Init(asyncCfg); err != nil {
		logger.Error(ctx, "初始化协程池失败", logger.ErrorField("error", err))
		os.Exit(1)
	}
	pkgasync.SetContextPropagator(util.PropagateTrace)
	defer func() {
		if err := pkgasync.Release(); err != nil {
			logger.Error(ctx, "释放协程池失败", logger.ErrorField("error", err))
		}
	}()
	logger.Info(ctx, "协程池初始化成功", logger.Int("pool_size", asyncCfg.PoolSize))

	// 6. 初始化 MinIO（可降级：失败时图片/头像返回对象键不换 URL）
	minioCfg := config.DefaultMinIOConfig()
	minioClient, err := pkgminio.Build(minioCfg)
	if err != nil {
		logger.Error(ctx, "初始化 MinIO 失败，预签名 URL 降级",
			logger.ErrorField("error", err),
		)
		minioClient = nil
	} else {
		pkgminio.ReplaceGlobal(minioClient)
		logger.Info(ctx, "MinIO 初始化成功", logger.String("endpoint", minioCfg.Endpoint))
	}

	// 7. 初始化 Kafka 生产者与消费者 Reader
	kafkaCfg := config.DefaultKafkaConfig()
	producer := pkgkafka.NewProducer(kafkaCfg.Brokers, kafkaCfg.RelationAcceptedTopic)
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Error(ctx, "关闭 Kafka 生产者失败", logger.ErrorField("error", err))
		}
	}()
	reader := pkgkafka.NewReader(
		kafkaCfg.Brokers,
		kafkaCfg.RelationAcceptedTopic,
		kafkaCfg.ConsumerConfig.GroupID,
		kafkaCfg.ConsumerConfig.MinBytes,
		kafkaCfg.ConsumerConfig.MaxBytes,
		kafkaCfg.ConsumerConfig.CommitInterval,
	)
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error(ctx, "关闭 Kafka Reader 失败", logger.ErrorField("error", err))
		}
	}()
	logger.Info(ctx, "Kafka 初始化成功",
		logger.String("topic", kafkaCfg.RelationAcceptedTopic),
		logger.String("group_id", kafkaCfg.ConsumerConfig.GroupID),
	)

	// 8. 初始化生成式摘要后端
	aiflowCfg := config.DefaultAIFlowConfig()
	llmProvider := llm.NewOpenAIProvider(aiflowCfg)
	logger.Info(ctx, "生成后端初始化完成", logger.String("model", aiflowCfg.Model))

	// 9. 初始化 Repository 层（依赖注入）
	updateRepo := repository.NewUpdateRepository(db, redisClient)
	feedRepo := repository.NewFeedRepository(db)
	relationRepo := repository.NewRelationRepository(db, redisClient)
	groupRepo := repository.NewGroupRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	// 10. 初始化 Service 层（依赖注入）
	visibilityService := service.NewVisibilityService()
	fanoutService := service.NewFanoutService(feedRepo)
	aiflowService := service.NewAIFlowService(llmProvider, aiflowCfg)
	backfillService := service.NewBackfillService(updateRepo, feedRepo, relationRepo, summaryRepo, aiflowService)
	updateService := service.NewUpdateService(updateRepo, relationRepo, groupRepo, visibilityService, fanoutService)
	feedService := service.NewFeedService(feedRepo)
	eventPublisher := mq.NewRelationEventProducer(producer)
	relationService := service.NewRelationService(relationRepo, profileRepo, eventPublisher)
	logger.Info(ctx, "服务层初始化完成")

	// 11. 启动关系接受事件消费者（驱动回填管道）
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	consumer := mq.NewRelationEventConsumer(reader, redisClient, backfillService)
	go func() {
		if err := consumer.Start(consumerCtx); err != nil {
			logger.Error(ctx, "事件消费者退出", logger.ErrorField("error", err))
		}
	}()
	logger.Info(ctx, "事件消费者启动成功")

	// 12. 初始化认证与限流
	serverCfg := config.DefaultServerConfig()
	middleware.InitJWT(serverCfg.JWTSecret, serverCfg.JWTExpiry)
	rateLimiter := middleware.NewRateLimiter(redisClient, serverCfg.RateLimitPerSec, serverCfg.RateLimitCapacity)

	// 13. 初始化 Handler 层与路由（依赖注入）
	updateHandler := handler.NewUpdateHandler(updateService, minioClient)
	feedHandler := handler.NewFeedHandler(feedService)
	relationHandler := handler.NewRelationHandler(relationService, minioClient)

	gin.SetMode(gin.ReleaseMode)
	r := router.InitRouter(updateHandler, feedHandler, relationHandler, rateLimiter)
	logger.Info(ctx, "路由初始化完成")

	// 14. 启动 HTTP 服务器
	srv := &http.Server{
		Addr:           serverCfg.Addr,
		Handler:        r,
		ReadTimeout:    serverCfg.ReadTimeout,
		WriteTimeout:   serverCfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info(ctx, "Share 服务器启动中", logger.String("addr", serverCfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "服务器启动失败", logger.ErrorField("error", err))
			os.Exit(1)
		}
	}()

	// 15. 优雅停机：先停收新请求，再停消费者
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info(ctx, "收到关闭信号，开始优雅停机...", logger.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "服务器关闭异常", logger.ErrorField("error", err))
	}
	stopConsumer()

	logger.Info(ctx, "Share 服务已退出")
}
