package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"identity-gateway/api/controller"
	"identity-gateway/api/middleware"
	"identity-gateway/api/route"
	"identity-gateway/bootstrap"
	"identity-gateway/internal/codegen"
	"identity-gateway/internal/metrics"
	"identity-gateway/internal/qrcode"
	"identity-gateway/internal/webhook"
	"identity-gateway/repository"
	"identity-gateway/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 加载环境变量
	env := bootstrap.LoadEnv()

	logger, err := bootstrap.NewLogger(env.LogLevel, env.AppEnv)
	if err != nil {
		log.Fatalf("❌ 初始化日志失败: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("Identity Gateway 启动中...")

	// 追踪
	shutdownTracing, err := bootstrap.InitTelemetry(context.Background(), env.OTLPEndpoint, logger)
	if err != nil {
		logger.Fatal("❌ 初始化追踪失败", zap.Error(err))
	}

	// 初始化 Clerk（可选）
	authEnabled := bootstrap.InitClerk(env.ClerkSecretKey, logger)

	// 连接数据库
	db, err := bootstrap.NewDatabase(env.DatabaseURL, !env.IsProduction(), logger)
	if err != nil {
		logger.Fatal("❌ 数据库初始化失败", zap.Error(err))
	}

	// 领域通知（可选）
	publisher := bootstrap.NewPublisher(env.NATSURL, logger)
	defer publisher.Close()

	metrics.Register()

	// Webhook 校验器：密钥在启动时解析一次
	verifier, err := webhook.NewVerifier(env.WebhookSecret, env.WebhookTolerance)
	if err != nil {
		logger.Fatal("❌ Webhook 密钥无效", zap.Error(err))
	}
	if !verifier.Enabled() {
		logger.Warn("⚠️ 未配置 CLERK_WEBHOOK_SECRET，跳过签名验证（仅限开发环境）")
	}

	// 依赖注入 - Repository 层
	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	journalRepo := repository.NewWebhookEventRepository(db)

	// 依赖注入 - UseCase 层
	opts := env.UseCaseOptions()
	invitationUseCase := usecase.NewInvitationUseCase(tx, invitationRepo, userRepo, codegen.NewRandomGenerator(0), publisher, logger, opts)
	identityUseCase := usecase.NewIdentityUseCase(tx, userRepo, journalRepo, verifier, publisher, logger, opts)
	userUseCase := usecase.NewUserUseCase(userRepo, opts)

	// 依赖注入 - Controller 层
	deps := &route.Dependencies{
		InvitationController: controller.NewInvitationController(invitationUseCase, qrcode.NewRenderer(env.SignupURL, qrcode.DefaultSize), logger),
		UserController:       controller.NewUserController(userUseCase, logger),
		WebhookController:    controller.NewWebhookController(identityUseCase, logger),
		Logger:               logger,
	}
	if authEnabled {
		deps.Auth = middleware.ClerkAuth(logger)
	}

	// 配置 Gin 路由
	if env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS 配置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     env.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 设置路由
	route.Setup(router, deps)

	// 启动 HTTP 服务
	srv := &http.Server{
		Addr:              ":" + env.Port,
		Handler:           bootstrap.TraceHandler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("服务已启动", zap.String("addr", "http://localhost:"+env.Port))
		logger.Info("API 端点",
			zap.Strings("public", []string{
				"GET  /health",
				"GET  /metrics",
				"POST /webhook/clerk",
				"GET  /invitations/validate/:code",
				"GET  /invitations/:code/qr",
			}),
			zap.Strings("api", []string{
				"POST /api/invitations",
				"GET  /api/invitations",
				"GET  /api/invitations/:code",
				"POST /api/invitations/redeem",
				"GET  /api/users",
				"GET  /api/users/:id",
				"GET  /api/users/by-email?email=",
				"POST /api/users/batch",
			}))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("收到停机信号，正在优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务强制关闭", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("⚠️ 追踪导出关闭失败", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("服务已安全停止")
}
