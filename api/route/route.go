package route

import (
	"net/http"

	"identity-gateway/api/controller"
	"identity-gateway/api/middleware"
	"identity-gateway/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由依赖注入结构
type Dependencies struct {
	InvitationController *controller.InvitationController
	UserController       *controller.UserController
	WebhookController    *controller.WebhookController
	Logger               *zap.Logger

	// Auth 为 nil 时 /api 不做认证（仅限开发环境）
	Auth gin.HandlerFunc
}

// Setup 配置所有路由
func Setup(router *gin.Engine, deps *Dependencies) {
	router.Use(middleware.RequestLogger(deps.Logger), metrics.Middleware())

	// --- 公开路由 ---

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "identity-gateway",
		})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Clerk Webhook（使用签名验证，不使用 JWT）
	router.POST("/webhook/clerk", deps.WebhookController.HandleClerkWebhook)

	// 注册页使用：校验邀请码、展示二维码
	router.GET("/invitations/validate/:code", deps.InvitationController.Validate)
	router.GET("/invitations/:code/qr", deps.InvitationController.QRCode)

	// --- API 路由（配置了 Clerk 时需要 JWT 认证）---
	api := router.Group("/api")
	if deps.Auth != nil {
		api.Use(deps.Auth)
	} else {
		deps.Logger.Warn("⚠️ 未配置 CLERK_SECRET_KEY，/api 路由未启用认证（仅限开发环境）")
	}
	{
		// 邀请码
		api.POST("/invitations", deps.InvitationController.Create)
		api.GET("/invitations", deps.InvitationController.FindAll)
		api.POST("/invitations/redeem", deps.InvitationController.Redeem)
		api.GET("/invitations/:code", deps.InvitationController.FindByCode)

		// 用户（只读）
		api.GET("/users", deps.UserController.FindAll)
		api.GET("/users/by-email", deps.UserController.FindByEmail)
		api.GET("/users/:id", deps.UserController.FindByID)
		api.POST("/users/batch", deps.UserController.FindByIDs)
	}
}
