package controller

import (
	"io"
	"net/http"

	"identity-gateway/internal/webhook"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody Clerk 单次投递的载荷上限
const maxWebhookBody = 1 << 20

// WebhookController 处理 Clerk Webhook 回调
type WebhookController struct {
	identity IdentityService
	logger   *zap.Logger
}

// NewWebhookController 构造函数
func NewWebhookController(identity IdentityService, logger *zap.Logger) *WebhookController {
	return &WebhookController{
		identity: identity,
		logger:   logger.Named("webhook"),
	}
}

// WebhookResponse 回调确认
type WebhookResponse struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate"`
	Verified  bool `json:"verified"`
}

// HandleClerkWebhook 处理 Clerk Webhook 回调
// POST /webhook/clerk
// 签名必须在原始字节上校验，所以这里不能用 ShouldBindJSON
func (wc *WebhookController) HandleClerkWebhook(c *gin.Context) {
	// 1. 读取原始请求体
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		wc.logger.Warn("❌ 读取请求体失败", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "无法读取请求体"})
		return
	}

	// 2. 校验 + 解析 + 应用
	result, err := wc.identity.HandleEvent(c.Request.Context(), body, webhook.HeadersFrom(c.Request.Header))
	if err != nil {
		writeError(c, wc.logger, err)
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{
		Received:  true,
		Duplicate: result.Duplicate,
		Verified:  result.Verified,
	})
}
