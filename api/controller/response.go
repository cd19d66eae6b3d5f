package controller

import (
	"errors"
	"net/http"

	domainErrors "identity-gateway/domain/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// --- 响应结构定义 ---

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MessageResponse 消息响应结构
type MessageResponse struct {
	Message string `json:"message"`
}

// errorMapping 领域错误 -> HTTP 状态码和对外文案
var errorMapping = []struct {
	target  error
	status  int
	message string
}{
	{domainErrors.ErrInvitationNotFound, http.StatusNotFound, "Invitation code not found"},
	{domainErrors.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{domainErrors.ErrInvitationExpired, http.StatusBadRequest, "Invitation code has expired"},
	{domainErrors.ErrInvitationExhausted, http.StatusBadRequest, "Invitation code has reached maximum uses"},
	{domainErrors.ErrInvitationAlreadyUsed, http.StatusBadRequest, "User has already used this invitation code"},
	{domainErrors.ErrValidation, http.StatusBadRequest, "Invalid request"},
	{domainErrors.ErrInvalidPayload, http.StatusBadRequest, "Invalid payload"},
	{domainErrors.ErrWebhookRejected, http.StatusUnauthorized, "Webhook verification failed"},
	{domainErrors.ErrTransient, http.StatusServiceUnavailable, "Service temporarily unavailable, please retry"},
}

// statusOf 返回错误对应的状态码和文案；未知错误一律 500
func statusOf(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// writeError 统一错误响应
// 4xx 把错误详情返回给调用方；5xx 只记日志，不暴露内部信息
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status, message := statusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error("❌ 请求处理失败",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
		c.JSON(status, ErrorResponse{Error: message})
		return
	}
	c.JSON(status, ErrorResponse{Error: message, Details: err.Error()})
}
