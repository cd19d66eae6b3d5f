package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenVerifier 校验 Bearer Token，返回用户 ID（subject）
type TokenVerifier func(ctx context.Context, token string) (string, error)

// VerifyClerkToken 使用 Clerk SDK 校验 session token
// SDK 会自动拉取 JWKS 公钥并验证签名、过期时间
func VerifyClerkToken(ctx context.Context, token string) (string, error) {
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{Token: token})
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ClerkAuth Clerk JWT 认证
func ClerkAuth(logger *zap.Logger) gin.HandlerFunc {
	return TokenAuth(VerifyClerkToken, logger)
}

// TokenAuth 通用 Bearer Token 认证中间件
func TokenAuth(verify TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("auth")
	return func(c *gin.Context) {
		// 1. 获取 Token (支持 Bearer Token)
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少 Authorization 头"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		// 2. 验证 Token
		subject, err := verify(c.Request.Context(), token)
		if err != nil {
			logger.Debug("Token 校验失败", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token 无效", "details": err.Error()})
			return
		}

		// 3. 将用户信息注入上下文，供后续 Controller 使用
		c.Set(ContextKeyUserID, subject)

		c.Next()
	}
}
