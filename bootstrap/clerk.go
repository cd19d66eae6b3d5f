package bootstrap

import (
	"github.com/clerk/clerk-sdk-go/v2"
	"go.uber.org/zap"
)

// InitClerk 设置 Clerk 后端 API 密钥
// 密钥为空时返回 false：JWT 认证和全量同步不可用
func InitClerk(secret string, logger *zap.Logger) bool {
	if secret == "" {
		logger.Warn("⚠️ 未找到 CLERK_SECRET_KEY，Clerk 相关功能已禁用")
		return false
	}
	clerk.SetKey(secret)

	logger.Info("✅ Clerk 初始化成功", zap.String("mode", KeyMode(secret)))
	return true
}

// KeyMode 根据密钥前缀判断环境
func KeyMode(secret string) string {
	if len(secret) >= 8 && secret[:8] == "sk_test_" {
		return "test"
	}
	return "live"
}
