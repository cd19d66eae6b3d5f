package bootstrap

import (
	"identity-gateway/internal/events"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NewPublisher 连接 NATS；未配置或连接失败时退化为 NopPublisher
// 通知是尽力而为的，不能因为 NATS 不可用而拒绝启动
func NewPublisher(url string, logger *zap.Logger) events.Publisher {
	if url == "" {
		logger.Info("ℹ️ 未配置 NATS_URL，领域通知已禁用")
		return events.NopPublisher{}
	}

	p, err := events.NewNATSPublisher(url, nats.Name(ServiceName), nats.MaxReconnects(-1))
	if err != nil {
		logger.Warn("⚠️ 连接 NATS 失败，领域通知已禁用", zap.String("url", url), zap.Error(err))
		return events.NopPublisher{}
	}

	logger.Info("✅ NATS 已连接", zap.String("url", url))
	return p
}
