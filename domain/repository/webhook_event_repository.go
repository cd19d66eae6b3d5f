package repository

import (
	"context"

	"identity-gateway/domain/entity"
)

// WebhookEventRepository Webhook 投递日志
type WebhookEventRepository interface {
	// Record 记录一次投递，id 已存在时返回 false（重复投递）
	Record(ctx context.Context, event *entity.WebhookEvent) (bool, error)
}
