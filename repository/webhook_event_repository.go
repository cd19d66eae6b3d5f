package repository

import (
	"context"

	"identity-gateway/domain/entity"
	domainRepo "identity-gateway/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookEventRepository GORM 实现 WebhookEventRepository 接口
type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository 构造函数
func NewWebhookEventRepository(db *gorm.DB) domainRepo.WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// Record 记录投递；ON CONFLICT DO NOTHING，RowsAffected == 0 表示重复投递
func (r *webhookEventRepository) Record(ctx context.Context, event *entity.WebhookEvent) (bool, error) {
	result := conn(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected == 1, nil
}
