package entity

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent 已应用的 Webhook 投递记录（按 svix-id 去重）
type WebhookEvent struct {
	ID         string         `gorm:"primaryKey;size:64"` // svix-id
	Type       string         `gorm:"size:64;index"`
	Payload    datatypes.JSON `gorm:"type:jsonb"`
	ReceivedAt time.Time      `gorm:"autoCreateTime"`
}
