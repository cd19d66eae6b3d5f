package repository

import (
	"context"
	"time"

	"identity-gateway/domain/entity"
)

// InvitationRepository 邀请码仓库
type InvitationRepository interface {
	// Create 插入新邀请码，code 冲突时返回 ErrDuplicateKey
	Create(ctx context.Context, invitation *entity.Invitation) error

	// GetByCode 根据邀请码查询，不存在返回 (nil, nil)
	GetByCode(ctx context.Context, code string) (*entity.Invitation, error)

	// GetByCodeWithUsers 同 GetByCode，附带已使用该码的用户
	GetByCodeWithUsers(ctx context.Context, code string) (*entity.Invitation, error)

	// List 按创建时间倒序列出，附带使用者和创建者
	List(ctx context.Context) ([]entity.Invitation, error)

	// IncrementUses 条件自增：仅当 uses_count < max_uses 且未过期时 +1
	// 条件不满足时返回 (nil, nil)，由调用方区分过期/用完
	IncrementUses(ctx context.Context, invitationID string, now time.Time) (*entity.Invitation, error)

	// BindUser 设置 users.invitation_id（仅当尚未设置时），返回是否写入
	BindUser(ctx context.Context, userID, invitationID string) (bool, error)
}
