package repository

import (
	"context"

	"identity-gateway/domain/entity"
)

// UserReader 只读访问用户
type UserReader interface {
	// GetByID 根据 Clerk user_id 获取用户，不存在返回 (nil, nil)
	GetByID(ctx context.Context, userID string) (*entity.User, error)
}

// UserRepository 用户仓库
// ⚠️ 只有 IdentityUseCase 持有完整接口；邀请流程只拿到 UserReader
type UserRepository interface {
	UserReader

	// Upsert = Update + Insert（存在则整体覆盖身份字段，不存在则创建）
	// 不会修改 invitation_id
	Upsert(ctx context.Context, user *entity.User) error

	// Delete 删除用户，返回删除前是否存在
	Delete(ctx context.Context, userID string) (bool, error)

	// GetByEmail 根据邮箱查询，不存在返回 (nil, nil)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// List 按创建时间倒序列出全部用户
	List(ctx context.Context) ([]entity.User, error)

	// ListByIDs 批量查询
	ListByIDs(ctx context.Context, ids []string) ([]entity.User, error)
}
