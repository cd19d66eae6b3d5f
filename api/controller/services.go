package controller

import (
	"context"

	"identity-gateway/domain/entity"
	"identity-gateway/internal/webhook"
	"identity-gateway/usecase"
)

// 控制器依赖的用例接口，由 usecase 包中的实现满足

// InvitationService 邀请码用例
type InvitationService interface {
	Create(ctx context.Context, in usecase.CreateInvitationInput) (*entity.Invitation, error)
	Validate(ctx context.Context, code string) (*usecase.ValidationResult, error)
	Redeem(ctx context.Context, code, userID string) (*usecase.RedemptionResult, error)
	FindAll(ctx context.Context) ([]entity.Invitation, error)
	FindByCode(ctx context.Context, code string) (*entity.Invitation, error)
}

// IdentityService 身份事件用例
type IdentityService interface {
	HandleEvent(ctx context.Context, payload []byte, headers webhook.Headers) (*usecase.EventResult, error)
}

// UserService 用户查询用例
type UserService interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context) ([]entity.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]entity.User, error)
}

var (
	_ InvitationService = (*usecase.InvitationUseCase)(nil)
	_ IdentityService   = (*usecase.IdentityUseCase)(nil)
	_ UserService       = (*usecase.UserUseCase)(nil)
)
