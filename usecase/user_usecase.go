package usecase

import (
	"context"

	"identity-gateway/domain/entity"
	domainErrors "identity-gateway/domain/errors"
	"identity-gateway/domain/repository"
)

// UserUseCase 用户只读查询
type UserUseCase struct {
	users repository.UserRepository
	opts  Options
}

// NewUserUseCase 构造函数
func NewUserUseCase(users repository.UserRepository, opts Options) *UserUseCase {
	return &UserUseCase{users: users, opts: opts.withDefaults()}
}

// FindByID 根据 Clerk user_id 查询
func (uc *UserUseCase) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return uc.findOne(ctx, func(ctx context.Context) (*entity.User, error) {
		return uc.users.GetByID(ctx, id)
	})
}

// FindByEmail 根据邮箱查询
func (uc *UserUseCase) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return uc.findOne(ctx, func(ctx context.Context) (*entity.User, error) {
		return uc.users.GetByEmail(ctx, email)
	})
}

func (uc *UserUseCase) findOne(ctx context.Context, get func(ctx context.Context) (*entity.User, error)) (*entity.User, error) {
	var user *entity.User
	err := uc.opts.retrying(ctx, func(ctx context.Context) error {
		var getErr error
		user, getErr = get(ctx)
		return getErr
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domainErrors.ErrUserNotFound
	}
	return user, nil
}

// FindAll 列出全部用户（创建时间倒序）
func (uc *UserUseCase) FindAll(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := uc.opts.retrying(ctx, func(ctx context.Context) error {
		var listErr error
		users, listErr = uc.users.List(ctx)
		return listErr
	})
	return users, err
}

// FindByIDs 批量查询
func (uc *UserUseCase) FindByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	var users []entity.User
	err := uc.opts.retrying(ctx, func(ctx context.Context) error {
		var listErr error
		users, listErr = uc.users.ListByIDs(ctx, ids)
		return listErr
	})
	return users, err
}
