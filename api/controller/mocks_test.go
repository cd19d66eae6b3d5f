package controller

import (
	"context"

	"identity-gateway/domain/entity"
	"identity-gateway/internal/webhook"
	"identity-gateway/usecase"

	"github.com/stretchr/testify/mock"
)

// ========== MockInvitationService ==========

type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) Create(ctx context.Context, in usecase.CreateInvitationInput) (*entity.Invitation, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Invitation), args.Error(1)
}

func (m *MockInvitationService) Validate(ctx context.Context, code string) (*usecase.ValidationResult, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ValidationResult), args.Error(1)
}

func (m *MockInvitationService) Redeem(ctx context.Context, code, userID string) (*usecase.RedemptionResult, error) {
	args := m.Called(ctx, code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RedemptionResult), args.Error(1)
}

func (m *MockInvitationService) FindAll(ctx context.Context) ([]entity.Invitation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Invitation), args.Error(1)
}

func (m *MockInvitationService) FindByCode(ctx context.Context, code string) (*entity.Invitation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Invitation), args.Error(1)
}

// ========== MockIdentityService ==========

type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) HandleEvent(ctx context.Context, payload []byte, headers webhook.Headers) (*usecase.EventResult, error) {
	args := m.Called(ctx, payload, headers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.EventResult), args.Error(1)
}

// ========== MockUserService ==========

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) FindAll(ctx context.Context) ([]entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockUserService) FindByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}
