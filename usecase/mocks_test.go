package usecase

import (
	"context"

	"identity-gateway/domain/entity"

	"github.com/stretchr/testify/mock"
)

// ========== MockCodeGenerator ==========
// 实现 codegen.Generator 接口，用于模拟邀请码冲突

type MockCodeGenerator struct {
	mock.Mock
}

func (m *MockCodeGenerator) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// ========== MockPublisher ==========
// 实现 events.Publisher 接口

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, v any) error {
	args := m.Called(ctx, subject, v)
	return args.Error(0)
}

func (m *MockPublisher) Close() {
	m.Called()
}

// ========== MockIdentitySource ==========
// 实现 IdentitySource 接口

type MockIdentitySource struct {
	mock.Mock
}

func (m *MockIdentitySource) ListUsers(ctx context.Context) ([]entity.UserSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.UserSnapshot), args.Error(1)
}
