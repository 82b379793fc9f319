package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docrepo/internal/access"
	"docrepo/internal/model"
	"docrepo/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.TokenPair, *model.User, error) {
	args := m.Called(ctx, email, password)
	pair, _ := args.Get(0).(*service.TokenPair)
	u, _ := args.Get(1).(*model.User)
	return pair, u, args.Error(2)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	pair, _ := args.Get(0).(*service.TokenPair)
	return pair, args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) ResolvePrincipal(ctx context.Context, accessToken string) (access.Principal, *model.User, error) {
	args := m.Called(ctx, accessToken)
	p, _ := args.Get(0).(access.Principal)
	u, _ := args.Get(1).(*model.User)
	return p, u, args.Error(2)
}
