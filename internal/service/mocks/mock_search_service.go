package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docrepo/internal/access"
	"docrepo/internal/model"
	"docrepo/internal/service"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, p access.Principal, params service.SearchParams) (*service.SearchResult, error) {
	args := m.Called(ctx, p, params)
	r, _ := args.Get(0).(*service.SearchResult)
	return r, args.Error(1)
}

func (m *MockSearchService) TagFacet(ctx context.Context, p access.Principal) ([]string, error) {
	args := m.Called(ctx, p)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *MockSearchService) UploaderFacet(ctx context.Context, p access.Principal) ([]model.Uploader, error) {
	args := m.Called(ctx, p)
	ups, _ := args.Get(0).([]model.Uploader)
	return ups, args.Error(1)
}
