package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) CreateWithVersion(ctx context.Context, doc *model.Document, v *model.DocumentVersion, tagNames []string) (*model.Document, error) {
	args := m.Called(ctx, doc, v, tagNames)
	d, _ := args.Get(0).(*model.Document)
	return d, args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*model.Document)
	return d, args.Error(1)
}

func (m *MockDocumentRepository) Search(ctx context.Context, q repository.SearchQuery) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, q)
	r, _ := args.Get(0).(*repository.PageResult[model.Document])
	return r, args.Error(1)
}

func (m *MockDocumentRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) AppendVersion(ctx context.Context, v *model.DocumentVersion, expectedVersion int) (*model.DocumentVersion, error) {
	args := m.Called(ctx, v, expectedVersion)
	if f, ok := args.Get(0).(func(context.Context, *model.DocumentVersion, int) *model.DocumentVersion); ok {
		return f(ctx, v, expectedVersion), args.Error(1)
	}
	out, _ := args.Get(0).(*model.DocumentVersion)
	return out, args.Error(1)
}

func (m *MockDocumentRepository) ListVersions(ctx context.Context, documentID string) ([]model.DocumentVersion, error) {
	args := m.Called(ctx, documentID)
	vs, _ := args.Get(0).([]model.DocumentVersion)
	return vs, args.Error(1)
}

func (m *MockDocumentRepository) FindVersion(ctx context.Context, documentID string, versionNumber int) (*model.DocumentVersion, error) {
	args := m.Called(ctx, documentID, versionNumber)
	v, _ := args.Get(0).(*model.DocumentVersion)
	return v, args.Error(1)
}

func (m *MockDocumentRepository) CountVersions(ctx context.Context, documentID string) (int, error) {
	args := m.Called(ctx, documentID)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentRepository) ListTagNames(ctx context.Context, s repository.Scope) ([]string, error) {
	args := m.Called(ctx, s)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *MockDocumentRepository) ListUploaders(ctx context.Context, s repository.Scope) ([]model.Uploader, error) {
	args := m.Called(ctx, s)
	ups, _ := args.Get(0).([]model.Uploader)
	return ups, args.Error(1)
}
