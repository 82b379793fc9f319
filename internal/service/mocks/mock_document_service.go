package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"docrepo/internal/access"
	"docrepo/internal/model"
	"docrepo/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, p access.Principal, in service.CreateDocumentInput, r io.Reader) (*model.Document, error) {
	args := m.Called(ctx, p, in, r)
	d, _ := args.Get(0).(*model.Document)
	return d, args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, p access.Principal, id string) (*service.DocumentDetail, error) {
	args := m.Called(ctx, p, id)
	d, _ := args.Get(0).(*service.DocumentDetail)
	return d, args.Error(1)
}

func (m *MockDocumentService) Versions(ctx context.Context, p access.Principal, id string) ([]model.DocumentVersion, error) {
	args := m.Called(ctx, p, id)
	vs, _ := args.Get(0).([]model.DocumentVersion)
	return vs, args.Error(1)
}

func (m *MockDocumentService) UploadVersion(ctx context.Context, p access.Principal, id string, in service.UploadVersionInput, r io.Reader) (*model.DocumentVersion, error) {
	args := m.Called(ctx, p, id, in, r)
	v, _ := args.Get(0).(*model.DocumentVersion)
	return v, args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, p access.Principal, id string) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}

func (m *MockDocumentService) Download(ctx context.Context, p access.Principal, id string, versionNumber int) (*model.DocumentVersion, io.ReadCloser, error) {
	args := m.Called(ctx, p, id, versionNumber)
	v, _ := args.Get(0).(*model.DocumentVersion)
	rc, _ := args.Get(1).(io.ReadCloser)
	return v, rc, args.Error(2)
}
