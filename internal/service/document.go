package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docrepo/internal/access"
	"docrepo/internal/cache"
	"docrepo/internal/config"
	"docrepo/internal/model"
	"docrepo/internal/repository"
	"docrepo/internal/storage"
)

// CreateDocumentInput carries the metadata for a new document. The file
// content itself travels separately as an io.Reader.
type CreateDocumentInput struct {
	Title           string
	Description     string
	PermissionLevel string
	Tags            []string
	FileName        string
	ContentType     string
	Size            int64
}

// UploadVersionInput carries the metadata for a new version of an
// existing document.
type UploadVersionInput struct {
	FileName    string
	ContentType string
	Size        int64
	ChangeNotes string
}

// DocumentDetail is a document together with its latest version record.
type DocumentDetail struct {
	model.Document
	LatestVersion *model.DocumentVersion `json:"latest_version,omitempty"`
	VersionCount  int                    `json:"version_count"`
}

type DocumentService interface {
	Create(ctx context.Context, p access.Principal, in CreateDocumentInput, r io.Reader) (*model.Document, error)
	Get(ctx context.Context, p access.Principal, id string) (*DocumentDetail, error)
	Versions(ctx context.Context, p access.Principal, id string) ([]model.DocumentVersion, error)
	UploadVersion(ctx context.Context, p access.Principal, id string, in UploadVersionInput, r io.Reader) (*model.DocumentVersion, error)
	Delete(ctx context.Context, p access.Principal, id string) error
	Download(ctx context.Context, p access.Principal, id string, versionNumber int) (*model.DocumentVersion, io.ReadCloser, error)
}

type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
	cache cache.Cache
	cfg   config.UploadConfig
}

func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, c cache.Cache, cfg config.UploadConfig) DocumentService {
	return &documentService{store: store, repo: repo, cache: c, cfg: cfg}
}

func (s *documentService) Create(ctx context.Context, p access.Principal, in CreateDocumentInput, r io.Reader) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	level := model.PermissionLevel(strings.ToLower(strings.TrimSpace(in.PermissionLevel)))
	if level == "" {
		level = model.PermissionDepartment
	}
	if !level.Valid() {
		return nil, ErrInvalidPermissionLevel
	}
	fileName, ext := splitFilename(in.FileName)
	if !s.extensionAllowed(ext) {
		return nil, ErrExtensionNotAllowed
	}
	if s.cfg.MaxUploadSize > 0 && in.Size > s.cfg.MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	now := time.Now().UTC()
	docID := uuid.NewString()
	key := versionKey(docID, 1, now, ext)

	hr := storage.NewHashingReader(r)
	if _, err := s.store.Put(ctx, key, hr, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata:    map[string]string{"original-filename": fileName},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:              docID,
		Title:           title,
		Description:     in.Description,
		PermissionLevel: level,
		UploaderID:      p.ID,
		DepartmentID:    p.DepartmentID,
		CurrentVersion:  1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	v := &model.DocumentVersion{
		ID:            uuid.NewString(),
		DocumentID:    docID,
		VersionNumber: 1,
		StoragePath:   key,
		FileName:      fileName,
		FileSize:      hr.Size(),
		MimeType:      in.ContentType,
		Checksum:      hr.Sum(),
		UploadedBy:    p.ID,
		UploadDate:    now,
		ChangeNotes:   defaultChangeNotes("", 1),
	}

	stored, err := s.repo.CreateWithVersion(ctx, doc, v, normalizeTagNames(in.Tags))
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	s.cache.DeletePattern(ctx, searchKeyPrefix+"*")
	return stored, nil
}

func (s *documentService) Get(ctx context.Context, p access.Principal, id string) (*DocumentDetail, error) {
	doc, err := s.findAccessible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	detail := &DocumentDetail{Document: *doc}
	latest, err := s.repo.FindVersion(ctx, doc.ID, doc.CurrentVersion)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	detail.LatestVersion = latest
	count, err := s.repo.CountVersions(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	detail.VersionCount = count
	return detail, nil
}

func (s *documentService) Versions(ctx context.Context, p access.Principal, id string) ([]model.DocumentVersion, error) {
	doc, err := s.findAccessible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return s.repo.ListVersions(ctx, doc.ID)
}

func (s *documentService) UploadVersion(ctx context.Context, p access.Principal, id string, in UploadVersionInput, r io.Reader) (*model.DocumentVersion, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	doc, err := s.findAccessible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxUploadSize > 0 && in.Size > s.cfg.MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	fileName, ext := splitFilename(in.FileName)
	now := time.Now().UTC()
	next := doc.CurrentVersion + 1
	key := versionKey(doc.ID, next, now, ext)

	hr := storage.NewHashingReader(r)
	if _, err := s.store.Put(ctx, key, hr, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata:    map[string]string{"original-filename": fileName},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	v := &model.DocumentVersion{
		ID:            uuid.NewString(),
		DocumentID:    doc.ID,
		VersionNumber: next,
		StoragePath:   key,
		FileName:      fileName,
		FileSize:      hr.Size(),
		MimeType:      in.ContentType,
		Checksum:      hr.Sum(),
		UploadedBy:    p.ID,
		UploadDate:    now,
		ChangeNotes:   defaultChangeNotes(in.ChangeNotes, next),
	}

	stored, err := s.repo.AppendVersion(ctx, v, doc.CurrentVersion)
	if errors.Is(err, repository.ErrVersionConflict) {
		stored, err = s.retryAppend(ctx, v, in.ChangeNotes, ext)
	}
	if err != nil {
		_ = s.store.Delete(ctx, v.StoragePath)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, ErrVersionConflict
		}
		return nil, err
	}
	s.cache.DeletePattern(ctx, searchKeyPrefix+"*")
	return stored, nil
}

// retryAppend handles a lost race for the next version number. The content is
// already in storage, so it is re-keyed server-side under the fresh version
// number instead of being streamed again; the request reader was consumed by
// the first attempt and cannot be replayed.
func (s *documentService) retryAppend(ctx context.Context, v *model.DocumentVersion, notes, ext string) (*model.DocumentVersion, error) {
	doc, err := s.repo.FindByID(ctx, v.DocumentID)
	if err != nil {
		return nil, err
	}
	next := doc.CurrentVersion + 1
	oldKey := v.StoragePath
	newKey := versionKey(doc.ID, next, time.Now().UTC(), ext)
	if _, err := s.store.Copy(ctx, oldKey, newKey); err != nil {
		return nil, fmt.Errorf("re-key stored content: %w", err)
	}
	_ = s.store.Delete(ctx, oldKey)
	v.VersionNumber = next
	v.StoragePath = newKey
	v.ChangeNotes = defaultChangeNotes(notes, next)
	return s.repo.AppendVersion(ctx, v, doc.CurrentVersion)
}

func (s *documentService) Delete(ctx context.Context, p access.Principal, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !access.CanDelete(p, doc) {
		return ErrForbidden
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.cache.DeletePattern(ctx, searchKeyPrefix+"*")
	return nil
}

func (s *documentService) Download(ctx context.Context, p access.Principal, id string, versionNumber int) (*model.DocumentVersion, io.ReadCloser, error) {
	doc, err := s.findAccessible(ctx, p, id)
	if err != nil {
		return nil, nil, err
	}
	n := versionNumber
	if n <= 0 {
		n = doc.CurrentVersion
	}
	v, err := s.repo.FindVersion(ctx, doc.ID, n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrVersionNotFound
		}
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, v.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, nil, ErrVersionNotFound
		}
		return nil, nil, fmt.Errorf("read from storage: %w", err)
	}
	return v, rc, nil
}

func (s *documentService) findAccessible(ctx context.Context, p access.Principal, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !access.CanAccess(p, doc) {
		return nil, ErrForbidden
	}
	return doc, nil
}

func (s *documentService) extensionAllowed(ext string) bool {
	for _, allowed := range s.cfg.AllowedExtensionsList() {
		if ext == allowed {
			return true
		}
	}
	return false
}

// splitFilename strips any client-supplied path and returns the bare name
// plus its lowercased extension.
func splitFilename(name string) (base, ext string) {
	base = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext = strings.ToLower(filepath.Ext(base))
	return base, ext
}

func versionKey(docID string, n int, ts time.Time, ext string) string {
	return fmt.Sprintf("documents/%s_v%d_%s%s", docID, n, ts.Format("20060102_150405"), ext)
}

func defaultChangeNotes(notes string, n int) string {
	if strings.TrimSpace(notes) != "" {
		return notes
	}
	if n == 1 {
		return "Initial version"
	}
	return fmt.Sprintf("Version %d", n)
}
