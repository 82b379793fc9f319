package repository

import (
	"context"
	"errors"

	"docrepo/internal/model"
)

// ErrVersionConflict is returned by AppendVersion when the document's
// current version no longer matches the caller's expectation, i.e. a
// concurrent upload won the race.
var ErrVersionConflict = errors.New("document version conflict")

// SearchQuery describes a permission-scoped, filtered, sorted page request
// over documents. All filters are conjunctive; Tags matches documents
// carrying at least one of the given normalized names.
type SearchQuery struct {
	Scope           Scope
	Query           string
	Tags            []string
	UploaderID      string
	DepartmentID    string
	PermissionLevel string
	SortBy          string // sort-key token; unrecognized tokens fall back to created_at
	SortOrder       string // "asc" or "desc"
	Limit           int
	Offset          int
}

// DocumentRepository defines data access for documents, their immutable
// version rows and tag associations, using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// CreateWithVersion inserts the document row, its version-1 row and the
	// tag associations (tags get-or-created by normalized name) as a single
	// transaction. Nothing is visible if any part fails.
	CreateWithVersion(ctx context.Context, doc *model.Document, v *model.DocumentVersion, tagNames []string) (*model.Document, error)

	// FindByID returns a non-deleted document by id with display fields and
	// tag names populated. Soft-deleted rows yield sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// Search returns a page of visible documents and the total count over
	// the full filtered set.
	Search(ctx context.Context, q SearchQuery) (*PageResult[model.Document], error)

	// SoftDelete marks a document deleted. Version rows are retained.
	SoftDelete(ctx context.Context, id string) error

	// AppendVersion inserts a version row and advances current_version in
	// one transaction, locking the document row. The insert only commits if
	// the row's current_version still equals expectedVersion; otherwise
	// ErrVersionConflict is returned. A missing or soft-deleted document
	// yields sql.ErrNoRows.
	AppendVersion(ctx context.Context, v *model.DocumentVersion, expectedVersion int) (*model.DocumentVersion, error)

	// ListVersions returns all version rows for a document, newest first.
	ListVersions(ctx context.Context, documentID string) ([]model.DocumentVersion, error)

	// FindVersion returns one version row by document id and number.
	FindVersion(ctx context.Context, documentID string, versionNumber int) (*model.DocumentVersion, error)

	// CountVersions returns the number of version rows for a document.
	CountVersions(ctx context.Context, documentID string) (int, error)

	// ListTagNames returns the distinct tag names attached to non-deleted
	// documents visible under the scope, sorted ascending.
	ListTagNames(ctx context.Context, s Scope) ([]string, error)

	// ListUploaders returns the distinct users who uploaded at least one
	// non-deleted document visible under the scope.
	ListUploaders(ctx context.Context, s Scope) ([]model.Uploader, error)
}
