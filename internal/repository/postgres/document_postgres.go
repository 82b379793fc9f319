package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// sortColumns is the closed allow-list of caller-selectable sort keys.
// Unrecognized tokens fall back to created_at; this fallback is deliberate
// and mirrors the documented search contract.
var sortColumns = map[string]string{
	"title":      "d.title",
	"created_at": "d.created_at",
	"updated_at": "d.updated_at",
}

const docSelect = `
	SELECT d.id, d.title, d.description, d.permission_level, d.uploader_id,
	       d.department_id, d.current_version, d.is_deleted, d.created_at, d.updated_at,
	       u.first_name || ' ' || u.last_name AS uploader_name,
	       dep.name AS department_name
	FROM documents d
	JOIN users u ON u.id = d.uploader_id
	LEFT JOIN departments dep ON dep.id = d.department_id
`

const versionSelect = `
	SELECT v.id, v.document_id, v.version_number, v.storage_path, v.file_name,
	       v.file_size, v.mime_type, v.checksum, v.uploaded_by, v.upload_date, v.change_notes,
	       u.first_name || ' ' || u.last_name AS uploaded_by_name
	FROM document_versions v
	LEFT JOIN users u ON u.id = v.uploaded_by
`

// scopeClause renders the visibility rules of access.CanAccess as a SQL
// fragment, appending bind values to args. It returns "" for admins, who
// bypass the predicate entirely. The shared fragment keeps search and both
// facet queries provably aligned with direct-fetch access checks.
func scopeClause(s repository.Scope, args *[]any) string {
	if s.Admin {
		return ""
	}
	*args = append(*args, s.UserID)
	clause := fmt.Sprintf("(d.permission_level = 'public' OR d.uploader_id = $%d", len(*args))
	if s.DepartmentID != nil {
		*args = append(*args, *s.DepartmentID)
		clause += fmt.Sprintf(" OR (d.permission_level = 'department' AND d.department_id = $%d)", len(*args))
	}
	clause += ")"
	return clause
}

// placeholders renders $n,$n+1,... for len(vals) bind values, appending
// the values to args.
func placeholders(vals []string, args *[]any) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		*args = append(*args, v)
		parts = append(parts, fmt.Sprintf("$%d", len(*args)))
	}
	return strings.Join(parts, ", ")
}

// CreateWithVersion inserts the document, its first version and tag
// associations in a single transaction.
func (r *DocumentPostgres) CreateWithVersion(ctx context.Context, doc *model.Document, v *model.DocumentVersion, tagNames []string) (*model.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const qDoc = `
		INSERT INTO documents (id, title, description, uploader_id, department_id,
		                       permission_level, current_version, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9)
	`
	if _, err := tx.ExecContext(ctx, qDoc,
		doc.ID, doc.Title, doc.Description, doc.UploaderID, doc.DepartmentID,
		doc.PermissionLevel, doc.CurrentVersion, doc.CreatedAt, doc.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	if err := insertVersion(ctx, tx, v); err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}

	for _, name := range tagNames {
		// Get-or-create by normalized name. The no-op update makes RETURNING
		// yield the existing row's id on conflict.
		const qTag = `
			INSERT INTO tags (id, name, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`
		var tagID string
		if err := tx.QueryRowContext(ctx, qTag, uuid.NewString(), name, doc.CreatedAt).Scan(&tagID); err != nil {
			return nil, fmt.Errorf("upsert tag %q: %w", name, err)
		}

		const qAssoc = `
			INSERT INTO document_tags (id, document_id, tag_id, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (document_id, tag_id) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, qAssoc, uuid.NewString(), doc.ID, tagID, doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("attach tag %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	out := *doc
	out.Tags = tagNames
	return &out, nil
}

// FindByID fetches a single non-deleted document with tags attached.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := docSelect + ` WHERE d.id = $1 AND d.is_deleted = FALSE`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}

	tags, err := r.tagsForDocuments(ctx, []string{d.ID})
	if err != nil {
		return nil, err
	}
	d.Tags = tags[d.ID]
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return d, nil
}

// Search builds the filtered, scoped, sorted page query. The count runs
// over the same WHERE clause before paging.
func (r *DocumentPostgres) Search(ctx context.Context, q repository.SearchQuery) (*repository.PageResult[model.Document], error) {
	args := make([]any, 0, 8)
	conds := []string{"d.is_deleted = FALSE"}

	if sc := scopeClause(q.Scope, &args); sc != "" {
		conds = append(conds, sc)
	}
	if q.Query != "" {
		pattern := "%" + q.Query + "%"
		args = append(args, pattern)
		first := len(args)
		args = append(args, pattern)
		conds = append(conds, fmt.Sprintf("(d.title ILIKE $%d OR d.description ILIKE $%d)", first, len(args)))
	}
	if len(q.Tags) > 0 {
		in := placeholders(q.Tags, &args)
		conds = append(conds, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM document_tags dt
			JOIN tags t ON t.id = dt.tag_id
			WHERE dt.document_id = d.id AND lower(t.name) IN (%s))`, in))
	}
	if q.UploaderID != "" {
		args = append(args, q.UploaderID)
		conds = append(conds, fmt.Sprintf("d.uploader_id = $%d", len(args)))
	}
	if q.DepartmentID != "" {
		args = append(args, q.DepartmentID)
		conds = append(conds, fmt.Sprintf("d.department_id = $%d", len(args)))
	}
	if q.PermissionLevel != "" {
		args = append(args, q.PermissionLevel)
		conds = append(conds, fmt.Sprintf("d.permission_level = $%d", len(args)))
	}

	where := " WHERE " + strings.Join(conds, " AND ")

	var total int
	qCount := `SELECT COUNT(*) FROM documents d` + where
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "d.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		dir = "ASC"
	}

	args = append(args, q.Limit)
	limitArg := len(args)
	args = append(args, q.Offset)
	qPage := docSelect + where +
		fmt.Sprintf(" ORDER BY %s %s, d.id DESC LIMIT $%d OFFSET $%d", col, dir, limitArg, len(args))

	rows, err := r.db.QueryContext(ctx, qPage, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	ids := make([]string, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		tags, err := r.tagsForDocuments(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range items {
			if t, ok := tags[items[i].ID]; ok {
				items[i].Tags = t
			} else {
				items[i].Tags = []string{}
			}
		}
	}

	return &repository.PageResult[model.Document]{Items: items, Total: total}, nil
}

// SoftDelete marks the document deleted without touching its versions.
func (r *DocumentPostgres) SoftDelete(ctx context.Context, id string) error {
	const q = `UPDATE documents SET is_deleted = TRUE, updated_at = now() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("soft delete document: %w", err)
	}
	return nil
}

// AppendVersion serializes the read-increment-write of current_version per
// document: the row lock taken by FOR UPDATE blocks concurrent appends to
// the same document while leaving other documents untouched.
func (r *DocumentPostgres) AppendVersion(ctx context.Context, v *model.DocumentVersion, expectedVersion int) (*model.DocumentVersion, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const qLock = `SELECT current_version FROM documents WHERE id = $1 AND is_deleted = FALSE FOR UPDATE`
	var current int
	if err := tx.QueryRowContext(ctx, qLock, v.DocumentID).Scan(&current); err != nil {
		return nil, err
	}
	if current != expectedVersion {
		return nil, repository.ErrVersionConflict
	}

	if err := insertVersion(ctx, tx, v); err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}

	const qAdvance = `UPDATE documents SET current_version = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, qAdvance, v.DocumentID, v.VersionNumber, v.UploadDate); err != nil {
		return nil, fmt.Errorf("advance current_version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return v, nil
}

// ListVersions returns a document's version rows, newest first.
func (r *DocumentPostgres) ListVersions(ctx context.Context, documentID string) ([]model.DocumentVersion, error) {
	q := versionSelect + ` WHERE v.document_id = $1 ORDER BY v.version_number DESC`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	out := make([]model.DocumentVersion, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// FindVersion fetches one version row by document id and version number.
func (r *DocumentPostgres) FindVersion(ctx context.Context, documentID string, versionNumber int) (*model.DocumentVersion, error) {
	q := versionSelect + ` WHERE v.document_id = $1 AND v.version_number = $2`
	return scanVersion(r.db.QueryRowContext(ctx, q, documentID, versionNumber))
}

// CountVersions returns the number of versions attached to a document.
func (r *DocumentPostgres) CountVersions(ctx context.Context, documentID string) (int, error) {
	const q = `SELECT COUNT(*) FROM document_versions WHERE document_id = $1`
	var n int
	if err := r.db.QueryRowContext(ctx, q, documentID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count versions: %w", err)
	}
	return n, nil
}

// ListTagNames returns distinct tag names on visible, non-deleted documents.
func (r *DocumentPostgres) ListTagNames(ctx context.Context, s repository.Scope) ([]string, error) {
	args := make([]any, 0, 2)
	where := " WHERE d.is_deleted = FALSE"
	if sc := scopeClause(s, &args); sc != "" {
		where += " AND " + sc
	}

	q := `
		SELECT DISTINCT t.name
		FROM tags t
		JOIN document_tags dt ON dt.tag_id = t.id
		JOIN documents d ON d.id = dt.document_id` + where + `
		ORDER BY t.name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tag names: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// ListUploaders returns distinct uploaders of visible, non-deleted documents.
func (r *DocumentPostgres) ListUploaders(ctx context.Context, s repository.Scope) ([]model.Uploader, error) {
	args := make([]any, 0, 2)
	where := " WHERE d.is_deleted = FALSE"
	if sc := scopeClause(s, &args); sc != "" {
		where += " AND " + sc
	}

	q := `
		SELECT DISTINCT u.id, u.first_name, u.last_name, u.email
		FROM users u
		JOIN documents d ON d.uploader_id = u.id` + where + `
		ORDER BY u.first_name, u.last_name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query uploaders: %w", err)
	}
	defer rows.Close()

	out := make([]model.Uploader, 0)
	for rows.Next() {
		var u model.Uploader
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// tagsForDocuments loads tag names for a set of document ids in one query.
func (r *DocumentPostgres) tagsForDocuments(ctx context.Context, ids []string) (map[string][]string, error) {
	args := make([]any, 0, len(ids))
	in := placeholders(ids, &args)
	q := fmt.Sprintf(`
		SELECT dt.document_id, t.name
		FROM document_tags dt
		JOIN tags t ON t.id = dt.tag_id
		WHERE dt.document_id IN (%s)
		ORDER BY t.name`, in)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query document tags: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string, len(ids))
	for rows.Next() {
		var docID, name string
		if err := rows.Scan(&docID, &name); err != nil {
			return nil, err
		}
		out[docID] = append(out[docID], name)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var d model.Document
	var departmentID, departmentName sql.NullString
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&d.PermissionLevel,
		&d.UploaderID,
		&departmentID,
		&d.CurrentVersion,
		&d.IsDeleted,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.UploaderName,
		&departmentName,
	); err != nil {
		return nil, err
	}
	if departmentID.Valid {
		d.DepartmentID = &departmentID.String
	}
	if departmentName.Valid {
		d.DepartmentName = &departmentName.String
	}
	return &d, nil
}

func scanVersion(row rowScanner) (*model.DocumentVersion, error) {
	var v model.DocumentVersion
	var uploadedBy, uploadedByName sql.NullString
	if err := row.Scan(
		&v.ID,
		&v.DocumentID,
		&v.VersionNumber,
		&v.StoragePath,
		&v.FileName,
		&v.FileSize,
		&v.MimeType,
		&v.Checksum,
		&uploadedBy,
		&v.UploadDate,
		&v.ChangeNotes,
		&uploadedByName,
	); err != nil {
		return nil, err
	}
	v.UploadedBy = uploadedBy.String
	v.UploadedByName = uploadedByName.String
	return &v, nil
}

func insertVersion(ctx context.Context, tx *sql.Tx, v *model.DocumentVersion) error {
	const q = `
		INSERT INTO document_versions (id, document_id, version_number, storage_path,
		                               file_name, file_size, mime_type, checksum,
		                               uploaded_by, upload_date, change_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := tx.ExecContext(ctx, q,
		v.ID, v.DocumentID, v.VersionNumber, v.StoragePath,
		v.FileName, v.FileSize, v.MimeType, v.Checksum,
		v.UploadedBy, v.UploadDate, v.ChangeNotes,
	)
	return err
}
