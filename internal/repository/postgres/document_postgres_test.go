package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"docrepo/internal/model"
	"docrepo/internal/repository"
)

var docColumns = []string{
	"id", "title", "description", "permission_level", "uploader_id",
	"department_id", "current_version", "is_deleted", "created_at", "updated_at",
	"uploader_name", "department_name",
}

var versionColumns = []string{
	"id", "document_id", "version_number", "storage_path", "file_name",
	"file_size", "mime_type", "checksum", "uploaded_by", "upload_date", "change_notes",
	"uploaded_by_name",
}

func TestDocumentPostgres_CreateWithVersion(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	doc := &model.Document{
		ID:              "doc-1",
		Title:           "Report",
		PermissionLevel: model.PermissionPublic,
		UploaderID:      "user-1",
		CurrentVersion:  1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	v := &model.DocumentVersion{
		ID:            "ver-1",
		DocumentID:    "doc-1",
		VersionNumber: 1,
		StoragePath:   "documents/doc-1_v1_x.txt",
		FileName:      "report.txt",
		UploadedBy:    "user-1",
		UploadDate:    now,
		ChangeNotes:   "Initial version",
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO document_versions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO tags").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("tag-1"))
	mock.ExpectExec("INSERT INTO document_tags").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := repo.CreateWithVersion(ctx, doc, v, []string{"finance"})

	assert.NoError(t, err)
	assert.Equal(t, []string{"finance"}, out.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_CreateWithVersion_RollsBackOnVersionInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO document_versions").
		WillReturnError(errors.New("insert fail"))
	mock.ExpectRollback()

	_, err = repo.CreateWithVersion(ctx, &model.Document{ID: "doc-1"}, &model.DocumentVersion{ID: "ver-1"}, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert version")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found with tags", func(t *testing.T) {
		mock.ExpectQuery("SELECT d.id, d.title").
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows(docColumns).
				AddRow("doc-1", "Report", "", "department", "user-1", "dept-1", 2, false, now, now, "Ada Lovelace", "Engineering"))
		mock.ExpectQuery("SELECT dt.document_id, t.name").
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows([]string{"document_id", "name"}).
				AddRow("doc-1", "finance").
				AddRow("doc-1", "quarterly"))

		doc, err := repo.FindByID(ctx, "doc-1")

		assert.NoError(t, err)
		assert.Equal(t, "doc-1", doc.ID)
		assert.Equal(t, model.PermissionDepartment, doc.PermissionLevel)
		assert.Equal(t, "Ada Lovelace", doc.UploaderName)
		assert.Equal(t, "Engineering", *doc.DepartmentName)
		assert.Equal(t, []string{"finance", "quarterly"}, doc.Tags)
	})

	t.Run("missing or soft-deleted", func(t *testing.T) {
		mock.ExpectQuery("SELECT d.id, d.title").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	dept := "dept-1"
	q := repository.SearchQuery{
		Scope:     repository.Scope{UserID: "user-1", DepartmentID: &dept},
		Query:     "report",
		SortBy:    "title",
		SortOrder: "asc",
		Limit:     10,
		Offset:    0,
	}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM documents d").
		WithArgs("user-1", "dept-1", "%report%", "%report%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT d.id, d.title").
		WithArgs("user-1", "dept-1", "%report%", "%report%", 10, 0).
		WillReturnRows(sqlmock.NewRows(docColumns).
			AddRow("doc-1", "Report", "", "public", "user-2", nil, 1, false, now, now, "Grace Hopper", nil))
	mock.ExpectQuery("SELECT dt.document_id, t.name").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"document_id", "name"}))

	res, err := repo.Search(ctx, q)

	assert.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
	assert.Nil(t, res.Items[0].DepartmentID)
	assert.Equal(t, []string{}, res.Items[0].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_AppendVersion(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	newVersion := func() *model.DocumentVersion {
		return &model.DocumentVersion{
			ID:            "ver-3",
			DocumentID:    "doc-1",
			VersionNumber: 3,
			StoragePath:   "documents/doc-1_v3_x.txt",
			FileName:      "report.txt",
			UploadedBy:    "user-1",
			UploadDate:    now,
			ChangeNotes:   "Version 3",
		}
	}

	t.Run("appends when expectation holds", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
		}
		defer db.Close()
		repo := NewDocumentPostgres(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT current_version FROM documents").
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows([]string{"current_version"}).AddRow(2))
		mock.ExpectExec("INSERT INTO document_versions").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE documents SET current_version").
			WithArgs("doc-1", 3, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		v, err := repo.AppendVersion(ctx, newVersion(), 2)

		assert.NoError(t, err)
		assert.Equal(t, 3, v.VersionNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict when another writer advanced first", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
		}
		defer db.Close()
		repo := NewDocumentPostgres(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT current_version FROM documents").
			WithArgs("doc-1").
			WillReturnRows(sqlmock.NewRows([]string{"current_version"}).AddRow(3))
		mock.ExpectRollback()

		_, err = repo.AppendVersion(ctx, newVersion(), 2)

		assert.ErrorIs(t, err, repository.ErrVersionConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("soft-deleted document yields no rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
		}
		defer db.Close()
		repo := NewDocumentPostgres(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT current_version FROM documents").
			WithArgs("doc-1").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err = repo.AppendVersion(ctx, newVersion(), 2)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDocumentPostgres_SoftDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE documents SET is_deleted = TRUE").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SoftDelete(ctx, "doc-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindVersion(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT v.id, v.document_id").
			WithArgs("doc-1", 2).
			WillReturnRows(sqlmock.NewRows(versionColumns).
				AddRow("ver-2", "doc-1", 2, "documents/key", "report.txt", int64(11), "text/plain", "abc", "user-1", now, "Version 2", "Ada Lovelace"))

		v, err := repo.FindVersion(ctx, "doc-1", 2)

		assert.NoError(t, err)
		assert.Equal(t, 2, v.VersionNumber)
		assert.Equal(t, "Ada Lovelace", v.UploadedByName)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT v.id, v.document_id").
			WithArgs("doc-1", 9).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindVersion(ctx, "doc-1", 9)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestDocumentPostgres_ListTagNames(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("admin sees all tags unscoped", func(t *testing.T) {
		mock.ExpectQuery("SELECT DISTINCT t.name").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("finance").AddRow("hr"))

		names, err := repo.ListTagNames(ctx, repository.Scope{Admin: true})

		assert.NoError(t, err)
		assert.Equal(t, []string{"finance", "hr"}, names)
	})

	t.Run("member query carries scope binds", func(t *testing.T) {
		dept := "dept-1"
		mock.ExpectQuery("SELECT DISTINCT t.name").
			WithArgs("user-1", "dept-1").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("finance"))

		names, err := repo.ListTagNames(ctx, repository.Scope{UserID: "user-1", DepartmentID: &dept})

		assert.NoError(t, err)
		assert.Equal(t, []string{"finance"}, names)
	})
}
