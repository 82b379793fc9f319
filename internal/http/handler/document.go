package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docrepo/internal/access"
	"docrepo/internal/http/middleware"
	"docrepo/internal/service"
)

func principal(c *fiber.Ctx) (access.Principal, error) {
	p, ok := middleware.PrincipalFromCtx(c)
	if !ok {
		return access.Principal{}, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	return p, nil
}

// CreateDocument handles POST /documents (multipart/form-data).
// Form fields: title, description, permission_level, tags (repeatable or
// comma-separated), file.
func CreateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		in := service.CreateDocumentInput{
			Title:           c.FormValue("title"),
			Description:     c.FormValue("description"),
			PermissionLevel: c.FormValue("permission_level"),
			Tags:            formTags(c),
			FileName:        fh.Filename,
			ContentType:     ct,
			Size:            fh.Size,
		}

		doc, err := svc.Create(c.UserContext(), p, in, f)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// SearchDocuments handles GET /documents with filter, sort and paging params.
func SearchDocuments(svc service.SearchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}

		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}
		pageSize, err := strconv.Atoi(c.Query("page_size", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE_SIZE", "invalid page size")
		}

		params := service.SearchParams{
			Query:           c.Query("query"),
			Tags:            queryTags(c),
			UploaderID:      c.Query("uploader_id"),
			DepartmentID:    c.Query("department_id"),
			PermissionLevel: c.Query("permission_level"),
			Page:            page,
			PageSize:        pageSize,
			SortBy:          c.Query("sort_by"),
			SortOrder:       c.Query("sort_order"),
		}

		res, err := svc.Search(c.UserContext(), p, params)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument handles GET /documents/:id.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		detail, err := svc.Get(c.UserContext(), p, id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(detail)
	}
}

// ListVersions handles GET /documents/:id/versions.
func ListVersions(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		versions, err := svc.Versions(c.UserContext(), p, id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(versions)
	}
}

// UploadVersion handles POST /documents/:id/versions (multipart/form-data).
// Form fields: file, change_notes.
func UploadVersion(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		in := service.UploadVersionInput{
			FileName:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			ChangeNotes: c.FormValue("change_notes"),
		}

		v, err := svc.UploadVersion(c.UserContext(), p, id, in, f)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

// DownloadDocument handles GET /documents/:id/download?version=N.
// version 0 or absent means the latest version.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		version, err := strconv.Atoi(c.Query("version", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION", "invalid version number")
		}

		v, rc, err := svc.Download(c.UserContext(), p, id, version)
		if err != nil {
			return mapServiceError(c, err)
		}

		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, v.FileName))
		if v.MimeType != "" {
			c.Set(fiber.HeaderContentType, v.MimeType)
		}
		return c.SendStream(rc, int(v.FileSize))
	}
}

// DeleteDocument handles DELETE /documents/:id.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := svc.Delete(c.UserContext(), p, id); err != nil {
			return mapServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListTagFacets handles GET /filters/tags: the tag names usable as search
// filters by the caller.
func ListTagFacets(svc service.SearchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		names, err := svc.TagFacet(c.UserContext(), p)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(names)
	}
}

// ListUploaderFacets handles GET /filters/uploaders: the users whose
// documents the caller can see.
func ListUploaderFacets(svc service.SearchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		ups, err := svc.UploaderFacet(c.UserContext(), p)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(ups)
	}
}

// formTags collects the repeatable "tags" multipart field, splitting
// comma-separated values.
func formTags(c *fiber.Ctx) []string {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return splitTagValues(form.Value["tags"])
}

// queryTags collects the repeatable "tags" query parameter, splitting
// comma-separated values.
func queryTags(c *fiber.Ctx) []string {
	raw := make([]string, 0)
	for _, v := range c.Context().QueryArgs().PeekMulti("tags") {
		raw = append(raw, string(v))
	}
	return splitTagValues(raw)
}

func splitTagValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
