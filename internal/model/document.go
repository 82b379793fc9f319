package model

import "time"

// PermissionLevel controls who may read a document.
type PermissionLevel string

const (
	// PermissionPublic is readable by any authenticated user.
	PermissionPublic PermissionLevel = "public"
	// PermissionDepartment is readable by users in the document's department.
	PermissionDepartment PermissionLevel = "department"
	// PermissionRestricted is readable by the uploader only.
	PermissionRestricted PermissionLevel = "restricted"
)

// Valid reports whether p is one of the known permission levels.
func (p PermissionLevel) Valid() bool {
	switch p {
	case PermissionPublic, PermissionDepartment, PermissionRestricted:
		return true
	}
	return false
}

// Document is a logical document record. Its file content lives in an
// append-only sequence of DocumentVersion snapshots; CurrentVersion always
// points at the highest version number and is never decremented.
// This is a pure domain model with no database-specific dependencies or tags.
type Document struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	PermissionLevel PermissionLevel `json:"permission_level"`
	UploaderID      string          `json:"uploader_id"`
	DepartmentID    *string         `json:"department_id"`
	CurrentVersion  int             `json:"current_version"`
	IsDeleted       bool            `json:"is_deleted"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Denormalized display fields populated by read queries.
	UploaderName   string   `json:"uploader_name,omitempty"`
	DepartmentName *string  `json:"department_name,omitempty"`
	Tags           []string `json:"tags"`
}
