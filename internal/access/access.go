// Package access holds the document access policy as pure functions over
// plain data. The same rules are re-expressed as SQL by the repository's
// search queries; the two must stay equivalent.
package access

import "docrepo/internal/model"

// Principal is the resolved identity of an authenticated caller.
type Principal struct {
	ID           string
	Role         model.Role
	DepartmentID *string
	IsActive     bool
}

// IsAdmin reports whether the principal carries the administrative role.
func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

// CanAccess decides read access for every read path (get, versions,
// download, facets). Rules are evaluated in order, first match wins:
// admin, uploader, public, same-department. A nil department on either
// side never matches. Restricted documents fall through to deny.
func CanAccess(p Principal, doc *model.Document) bool {
	if p.IsAdmin() {
		return true
	}
	if doc.UploaderID == p.ID {
		return true
	}
	switch doc.PermissionLevel {
	case model.PermissionPublic:
		return true
	case model.PermissionDepartment:
		return p.DepartmentID != nil && doc.DepartmentID != nil &&
			*p.DepartmentID == *doc.DepartmentID
	}
	return false
}

// CanDelete is stricter than CanAccess: only the uploader or an admin may
// soft-delete, regardless of permission level.
func CanDelete(p Principal, doc *model.Document) bool {
	return p.IsAdmin() || doc.UploaderID == p.ID
}
