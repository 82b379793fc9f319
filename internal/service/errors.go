package service

import "errors"

var (
	// Validation errors — reported to the caller, never retried.
	ErrIDRequired             = errors.New("id is required")
	ErrTitleRequired          = errors.New("title is required")
	ErrReaderNil              = errors.New("reader is nil")
	ErrExtensionNotAllowed    = errors.New("file extension not allowed")
	ErrFileTooLarge           = errors.New("file exceeds maximum upload size")
	ErrInvalidPermissionLevel = errors.New("invalid permission level")
	ErrEmailRequired          = errors.New("email is required")
	ErrPasswordRequired       = errors.New("password is required")

	// ErrNotFound covers documents that are absent or soft-deleted; the two
	// cases are deliberately indistinguishable to callers.
	ErrNotFound = errors.New("document not found")
	// ErrVersionNotFound covers a missing version row or missing stored content.
	ErrVersionNotFound = errors.New("document version not found")
	// ErrForbidden is an access-policy denial on a document the caller can see exists.
	ErrForbidden = errors.New("not enough permissions")
	// ErrVersionConflict surfaces a version-number race that persisted
	// through the automatic retry.
	ErrVersionConflict = errors.New("concurrent version upload conflict")

	// Auth errors.
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInactiveUser       = errors.New("inactive user")
)

// IsValidation reports whether err is one of the malformed-input sentinels.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrIDRequired, ErrTitleRequired, ErrReaderNil,
		ErrExtensionNotAllowed, ErrFileTooLarge, ErrInvalidPermissionLevel,
		ErrEmailRequired, ErrPasswordRequired,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
