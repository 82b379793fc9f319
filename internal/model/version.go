package model

import "time"

// DocumentVersion is one immutable snapshot of a document's content.
// Once written, its storage path, checksum and size never change; a
// document's versions form a contiguous sequence starting at 1.
type DocumentVersion struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	VersionNumber int       `json:"version_number"`
	StoragePath   string    `json:"file_path"`
	FileName      string    `json:"file_name"`
	FileSize      int64     `json:"file_size"`
	MimeType      string    `json:"mime_type"`
	Checksum      string    `json:"checksum"`
	UploadedBy    string    `json:"uploaded_by"`
	UploadDate    time.Time `json:"upload_date"`
	ChangeNotes   string    `json:"change_notes"`

	UploadedByName string `json:"uploaded_by_name,omitempty"`
}
