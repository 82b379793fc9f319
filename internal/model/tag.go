package model

import "time"

// Tag is a shared, case-insensitively unique label. Names are stored
// normalized (trimmed, lowercased).
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentTag attaches a Tag to a Document. It is a first-class row with
// its own id and timestamp so attachments can be audited.
type DocumentTag struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	TagID      string    `json:"tag_id"`
	CreatedAt  time.Time `json:"created_at"`
}
