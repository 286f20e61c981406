package ports

import (
	"context"
	"time"
)

// SessionRecord correlates one document key with the attachment it covers.
// It is what the status-2 save handler releases once persistence completed.
type SessionRecord struct {
	Attachment string    `json:"attachment"`
	Card       string    `json:"card"`
	Filename   string    `json:"filename"`
	CreatedAt  time.Time `json:"created_at"`
}

// DocumentKeyStore is the shared cache mapping an attachment id to its live
// document key, plus a correlation record keyed by the document key itself.
// Entries carry no TTL; removal is an explicit side effect of the save
// handler, never of a background sweep. The key entry acts as a uniqueness
// token, not a mutual-exclusion token: concurrent editor opens for the same
// attachment fold into the same editing session.
type DocumentKeyStore interface {
	GetKey(ctx context.Context, attachmentID string) (string, error)
	PutKey(ctx context.Context, attachmentID, key string) error
	DeleteKey(ctx context.Context, attachmentID string) error

	PutSession(ctx context.Context, key string, rec SessionRecord) error
	GetSession(ctx context.Context, key string) (*SessionRecord, error)
	DeleteSession(ctx context.Context, key string) error
}
