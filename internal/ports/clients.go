package ports

import (
	"context"
	"io"
)

// CardUser is the card-service identity of the editing user.
type CardUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// CardService is the card-service REST surface this system consumes. All
// calls act with the user's delegated access credential; the adapter derives
// a request-specific authorization header from it per call.
type CardService interface {
	Me(ctx context.Context, accessToken string) (CardUser, error)
	AttachmentDownloadURL(cardID, attachmentID, filename string) string
	ProbeSize(ctx context.Context, fileURL, accessToken string) (int64, error)
	UploadAttachment(ctx context.Context, cardID, filename, accessToken string, content io.Reader) error
	// AuthorizationHeader precomputes the delegated authorization header
	// value for an arbitrary request, used when issuing proxy secrets.
	AuthorizationHeader(method, rawURL, accessToken string) string
}

// DocumentServer fetches saved document bytes from the URL a status-2
// callback points at.
type DocumentServer interface {
	FetchDocument(ctx context.Context, url string) (io.ReadCloser, error)
}
