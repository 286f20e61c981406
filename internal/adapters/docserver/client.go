package docserver

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/domain"
)

// Client fetches saved document bytes from the URL a status-2 callback
// points at. The URL originates from the document server itself and is only
// reachable after the callback passed verification.
type Client struct {
	http *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient}
}

func (c *Client) FetchDocument(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch saved document: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: fetch saved document: status %d", domain.ErrUpstream, resp.StatusCode)
	}
	return resp.Body, nil
}
