package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/domain"
	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/ports"
)

// Client is the card-service REST adapter. Every call signs the request with
// an OAuth 1.0a header derived from the user's delegated token; the service
// itself holds no card-service credential of its own beyond the consumer
// key pair.
type Client struct {
	baseURL string
	http    *http.Client
	signer  oauthSigner
}

func NewClient(baseURL, consumerKey, consumerSecret string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		signer:  oauthSigner{consumerKey: consumerKey, consumerSecret: consumerSecret},
	}
}

func (c *Client) AuthorizationHeader(method, rawURL, accessToken string) string {
	return c.signer.header(method, rawURL, accessToken)
}

func (c *Client) Me(ctx context.Context, accessToken string) (ports.CardUser, error) {
	target := c.baseURL + "/members/me"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return ports.CardUser{}, err
	}
	req.Header.Set("Authorization", c.signer.header(http.MethodGet, target, accessToken))

	resp, err := c.http.Do(req)
	if err != nil {
		return ports.CardUser{}, fmt.Errorf("%w: fetch member identity: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ports.CardUser{}, fmt.Errorf("%w: fetch member identity: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var user ports.CardUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return ports.CardUser{}, fmt.Errorf("%w: decode member identity: %v", domain.ErrUpstream, err)
	}
	return user, nil
}

func (c *Client) AttachmentDownloadURL(cardID, attachmentID, filename string) string {
	return fmt.Sprintf("%s/cards/%s/attachments/%s/download/%s",
		c.baseURL, cardID, attachmentID, url.PathEscape(filename))
}

// ProbeSize issues an authenticated HEAD request against the attachment URL
// and reports the advertised content length. A missing length comes back as
// -1 and is treated as unknown by the caller.
func (c *Client) ProbeSize(ctx context.Context, fileURL, accessToken string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, fileURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", c.signer.header(http.MethodGet, fileURL, accessToken))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: probe attachment size: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("%w: probe attachment size: status %d", domain.ErrUpstream, resp.StatusCode)
	}
	return resp.ContentLength, nil
}

// UploadAttachment posts content as a new attachment version via a multipart
// form, the card service's "add attachment" contract.
func (c *Client) UploadAttachment(ctx context.Context, cardID, filename, accessToken string, content io.Reader) error {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
		hdr.Set("Content-Type", domain.ContentTypeByExtension(domain.FileExtension(filename)))
		part, err := form.CreatePart(hdr)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	target := fmt.Sprintf("%s/cards/%s/attachments", c.baseURL, cardID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", c.signer.header(http.MethodPost, target, accessToken))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: upload attachment: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: upload attachment: status %d: %s", domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
