package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EditorPayload is the client-submitted descriptor for opening an attachment
// in the embedded editor. Token is the user's delegated card-service access
// credential; it must never be logged or placed unencrypted in a URL.
// DocServerJWT arrives encrypted with the application key.
type EditorPayload struct {
	ProxyResource   string `json:"proxyResource"`
	ProxySecret     string `json:"proxySecret,omitempty"`
	Attachment      string `json:"attachment"`
	Card            string `json:"card"`
	Filename        string `json:"filename"`
	Token           string `json:"token"`
	DocServer       string `json:"ds"`
	DocServerHeader string `json:"dsheader"`
	DocServerJWT    string `json:"dsjwt"`
	IsEditable      bool   `json:"isEditable"`
}

// ParseEditorPayload performs schema-validated deserialization of the raw
// form payload. Unknown fields are rejected rather than coerced.
func ParseEditorPayload(raw string) (EditorPayload, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	var p EditorPayload
	if err := dec.Decode(&p); err != nil {
		return EditorPayload{}, ErrInvalidInput
	}
	for _, field := range []string{
		p.ProxyResource, p.Attachment, p.Card, p.Filename,
		p.Token, p.DocServer, p.DocServerHeader, p.DocServerJWT,
	} {
		if strings.TrimSpace(field) == "" {
			return EditorPayload{}, ErrInvalidInput
		}
	}
	return p, nil
}

// ProxyPayloadSecret authorizes the file-serving proxy to fetch one
// attachment on the user's behalf. Due is a hard expiry in unix milliseconds,
// checked by the proxy on every use.
type ProxyPayloadSecret struct {
	AuthValue string `json:"authValue"`
	DocsJWT   string `json:"docsJwt"`
	Due       int64  `json:"due"`
}
