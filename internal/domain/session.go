package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// SessionVersion is the current session envelope version. Decoding rejects
// any other value so format evolution surfaces as a hard error instead of a
// silent misparse.
const SessionVersion = 1

// Session is the self-contained editing-session envelope that travels
// base64url-encoded inside the document server's callback URL. It is built
// once at editor-open time, never stored server-side, and reconstructed fresh
// from the URL on every callback. Secret stays encrypted inside the envelope;
// the callback pipeline decrypts it once per use.
type Session struct {
	Version    int    `json:"v"`
	Address    string `json:"Address"`
	Header     string `json:"Header"`
	Secret     string `json:"Secret"`
	Attachment string `json:"Attachment"`
	File       string `json:"File"`
	Card       string `json:"Card"`
}

// EncodeSession serializes the session for URL transport. The secret field is
// expected to already be encrypted; this is an outer encoding only.
func EncodeSession(s Session) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeSession is the inverse of EncodeSession. Unknown fields and version
// mismatches are rejected.
func DecodeSession(encoded string) (Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Session{}, ErrSessionFormat
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var s Session
	if err := dec.Decode(&s); err != nil {
		return Session{}, ErrSessionFormat
	}
	if s.Version != SessionVersion {
		return Session{}, ErrSessionFormat
	}
	if s.Address == "" || s.Header == "" || s.Secret == "" || s.Attachment == "" || s.Card == "" {
		return Session{}, ErrSessionFormat
	}
	return s, nil
}
