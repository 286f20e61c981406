package application

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/domain"
	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/ports"
)

// ProxySecretIssuer mints default proxy secrets for first opens, when the
// client did not already supply one. The secret lets the file-serving proxy
// fetch the attachment on the user's behalf without redoing credential
// derivation per request; the proxy enforces the expiry, not this service.
type ProxySecretIssuer struct {
	sealer ports.Sealer
	cards  ports.CardService
	ttl    time.Duration
}

func (i *ProxySecretIssuer) Issue(fileURL, accessToken, docServerJWT string, now time.Time) (string, error) {
	secret := domain.ProxyPayloadSecret{
		AuthValue: i.cards.AuthorizationHeader(http.MethodGet, fileURL, accessToken),
		DocsJWT:   docServerJWT,
		Due:       now.Add(i.ttl).UnixMilli(),
	}
	raw, err := json.Marshal(secret)
	if err != nil {
		return "", fmt.Errorf("marshal proxy secret: %w", err)
	}
	return i.sealer.Encrypt(string(raw))
}
