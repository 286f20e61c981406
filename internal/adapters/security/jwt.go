package security

import (
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/domain"
)

// JWTConfigSigner implements HS256 signing over editor configs and
// verification of the bearer credential the document server presents on
// callbacks. The key is the per-session secret, so the signer itself is
// stateless.
type JWTConfigSigner struct{}

func NewJWTConfigSigner() *JWTConfigSigner { return &JWTConfigSigner{} }

// SignClaims signs the canonical JSON serialization of payload. The document
// server recomputes the signature over the config it receives, so the claims
// must be the config document itself rather than a digest of it.
func (JWTConfigSigner) SignClaims(payload any, secret string) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}
	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return "", fmt.Errorf("claims structure: %w", err)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyBearer recomputes and compares the credential's signature. Any parse
// or signature failure collapses into the uniform authentication sentinel.
func (JWTConfigSigner) VerifyBearer(token, secret string) error {
	if token == "" {
		return domain.ErrAuthenticationFailed
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return domain.ErrAuthenticationFailed
	}
	return nil
}
