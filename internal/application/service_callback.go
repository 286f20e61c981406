package application

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/domain"
)

// HandleCallback authenticates one inbound notification from the document
// server and dispatches it. Every failure returns an error wrapping
// domain.ErrAuthenticationFailed; the HTTP adapter collapses all of them to
// the same 403 response so the failing step is not observable externally.
// The wrapped detail exists for server-side logs only.
func (s *Service) HandleCallback(ctx context.Context, encToken, encSession string, headers http.Header, body []byte) error {
	session, err := domain.DecodeSession(encSession)
	if err != nil {
		return fmt.Errorf("%w: decode session: %v", domain.ErrAuthenticationFailed, err)
	}

	accessToken, err := s.appSealer.Decrypt(encToken)
	if err != nil {
		return fmt.Errorf("%w: open token", domain.ErrAuthenticationFailed)
	}

	// The session secret is decrypted once here and used only for the
	// verification below; it is never re-persisted in plaintext.
	secret, err := s.appSealer.Decrypt(session.Secret)
	if err != nil {
		return fmt.Errorf("%w: open session secret", domain.ErrAuthenticationFailed)
	}

	bearer, ok := strings.CutPrefix(headers.Get(session.Header), "Bearer ")
	if !ok || bearer == "" {
		return fmt.Errorf("%w: missing bearer credential", domain.ErrAuthenticationFailed)
	}

	if err := s.signer.VerifyBearer(bearer, secret); err != nil {
		return fmt.Errorf("%w: verify bearer credential", domain.ErrAuthenticationFailed)
	}

	callback, err := domain.ParseCallback(body)
	if err != nil {
		return fmt.Errorf("%w: parse callback: %v", domain.ErrAuthenticationFailed, err)
	}

	// Correlation id lookup is best-effort: a callback replayed after the
	// save handler released the cache still gets dispatched, with an empty
	// correlation id.
	correlationID, err := s.cache.GetKey(ctx, session.Attachment)
	if err != nil {
		s.logger.WarnContext(ctx, "correlation lookup failed",
			"attachment", session.Attachment, "error", err)
		correlationID = ""
	}

	s.logger.DebugContext(ctx, "dispatching callback",
		"status", int(callback.Status), "attachment", session.Attachment, "key", correlationID)

	s.registry.Dispatch(ctx, callback, EventContext{
		AccessToken:   accessToken,
		Session:       session,
		CorrelationID: correlationID,
	})
	return nil
}
