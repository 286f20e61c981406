package application

import (
	"context"
	"encoding/json"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/domain"
)

// Lifecycle event types emitted through the event publisher.
const (
	EventEditorOpened  = "document.editor_opened"
	EventSaveSucceeded = "document.save_succeeded"
	EventSaveFailed    = "document.save_failed"
)

// EditorPage is everything the HTTP adapter needs to render the editor
// bootstrap page: the document server's script URL and the signed config.
type EditorPage struct {
	APIScriptURL string
	Config       domain.Config
}

func (s *Service) publish(ctx context.Context, eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, raw); err != nil {
		s.logger.WarnContext(ctx, "event publish failed", "event_type", eventType, "error", err)
	}
}
