package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/domain"
	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/ports"
)

// SaveHandler persists the finalized document when the document server
// reports status 2. Upload failures are logged but never propagated: by this
// point the editing session has already closed from the user's perspective,
// and the cache entries are released either way so a subsequent open can
// mint a fresh session. The availability-over-consistency trade-off is
// deliberate.
type SaveHandler struct {
	cache  ports.DocumentKeyStore
	cards  ports.CardService
	docs   ports.DocumentServer
	events ports.EventPublisher
	logger *slog.Logger
}

func NewSaveHandler(cache ports.DocumentKeyStore, cards ports.CardService, docs ports.DocumentServer, events ports.EventPublisher, logger *slog.Logger) *SaveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveHandler{
		cache:  cache,
		cards:  cards,
		docs:   docs,
		events: events,
		logger: logger.With("module", "save_handler"),
	}
}

func (h *SaveHandler) ID() string { return "conventional-save" }

func (h *SaveHandler) Interests() []domain.CallbackStatus {
	return []domain.CallbackStatus{domain.StatusReadyForSaving}
}

func (h *SaveHandler) Handle(ctx context.Context, cb domain.Callback, ectx EventContext) error {
	if cb.URL == "" {
		// Nothing was persisted, so the cache entries stay live.
		h.logger.InfoContext(ctx, "save callback without document url, nothing to persist",
			"attachment", ectx.Session.Attachment)
		return nil
	}

	filename := ectx.Session.File
	if decoded, err := url.PathUnescape(filename); err == nil {
		filename = decoded
	}

	content, saveErr := h.docs.FetchDocument(ctx, cb.URL)
	if saveErr == nil {
		defer content.Close()
		// The delegated access credential authenticates against the card
		// service; the session secret only ever authenticates the document
		// server and must not be used here.
		saveErr = h.cards.UploadAttachment(ctx, ectx.Session.Card, filename, ectx.AccessToken, content)
	}

	if saveErr != nil {
		h.logger.ErrorContext(ctx, "persisting edited document failed",
			"card", ectx.Session.Card, "filename", filename, "error", saveErr)
	} else {
		h.logger.InfoContext(ctx, "edited document persisted",
			"card", ectx.Session.Card, "filename", filename)
	}

	// Release regardless of the upload outcome, so the next open for this
	// attachment starts a fresh session instead of coalescing into this one.
	if err := h.cache.DeleteKey(ctx, ectx.Session.Attachment); err != nil {
		h.logger.WarnContext(ctx, "document key release failed",
			"attachment", ectx.Session.Attachment, "error", err)
	}
	if ectx.CorrelationID != "" {
		if err := h.cache.DeleteSession(ctx, ectx.CorrelationID); err != nil {
			h.logger.WarnContext(ctx, "session record release failed",
				"key", ectx.CorrelationID, "error", err)
		}
	}

	eventType := EventSaveSucceeded
	if saveErr != nil {
		eventType = EventSaveFailed
	}
	payload, err := json.Marshal(map[string]string{
		"card":       ectx.Session.Card,
		"attachment": ectx.Session.Attachment,
		"key":        ectx.CorrelationID,
	})
	if err == nil {
		if err := h.events.Publish(ctx, eventType, payload); err != nil {
			h.logger.WarnContext(ctx, "event publish failed", "event_type", eventType, "error", err)
		}
	}
	return nil
}
