package application

import (
	"context"
	"log/slog"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/domain"
)

// EventContext accompanies a dispatched callback: the recovered delegated
// access credential, the reconstructed session, and the correlation id tying
// the callback to its cached document key. CorrelationID is empty when the
// cache entry was already released.
type EventContext struct {
	AccessToken   string
	Session       domain.Session
	CorrelationID string
}

// CallbackHandler reacts to callbacks for the statuses it declares interest
// in. Delivery is at-least-once per callback invocation (the document server
// retries on any non-success acknowledgement), so handlers must tolerate
// being invoked more than once for logically the same event.
type CallbackHandler interface {
	ID() string
	Interests() []domain.CallbackStatus
	Handle(ctx context.Context, cb domain.Callback, ectx EventContext) error
}

// Registry is the callback dispatch table. It is built once at bootstrap and
// passed into the dispatch path by reference; subscriptions last for the
// lifetime of the process.
type Registry struct {
	logger   *slog.Logger
	handlers []CallbackHandler
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger.With("module", "registry")}
}

func (r *Registry) Subscribe(h CallbackHandler) {
	r.handlers = append(r.handlers, h)
}

// Dispatch invokes every subscribed handler whose interest matches the
// callback status, each exactly once per dispatch. Handlers run
// independently: an error or panic in one is logged and does not prevent the
// remaining handlers from running, nor does it fail the dispatch itself.
func (r *Registry) Dispatch(ctx context.Context, cb domain.Callback, ectx EventContext) {
	for _, h := range r.handlers {
		if !interested(h, cb.Status) {
			continue
		}
		r.invoke(ctx, h, cb, ectx)
	}
}

func (r *Registry) invoke(ctx context.Context, h CallbackHandler, cb domain.Callback, ectx EventContext) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "callback handler panicked",
				"handler", h.ID(), "status", int(cb.Status), "panic", rec)
		}
	}()
	if err := h.Handle(ctx, cb, ectx); err != nil {
		r.logger.ErrorContext(ctx, "callback handler failed",
			"handler", h.ID(), "status", int(cb.Status), "error", err)
	}
}

func interested(h CallbackHandler, status domain.CallbackStatus) bool {
	for _, s := range h.Interests() {
		if s == status {
			return true
		}
	}
	return false
}
