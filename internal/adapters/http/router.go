package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig carries the HTTP-adapter level knobs resolved at bootstrap.
type RouterConfig struct {
	// CallbackRatePerSecond throttles the document server's notification
	// traffic per client.
	CallbackRatePerSecond int
	CallbackBurst         int
}

// NewRouter registers routes and the middleware stack. The callback route
// carries its own throttle; the editor route does not, since it only serves
// authenticated users opening documents.
func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	if cfg.CallbackRatePerSecond <= 0 {
		cfg.CallbackRatePerSecond = 30
	}
	if cfg.CallbackBurst <= 0 {
		cfg.CallbackBurst = cfg.CallbackRatePerSecond
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/onlyoffice", func(r chi.Router) {
		r.With(throttleMiddleware(cfg.CallbackRatePerSecond, cfg.CallbackBurst)).
			Post("/callback", handler.callback)
		r.Post("/editor", handler.editor)
	})

	return r
}
