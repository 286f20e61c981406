package http

import (
	"encoding/json"
	"html/template"
	"io"
	"net/http"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/application"
)

const (
	// maxCallbackBody bounds the notification body; real callbacks are tiny.
	maxCallbackBody = 1 << 20
	// headerEditorReason carries the editor-open failure diagnostic back to
	// the user's browser.
	headerEditorReason = "X-Editor-Reason"
)

type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// callback receives save/status notifications from the document server. The
// response is deliberately binary: error:0 on success, 403 error:1 on any
// failure, with no detail about which verification step failed.
func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	encToken := r.URL.Query().Get("token")
	encSession := r.URL.Query().Get("session")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		logHTTPOperationError(r.Context(), "callback", http.StatusForbidden, "read body", err)
		writeCallbackRejected(w)
		return
	}

	if err := h.service.HandleCallback(r.Context(), encToken, encSession, r.Header, body); err != nil {
		logHTTPOperationError(r.Context(), "callback", http.StatusForbidden, "callback rejected", err)
		writeCallbackRejected(w)
		return
	}
	writeCallbackAccepted(w)
}

// editor validates the submitted payload and renders the editor bootstrap
// page with the signed config embedded. Failures render a generic error page
// plus a diagnostic header; this response goes to the authenticated user's
// own browser, so the reason is safe to name.
func (h *Handler) editor(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, "editor", "malformed form body", err)
		return
	}

	page, err := h.service.OpenEditor(r.Context(), r.PostFormValue("payload"))
	if err != nil {
		h.renderError(w, r, "editor", publicReason(err), err)
		return
	}

	configJSON, err := json.Marshal(page.Config)
	if err != nil {
		h.renderError(w, r, "editor", "internal error", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	renderErr := editorTemplate.Execute(w, editorPageData{
		Title:        page.Config.Document.Title,
		APIScriptURL: page.APIScriptURL,
		Config:       template.JS(configJSON),
	})
	if renderErr != nil {
		logHTTPOperationError(r.Context(), "editor", http.StatusOK, "render editor page", renderErr)
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, operation, reason string, err error) {
	logHTTPOperationError(r.Context(), operation, http.StatusOK, reason, err)
	w.Header().Set(headerEditorReason, reason)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = errorTemplate.Execute(w, nil)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
