package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/domain"
)

// callbackAck is the acknowledgement body the document server expects.
// Anything other than error:0 makes it retry the callback.
type callbackAck struct {
	Error int `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeCallbackAccepted(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, callbackAck{Error: 0})
}

// writeCallbackRejected is the single rejection shape for the callback path.
// Every authentication or parsing failure funnels through here so callers
// cannot distinguish causes.
func writeCallbackRejected(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, callbackAck{Error: 1})
}

// publicReason maps an editor-open failure to the diagnostic shown to the
// authenticated user's own browser. Unlike the callback path, exposing the
// server-side reason here is safe.
func publicReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "malformed editor payload"
	case errors.Is(err, domain.ErrUnsupportedExtension):
		return "unsupported file extension"
	case errors.Is(err, domain.ErrFileTooLarge):
		return "file exceeds the size limit"
	case errors.Is(err, domain.ErrUnknownUser):
		return "unknown user"
	case errors.Is(err, domain.ErrDecryptionFailed):
		return "invalid document server credentials"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream service unavailable"
	default:
		return "internal error"
	}
}
