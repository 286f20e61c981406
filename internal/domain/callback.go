package domain

import (
	"encoding/json"
	"fmt"
)

// CallbackStatus is the document server's editing-session lifecycle code.
type CallbackStatus int

const (
	StatusNoDocument      CallbackStatus = 0
	StatusBeingEdited     CallbackStatus = 1
	StatusReadyForSaving  CallbackStatus = 2
	StatusSaveError       CallbackStatus = 3
	StatusClosedNoChanges CallbackStatus = 4
	StatusMustForceSave   CallbackStatus = 6
	StatusForceSaveError  CallbackStatus = 7
)

// Callback is the inbound save/status notification from the document server.
// Correlation with an editing session is implicit through the token/session
// query parameters of the callback URL. The document server sends additional
// bookkeeping fields alongside these; they are ignored.
type Callback struct {
	Status CallbackStatus `json:"status"`
	URL    string         `json:"url,omitempty"`
}

// ParseCallback decodes the callback request body and validates the status
// against the known enumeration.
func ParseCallback(raw []byte) (Callback, error) {
	var cb Callback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return Callback{}, fmt.Errorf("%w: malformed callback body", ErrInvalidInput)
	}
	switch cb.Status {
	case StatusNoDocument, StatusBeingEdited, StatusReadyForSaving, StatusSaveError,
		StatusClosedNoChanges, StatusMustForceSave, StatusForceSaveError:
		return cb, nil
	default:
		return Callback{}, fmt.Errorf("%w: unknown callback status %d", ErrInvalidInput, cb.Status)
	}
}
