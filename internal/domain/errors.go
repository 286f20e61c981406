package domain

import "errors"

var (
	// ErrAuthenticationFailed covers every failure on the callback path:
	// malformed session, decrypt failure, missing bearer, bad signature.
	// Collapsing them into one sentinel prevents an oracle that would let a
	// caller distinguish "wrong signature" from "corrupted token".
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrDecryptionFailed is returned for any sealed-blob open failure.
	// Wrong key, truncated blob and tampered ciphertext are intentionally
	// indistinguishable.
	ErrDecryptionFailed = errors.New("decryption failed")
	// ErrSessionFormat signals a malformed session envelope (bad base64url,
	// bad structure, unsupported version).
	ErrSessionFormat = errors.New("malformed session envelope")
	ErrInvalidInput  = errors.New("invalid input")
	// ErrUnsupportedExtension rejects files outside the office allow-list
	// before any session or cache state is created.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrFileTooLarge         = errors.New("file exceeds size limit")
	ErrUnknownUser          = errors.New("unknown user")
	// ErrUpstream signals an unreachable or non-2xx card service or
	// document server.
	ErrUpstream = errors.New("upstream request failed")
)
