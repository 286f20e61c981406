package ports

// Sealer provides authenticated symmetric encryption of opaque string blobs.
// The key is held at adapter level so the application layer stays
// crypto-library agnostic. Encrypt output is self-contained: Decrypt needs
// only the blob and the adapter's key.
type Sealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(blob string) (string, error)
}

// ConfigSigner signs outbound editor configs and verifies inbound callback
// bearer credentials against the per-session secret. Verification fails
// closed: any mismatch, including a missing signature, is a hard failure.
type ConfigSigner interface {
	SignClaims(payload any, secret string) (string, error)
	VerifyBearer(token, secret string) error
}
