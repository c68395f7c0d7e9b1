package store

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Fingerprint returns the SHA-256 hex digest of the value's canonical JSON
// encoding. Map keys marshal in sorted order, so two runs that produce the
// same records produce the same fingerprint, which is how idempotence is
// checked without byte-comparing output files.
func Fingerprint(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal value for fingerprint: %w", err)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}
