// Copyright (c) 2025 BVK Chaitanya

package auth

import (
	"encoding/json"
	"fmt"
	"os"
)

// Credentials holds long-lived venue API credentials. Values are immutable
// after construction and are deliberately kept out of logs and checkpoints.
type Credentials struct {
	// Key is the venue API key identifier.
	Key string

	// Secret is the shared secret for HMAC-style signing.
	Secret string

	// PEM is a PEM-encoded EC private key for venues using asymmetric
	// signing.
	PEM string
}

// CredentialsFromFile loads credentials from a JSON file.
func CredentialsFromFile(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read credentials file %q: %w", path, err)
	}
	creds := new(Credentials)
	if err := json.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("could not unmarshal credentials file %q: %w", path, err)
	}
	return creds, nil
}

// Empty returns true when no credential material is present.
func (c *Credentials) Empty() bool {
	return c == nil || (len(c.Key) == 0 && len(c.Secret) == 0 && len(c.PEM) == 0)
}
