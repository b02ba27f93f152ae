// Copyright (c) 2025 BVK Chaitanya

package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// KeySigner authenticates requests by injecting a static API key header with
// no per-request computation. Some venues use this shape for read-only
// private endpoints.
type KeySigner struct {
	header string
	key    string
}

var _ Authenticator = &KeySigner{}

func NewKeySigner(creds *Credentials, header string) (*KeySigner, error) {
	if len(header) == 0 {
		header = "X-API-KEY"
	}
	s := &KeySigner{header: header}
	if !creds.Empty() {
		s.key = creds.Key
	}
	return s, nil
}

func (s *KeySigner) SignRequest(req *Request) (http.Header, error) {
	if !req.Private {
		return make(http.Header), nil
	}
	if len(s.key) == 0 {
		return nil, fmt.Errorf("private endpoint %q: %w", req.Path, ErrAuthConfiguration)
	}
	headers := make(http.Header)
	headers.Set(s.header, s.key)
	return headers, nil
}

func (s *KeySigner) SignHandshake() ([]byte, error) {
	if len(s.key) == 0 {
		return nil, fmt.Errorf("streaming handshake: %w", ErrAuthConfiguration)
	}
	payload := struct {
		Key string `json:"api_key"`
	}{Key: s.key}
	return json.Marshal(&payload)
}
