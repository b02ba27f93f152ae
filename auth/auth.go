// Copyright (c) 2025 BVK Chaitanya

// Package auth signs outbound venue requests. Signers are stateless per
// request: given long-lived credentials at construction, each signer turns
// one REST request or one streaming handshake into the headers or payload the
// venue expects. Venues use one of a few universal shapes (HMAC over a
// canonical string, static api-key header injection, asymmetric JWT signing)
// and each shape has a signer here behind the same interface.
package auth

import (
	"errors"
	"net/http"
	"net/url"
)

// ErrAuthConfiguration indicates that signing was attempted on a private
// endpoint without the required credentials.
var ErrAuthConfiguration = errors.New("authentication credentials are not configured")

// Request describes one outbound call to be signed. Body is the serialized
// request payload, or nil for requests without one.
type Request struct {
	Method string
	Host   string
	Path   string
	Query  url.Values
	Body   []byte

	// Private marks endpoints that require authentication. Whether a call
	// needs signing is an explicit property of the call site and is never
	// inferred from the path.
	Private bool
}

// Authenticator computes authentication material for outbound requests.
// Implementations are safe for concurrent use.
type Authenticator interface {
	// SignRequest returns headers to merge into one REST request. Public
	// requests get an empty header set. Private requests without credentials
	// fail with ErrAuthConfiguration.
	SignRequest(req *Request) (http.Header, error)

	// SignHandshake returns the one-time payload to send right after a
	// streaming connection is established, before any subscription request.
	SignHandshake() ([]byte, error)
}

func canonicalTarget(req *Request) string {
	target := req.Path
	if len(req.Query) != 0 {
		target = target + "?" + req.Query.Encode()
	}
	return target
}
