// Copyright (c) 2025 BVK Chaitanya

package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"testing"

	"gopkg.in/square/go-jose.v2/jwt"
)

func TestHMACSignRequest(t *testing.T) {
	creds := &Credentials{Key: "test-key", Secret: "test-secret"}
	signer, err := NewHMACSigner(creds, &HMACOptions{
		KeyHeader:       "X-TEST-KEY",
		SignHeader:      "X-TEST-SIGN",
		TimestampHeader: "X-TEST-TIMESTAMP",
	})
	if err != nil {
		t.Fatal(err)
	}

	query := make(url.Values)
	query.Set("market", "BCHUSD")
	req := &Request{
		Method:  "POST",
		Path:    "/spot/order",
		Query:   query,
		Body:    []byte(`{"size":"1"}`),
		Private: true,
	}
	headers, err := signer.SignRequest(req)
	if err != nil {
		t.Fatal(err)
	}

	if got := headers.Get("X-TEST-KEY"); got != "test-key" {
		t.Fatalf("key header: want test-key, got %q", got)
	}
	timestamp := headers.Get("X-TEST-TIMESTAMP")
	if len(timestamp) == 0 {
		t.Fatalf("timestamp header is missing")
	}

	// Recompute the signature over the canonical string.
	hash := hmac.New(sha256.New, []byte("test-secret"))
	io.WriteString(hash, "POST/spot/order?market=BCHUSD"+`{"size":"1"}`+timestamp)
	if want := fmt.Sprintf("%x", hash.Sum(nil)); headers.Get("X-TEST-SIGN") != want {
		t.Fatalf("signature: want %s, got %s", want, headers.Get("X-TEST-SIGN"))
	}
}

func TestHMACPublicRequest(t *testing.T) {
	signer, err := NewHMACSigner(&Credentials{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	headers, err := signer.SignRequest(&Request{Method: "GET", Path: "/spot/market"})
	if err != nil {
		t.Fatal(err)
	}
	if len(headers) != 0 {
		t.Fatalf("public request must get no auth headers, got %v", headers)
	}
}

func TestHMACMissingCredentials(t *testing.T) {
	signer, err := NewHMACSigner(&Credentials{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := signer.SignRequest(&Request{Method: "GET", Path: "/balance", Private: true}); !errors.Is(err, ErrAuthConfiguration) {
		t.Fatalf("want ErrAuthConfiguration, got %v", err)
	}
	if _, err := signer.SignHandshake(); !errors.Is(err, ErrAuthConfiguration) {
		t.Fatalf("handshake: want ErrAuthConfiguration, got %v", err)
	}
}

func TestHMACHandshake(t *testing.T) {
	signer, err := NewHMACSigner(&Credentials{Key: "k", Secret: "s"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	payload, err := signer.SignHandshake()
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Key       string `json:"access_id"`
		Signature string `json:"signed_str"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Key != "k" || len(decoded.Signature) == 0 || decoded.Timestamp == 0 {
		t.Fatalf("unexpected handshake payload %s", payload)
	}
}

func TestKeySigner(t *testing.T) {
	signer, err := NewKeySigner(&Credentials{Key: "static-key"}, "X-MBX-APIKEY")
	if err != nil {
		t.Fatal(err)
	}

	headers, err := signer.SignRequest(&Request{Method: "GET", Path: "/account", Private: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := headers.Get("X-MBX-APIKEY"); got != "static-key" {
		t.Fatalf("key header: want static-key, got %q", got)
	}

	headers, err = signer.SignRequest(&Request{Method: "GET", Path: "/depth"})
	if err != nil {
		t.Fatal(err)
	}
	if len(headers) != 0 {
		t.Fatalf("public request must get no auth headers, got %v", headers)
	}

	empty, err := NewKeySigner(&Credentials{}, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := empty.SignRequest(&Request{Method: "GET", Path: "/account", Private: true}); !errors.Is(err, ErrAuthConfiguration) {
		t.Fatalf("want ErrAuthConfiguration, got %v", err)
	}
}

func testPEMKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	priKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalECPrivateKey(priKey)
	if err != nil {
		t.Fatal(err)
	}
	text := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
	return priKey, string(text)
}

func TestJWTSigner(t *testing.T) {
	priKey, pemText := testPEMKey(t)

	signer, err := NewJWTSigner(&Credentials{Key: "kid-1", PEM: pemText}, "")
	if err != nil {
		t.Fatal(err)
	}

	headers, err := signer.SignRequest(&Request{
		Method:  "GET",
		Host:    "api.example.com",
		Path:    "/api/v3/orders",
		Private: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	authz := headers.Get("Authorization")
	if len(authz) < len("Bearer ") {
		t.Fatalf("authorization header is missing: %q", authz)
	}

	token, err := jwt.ParseSigned(authz[len("Bearer "):])
	if err != nil {
		t.Fatal(err)
	}
	cl := new(Claims)
	cl.Claims = new(jwt.Claims)
	if err := token.Claims(&priKey.PublicKey, cl); err != nil {
		t.Fatal(err)
	}
	if cl.Subject != "kid-1" {
		t.Fatalf("subject: want kid-1, got %q", cl.Subject)
	}
	if want := "GET api.example.com/api/v3/orders"; cl.URI != want {
		t.Fatalf("uri claim: want %q, got %q", want, cl.URI)
	}
}

func TestJWTSignerMissingCredentials(t *testing.T) {
	signer, err := NewJWTSigner(&Credentials{}, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := signer.SignRequest(&Request{Method: "GET", Path: "/orders", Private: true}); !errors.Is(err, ErrAuthConfiguration) {
		t.Fatalf("want ErrAuthConfiguration, got %v", err)
	}
}

func TestNonceMonotonic(t *testing.T) {
	var counter nonceCounter

	const numWorkers = 8
	const numNonces = 1000

	var mu sync.Mutex
	seen := make(map[int64]struct{}, numWorkers*numNonces)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := int64(0)
			for j := 0; j < numNonces; j++ {
				nonce := counter.Next()
				if nonce <= last {
					t.Errorf("nonce %d is not greater than previous %d", nonce, last)
					return
				}
				last = nonce
				mu.Lock()
				if _, ok := seen[nonce]; ok {
					mu.Unlock()
					t.Errorf("nonce %d was issued twice", nonce)
					return
				}
				seen[nonce] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}
