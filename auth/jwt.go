// Copyright (c) 2025 BVK Chaitanya

package auth

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"time"

	jose "gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

type nonceSource struct{}

func (n nonceSource) Nonce() (string, error) {
	r, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// JWTSigner authenticates requests with a short-lived ES256 JWT carrying the
// request target as a claim, delivered as a bearer token. This is the
// asymmetric signing shape; the venue holds only the public key.
type JWTSigner struct {
	kid    string
	issuer string

	priKey *ecdsa.PrivateKey
	signer jose.Signer
}

var _ Authenticator = &JWTSigner{}

// NewJWTSigner creates a signer from credentials carrying a PEM-encoded EC
// private key. Empty credentials produce a signer that only serves public
// requests.
func NewJWTSigner(creds *Credentials, issuer string) (*JWTSigner, error) {
	if len(issuer) == 0 {
		issuer = "cdp"
	}
	s := &JWTSigner{issuer: issuer}
	if creds.Empty() {
		return s, nil
	}
	if len(creds.PEM) == 0 {
		return nil, fmt.Errorf("credentials have no PEM private key: %w", ErrAuthConfiguration)
	}

	block, _ := pem.Decode([]byte(creds.PEM))
	if block == nil {
		return nil, fmt.Errorf("could not parse the PEM private key: %w", ErrAuthConfiguration)
	}
	priKey, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("could not parse the EC private key: %w", err)
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.ES256, Key: priKey},
		(&jose.SignerOptions{NonceSource: nonceSource{}}).WithType("JWT").WithHeader("kid", creds.Key),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create jose signer: %w", err)
	}

	s.kid = creds.Key
	s.priKey = priKey
	s.signer = signer
	return s, nil
}

// Claims is the JWT claim set venues of this shape expect: the standard
// registered claims plus the request target.
type Claims struct {
	*jwt.Claims
	URI string `json:"uri,omitempty"`
}

func (s *JWTSigner) signClaims(uri string) (string, error) {
	cl := &Claims{
		Claims: &jwt.Claims{
			Subject:   s.kid,
			Issuer:    s.issuer,
			NotBefore: jwt.NewNumericDate(time.Now()),
			Expiry:    jwt.NewNumericDate(time.Now().Add(2 * time.Minute)),
		},
		URI: uri,
	}
	return jwt.Signed(s.signer).Claims(cl).CompactSerialize()
}

func (s *JWTSigner) SignRequest(req *Request) (http.Header, error) {
	if !req.Private {
		return make(http.Header), nil
	}
	if s.signer == nil {
		return nil, fmt.Errorf("private endpoint %q: %w", req.Path, ErrAuthConfiguration)
	}

	token, err := s.signClaims(fmt.Sprintf("%s %s%s", req.Method, req.Host, req.Path))
	if err != nil {
		return nil, fmt.Errorf("could not sign jwt token: %w", err)
	}
	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+token)
	return headers, nil
}

func (s *JWTSigner) SignHandshake() ([]byte, error) {
	if s.signer == nil {
		return nil, fmt.Errorf("streaming handshake: %w", ErrAuthConfiguration)
	}
	token, err := s.signClaims("")
	if err != nil {
		return nil, fmt.Errorf("could not sign jwt token: %w", err)
	}
	return []byte(token), nil
}
