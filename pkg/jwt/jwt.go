package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultAssertionExpiry = time.Hour

var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidAssertion  = errors.New("invalid assertion")
)

// AssertionClaims is the claim set of an OAuth2 JWT-bearer grant (RFC 7523)
// as used by Google service accounts.
type AssertionClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

type AssertionConfig struct {
	Issuer   string // service account client_email
	Audience string // token endpoint
	Scope    string
	KeyID    string
	Expiry   time.Duration
}

// AssertionSigner builds RS256 assertions that are exchanged for access tokens.
type AssertionSigner struct {
	config AssertionConfig
	key    *rsa.PrivateKey
}

func NewAssertionSigner(cfg AssertionConfig, privateKeyPEM []byte) (*AssertionSigner, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = DefaultAssertionExpiry
	}
	return &AssertionSigner{config: cfg, key: key}, nil
}

func (s *AssertionSigner) Sign(now time.Time) (string, error) {
	claims := AssertionClaims{
		Scope: s.config.Scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Audience:  jwt.ClaimStrings{s.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if s.config.KeyID != "" {
		token.Header["kid"] = s.config.KeyID
	}

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", err
	}
	return signed, nil
}

func (s *AssertionSigner) PublicKey() *rsa.PublicKey {
	return &s.key.PublicKey
}

// ParseAssertion verifies an RS256 assertion against publicKey.
func ParseAssertion(tokenString string, publicKey *rsa.PublicKey) (*AssertionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AssertionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("invalid signing method")
		}
		return publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}

	claims, ok := token.Claims.(*AssertionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidAssertion
	}
	return claims, nil
}
