package token

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	defaultTTL      = 1 * time.Hour
	defaultIssuer   = "backend-checkout"
	defaultAudience = "checkout-clients"
)

// ErrMissingEmail is returned when a token is requested for an order that
// carries no identity material.
var ErrMissingEmail = errors.New("token: order has no email to bind the token to")

// Signer mints order-scoped access tokens bound to an email claim.
type Signer struct {
	secret    []byte
	ttl       time.Duration
	issuer    string
	audience  string
	now       func() time.Time
	algorithm jwa.SignatureAlgorithm
}

// Config configures the Signer.
type Config struct {
	Secret   string
	TTL      time.Duration
	Issuer   string
	Audience string
}

// NewSigner constructs a Signer with sane defaults.
func NewSigner(cfg Config) (*Signer, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("token: secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = defaultIssuer
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = defaultAudience
	}
	return &Signer{
		secret:    []byte(secret),
		ttl:       ttl,
		issuer:    issuer,
		audience:  audience,
		now:       time.Now,
		algorithm: jwa.HS256,
	}, nil
}

// WithNow allows tests to override the time provider.
func (s *Signer) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Sign mints an HS256 token whose subject is the supplied email.
func (s *Signer) Sign(_ context.Context, email string) (string, error) {
	subject := strings.TrimSpace(email)
	if subject == "" {
		return "", ErrMissingEmail
	}
	now := s.now()
	tok, err := jwt.NewBuilder().
		Subject(subject).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Build()
	if err != nil {
		return "", err
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(s.algorithm, s.secret))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}
