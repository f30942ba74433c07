// Package jwt issues and verifies the stateless bearer tokens that carry a
// user's identity between requests.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var ErrMissingSecret = errors.New("jwt: signing secret is empty")

// Reason classifies why a token failed verification.
type Reason string

const (
	ReasonMalformed        Reason = "malformed"
	ReasonSignatureInvalid Reason = "signature-invalid"
	ReasonExpired          Reason = "expired"
)

type VerificationError struct {
	Reason Reason
	Err    error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("token verification failed (%s): %v", e.Reason, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Identity is the payload embedded in every token.
type Identity struct {
	ID string `json:"id"`
}

type Claims struct {
	User Identity `json:"user"`
	gojwt.RegisteredClaims
}

// Service signs with a single process-wide secret. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed token for userID expiring ttl from now.
func (s *Service) Issue(userID string) (string, error) {
	now := s.now()
	claims := Claims{
		User: Identity{ID: userID},
		RegisteredClaims: gojwt.RegisteredClaims{
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded identity.
// Every failure is a *VerificationError.
func (s *Service) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, func(t *gojwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, &VerificationError{Reason: ReasonSignatureInvalid, Err: gojwt.ErrTokenSignatureInvalid}
	}
	if claims.User.ID == "" {
		return nil, &VerificationError{Reason: ReasonMalformed, Err: errors.New("token carries no user id")}
	}

	return &claims.User, nil
}

func classify(err error) *VerificationError {
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return &VerificationError{Reason: ReasonExpired, Err: err}
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid), errors.Is(err, gojwt.ErrTokenUnverifiable):
		return &VerificationError{Reason: ReasonSignatureInvalid, Err: err}
	default:
		return &VerificationError{Reason: ReasonMalformed, Err: err}
	}
}
