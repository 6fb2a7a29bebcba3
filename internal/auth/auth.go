// Package auth verifies bearer tokens for both the REST layer and the
// real-time gateway, and issues the server's own session tokens.
package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrMissingToken is returned when no bearer token was supplied
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken is returned when a token fails verification
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is the verified caller
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// Verifier checks a raw token and returns the identity it was issued to
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Chain tries each verifier in order and returns the first success.
// A nil entry is skipped so optional providers can be left unconfigured.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	for _, v := range c {
		if v == nil {
			continue
		}
		if id, err := v.Verify(ctx, token); err == nil {
			return id, nil
		}
	}
	return nil, ErrInvalidToken
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value
func BearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return parts[1], nil
}
