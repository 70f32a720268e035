// Package auth resolves the actor behind a request.
//
// Session tokens are issued and verified by the Lens API. This package only
// decodes their claims; whether the session is still valid is asked of a
// ports.AccountVerifier.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goodcast/goodapi/pkg/domain"
	"github.com/goodcast/goodapi/pkg/ports"
)

const (
	AccessTokenHeader   = "x-access-token"
	IdentityTokenHeader = "x-identity-token"
)

var (
	// ErrMissingToken is returned when a required token header is absent.
	ErrMissingToken = errors.New("missing token")
	// ErrMalformedToken is returned when a token cannot be decoded.
	ErrMalformedToken = errors.New("malformed token")
)

// Tokens are the credentials a client sends with every request.
type Tokens struct {
	Access   string
	Identity string
}

// FromRequest reads the token headers.
func FromRequest(r *http.Request) Tokens {
	return Tokens{
		Access:   strings.TrimSpace(r.Header.Get(AccessTokenHeader)),
		Identity: strings.TrimSpace(r.Header.Get(IdentityTokenHeader)),
	}
}

type claims struct {
	jwt.RegisteredClaims
	ID         string `json:"id"`
	EvmAddress string `json:"evmAddress"`
	Role       string `json:"role"`
}

// ParseToken decodes the claims of a Lens token without verifying its
// signature.
func ParseToken(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, ErrMissingToken
	}

	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return domain.Identity{ID: c.ID, EvmAddress: c.EvmAddress, Role: c.Role}, nil
}

// Status asks the verifier about accessToken and answers with the HTTP
// status the caller should stop with: 200 means the account may proceed.
func Status(ctx context.Context, verifier ports.AccountVerifier, accessToken string) int {
	if accessToken == "" {
		return http.StatusUnauthorized
	}
	ok, err := verifier.Verify(ctx, accessToken)
	if err != nil {
		return http.StatusInternalServerError
	}
	if !ok {
		return http.StatusUnauthorized
	}
	return http.StatusOK
}
