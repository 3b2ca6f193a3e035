package client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the registered claims carried by an access token
type TokenClaims struct {
	Subject   string     `json:"sub"`
	IssuedAt  *time.Time `json:"iat,omitempty"`
	ExpiresAt *time.Time `json:"exp,omitempty"`
	Expired   bool       `json:"expired"`
}

// InspectToken decodes the claims of a JWT access token without verifying its signature.
// The signing key belongs to the follow API, the claims are for display only.
func InspectToken(accessToken string, now time.Time) (*TokenClaims, error) {
	claims := jwt.RegisteredClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims)
	if err != nil {
		return nil, fmt.Errorf("access token is not a JWT: %w", err)
	}

	tokenClaims := &TokenClaims{
		Subject: claims.Subject,
	}
	if claims.IssuedAt != nil {
		iat := claims.IssuedAt.UTC()
		tokenClaims.IssuedAt = &iat
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.UTC()
		tokenClaims.ExpiresAt = &exp
		tokenClaims.Expired = !now.Before(exp)
	}

	return tokenClaims, nil
}
