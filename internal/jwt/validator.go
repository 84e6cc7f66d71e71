// Package jwt verifies bearer tokens issued by the upstream identity
// provider. Token issuance is out of scope; only validation lives here.
package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"veil/internal/platform/middleware"
	dErrors "veil/pkg/domain-errors"
)

// Claims represents the JWT claims we accept on research API calls.
type Claims struct {
	CallerID  string `json:"caller_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Validator checks HS256 tokens against a shared signing key.
type Validator struct {
	signingKey []byte
}

func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

func (v *Validator) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if claims.CallerID == "" {
		// Fall back to the registered subject for tokens minted by older
		// gateway versions.
		claims.CallerID = claims.Subject
	}
	if claims.CallerID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token missing caller identity")
	}
	return &middleware.JWTClaims{
		CallerID:  claims.CallerID,
		SessionID: claims.SessionID,
	}, nil
}
