package utils

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// DecodeIdentity extracts an email-like claim from a bearer token without
// verifying its signature. The signature is checked by the API on every call;
// this only labels the session. Claims are tried in order: email, user.email,
// sub, preferred_username. Any decode failure reports false.
func DecodeIdentity(token string) (string, bool) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return "", false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", false
	}

	if email, ok := stringClaim(claims["email"]); ok {
		return email, true
	}
	if user, ok := claims["user"].(map[string]interface{}); ok {
		if email, ok := stringClaim(user["email"]); ok {
			return email, true
		}
	}
	if sub, ok := stringClaim(claims["sub"]); ok {
		return sub, true
	}
	if name, ok := stringClaim(claims["preferred_username"]); ok {
		return name, true
	}
	return "", false
}

func stringClaim(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
