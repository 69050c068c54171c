package auth

import (
	"net/http"
	"strings"
)

const (
	AccessTokenCookie = "access_token"
	AdminKeyHeader    = "X-Admin-Key"
)

// ExtractAccessToken prefers the access_token cookie over a bearer header.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		if cookie.Value != "" {
			return cookie.Value
		}
	}
	return bearer(r)
}

// ExtractAdminKey reads X-Admin-Key, then a bearer header.
func ExtractAdminKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(AdminKeyHeader)); key != "" {
		return key
	}
	return bearer(r)
}

func bearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}
