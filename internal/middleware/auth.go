package middleware

import (
	"net/http"

	"homefoods-be/internal/auth"
	"homefoods-be/internal/i18n"
	"homefoods-be/internal/logger"
	"homefoods-be/internal/transport"

	"go.uber.org/zap"
)

// Authenticate attaches the customer session when a token is presented.
// Requests without a token pass through anonymously; a bad token is rejected.
func Authenticate(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractAccessToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := sessions.Parse(token)
			if err != nil {
				logger.FromCtx(r.Context()).Info("session token rejected", zap.Error(err))
				unauthorized(w, r)
				return
			}

			ctx := auth.WithSession(r.Context(), claims)
			ctx = logger.WithCustomerID(ctx, claims.CustomerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects anonymous requests.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.SessionFrom(r.Context()); !ok {
			unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin accepts X-Admin-Key or a bearer token matching the admin secret.
func RequireAdmin(checker *auth.AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !checker.Check(auth.ExtractAdminKey(r)) {
				logger.FromCtx(r.Context()).Warn("admin key rejected", zap.String("path", r.URL.Path))
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	transport.WriteError(w, http.StatusUnauthorized, i18n.T(i18n.FromCtx(r.Context()), i18n.Unauthorized), nil)
}
