package middleware

import (
	"context"
	"net/http"

	"weekly-agenda-api/internal/auth"
	"weekly-agenda-api/internal/webutil"
)

type ctxKey string

const UserIDKey ctxKey = "uid"

const (
	msgAccessDenied = "Access denied!"
	msgInvalidToken = "Invalid token!"
)

// Auth rejects requests without a valid bearer token: 401 when none is sent,
// 400 when it does not verify. The token's user id goes into the context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if raw == "" {
				webutil.WriteError(w, r, webutil.ErrUnauthorized(msgAccessDenied))
				return
			}

			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				webutil.WriteError(w, r, webutil.ErrInvalidToken(msgInvalidToken, err))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the verified user id, or "" outside Auth.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}
