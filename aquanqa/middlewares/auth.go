package middlewares

import (
	"context"
	"net/http"
	"strings"

	"aquanqa/aquanqa/config"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const UserIDKey contextKey = "user_id"

func parseUserID(tokenStr, secret string) (int, bool) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false
	}
	return int(userID), true
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	parts := strings.Split(auth, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware requires a valid bearer token.
func AuthMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			userID, ok := parseUserID(tokenStr, cfg.JWTSecret)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware attaches the user identity when a valid token
// is present but lets anonymous callers through. The public query
// endpoint uses it to attribute conversations without gating access.
func OptionalAuthMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenStr, ok := bearerToken(r); ok {
				if userID, ok := parseUserID(tokenStr, cfg.JWTSecret); ok {
					r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromToken resolves an optional raw token, for transports that
// carry it in the payload instead of a header (websocket handshake).
func UserIDFromToken(tokenStr string, cfg config.Config) *int {
	if tokenStr == "" {
		return nil
	}
	if userID, ok := parseUserID(tokenStr, cfg.JWTSecret); ok {
		return &userID
	}
	return nil
}

// UserIDFromContext returns the authenticated user id, or nil for
// anonymous requests.
func UserIDFromContext(ctx context.Context) *int {
	if userID, ok := ctx.Value(UserIDKey).(int); ok {
		return &userID
	}
	return nil
}
