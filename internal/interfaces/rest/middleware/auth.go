package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cast"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/DanielPopoola/ticketing-payments/internal/interfaces/rest"
	"github.com/DanielPopoola/ticketing-payments/pkg/logger"
)

type userIDKey struct{}

// UserIDFrom returns the authenticated user id stored by Auth.
func UserIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok
}

// WithUserID returns a copy of ctx carrying id as the authenticated user.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// Auth accepts HS256 bearer tokens signed with secret and reads the user id
// from userClaim.
func Auth(secret []byte, userClaim string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := authenticate(r, secret, userClaim)
			if err != nil {
				logger.From(r.Context(), nil).Warn("authentication failed", "error", err)
				rest.WriteError(w, application.NewUnauthorizedError(err))
				return
			}

			ctx := WithUserID(r.Context(), userID)
			ctx = logger.With(ctx, "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, secret []byte, userClaim string) (int64, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, errors.New("missing bearer token")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, errors.New("token has expired")
		}
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	value, ok := claims[userClaim]
	if !ok {
		return 0, fmt.Errorf("token has no %q claim", userClaim)
	}
	userID, err := cast.ToInt64E(value)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("claim %q is not a user id: %v", userClaim, value)
	}
	return userID, nil
}
