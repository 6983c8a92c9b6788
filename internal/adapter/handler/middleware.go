package handler

import (
	"context"
	"net/http"
	"strconv"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	staffKey  contextKey = "staff"
)

// AuthContext lifts the gateway-verified identity headers into the
// request context. JWT validation happens upstream; this process trusts
// X-User-ID and X-User-Staff as already authenticated.
func AuthContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if raw := r.Header.Get("X-User-ID"); raw != "" {
			if userID, err := strconv.ParseInt(raw, 10, 64); err == nil && userID > 0 {
				ctx = context.WithValue(ctx, userIDKey, userID)
			}
		}
		if r.Header.Get("X-User-Staff") == "true" {
			ctx = context.WithValue(ctx, staffKey, true)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) int64 {
	if userID, ok := ctx.Value(userIDKey).(int64); ok {
		return userID
	}
	return 0
}

func isStaffFromContext(ctx context.Context) bool {
	staff, ok := ctx.Value(staffKey).(bool)
	return ok && staff
}
