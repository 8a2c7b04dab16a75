package api

import (
	"context"
	"net/http"
	"strconv"
)

// UserIDHeader is set by the authenticating proxy in front of the service.
const UserIDHeader = "X-User-Id"

type userIDKey struct{}

// RequireUser rejects requests without a valid X-User-Id header and stores
// the account id in the request context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(r.Header.Get(UserIDHeader), 10, 64)
		if err != nil || id == 0 {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}

func WithUserID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func UserIDFrom(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(userIDKey{}).(uint64)
	return id, ok
}
