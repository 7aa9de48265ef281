package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// OwnerHeader carries the id of the user the import runs for. The
// authenticating front end sets it.
const OwnerHeader = "X-Owner-ID"

type ownerKey struct{}

var (
	errMissingOwner = errors.New("missing owner: set the " + OwnerHeader + " header")
	errInvalidOwner = errors.New("invalid owner: " + OwnerHeader + " must be a UUID")
)

// ContextWithOwner returns a context carrying the owner id.
func ContextWithOwner(ctx context.Context, owner uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFromContext returns the owner id stored by RequireOwner.
func OwnerFromContext(ctx context.Context) (uuid.UUID, bool) {
	owner, ok := ctx.Value(ownerKey{}).(uuid.UUID)
	return owner, ok
}

// RequireOwner rejects requests without a valid owner id and stores the id
// in the request context.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if raw == "" {
			respondError(w, r, errMissingOwner, http.StatusUnauthorized)
			return
		}
		owner, err := uuid.Parse(raw)
		if err != nil || owner == uuid.Nil {
			respondError(w, r, errInvalidOwner, http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithOwner(r.Context(), owner)))
	})
}
