package httpapi

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
)

type ctxKey string

const identityKey ctxKey = "identity"

func withIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the session identity attached by the session middleware.
func IdentityFrom(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok && id != nil
}
