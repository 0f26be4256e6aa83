package auth

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Context keys for authentication data
type contextKey string

// ContextKeyActor is the context key for the authenticated actor address.
const ContextKeyActor contextKey = "actor"

// WithActor adds the authenticated actor address to the context.
func WithActor(ctx context.Context, actor common.Address) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// ActorFromContext retrieves the authenticated actor address from the context.
func ActorFromContext(ctx context.Context) (common.Address, bool) {
	actor, ok := ctx.Value(ContextKeyActor).(common.Address)
	return actor, ok
}
