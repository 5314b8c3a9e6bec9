package posts

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// GetFiberClaims extracts the AuthClaims stored by the auth gate
func GetFiberClaims(c *fiber.Ctx, key string) (AuthClaims, bool) {
	if key == "" {
		key = "user"
	}
	raw := c.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}

// ActorID returns the authenticated user id found in ctx
func ActorID(ctx context.Context) (string, bool) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return "", false
	}
	id := claims.UserID()
	return id, id != ""
}

// ActorUUID is ActorID parsed into a uuid
func ActorUUID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ActorID(ctx)
	if !ok {
		return uuid.Nil, ErrUnauthenticated
	}
	return parseID(id, ErrInvalidToken)
}
