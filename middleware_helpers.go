package posts

import (
	"context"

	"github.com/goliatone/go-posts/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can use posts helpers directly.
type ValidationListener = jwtware.ValidationListener

// ContextEnricherAdapter adapts jwtware.AuthClaims to posts.AuthClaims and
// stores them in the standard context for downstream handlers.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}
	return WithClaimsContext(c, authClaims)
}

// JWTValidatorAdapter exposes a TokenValidator to the jwtware middleware.
// Tokens whose user id is not a uuid are rejected.
func JWTValidatorAdapter(v TokenValidator) jwtware.TokenValidator {
	return jwtware.TokenValidatorFunc(func(raw string) (jwtware.AuthClaims, error) {
		claims, err := v.Validate(raw)
		if err != nil {
			return nil, err
		}
		if !HasUserUUID(claims) {
			return nil, ErrInvalidToken
		}
		return claims, nil
	})
}

// RegisterValidationListeners appends listeners to a jwtware.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}
