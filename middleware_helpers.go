package keygate

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/keygate/keygate/middleware/jwtware"
)

// accessTokenValidator adapts the root TokenVerifier to the jwtware mirror
// interface so the middleware package stays import-cycle free.
type accessTokenValidator struct {
	tokens TokenVerifier
}

func (v accessTokenValidator) VerifyAccessToken(raw string) (jwtware.AuthClaims, error) {
	claims, err := v.tokens.VerifyAccessToken(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ContextEnricherAdapter stores the resolved user id in the standard context
// for downstream guard and handler usage.
func ContextEnricherAdapter(ctx context.Context, claims jwtware.AuthClaims) context.Context {
	return WithUserID(ctx, claims.UserID())
}

// AccessGate builds the bearer-token middleware for protected routes. Any
// failure, missing header, malformed prefix, bad signature, expired token,
// comes back as the same generic unauthorized error.
func AccessGate(tokens TokenVerifier) func(c *fiber.Ctx) error {
	return jwtware.New(jwtware.Config{
		TokenValidator:  accessTokenValidator{tokens: tokens},
		ContextEnricher: ContextEnricherAdapter,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return ErrMissingToken
		},
	})
}
