package middleware

import (
	"context"
	"errors"
	"strings"

	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const actorLocal = "actor"

// ActorResolver turns credentials into a verified Actor.
type ActorResolver interface {
	FromSession(ctx context.Context, sessionUser interface{}) (*domain.Actor, error)
	FromBearer(ctx context.Context, token string) (*domain.Actor, error)
}

// Authenticate resolves the optional Actor of a request: the session user
// first, then an Authorization: Bearer token. Requests without credentials
// pass through anonymously; credentials that do not resolve get a 401.
func Authenticate(resolver ActorResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if su := GetSessionUser(c); su != nil {
			actor, err := resolver.FromSession(ctx, su)
			if err == nil {
				c.Locals(actorLocal, actor)
				return c.Next()
			}
			if !errors.Is(err, domain.ErrUnauthenticated) {
				return response.FromError(c, err)
			}
			// Stale session: the user was removed or locked out.
			DestroySession(c)
		}

		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		token, ok := bearerToken(header)
		if !ok {
			return response.Unauthorized(c, "Invalid authorization header")
		}
		actor, err := resolver.FromBearer(ctx, token)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				log.Info().Str("path", c.Path()).Msg("auth: bearer token rejected")
				return response.Unauthorized(c, "Invalid or expired token")
			}
			return response.FromError(c, err)
		}
		c.Locals(actorLocal, actor)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetActor(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetActor returns the request Actor (nil if anonymous).
func GetActor(c *fiber.Ctx) *domain.Actor {
	a, _ := c.Locals(actorLocal).(*domain.Actor)
	return a
}

// SetActor stores actor for the rest of the request.
func SetActor(c *fiber.Ctx, actor *domain.Actor) {
	c.Locals(actorLocal, actor)
}
