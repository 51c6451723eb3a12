package auth

import (
	"errors"
	"time"

	authsvc "tabiconst-backend/internal/application/auth"
	"tabiconst-backend/internal/application/dashboard"
	usersvc "tabiconst-backend/internal/application/user"
	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/middleware"
	"tabiconst-backend/internal/pkg/jwt"
	"tabiconst-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	UserFinder authsvc.UserFinder
	Users      *usersvc.Service
	Rdb        *redis.Client
	Config     middleware.SessionConfig
	JWTSecret  string
	JWTExpiry  time.Duration
	Dashboard  *dashboard.Service
}

// Register POST /api/v1/auth/register: create the account and sign it in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req usersvc.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	u, err := h.Users.Register(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return response.Error(c, "User already exists", fiber.StatusConflict, nil)
		}
		return response.FromError(c, err)
	}
	h.Dashboard.Invalidate(c.UserContext())
	data, err := h.startSession(c, u)
	if err != nil {
		return response.FromError(c, err)
	}
	log.Info().Str("user_id", u.ID.String()).Str("role", string(u.Role)).Msg("auth: user registered")
	return response.Created(c, "Registration successful", data)
}

// Login POST /api/v1/auth/login: authenticate, create session, SAdd user_sessions:<id>, set cookie, return user and token.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, authsvc.ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	u, err := h.UserFinder.FindByEmailAndPassword(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailPasswordRequired):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		case errors.Is(err, authsvc.ErrAccountDisabled):
			return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
		default:
			return response.FromError(c, err)
		}
	}
	data, err := h.startSession(c, u)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Login successful", data, nil)
}

// startSession rotates the session id, stores the user snapshot, tracks the
// session under user_sessions:<id>, sets the cookie and issues an access token.
func (h *Handlers) startSession(c *fiber.Ctx, u *domain.User) (fiber.Map, error) {
	shape := authsvc.ShapeOf(u)
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		ID:     shape.ID,
		Name:   shape.Name,
		Email:  shape.Email,
		Role:   shape.Role,
		Status: shape.Status,
	})
	if h.Rdb != nil {
		if err := h.Rdb.SAdd(c.UserContext(), middleware.UserSessionsPrefix+shape.ID, sessionID).Err(); err != nil {
			return nil, err
		}
	}
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)

	data := fiber.Map{"user": shape}
	if h.JWTSecret != "" {
		token, err := jwt.GenerateAccessToken(shape.ID, shape.Role, h.JWTSecret, h.JWTExpiry)
		if err != nil {
			return nil, err
		}
		data["token"] = token
	}
	return data, nil
}

// Me GET /api/v1/auth/me: the current user, reloaded from the users table.
func (h *Handlers) Me(c *fiber.Ctx) error {
	actor := middleware.GetActor(c)
	if actor == nil {
		log.Info().Str("path", c.Path()).
			Bool("cookie_present", c.Cookies(middleware.SessionCookieName) != "").
			Msg("auth/me: returning 401 Not authenticated")
		return response.Unauthorized(c, domain.ErrUnauthenticated.Error())
	}
	u, err := h.Users.ViewUser(c.UserContext(), actor.ID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": u}, nil)
}

// Logout DELETE /api/v1/auth/logout: SRem user_sessions:<id>, Del session key, clear cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := c.UserContext()

	if h.Rdb != nil && sessionID != "" {
		if shape, err := authsvc.VerifyUser(middleware.GetSessionUser(c)); err == nil {
			_ = h.Rdb.SRem(ctx, middleware.UserSessionsPrefix+shape.ID, sessionID).Err()
		}
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Logged out successfully", nil, nil)
}
