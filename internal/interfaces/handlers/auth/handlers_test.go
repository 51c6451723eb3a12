package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authsvc "tabiconst-backend/internal/application/auth"
	"tabiconst-backend/internal/application/dashboard"
	usersvc "tabiconst-backend/internal/application/user"
	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/middleware"
	"tabiconst-backend/internal/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type authEnv struct {
	app   *fiber.App
	users *usersvc.Service
	rdb   *redis.Client
	mr    *miniredis.Miniredis
}

func setupAuthApp(t *testing.T) *authEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	users := &usersvc.Service{DB: db, Rdb: rdb}
	finder := &authsvc.GormUserFinder{DB: db}
	h := &Handlers{
		UserFinder: finder,
		Users:      users,
		Rdb:        rdb,
		JWTSecret:  testSecret,
		JWTExpiry:  time.Hour,
		Dashboard:  &dashboard.Service{Rdb: rdb, TTL: time.Minute},
	}
	app := fiber.New()
	app.Use(middleware.SessionWithClient(rdb), middleware.Authenticate(&authsvc.Resolver{Users: finder, JWTSecret: testSecret}))
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	app.Get("/me", h.Me)
	app.Delete("/logout", h.Logout)
	return &authEnv{app: app, users: users, rdb: rdb, mr: mr}
}

func (e *authEnv) post(t *testing.T, path string, body interface{}) (*fiberResp, map[string]interface{}) {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return e.send(t, req)
}

type fiberResp struct {
	code    int
	cookies []string
}

func (e *authEnv) send(t *testing.T, req *http.Request) (*fiberResp, map[string]interface{}) {
	t.Helper()
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return &fiberResp{code: resp.StatusCode, cookies: resp.Header.Values("Set-Cookie")}, out
}

func sessionCookie(t *testing.T, cookies []string) string {
	t.Helper()
	for _, c := range cookies {
		if strings.HasPrefix(c, middleware.SessionCookieName+"=") {
			return strings.SplitN(c, ";", 2)[0]
		}
	}
	t.Fatalf("no %s cookie in %v", middleware.SessionCookieName, cookies)
	return ""
}

func TestRegisterThenMeWithCookieAndToken(t *testing.T) {
	env := setupAuthApp(t)

	resp, out := env.post(t, "/register", map[string]string{
		"name": "Sara Bekele", "email": "sara@example.com", "password": "pa55#word", "role": "landlord",
	})
	require.Equal(t, fiber.StatusCreated, resp.code, out)
	data := out["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "landlord", user["role"])
	assert.Equal(t, "pending", user["status"])
	token := data["token"].(string)

	claims, err := jwt.ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user["id"], claims.Subject)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", sessionCookie(t, resp.cookies))
	resp, out = env.send(t, req)
	require.Equal(t, fiber.StatusOK, resp.code, out)
	me := out["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "sara@example.com", me["email"])
	assert.NotContains(t, me, "passwordHash")

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = env.send(t, req)
	assert.Equal(t, fiber.StatusOK, resp.code)

	resp, _ = env.post(t, "/register", map[string]string{
		"name": "Sara", "email": "SARA@example.com", "password": "pa55#word",
	})
	assert.Equal(t, fiber.StatusConflict, resp.code)
}

func TestLogin(t *testing.T) {
	env := setupAuthApp(t)
	ctx := context.Background()
	_, err := env.users.Register(ctx, usersvc.RegisterInput{Name: "Abel", Email: "abel@example.com", Password: "pa55#word"})
	require.NoError(t, err)

	resp, _ := env.post(t, "/login", map[string]string{"email": "abel@example.com"})
	assert.Equal(t, fiber.StatusBadRequest, resp.code)

	resp, _ = env.post(t, "/login", map[string]string{"email": "abel@example.com", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.code)

	resp, out := env.post(t, "/login", map[string]string{"email": "ABEL@example.com", "password": "pa55#word"})
	require.Equal(t, fiber.StatusOK, resp.code, out)
	assert.Equal(t, "Login successful", out["message"])
	sessionCookie(t, resp.cookies)

	keys, err := env.rdb.Keys(ctx, middleware.UserSessionsPrefix+"*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestLogin_SuspendedAccount(t *testing.T) {
	env := setupAuthApp(t)
	ctx := context.Background()
	u, err := env.users.Register(ctx, usersvc.RegisterInput{Name: "Abel", Email: "abel@example.com", Password: "pa55#word"})
	require.NoError(t, err)
	require.NoError(t, env.users.DB.Model(u).Update("status", domain.ApprovalSuspended).Error)

	resp, _ := env.post(t, "/login", map[string]string{"email": "abel@example.com", "password": "pa55#word"})
	assert.Equal(t, fiber.StatusForbidden, resp.code)
}

func TestLogout_DestroysSession(t *testing.T) {
	env := setupAuthApp(t)
	_, err := env.users.Register(context.Background(), usersvc.RegisterInput{Name: "Abel", Email: "abel@example.com", Password: "pa55#word"})
	require.NoError(t, err)
	resp, _ := env.post(t, "/login", map[string]string{"email": "abel@example.com", "password": "pa55#word"})
	cookie := sessionCookie(t, resp.cookies)

	req := httptest.NewRequest("DELETE", "/logout", nil)
	req.Header.Set("Cookie", cookie)
	resp, _ = env.send(t, req)
	require.Equal(t, fiber.StatusOK, resp.code)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", cookie)
	resp, _ = env.send(t, req)
	assert.Equal(t, fiber.StatusUnauthorized, resp.code)
}

func TestMe_Anonymous(t *testing.T) {
	env := setupAuthApp(t)
	resp, _ := env.send(t, httptest.NewRequest("GET", "/me", nil))
	assert.Equal(t, fiber.StatusUnauthorized, resp.code)
}

func TestRegister_DropsCachedStats(t *testing.T) {
	env := setupAuthApp(t)
	require.NoError(t, env.mr.Set(dashboard.CacheKey, "{}"))

	resp, out := env.post(t, "/register", map[string]string{
		"name": "Abel", "email": "abel@example.com", "password": "pa55#word",
	})
	require.Equal(t, fiber.StatusCreated, resp.code, out)
	assert.False(t, env.mr.Exists(dashboard.CacheKey))
}
