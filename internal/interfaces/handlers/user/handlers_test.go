package user

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"tabiconst-backend/internal/application/dashboard"
	usersvc "tabiconst-backend/internal/application/user"
	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type userEnv struct {
	app    *fiber.App
	svc    *usersvc.Service
	actors map[string]*domain.Actor
	mr     *miniredis.Miniredis
}

func setupUserApp(t *testing.T) *userEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Listing{}, &domain.Image{}, &domain.Favorite{}))
	svc := &usersvc.Service{DB: db, Rdb: rdb}

	ctx := context.Background()
	admin, _, err := svc.EnsureAdmin(ctx, usersvc.AdminInput{Email: "admin@example.com", Password: "adm1n#pass"})
	require.NoError(t, err)
	manager, err := svc.Register(ctx, usersvc.RegisterInput{Name: "Manager", Email: "manager@example.com", Password: "pa55#word"})
	require.NoError(t, err)
	require.NoError(t, db.Model(manager).Update("role", domain.RoleManager).Error)
	manager.Role = domain.RoleManager
	landlord, err := svc.Register(ctx, usersvc.RegisterInput{Name: "Landlord", Email: "landlord@example.com", Password: "pa55#word", Role: "landlord"})
	require.NoError(t, err)

	actors := map[string]*domain.Actor{"admin": admin.Actor(), "manager": manager.Actor(), "landlord": landlord.Actor()}
	h := &Handlers{Service: svc, Dashboard: &dashboard.Service{Rdb: rdb, TTL: time.Minute}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if a, ok := actors[c.Get("X-Test-Actor")]; ok {
			middleware.SetActor(c, a)
		}
		return c.Next()
	})
	app.Put("/profile", h.UpdateProfile)
	app.Get("/users", h.ListUsers)
	app.Patch("/users/:id/status", h.UpdateUserStatus)
	app.Delete("/users/:id", h.DeleteUser)
	return &userEnv{app: app, svc: svc, actors: actors, mr: mr}
}

func (e *userEnv) do(t *testing.T, method, path, actor string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Actor", actor)
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestListUsers(t *testing.T) {
	env := setupUserApp(t)
	code, out := env.do(t, "GET", "/users", "manager", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"], 3)

	code, _ = env.do(t, "GET", "/users", "landlord", nil)
	assert.Equal(t, fiber.StatusForbidden, code)
	code, _ = env.do(t, "GET", "/users", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestApproveLandlord(t *testing.T) {
	env := setupUserApp(t)
	id := env.actors["landlord"].ID.String()

	code, out := env.do(t, "PATCH", "/users/"+id+"/status", "manager", map[string]string{"status": "active"})
	require.Equal(t, fiber.StatusOK, code, out)
	assert.Equal(t, "active", out["data"].(map[string]interface{})["user"].(map[string]interface{})["status"])

	code, _ = env.do(t, "PATCH", "/users/"+id+"/status", "manager", map[string]string{"status": "gone"})
	assert.Equal(t, fiber.StatusBadRequest, code)

	adminID := env.actors["admin"].ID.String()
	code, _ = env.do(t, "PATCH", "/users/"+adminID+"/status", "manager", map[string]string{"status": "suspended"})
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestDeleteUser(t *testing.T) {
	env := setupUserApp(t)
	id := env.actors["landlord"].ID.String()

	code, _ := env.do(t, "DELETE", "/users/"+id, "manager", nil)
	assert.Equal(t, fiber.StatusForbidden, code)
	code, _ = env.do(t, "DELETE", "/users/"+id, "admin", nil)
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = env.do(t, "DELETE", "/users/"+id, "admin", nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestUpdateProfile(t *testing.T) {
	env := setupUserApp(t)
	code, out := env.do(t, "PUT", "/profile", "landlord", map[string]interface{}{"name": "New Name", "role": "admin"})
	require.Equal(t, fiber.StatusOK, code, out)
	u := out["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "New Name", u["name"])
	assert.Equal(t, "landlord", u["role"])

	code, _ = env.do(t, "PUT", "/profile", "landlord", map[string]string{"email": "manager@example.com"})
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestUserWritesDropCachedStats(t *testing.T) {
	env := setupUserApp(t)
	id := env.actors["landlord"].ID.String()
	cached := func() bool { return env.mr.Exists(dashboard.CacheKey) }

	require.NoError(t, env.mr.Set(dashboard.CacheKey, "{}"))
	code, _ := env.do(t, "PATCH", "/users/"+id+"/status", "manager", map[string]string{"status": "active"})
	require.Equal(t, fiber.StatusOK, code)
	assert.False(t, cached())

	require.NoError(t, env.mr.Set(dashboard.CacheKey, "{}"))
	code, _ = env.do(t, "PUT", "/profile", "landlord", map[string]string{"name": "Renamed"})
	require.Equal(t, fiber.StatusOK, code)
	assert.False(t, cached())

	require.NoError(t, env.mr.Set(dashboard.CacheKey, "{}"))
	code, _ = env.do(t, "DELETE", "/users/"+id, "manager", nil)
	require.Equal(t, fiber.StatusForbidden, code)
	assert.True(t, cached())
	code, _ = env.do(t, "DELETE", "/users/"+id, "admin", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.False(t, cached())
}
