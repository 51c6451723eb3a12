package auth

import (
	"context"
	"testing"
	"time"

	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/pkg/jwt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "auth-test-secret"

func setupAuthTest(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, role domain.Role, status domain.ApprovalStatus) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret12!"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{Name: "Test", Email: email, PasswordHash: string(hash), Role: role, Status: status}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestVerifyUser_Nil(t *testing.T) {
	u, err := VerifyUser(nil)
	assert.Nil(t, u)
	assert.Equal(t, domain.ErrUnauthenticated, err)
}

func TestVerifyUser_NoID(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{"name": "Test", "email": "a@b.com"})
	assert.Nil(t, u)
	assert.Equal(t, domain.ErrUnauthenticated, err)
}

func TestVerifyUser_Valid(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"id":     "550e8400-e29b-41d4-a716-446655440000",
		"name":   "Test User",
		"email":  "test@example.com",
		"role":   "landlord",
		"status": "pending",
	})
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", u.ID)
	assert.Equal(t, "Test User", u.Name)
	assert.Equal(t, "landlord", u.Role)
	assert.Equal(t, "pending", u.Status)
}

func TestLoginUser(t *testing.T) {
	db := setupAuthTest(t)
	ctx := context.Background()
	createUser(t, db, "sara@example.com", domain.RoleUser, domain.ApprovalActive)
	createUser(t, db, "gone@example.com", domain.RoleLandlord, domain.ApprovalSuspended)

	u, err := LoginUser(ctx, db, LoginInput{Email: " Sara@Example.com ", Password: "secret12!"})
	require.NoError(t, err)
	assert.Equal(t, "sara@example.com", u.Email)

	_, err = LoginUser(ctx, db, LoginInput{Email: "sara@example.com", Password: "wrong"})
	assert.Equal(t, ErrInvalidCredentials, err)

	_, err = LoginUser(ctx, db, LoginInput{Email: "nobody@example.com", Password: "secret12!"})
	assert.Equal(t, ErrInvalidCredentials, err)

	_, err = LoginUser(ctx, db, LoginInput{Email: "", Password: ""})
	assert.Equal(t, ErrEmailPasswordRequired, err)

	_, err = LoginUser(ctx, db, LoginInput{Email: "gone@example.com", Password: "secret12!"})
	assert.Equal(t, ErrAccountDisabled, err)
}

func TestResolver_FromSessionReloadsUser(t *testing.T) {
	db := setupAuthTest(t)
	ctx := context.Background()
	u := createUser(t, db, "lord@example.com", domain.RoleLandlord, domain.ApprovalPending)
	r := &Resolver{Users: &GormUserFinder{DB: db}, JWTSecret: testSecret}

	snapshot := map[string]interface{}{"id": u.ID.String(), "role": "landlord", "status": "pending"}
	actor, err := r.FromSession(ctx, snapshot)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalPending, actor.ApprovalStatus)

	require.NoError(t, db.Model(u).Update("status", domain.ApprovalActive).Error)
	actor, err = r.FromSession(ctx, snapshot)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalActive, actor.ApprovalStatus)
	assert.Equal(t, domain.RoleLandlord, actor.Role)

	_, err = r.FromSession(ctx, map[string]interface{}{"id": uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = r.FromSession(ctx, map[string]interface{}{"id": "not-a-uuid"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestResolver_FromBearer(t *testing.T) {
	db := setupAuthTest(t)
	ctx := context.Background()
	u := createUser(t, db, "mgr@example.com", domain.RoleManager, domain.ApprovalActive)
	r := &Resolver{Users: &GormUserFinder{DB: db}, JWTSecret: testSecret}

	tok, err := jwt.GenerateAccessToken(u.ID.String(), string(u.Role), testSecret, time.Hour)
	require.NoError(t, err)
	actor, err := r.FromBearer(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, actor.ID)
	assert.Equal(t, domain.RoleManager, actor.Role)

	_, err = r.FromBearer(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	require.NoError(t, db.Model(u).Update("status", domain.ApprovalSuspended).Error)
	_, err = r.FromBearer(ctx, tok)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
