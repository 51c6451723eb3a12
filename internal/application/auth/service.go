package auth

import (
	"context"
	"errors"
	"strings"

	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/pkg/jwt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionUserShape is the object stored in the session under "user" and
// returned by /auth/me.
type SessionUserShape struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// ShapeOf builds the session snapshot of u.
func ShapeOf(u *domain.User) *SessionUserShape {
	return &SessionUserShape{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
		Status: string(u.Status),
	}
}

// UserFinder abstracts user lookup (GORM in production, doubles in tests).
type UserFinder interface {
	FindByEmailAndPassword(ctx context.Context, email, password string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// GormUserFinder implements UserFinder using GORM and bcrypt.
type GormUserFinder struct{ DB *gorm.DB }

func (g *GormUserFinder) FindByEmailAndPassword(ctx context.Context, email, password string) (*domain.User, error) {
	return LoginUser(ctx, g.DB, LoginInput{Email: email, Password: password})
}

func (g *GormUserFinder) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := g.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Storage("find user", err)
	}
	return &u, nil
}

// LoginUser finds the user by email and verifies the password. Unknown emails
// and wrong passwords report the same error.
func LoginUser(ctx context.Context, db *gorm.DB, input LoginInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var u domain.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, domain.Storage("find user", err)
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if u.Status == domain.ApprovalSuspended || u.Status == domain.ApprovalRejected {
		return nil, ErrAccountDisabled
	}
	return &u, nil
}

// VerifyUser validates the session user snapshot and returns it.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, domain.ErrUnauthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	id, _ := m["id"].(string)
	if id == "" {
		return nil, domain.ErrUnauthenticated
	}
	return &SessionUserShape{
		ID:     id,
		Name:   str(m["name"]),
		Email:  str(m["email"]),
		Role:   str(m["role"]),
		Status: str(m["status"]),
	}, nil
}

// Resolver turns session snapshots and bearer tokens into Actors. Both paths
// reload the user so role and status changes apply at once.
type Resolver struct {
	Users     UserFinder
	JWTSecret string
}

// FromSession resolves the actor behind a session user snapshot.
func (r *Resolver) FromSession(ctx context.Context, sessionUser interface{}) (*domain.Actor, error) {
	shape, err := VerifyUser(sessionUser)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(shape.ID)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	return r.load(ctx, id)
}

// FromBearer resolves the actor behind a signed access token.
func (r *Resolver) FromBearer(ctx context.Context, token string) (*domain.Actor, error) {
	claims, err := jwt.ValidateAccessToken(token, r.JWTSecret)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	return r.load(ctx, id)
}

func (r *Resolver) load(ctx context.Context, id uuid.UUID) (*domain.Actor, error) {
	u, err := r.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	if u.Status == domain.ApprovalSuspended || u.Status == domain.ApprovalRejected {
		return nil, domain.ErrUnauthenticated
	}
	return u.Actor(), nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
