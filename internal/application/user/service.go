package user

import (
	"context"
	"errors"
	"strings"

	policies "tabiconst-backend/internal/application/policies/users"
	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

// Service holds DB and Redis for user operations. Rdb may be nil, in which
// case no sessions are invalidated.
type Service struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// Register creates an account. Only the user and landlord roles can be
// picked; landlords wait for approval before they can publish.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	if !validation.IsValidName(name) {
		return nil, domain.Invalid("name", "is required and may only contain letters, spaces, hyphens, apostrophes and dots")
	}
	email := normalizeEmail(in.Email)
	if !validation.IsValidEmail(email) {
		return nil, domain.Invalid("email", "Invalid email format")
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, domain.Invalid("password", "must be at least 8 characters with a letter, a number and a special character")
	}
	phone := strings.TrimSpace(in.Phone)
	if phone != "" && !validation.IsValidPhone(phone) {
		return nil, domain.Invalid("phone", "Invalid phone number")
	}

	role := domain.Role(strings.ToLower(strings.TrimSpace(in.Role)))
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleLandlord {
		return nil, domain.Invalid("role", "must be user or landlord")
	}
	status := domain.ApprovalActive
	if role == domain.RoleLandlord {
		status = domain.ApprovalPending
	}

	if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Name:         normalizeName(name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        phone,
		Role:         role,
		Status:       status,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, domain.Storage("create user", err)
	}
	return u, nil
}

// ProfileInput lists the profile fields a user may change. Nil fields are kept.
type ProfileInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
}

// UpdateProfile changes actor's own profile.
func (s *Service) UpdateProfile(ctx context.Context, actor *domain.Actor, in ProfileInput) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	upd := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if !validation.IsValidName(name) {
			return nil, domain.Invalid("name", "contains invalid characters")
		}
		upd["name"] = normalizeName(name)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if !validation.IsValidEmail(email) {
			return nil, domain.Invalid("email", "Invalid email format")
		}
		if err := s.ensureEmailFree(ctx, email, actor.ID); err != nil {
			return nil, err
		}
		upd["email"] = email
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone != "" && !validation.IsValidPhone(phone) {
			return nil, domain.Invalid("phone", "Invalid phone number")
		}
		upd["phone"] = phone
	}
	if in.Password != nil {
		if !validation.IsValidPassword(*in.Password) {
			return nil, domain.Invalid("password", "must be at least 8 characters with a letter, a number and a special character")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		upd["password_hash"] = string(hash)
	}

	if len(upd) > 0 {
		res := s.DB.WithContext(ctx).Model(&domain.User{}).Where("id = ?", actor.ID).Updates(upd)
		if res.Error != nil {
			return nil, domain.Storage("update user", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, domain.ErrNotFound
		}
	}
	return s.ViewUser(ctx, actor.ID)
}

// ViewUser returns a user by id.
func (s *Service) ViewUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Storage("find user", err)
	}
	return &u, nil
}

// ListUsers returns every account, newest first.
func (s *Service) ListUsers(ctx context.Context, actor *domain.Actor) ([]domain.User, error) {
	if err := policies.CanManageUsers(actor); err != nil {
		return nil, err
	}
	users := []domain.User{}
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, domain.Storage("list users", err)
	}
	return users, nil
}

// UpdateUserStatus approves, suspends or rejects an account and signs it out.
func (s *Service) UpdateUserStatus(ctx context.Context, actor *domain.Actor, targetID uuid.UUID, status string) (*domain.User, error) {
	st := domain.ApprovalStatus(strings.TrimSpace(status))
	if !st.IsValid() {
		return nil, domain.Invalid("status", "must be one of pending, active, suspended, rejected")
	}
	if err := policies.CanManageUsers(actor); err != nil {
		return nil, err
	}
	target, err := s.ViewUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := policies.CanChangeUserStatus(actor, target); err != nil {
		return nil, err
	}
	if target.Status == st {
		return target, nil
	}
	if err := s.DB.WithContext(ctx).Model(target).Update("status", st).Error; err != nil {
		return nil, domain.Storage("update user status", err)
	}
	target.Status = st
	DestroyUserSessions(ctx, s.Rdb, target.ID.String())
	log.Info().Str("user_id", target.ID.String()).Str("status", string(st)).
		Str("actor_id", actor.ID.String()).Msg("user status changed")
	return target, nil
}

// DeleteUser removes an account. Its listings stay with no owner and its
// favorites are removed.
func (s *Service) DeleteUser(ctx context.Context, actor *domain.Actor, targetID uuid.UUID) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	target, err := s.ViewUser(ctx, targetID)
	if err != nil {
		return err
	}
	if err := policies.CanDeleteUser(actor, target); err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Listing{}).Where("owner_id = ?", target.ID).UpdateColumn("owner_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", target.ID).Delete(&domain.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(target).Error
	})
	if err != nil {
		return domain.Storage("delete user", err)
	}
	DestroyUserSessions(ctx, s.Rdb, target.ID.String())
	log.Info().Str("user_id", target.ID.String()).Str("actor_id", actor.ID.String()).Msg("user deleted")
	return nil
}

// AdminInput describes the bootstrap admin account.
type AdminInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// EnsureAdmin creates the admin account, or promotes and re-activates the
// existing account with that email. The password is only set on creation.
func (s *Service) EnsureAdmin(ctx context.Context, in AdminInput) (*domain.User, bool, error) {
	email := normalizeEmail(in.Email)
	if !validation.IsValidEmail(email) {
		return nil, false, domain.Invalid("email", "Invalid email format")
	}
	var existing domain.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		upd := map[string]interface{}{"role": domain.RoleAdmin, "status": domain.ApprovalActive}
		if err := s.DB.WithContext(ctx).Model(&existing).Updates(upd).Error; err != nil {
			return nil, false, domain.Storage("promote admin", err)
		}
		existing.Role, existing.Status = domain.RoleAdmin, domain.ApprovalActive
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, domain.Storage("find admin", err)
	}
	if in.Password == "" {
		return nil, false, domain.Invalid("password", "is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, false, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Administrator"
	}
	u := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         domain.RoleAdmin,
		Status:       domain.ApprovalActive,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, false, domain.Storage("create admin", err)
	}
	return u, true, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	var n int64
	q := s.DB.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email)
	if self != uuid.Nil {
		q = q.Where("id <> ?", self)
	}
	if err := q.Count(&n).Error; err != nil {
		return domain.Storage("check email", err)
	}
	if n > 0 {
		return domain.ErrConflict
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeName trims and collapses inner whitespace.
func normalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
