package policies

import (
	"errors"

	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/pkg/constants"
)

var ErrAdminAccountProtected = errors.New("Admin accounts cannot be modified or removed")

// CanManageUsers allows admins and managers to list users and change their status.
func CanManageUsers(actor *domain.Actor) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !constants.AllowedRole(constants.ManageUsers, actor.Role) {
		return domain.Deny(domain.ReasonInsufficientRole)
	}
	return nil
}

// CanChangeUserStatus is CanManageUsers plus protection of admin accounts.
func CanChangeUserStatus(actor *domain.Actor, target *domain.User) error {
	if err := CanManageUsers(actor); err != nil {
		return err
	}
	if target.Role == domain.RoleAdmin {
		return ErrAdminAccountProtected
	}
	return nil
}

// CanDeleteUser is reserved to admins and never applies to an admin account.
func CanDeleteUser(actor *domain.Actor, target *domain.User) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !constants.AllowedRole(constants.DeleteUsers, actor.Role) {
		return domain.Deny(domain.ReasonInsufficientRole)
	}
	if target.Role == domain.RoleAdmin {
		return ErrAdminAccountProtected
	}
	return nil
}
