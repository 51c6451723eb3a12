// Package policies holds the listing authorization rules. Every function is
// pure: it returns nil to allow and a *domain.DeniedError to refuse.
package policies

import (
	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/pkg/constants"
)

// CanCreate decides whether actor may publish draft.
func CanCreate(actor *domain.Actor, draft *domain.Listing) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if draft.Category == domain.CategoryMaterial && !actor.Role.IsStaff() {
		return domain.Deny(domain.ReasonMaterialRestricted)
	}
	if actor.Role == domain.RoleLandlord && actor.ApprovalStatus != domain.ApprovalActive {
		return domain.Deny(domain.ReasonLandlordNotApproved)
	}
	return nil
}

// CanListScope decides whether actor may query the catalog in scope.
// The public scope needs no actor.
func CanListScope(actor *domain.Actor, scope domain.Scope) error {
	switch scope {
	case domain.ScopePublic:
		return nil
	case domain.ScopeMine:
		if actor == nil {
			return domain.ErrUnauthenticated
		}
		return nil
	case domain.ScopeAdmin:
		if actor == nil {
			return domain.ErrUnauthenticated
		}
		if !constants.AllowedRole(constants.ViewAdminListings, actor.Role) {
			return domain.Deny(domain.ReasonInsufficientRole)
		}
		return nil
	}
	return domain.Invalid("scope", "unknown scope")
}

// CanRead decides whether listing is visible to actor (nil for anonymous) in scope.
func CanRead(actor *domain.Actor, listing *domain.Listing, scope domain.Scope) error {
	switch scope {
	case domain.ScopePublic:
		if listing.Status != domain.StatusActive {
			return domain.ErrNotFound
		}
		return nil
	case domain.ScopeMine:
		if actor == nil {
			return domain.ErrUnauthenticated
		}
		if !actor.IsOwner(listing.OwnerID) {
			return domain.Deny(domain.ReasonNotOwner)
		}
		return nil
	case domain.ScopeAdmin:
		return CanListScope(actor, domain.ScopeAdmin)
	}
	return domain.Invalid("scope", "unknown scope")
}

// CanView decides a single-listing read: active listings are public, the rest
// are visible to their owner and to staff only. Hidden listings report NotFound.
func CanView(actor *domain.Actor, listing *domain.Listing) error {
	if CanRead(actor, listing, domain.ScopePublic) == nil {
		return nil
	}
	if actor != nil && (actor.IsOwner(listing.OwnerID) || actor.Role.IsStaff()) {
		return nil
	}
	return domain.ErrNotFound
}

// CanUpdate allows the owner and admins.
func CanUpdate(actor *domain.Actor, listing *domain.Listing) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if actor.IsOwner(listing.OwnerID) || actor.Role == domain.RoleAdmin {
		return nil
	}
	return domain.Deny(domain.ReasonNotOwner)
}

// CanSetCategory guards edits that move a listing into category. Materials stay
// reserved to staff after creation too.
func CanSetCategory(actor *domain.Actor, category domain.Category) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if category == domain.CategoryMaterial && !actor.Role.IsStaff() {
		return domain.Deny(domain.ReasonMaterialRestricted)
	}
	return nil
}

// CanDelete follows the same rule as CanUpdate.
func CanDelete(actor *domain.Actor, listing *domain.Listing) error {
	return CanUpdate(actor, listing)
}

// CanChangeStatus allows moderation by admins and managers, for any target state.
func CanChangeStatus(actor *domain.Actor, listing *domain.Listing, newStatus domain.Status) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !constants.AllowedRole(constants.ChangeListingStatus, actor.Role) {
		return domain.Deny(domain.ReasonInsufficientRole)
	}
	return nil
}

// CanViewEvents allows staff to read a listing's audit trail.
func CanViewEvents(actor *domain.Actor) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !constants.AllowedRole(constants.ViewListingEvents, actor.Role) {
		return domain.Deny(domain.ReasonInsufficientRole)
	}
	return nil
}

// CanViewDashboard allows staff to read aggregate statistics.
func CanViewDashboard(actor *domain.Actor) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !constants.AllowedRole(constants.ViewDashboard, actor.Role) {
		return domain.Deny(domain.ReasonInsufficientRole)
	}
	return nil
}
