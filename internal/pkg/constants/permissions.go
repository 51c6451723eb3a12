package constants

import "tabiconst-backend/internal/domain"

// Permission names an operation gated purely by role.
type Permission string

const (
	ChangeListingStatus Permission = "change_listing_status"
	ViewAdminListings   Permission = "view_admin_listings"
	ViewListingEvents   Permission = "view_listing_events"
	ViewDashboard       Permission = "view_dashboard"
	ManageUsers         Permission = "manage_users"
	DeleteUsers         Permission = "delete_users"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[Permission][]domain.Role{
	ChangeListingStatus: {domain.RoleAdmin, domain.RoleManager},
	ViewAdminListings:   {domain.RoleAdmin, domain.RoleManager},
	ViewListingEvents:   {domain.RoleAdmin, domain.RoleManager},
	ViewDashboard:       {domain.RoleAdmin, domain.RoleManager},
	ManageUsers:         {domain.RoleAdmin, domain.RoleManager},
	DeleteUsers:         {domain.RoleAdmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
// Unknown permissions allow nobody.
func AllowedRole(permission Permission, role domain.Role) bool {
	for _, r := range PermissionRoles[permission] {
		if r == role {
			return true
		}
	}
	return false
}
