package constants

import (
	"testing"

	"tabiconst-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestAllowedRole(t *testing.T) {
	assert.True(t, AllowedRole(ChangeListingStatus, domain.RoleManager))
	assert.False(t, AllowedRole(ChangeListingStatus, domain.RoleLandlord))
	assert.True(t, AllowedRole(DeleteUsers, domain.RoleAdmin))
	assert.False(t, AllowedRole(DeleteUsers, domain.RoleManager))
	assert.False(t, AllowedRole(Permission("unknown"), domain.RoleAdmin))
}
