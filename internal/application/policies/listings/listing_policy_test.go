package policies

import (
	"testing"

	"tabiconst-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actor(role domain.Role, status domain.ApprovalStatus) *domain.Actor {
	return &domain.Actor{ID: uuid.New(), Role: role, ApprovalStatus: status}
}

func assertDenied(t *testing.T, err error, reason domain.DenyReason) {
	t.Helper()
	require.Error(t, err)
	got, ok := domain.IsDenied(err)
	require.True(t, ok, "expected DeniedError, got %v", err)
	assert.Equal(t, reason, got)
}

func TestCanCreate_MaterialRestricted(t *testing.T) {
	draft := &domain.Listing{Category: domain.CategoryMaterial}
	assertDenied(t, CanCreate(actor(domain.RoleUser, domain.ApprovalActive), draft), domain.ReasonMaterialRestricted)
	assertDenied(t, CanCreate(actor(domain.RoleLandlord, domain.ApprovalActive), draft), domain.ReasonMaterialRestricted)
	assert.NoError(t, CanCreate(actor(domain.RoleAdmin, domain.ApprovalActive), draft))
	assert.NoError(t, CanCreate(actor(domain.RoleManager, domain.ApprovalActive), draft))
}

func TestCanCreate_LandlordApprovalGate(t *testing.T) {
	draft := &domain.Listing{Category: domain.CategoryHouse}
	for _, st := range []domain.ApprovalStatus{domain.ApprovalPending, domain.ApprovalSuspended, domain.ApprovalRejected} {
		assertDenied(t, CanCreate(actor(domain.RoleLandlord, st), draft), domain.ReasonLandlordNotApproved)
	}
	assert.NoError(t, CanCreate(actor(domain.RoleLandlord, domain.ApprovalActive), draft))
	assert.NoError(t, CanCreate(actor(domain.RoleUser, domain.ApprovalPending), &domain.Listing{Category: domain.CategoryLand}))
}

func TestCanCreate_Anonymous(t *testing.T) {
	err := CanCreate(nil, &domain.Listing{Category: domain.CategoryHouse})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestCanRead_PublicOnlyActive(t *testing.T) {
	for _, st := range []domain.Status{domain.StatusPending, domain.StatusRejected} {
		l := &domain.Listing{Status: st}
		assert.ErrorIs(t, CanRead(nil, l, domain.ScopePublic), domain.ErrNotFound)
		assert.ErrorIs(t, CanRead(actor(domain.RoleAdmin, domain.ApprovalActive), l, domain.ScopePublic), domain.ErrNotFound)
	}
	assert.NoError(t, CanRead(nil, &domain.Listing{Status: domain.StatusActive}, domain.ScopePublic))
}

func TestCanRead_MineRequiresOwnership(t *testing.T) {
	owner := actor(domain.RoleUser, domain.ApprovalActive)
	l := &domain.Listing{OwnerID: &owner.ID, Status: domain.StatusPending}
	assert.NoError(t, CanRead(owner, l, domain.ScopeMine))
	assertDenied(t, CanRead(actor(domain.RoleAdmin, domain.ApprovalActive), l, domain.ScopeMine), domain.ReasonNotOwner)
	assert.ErrorIs(t, CanRead(nil, l, domain.ScopeMine), domain.ErrUnauthenticated)
}

func TestCanRead_AdminScopeRequiresStaff(t *testing.T) {
	l := &domain.Listing{Status: domain.StatusRejected}
	assert.NoError(t, CanRead(actor(domain.RoleManager, domain.ApprovalActive), l, domain.ScopeAdmin))
	assertDenied(t, CanRead(actor(domain.RoleLandlord, domain.ApprovalActive), l, domain.ScopeAdmin), domain.ReasonInsufficientRole)
}

func TestCanView_HiddenListings(t *testing.T) {
	owner := actor(domain.RoleLandlord, domain.ApprovalActive)
	l := &domain.Listing{OwnerID: &owner.ID, Status: domain.StatusPending}
	assert.NoError(t, CanView(owner, l))
	assert.NoError(t, CanView(actor(domain.RoleManager, domain.ApprovalActive), l))
	assert.ErrorIs(t, CanView(nil, l), domain.ErrNotFound)
	assert.ErrorIs(t, CanView(actor(domain.RoleUser, domain.ApprovalActive), l), domain.ErrNotFound)
}

func TestCanUpdateAndDelete_OwnerOrAdmin(t *testing.T) {
	owner := actor(domain.RoleUser, domain.ApprovalActive)
	l := &domain.Listing{OwnerID: &owner.ID}
	ownerless := &domain.Listing{}

	assert.NoError(t, CanUpdate(owner, l))
	assert.NoError(t, CanUpdate(actor(domain.RoleAdmin, domain.ApprovalActive), l))
	assert.NoError(t, CanDelete(actor(domain.RoleAdmin, domain.ApprovalActive), ownerless))
	assertDenied(t, CanUpdate(actor(domain.RoleManager, domain.ApprovalActive), l), domain.ReasonNotOwner)
	assertDenied(t, CanDelete(actor(domain.RoleUser, domain.ApprovalActive), l), domain.ReasonNotOwner)
	assertDenied(t, CanUpdate(owner, ownerless), domain.ReasonNotOwner)
}

func TestCanChangeStatus_StaffOnly(t *testing.T) {
	l := &domain.Listing{Status: domain.StatusPending}
	assert.NoError(t, CanChangeStatus(actor(domain.RoleAdmin, domain.ApprovalActive), l, domain.StatusActive))
	assert.NoError(t, CanChangeStatus(actor(domain.RoleManager, domain.ApprovalActive), l, domain.StatusRejected))
	assertDenied(t, CanChangeStatus(actor(domain.RoleLandlord, domain.ApprovalActive), l, domain.StatusActive), domain.ReasonInsufficientRole)
	assertDenied(t, CanChangeStatus(actor(domain.RoleUser, domain.ApprovalActive), l, domain.StatusActive), domain.ReasonInsufficientRole)
}

func TestCanViewDashboard(t *testing.T) {
	assert.NoError(t, CanViewDashboard(actor(domain.RoleManager, domain.ApprovalActive)))
	assertDenied(t, CanViewDashboard(actor(domain.RoleUser, domain.ApprovalActive)), domain.ReasonInsufficientRole)
	assert.ErrorIs(t, CanViewDashboard(nil), domain.ErrUnauthenticated)
}

func TestCanSetCategory(t *testing.T) {
	assertDenied(t, CanSetCategory(actor(domain.RoleLandlord, domain.ApprovalActive), domain.CategoryMaterial), domain.ReasonMaterialRestricted)
	assert.NoError(t, CanSetCategory(actor(domain.RoleLandlord, domain.ApprovalActive), domain.CategoryLand))
	assert.NoError(t, CanSetCategory(actor(domain.RoleManager, domain.ApprovalActive), domain.CategoryMaterial))
	assert.ErrorIs(t, CanSetCategory(nil, domain.CategoryHouse), domain.ErrUnauthenticated)
}
