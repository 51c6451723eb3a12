package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialStatus_ByRole(t *testing.T) {
	assert.Equal(t, StatusActive, InitialStatus(RoleAdmin))
	assert.Equal(t, StatusActive, InitialStatus(RoleManager))
	assert.Equal(t, StatusPending, InitialStatus(RoleLandlord))
	assert.Equal(t, StatusPending, InitialStatus(RoleUser))
}

func TestTransition_AnyStateToAnyState(t *testing.T) {
	for _, from := range listingStatuses {
		for _, to := range listingStatuses {
			l := &Listing{Title: "T", Price: 10, Status: from}
			require.NoError(t, l.Transition(to), "%s -> %s", from, to)
			assert.Equal(t, to, l.Status)
			assert.Equal(t, "T", l.Title)
			assert.Equal(t, 10.0, l.Price)
		}
	}
}

func TestTransition_UnknownTarget(t *testing.T) {
	l := &Listing{Status: StatusPending}
	err := l.Transition(Status("archived"))
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, StatusPending, l.Status)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("rejected")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, st)

	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestFeatures_ScanAndValue(t *testing.T) {
	var f Features
	require.NoError(t, f.Scan([]byte(`["Wifi","Parking"]`)))
	assert.Equal(t, Features{"Wifi", "Parking"}, f)

	require.NoError(t, f.Scan(nil))
	assert.Equal(t, Features{}, f)

	v, err := Features(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	b, err := Features(nil).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestStorage_PassesDomainErrorsThrough(t *testing.T) {
	assert.Nil(t, Storage("op", nil))
	assert.Equal(t, ErrNotFound, Storage("op", ErrNotFound))

	err := Storage("find listing", assert.AnError)
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "find listing", serr.Op)
	assert.ErrorIs(t, err, assert.AnError)
}
