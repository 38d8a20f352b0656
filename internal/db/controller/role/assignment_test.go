package role

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopkeep/shopkeep/internal/db/testdb"
)

func TestAssign(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	a := seedStore(t, db, "a")
	b := seedStore(t, db, "b")
	staff := testdb.User(t, db, "staff")

	r, err := Create(ctx, db, a, Input{Name: "Packer"})
	require.NoError(t, err)

	testCases := []struct {
		name          string
		storeID       string
		userID        string
		roleID        uint
		expectedError error
	}{
		{name: "assign", storeID: a, userID: staff.ID, roleID: r.ID},
		{name: "assign twice is a no-op", storeID: a, userID: staff.ID, roleID: r.ID},
		{name: "role of other store", storeID: b, userID: staff.ID, roleID: r.ID, expectedError: ErrRoleNotFound},
		{name: "unknown user", storeID: a, userID: "nobody", roleID: r.ID, expectedError: ErrUserNotFound},
		{name: "unknown role", storeID: a, userID: staff.ID, roleID: r.ID + 10, expectedError: ErrRoleNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Assign(ctx, db, tc.storeID, tc.userID, tc.roleID)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
		})
	}

	got, err := Assignments(ctx, db, a, staff.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, r.ID, got[0].RoleID)

	got, err = Assignments(ctx, db, b, staff.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAssignManyRollsBack(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	storeID := seedStore(t, db, "main")
	staff := testdb.User(t, db, "staff")

	r, err := Create(ctx, db, storeID, Input{Name: "Packer"})
	require.NoError(t, err)

	err = AssignMany(ctx, db, storeID, staff.ID, []uint{r.ID, r.ID + 10})
	require.ErrorIs(t, err, ErrRoleNotFound)

	got, err := Assignments(ctx, db, storeID, staff.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnassign(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	storeID := seedStore(t, db, "main")
	staff := testdb.User(t, db, "staff")

	r, err := Create(ctx, db, storeID, Input{Name: "Packer"})
	require.NoError(t, err)

	require.NoError(t, Unassign(ctx, db, storeID, staff.ID, r.ID), "revoking an absent grant is a no-op")

	require.NoError(t, Assign(ctx, db, storeID, staff.ID, r.ID))
	require.NoError(t, Unassign(ctx, db, storeID, staff.ID, r.ID))

	got, err := Assignments(ctx, db, storeID, staff.ID)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.ErrorIs(t, Unassign(ctx, db, "other", staff.ID, r.ID), ErrRoleNotFound)
}
