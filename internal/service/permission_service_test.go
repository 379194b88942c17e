package service

import (
	"context"
	"testing"

	"cafebook/internal/repository"
	"cafebook/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionService_Check(t *testing.T) {
	db := testutil.NewDB(t)
	manager := testutil.SeedRole(t, db, "manager", "Quản lý")
	cashier := testutil.SeedRole(t, db, "cashier", "Thu ngân")
	cleaner := testutil.SeedRole(t, db, "cleaner", "Tạp vụ")
	testutil.Grant(t, db, manager, "quan-ly", "employee.create", "statistics.view")
	testutil.Grant(t, db, manager, "ban-hang-ql", "order.create")
	testutil.Grant(t, db, cashier, "ban-hang", "order.create", "invoice.view")

	svc := NewPermissionService(repository.NewPermissionRepository(db))
	ctx := context.Background()

	cases := []struct {
		role uint
		code string
		want bool
	}{
		{manager.ID, "employee.create", true},
		{manager.ID, "order.create", true},
		{manager.ID, "invoice.view", false},
		{cashier.ID, "order.create", true},
		{cashier.ID, "employee.create", false},
		{cleaner.ID, "order.create", false},
		{999, "order.create", false},
	}
	for _, tc := range cases {
		got, err := svc.Check(ctx, tc.role, tc.code)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "role=%d code=%s", tc.role, tc.code)
	}

	codes, err := svc.Codes(ctx, cashier.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"order.create", "invoice.view"}, codes)
}
