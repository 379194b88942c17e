package service

import (
	"context"
	"errors"
	"testing"

	"cafebook/internal/apierror"
	"cafebook/internal/dto"
	"cafebook/internal/repository"
	"cafebook/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeService_RegisterAndUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	barista := testutil.SeedRole(t, db, "barista", "Pha chế")
	cashier := testutil.SeedRole(t, db, "cashier", "Thu ngân")
	svc := NewEmployeeService(repository.NewEmployeeRepository(db))
	ctx := context.Background()

	req := dto.RegisterEmployeeRequest{
		Phone:      "0904444444",
		Name:       "Phạm Thị D",
		NationalID: "079123456789",
		RoleID:     barista.ID,
		Password:   "batdau123",
	}
	emp, err := svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "barista", emp.Role)
	assert.True(t, emp.Active)

	_, err = svc.Register(ctx, req)
	var ve *apierror.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, apierror.DuplicateName, ve.Reason)

	active := false
	updated, err := svc.Update(ctx, emp.ID, dto.UpdateEmployeeRequest{RoleID: &cashier.ID, Active: &active})
	require.NoError(t, err)
	assert.Equal(t, "cashier", updated.Role)
	assert.False(t, updated.Active)

	got, err := svc.Get(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, cashier.ID, got.RoleID)

	list, err := svc.List(ctx, dto.EmployeeFilter{Search: "Phạm", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 2)
}

func TestEmployeeService_NotFound(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewEmployeeService(repository.NewEmployeeRepository(db))
	ctx := context.Background()

	_, err := svc.Get(ctx, 42)
	assert.True(t, apierror.IsNotFound(err, apierror.EntityEmployee))

	_, err = svc.Register(ctx, dto.RegisterEmployeeRequest{Phone: "0905555555", Name: "X Y", NationalID: "123456789", RoleID: 9, Password: "abcdef"})
	assert.True(t, apierror.IsNotFound(err, apierror.EntityRole))
}
