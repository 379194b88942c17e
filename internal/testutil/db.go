// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"cafebook/internal/infra"
	"cafebook/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database with the full schema.
// A single connection serializes transactions the way a row lock would.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:cafebook_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.Migrate(db))
	return db
}

// SeedRole inserts a role with the given code.
func SeedRole(t *testing.T, db *gorm.DB, code, name string) *model.Role {
	t.Helper()
	r := &model.Role{Code: code, Name: name}
	require.NoError(t, db.Create(r).Error)
	return r
}

// SeedEmployee inserts an employee plus credential. password may be empty.
func SeedEmployee(t *testing.T, db *gorm.DB, roleID uint, phone, name, password string) *model.Employee {
	t.Helper()
	e := &model.Employee{
		Phone:      phone,
		Name:       name,
		NationalID: "0790" + phone,
		RoleID:     roleID,
		Active:     true,
	}
	require.NoError(t, db.Create(e).Error)
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		require.NoError(t, db.Create(&model.Credential{Phone: phone, PasswordHash: string(hash)}).Error)
	}
	return e
}

// SeedProduct inserts an active product.
func SeedProduct(t *testing.T, db *gorm.DB, name, category string, price int64) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Category: category, Price: decimal.NewFromInt(price), Active: true}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Grant links role to a fresh permission group holding the given codes.
func Grant(t *testing.T, db *gorm.DB, role *model.Role, group string, codes ...string) {
	t.Helper()
	g := &model.PermissionGroup{Name: group}
	for _, code := range codes {
		var p model.Permission
		require.NoError(t, db.Where(model.Permission{Code: code}).
			Attrs(model.Permission{Module: "test", Action: code}).
			FirstOrCreate(&p).Error)
		g.Permissions = append(g.Permissions, p)
	}
	require.NoError(t, db.Create(g).Error)
	require.NoError(t, db.Model(role).Association("PermissionGroups").Append(g))
}
