package repository

import (
	"context"

	"gorm.io/gorm"
)

type PermissionRepository interface {
	GroupIDsForRole(ctx context.Context, roleID uint) ([]uint, error)
	ExistsInGroups(ctx context.Context, code string, groupIDs []uint) (bool, error)
	CodesForRole(ctx context.Context, roleID uint) ([]string, error)
}

type permissionRepo struct{ db *gorm.DB }

func NewPermissionRepository(db *gorm.DB) PermissionRepository { return &permissionRepo{db: db} }

func (r *permissionRepo) GroupIDsForRole(ctx context.Context, roleID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("role_permission_groups").
		Where("role_id = ?", roleID).
		Pluck("permission_group_id", &ids).Error
	return ids, err
}

func (r *permissionRepo) ExistsInGroups(ctx context.Context, code string, groupIDs []uint) (bool, error) {
	if len(groupIDs) == 0 {
		return false, nil
	}
	var n int64
	err := r.db.WithContext(ctx).
		Table("permission_group_permissions AS pgp").
		Joins("JOIN permissions p ON p.id = pgp.permission_id").
		Where("p.code = ? AND pgp.permission_group_id IN ?", code, groupIDs).
		Count(&n).Error
	return n > 0, err
}

// CodesForRole lists every permission code reachable from roleID.
func (r *permissionRepo) CodesForRole(ctx context.Context, roleID uint) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Table("permissions AS p").
		Joins("JOIN permission_group_permissions pgp ON pgp.permission_id = p.id").
		Joins("JOIN role_permission_groups rpg ON rpg.permission_group_id = pgp.permission_group_id").
		Where("rpg.role_id = ?", roleID).
		Distinct().
		Order("p.code").
		Pluck("p.code", &codes).Error
	return codes, err
}
