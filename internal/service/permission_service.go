package service

import (
	"context"
	"fmt"

	"cafebook/internal/repository"
)

// PermissionService answers "may this role perform this action". Every gated
// route goes through Check; there is no role-based shortcut.
type PermissionService interface {
	Check(ctx context.Context, roleID uint, code string) (bool, error)
	Codes(ctx context.Context, roleID uint) ([]string, error)
}

type permissionService struct {
	repo repository.PermissionRepository
}

func NewPermissionService(repo repository.PermissionRepository) PermissionService {
	return &permissionService{repo: repo}
}

func (s *permissionService) Check(ctx context.Context, roleID uint, code string) (bool, error) {
	groupIDs, err := s.repo.GroupIDsForRole(ctx, roleID)
	if err != nil {
		return false, fmt.Errorf("permission groups for role %d: %w", roleID, err)
	}
	ok, err := s.repo.ExistsInGroups(ctx, code, groupIDs)
	if err != nil {
		return false, fmt.Errorf("permission %q: %w", code, err)
	}
	return ok, nil
}

func (s *permissionService) Codes(ctx context.Context, roleID uint) ([]string, error) {
	return s.repo.CodesForRole(ctx, roleID)
}
