package service

import (
	"context"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/repository"
)

// RoleService handles business logic for staff roles.
type RoleService struct {
	roleRepo *repository.RoleRepository
}

// NewRoleService creates a new RoleService.
func NewRoleService(roleRepo *repository.RoleRepository) *RoleService {
	return &RoleService{roleRepo: roleRepo}
}

// ListRoles retrieves all roles with their permissions.
func (s *RoleService) ListRoles(ctx context.Context) ([]model.RoleWithPermissions, error) {
	return s.roleRepo.ListRolesWithPermissions(ctx)
}

// GetRoleByID retrieves a specific role and its permissions.
func (s *RoleService) GetRoleByID(ctx context.Context, id int) (*model.RoleWithPermissions, error) {
	role, err := s.roleRepo.GetRoleByID(ctx, id)
	return role, readErr(err)
}

// CreateRole creates a new role with its permissions in one transaction.
func (s *RoleService) CreateRole(ctx context.Context, name string, permissions []string) (*model.RoleWithPermissions, error) {
	id, err := s.roleRepo.CreateRole(ctx, name, knownPermissions(permissions))
	if err != nil {
		return nil, writeErr(err)
	}
	return s.GetRoleByID(ctx, id)
}

// UpdateRole renames a role and replaces its permissions.
func (s *RoleService) UpdateRole(ctx context.Context, id int, name string, permissions []string) (*model.RoleWithPermissions, error) {
	if id == model.SystemRoleAdministrator {
		return nil, ErrSystemRole
	}
	if err := s.roleRepo.UpdateRole(ctx, id, name, knownPermissions(permissions)); err != nil {
		return nil, writeErr(err)
	}
	return s.GetRoleByID(ctx, id)
}

// DeleteRole deletes a role. Roles still assigned to staff are kept.
func (s *RoleService) DeleteRole(ctx context.Context, id int) error {
	if id == model.SystemRoleAdministrator {
		return ErrSystemRole
	}
	return deleteErr(s.roleRepo.DeleteRole(ctx, id))
}

// GetAllPermissions retrieves all available system permission codes.
func (s *RoleService) GetAllPermissions() []string {
	perms := make([]string, len(model.AllPermissions))
	for i, p := range model.AllPermissions {
		perms[i] = string(p)
	}
	return perms
}

// SyncPermissions makes sure every permission code exists and that the
// administrator role holds all of them.
func (s *RoleService) SyncPermissions(ctx context.Context) (int, error) {
	return s.roleRepo.EnsurePermissions(ctx, s.GetAllPermissions(), model.SystemRoleAdministrator)
}

// knownPermissions drops codes that are not defined and duplicates.
func knownPermissions(codes []string) []string {
	valid := make(map[string]bool, len(model.AllPermissions))
	for _, p := range model.AllPermissions {
		valid[string(p)] = true
	}

	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		if valid[c] && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
