package model

import "time"

// SystemRoleAdministrator is the built-in role that always holds every permission.
const SystemRoleAdministrator = 1

// Role represents an RBAC role.
type Role struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleWithPermissions extends Role to include its associated permissions.
type RoleWithPermissions struct {
	*Role
	Permissions []string `json:"permissions"`
}

// RoleRequest is the payload for role create/update.
type RoleRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=64"`
	Permissions []string `json:"permissions"`
}
