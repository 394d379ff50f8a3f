// Package identity describes users, roles and access levels.
package identity

import (
	"github.com/erp/client/internal/domain/shared"
)

var (
	// Roles is the CRUD endpoint set for roles
	Roles = shared.NewEndpoints("/erp/users/roles")
	// Users is the CRUD endpoint set for users
	Users = shared.NewEndpoints("/erp/users/users")
	// Levels is the CRUD endpoint set for access levels
	Levels = shared.NewEndpoints("/erp/users/levels")
)

// Role groups permissions
type Role struct {
	ID          shared.ID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
}

type RoleInput struct {
	Name        string   `json:"name" validate:"required,max=64"`
	Description string   `json:"description,omitempty" validate:"max=255"`
	Permissions []string `json:"permissions,omitempty"`
}

// User is an ERP account holder
type User struct {
	ID       shared.ID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	RoleID   shared.ID `json:"role_id"`
	LevelID  shared.ID `json:"level_id,omitempty"`
	IsActive bool      `json:"is_active"`
}

type UserInput struct {
	Username string    `json:"username" validate:"required,min=3,max=64"`
	Email    string    `json:"email" validate:"required,email"`
	FullName string    `json:"full_name" validate:"max=128"`
	RoleID   shared.ID `json:"role_id" validate:"required"`
	LevelID  shared.ID `json:"level_id,omitempty"`
}

// Level is an approval or access tier
type Level struct {
	ID   shared.ID `json:"id"`
	Name string    `json:"name"`
	Rank int       `json:"rank"`
}

type LevelInput struct {
	Name string `json:"name" validate:"required,max=64"`
	Rank int    `json:"rank" validate:"gte=0"`
}
