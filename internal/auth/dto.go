package auth

import (
	"github.com/givebridge/givebridge-backend/internal/users"
	"github.com/givebridge/givebridge-backend/pkg/enums"
)

// RegisterInput carries a signup request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     enums.UserRole
}

// LoginInput carries a credentials check. Role disambiguates accounts that
// share an email across roles.
type LoginInput struct {
	Email    string
	Password string
	Role     enums.UserRole
}

// AuthResult is returned on successful login.
type AuthResult struct {
	Token string        `json:"token"`
	User  users.UserDTO `json:"user"`
}
