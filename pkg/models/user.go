package models

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies what a user is allowed to see and do.
type Role string

const (
	// RoleUser browses and joins events.
	RoleUser Role = "User"

	// RoleHost creates and manages events.
	RoleHost Role = "Host"

	// RoleAdmin moderates users, events and reviews.
	RoleAdmin Role = "Admin"
)

// ValidRoles returns all valid role values.
func ValidRoles() []Role {
	return []Role{RoleUser, RoleHost, RoleAdmin}
}

// IsValid checks if the role is a known value.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleHost, RoleAdmin:
		return true
	}
	return false
}

// DashboardPath returns the dashboard route for the role.
func (r Role) DashboardPath() string {
	return "/dashboard/" + strings.ToLower(string(r))
}

// ParseRole accepts a role name in any letter case.
func ParseRole(s string) (Role, error) {
	for _, r := range ValidRoles() {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User is a platform account.
type User struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	Avatar     string    `json:"avatar,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	Location   string    `json:"location,omitempty"`
	Interests  []string  `json:"interests,omitempty"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

// DisplayName returns the name, falling back to the email address.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// AuthResult is returned by login, register and social login.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}

// SocialLoginRequest is the payload for POST /auth/social-login.
type SocialLoginRequest struct {
	Provider string `json:"provider"`
	Token    string `json:"token"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// ProfileUpdate is the payload for PUT /users/profile.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	Name      *string  `json:"name,omitempty"`
	Bio       *string  `json:"bio,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Avatar    *string  `json:"avatar,omitempty"`
	Interests []string `json:"interests,omitempty"`
}
