package models

import "strings"

// UserRole represents the role of a user in the system
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

// User is the authenticated identity handed to the storefront by the auth service
type User struct {
	ID        int      `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Role      UserRole `json:"role,omitempty"`
}

// Validate validates identity data received at login
func (u *User) Validate() error {
	if u.ID <= 0 {
		return ErrInvalidInput
	}
	if strings.TrimSpace(u.Username) == "" && strings.TrimSpace(u.Email) == "" {
		return ErrInvalidInput
	}
	return nil
}

// FullName returns the user's full name, falling back to the username
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// IsAdmin returns true if the user is an admin. The auth service sends roles
// upper-cased.
func (u *User) IsAdmin() bool {
	return strings.EqualFold(string(u.Role), string(UserRoleAdmin))
}
