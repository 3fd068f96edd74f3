package models

import "gorm.io/gorm"

// Roles a user can register with. The role gates which operations the
// policy layer permits.
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
)

// User is an account on the marketplace. Accounts are created at
// registration and never deleted.
type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;size:255;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialised
	Role     string `gorm:"size:50;default:customer" json:"role"`
}

// IsSeller reports whether the user may list products and manage orders
// placed against them.
func (u User) IsSeller() bool { return u.Role == RoleSeller }

// ValidRole reports whether role is one of the registerable roles.
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleSeller
}
