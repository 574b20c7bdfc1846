package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role tags carried by a user.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// Roles is the set of role tags of a user, stored as a comma separated column.
type Roles []string

// Has reports whether the set contains role.
func (r Roles) Has(role string) bool {
	for _, existing := range r {
		if existing == role {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer.
func (r Roles) Value() (driver.Value, error) {
	return strings.Join(normalizeRoles(r), ","), nil
}

// Scan implements sql.Scanner.
func (r *Roles) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		raw = ""
	default:
		return fmt.Errorf("cannot scan %T into Roles", src)
	}

	var roles Roles
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			roles = append(roles, part)
		}
	}
	*r = normalizeRoles(roles)
	return nil
}

// normalizeRoles puts ROLE_USER first and drops duplicates and blanks.
func normalizeRoles(roles []string) Roles {
	out := Roles{RoleUser}
	for _, role := range roles {
		role = strings.TrimSpace(role)
		if role == "" || out.Has(role) {
			continue
		}
		out = append(out, role)
	}
	return out
}

// User represents an account of the user administration API.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	FirstName    string    `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName     string    `json:"lastName" gorm:"type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Roles        Roles     `json:"roles" gorm:"type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"column:password;type:varchar(255);not null"`
	APIKey       string    `json:"-" gorm:"column:api_key;uniqueIndex;type:varchar(64);not null"`
	Active       bool      `json:"active" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUser registers a new active user. ROLE_USER is always granted, extra
// roles are added on top of it.
func NewUser(firstName, lastName, email, passwordHash, apiKey string, roles ...string) *User {
	return &User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Roles:        normalizeRoles(roles),
		PasswordHash: passwordHash,
		APIKey:       apiKey,
		Active:       true,
	}
}

// BeforeSave keeps the role invariant for every row GORM writes.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Roles = normalizeRoles(u.Roles)
	return nil
}

// HasRole reports whether the user holds role. ROLE_USER is implicit.
func (u *User) HasRole(role string) bool {
	return role == RoleUser || u.Roles.Has(role)
}

// IsAdmin reports whether the user holds ROLE_ADMIN.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// Rename replaces the first and last name.
func (u *User) Rename(firstName, lastName string) {
	u.FirstName = firstName
	u.LastName = lastName
}

// ChangeEmail replaces the login e-mail.
func (u *User) ChangeEmail(email string) {
	u.Email = email
}

// SetPasswordHash stores a new password hash.
func (u *User) SetPasswordHash(hash string) {
	u.PasswordHash = hash
}

// SetAPIKey stores a new API key.
func (u *User) SetAPIKey(apiKey string) {
	u.APIKey = apiKey
}

// Block deactivates the account.
func (u *User) Block() {
	u.Active = false
}

// Unblock reactivates the account.
func (u *User) Unblock() {
	u.Active = true
}

// CanAuthenticate reports whether the account may resolve credentials.
func (u *User) CanAuthenticate() bool {
	return u.Active
}
