package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Username        string     `json:"username" db:"username"`
	Email           string     `json:"email" db:"email"`
	PasswordHash    string     `json:"-" db:"password_hash"` // Never serialize in JSON
	FirstName       string     `json:"first_name" db:"first_name"`
	LastName        string     `json:"last_name" db:"last_name"`
	BusinessName    string     `json:"business_name" db:"business_name"`
	BusinessAddress string     `json:"business_address" db:"business_address"`
	BusinessPhone   string     `json:"business_phone" db:"business_phone"`
	TaxID           string     `json:"tax_id" db:"tax_id"`
	Language        string     `json:"language" db:"language"`
	LogoKey         *string    `json:"logo_key,omitempty" db:"logo_key"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// SenderName is the name shown as the author of outgoing invoices:
// business name, then full name, then username.
func (u *User) SenderName() string {
	if name := strings.TrimSpace(u.BusinessName); name != "" {
		return name
	}
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}
