package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a store customer or administrator.
type User struct {
	BaseModel
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `gorm:"uniqueIndex" json:"email"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	PasswordHash  string     `json:"-"`
	EmailVerified bool       `json:"email_verified"`
	IsSuperuser   bool       `json:"-"`
	CartItems     []CartItem `json:"-"`
	Orders        []Order    `json:"orders,omitempty"`
}

// HasUsablePassword reports whether the account can log in with a password.
// Accounts created through OTP registration or Google sign-in have none.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != ""
}

// FullName joins the name parts for display.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// SplitFullName breaks a free-form full name into first and last parts.
func SplitFullName(fullName string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(fullName), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

// OTP purposes. A code issued for one purpose cannot be replayed for another.
const (
	OTPPurposeLogin        = "login"
	OTPPurposeVerification = "verification"
)

// OTPValidity is how long a code stays valid after issuance.
const OTPValidity = 10 * time.Minute

// OTP is a one-time passcode bound to a user and a purpose.
type OTP struct {
	BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User    *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Code    string    `json:"-"`
	Purpose string    `gorm:"index" json:"purpose"`
}

// IsValid reports whether the code is still inside its validity window.
func (o *OTP) IsValid(now time.Time) bool {
	return now.Before(o.CreatedAt.Add(OTPValidity))
}
