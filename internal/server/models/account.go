// Package models holds the persistent records owned by the credential store.
package models

import "time"

// AccountStatus is the verification state of an Account.
type AccountStatus string

const (
	// StatusPending accounts have registered but not proven email ownership.
	StatusPending AccountStatus = "pending"
	// StatusActive accounts have consumed a verification code. Terminal.
	StatusActive AccountStatus = "active"
)

// Account is a registered identity. Email, UserName and PhoneNumber never
// change after creation; PasswordHash changes only through a reset.
type Account struct {
	ID                  string        `json:"id"`
	Email               string        `json:"email"`
	UserName            string        `json:"userName,omitempty"`
	FullName            string        `json:"fullName,omitempty"`
	PhoneNumber         string        `json:"phoneNumber,omitempty"`
	PasswordHash        string        `json:"passwordHash"`
	Status              AccountStatus `json:"status"`
	ResetTokenHash      string        `json:"resetTokenHash,omitempty"`
	ResetTokenExpiresAt *time.Time    `json:"resetTokenExpiresAt,omitempty"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// IsActive reports whether the account has been verified.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}
