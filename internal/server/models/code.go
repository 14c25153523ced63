package models

import "time"

// CodePurpose separates verification codes from password reset codes issued
// to the same email.
type CodePurpose string

const (
	PurposeVerification  CodePurpose = "verification"
	PurposePasswordReset CodePurpose = "password_reset"
)

// OneTimeCode is a short numeric secret bound to an email and a purpose. At
// most one live code exists per (Email, Purpose); it is deleted when used.
type OneTimeCode struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Purpose   CodePurpose `json:"purpose"`
	Code      string      `json:"code"`
	CreatedAt time.Time   `json:"createdAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Expired reports whether the code is no longer usable at now.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
