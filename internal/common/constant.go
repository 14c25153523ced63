package common

const (
	// OTPLength is the number of decimal digits in a one-time code.
	OTPLength = 6

	// ResetTokenSize is the number of random bytes in a password reset token
	// before hex encoding.
	ResetTokenSize = 20

	// SessionCookieName carries the session token for browser clients.
	SessionCookieName = "gophauth_session"

	// BearerPrefix precedes the session token in the Authorization header.
	BearerPrefix = "Bearer "
)
