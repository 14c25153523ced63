package client

import (
	"context"
	"time"
)

// Account is the account summary returned by the server.
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	UserName    string    `json:"userName,omitempty"`
	FullName    string    `json:"fullName,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SignupRequest is the registration form.
type SignupRequest struct {
	Email        string `json:"email"`
	UserName     string `json:"userName,omitempty"`
	FullName     string `json:"fullName"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	Password     string `json:"password"`
	AgreeToTerms bool   `json:"agreeToTerms"`
}

// Reset modes accepted by ForgotPassword.
const (
	ResetModeOTP  = "otp"
	ResetModeLink = "link"
)

type Client interface {
	Signup(ctx context.Context, req SignupRequest) (*Account, error)
	SendOTP(ctx context.Context, email string) error
	ResendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) (*Account, error)
	Login(ctx context.Context, email string, password []byte) (*Account, error)
	ForgotPassword(ctx context.Context, email, mode string) error
	ResetPassword(ctx context.Context, email, otp string, newPassword []byte) error
	ResetPasswordWithToken(ctx context.Context, token string, newPassword []byte) error
	Me(ctx context.Context) (*Account, error)
	Logout()
	Ping(ctx context.Context) error
}
