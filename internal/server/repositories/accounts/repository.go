// Package accounts declares the account store contract and its PostgreSQL and
// BuntDB implementations.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository persists Account records. Email, username and phone number are
// unique; implementations report a collision as common.ErrorAlreadyExists and
// a missing record as common.ErrorNotFound.
type Repository interface {
	// Create stores a new account and fills in its ID and timestamps.
	Create(ctx context.Context, a *models.Account) (*models.Account, error)

	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// Activate marks the account verified. Activating an active account is a no-op.
	Activate(ctx context.Context, email string) (*models.Account, error)

	// UpdatePassword replaces the password hash and clears any outstanding
	// reset token.
	UpdatePassword(ctx context.Context, email, passwordHash string) error

	// SetResetToken replaces any outstanding reset token digest of the account.
	SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error

	// ResetPasswordByToken atomically sets a new password hash on the account
	// holding tokenHash, provided the token is still valid at now, and clears
	// the token. It returns the account email, or common.ErrorNotFound when no
	// valid token matches.
	ResetPasswordByToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (string, error)
}
