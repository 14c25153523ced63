// Package codes declares the one-time code store contract and its PostgreSQL
// and BuntDB implementations.
package codes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository persists OneTimeCode records.
type Repository interface {
	// Replace stores c as the only live code for (c.Email, c.Purpose),
	// deleting every earlier code for that pair.
	Replace(ctx context.Context, c *models.OneTimeCode) error

	// Consume atomically deletes the code matching (email, purpose, code)
	// that is still valid at now. When no such code exists it returns
	// common.ErrorNotFound and changes nothing. Of several concurrent
	// callers with the same code, exactly one succeeds.
	Consume(ctx context.Context, email string, purpose models.CodePurpose, code string, now time.Time) error

	// Invalidate deletes every code for (email, purpose). Having none is not
	// an error.
	Invalidate(ctx context.Context, email string, purpose models.CodePurpose) error

	// DeleteExpired removes codes that expired before now and reports how
	// many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
