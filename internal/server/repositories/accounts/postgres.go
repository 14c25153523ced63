package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

const accountColumns = `id, email, COALESCE(username, ''), full_name, COALESCE(phone_number, ''),
		password_hash, status, COALESCE(reset_token_hash, ''), reset_token_expires_at,
		created_at, updated_at`

// PostgresRepository stores accounts in the accounts table through dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var status string
	var resetExpires sql.NullTime

	err := row.Scan(&a.ID, &a.Email, &a.UserName, &a.FullName, &a.PhoneNumber,
		&a.PasswordHash, &status, &a.ResetTokenHash, &resetExpires,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.Status = models.AccountStatus(status)
	if resetExpires.Valid {
		t := resetExpires.Time
		a.ResetTokenExpiresAt = &t
	}
	return a, nil
}

// Create inserts a pending account. Empty username or phone number are stored
// as NULL so they do not collide with each other.
func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (email, username, full_name, phone_number, password_hash, status)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.Email, a.UserName, a.FullName, a.PhoneNumber, a.PasswordHash, string(a.Status),
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Activate(ctx context.Context, email string) (*models.Account, error) {
	query := `
		UPDATE accounts SET status = 'active', updated_at = now()
		WHERE email = $1
		RETURNING ` + accountColumns
	return scanAccount(r.db.QueryRowContext(ctx, query, email))
}

// UpdatePassword also clears any outstanding reset link token.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE email = $1
	`
	return r.execOne(ctx, query, email, passwordHash)
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE accounts SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = now()
		WHERE email = $1
	`
	return r.execOne(ctx, query, email, tokenHash, expiresAt)
}

// ResetPasswordByToken is a single conditional UPDATE, so of two concurrent
// resets with the same token only one matches a row.
func (r *PostgresRepository) ResetPasswordByToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (string, error) {
	query := `
		UPDATE accounts
		SET password_hash = $2, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE reset_token_hash = $1 AND reset_token_expires_at > $3
		RETURNING email
	`
	var email string
	if err := r.db.QueryRowContext(ctx, query, tokenHash, passwordHash, now).Scan(&email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return email, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
