package codes

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

// PostgresRepository stores codes in the one_time_codes table.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Replace deletes the earlier codes and inserts the new one in one statement.
func (r *PostgresRepository) Replace(ctx context.Context, c *models.OneTimeCode) error {
	query := `
		WITH deleted AS (
			DELETE FROM one_time_codes WHERE email = $2 AND purpose = $3
		)
		INSERT INTO one_time_codes (id, email, purpose, code, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		c.ID, c.Email, string(c.Purpose), c.Code, c.CreatedAt, c.ExpiresAt); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Consume(ctx context.Context, email string, purpose models.CodePurpose, code string, now time.Time) error {
	query := `
		DELETE FROM one_time_codes
		WHERE email = $1 AND purpose = $2 AND code = $3 AND expires_at > $4
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, query, email, string(purpose), code, now).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Invalidate(ctx context.Context, email string, purpose models.CodePurpose) error {
	query := `DELETE FROM one_time_codes WHERE email = $1 AND purpose = $2`
	if _, err := r.db.ExecContext(ctx, query, email, string(purpose)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM one_time_codes
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
