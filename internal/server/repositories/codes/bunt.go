package codes

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/kvx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/tidwall/buntdb"
)

// BuntRepository keeps one key per (purpose, email), so writing a new code
// replaces the old one. Keys carry a TTL and buntdb drops them on expiry.
type BuntRepository struct {
	kv kvx.KV
}

// NewBuntRepository constructs a repository bound to a database or an open
// transaction.
func NewBuntRepository(kv kvx.KV) *BuntRepository {
	return &BuntRepository{kv: kv}
}

func codeKey(email string, purpose models.CodePurpose) string {
	return "code:" + string(purpose) + ":" + email
}

func (r *BuntRepository) Replace(_ context.Context, c *models.OneTimeCode) error {
	err := r.kv.Update(func(tx *buntdb.Tx) error {
		return kvx.SetJSON(tx, codeKey(c.Email, c.Purpose), c, time.Until(c.ExpiresAt))
	})
	if err != nil {
		return fmt.Errorf("error performing kv request: %w", err)
	}
	return nil
}

func (r *BuntRepository) Consume(_ context.Context, email string, purpose models.CodePurpose, code string, now time.Time) error {
	key := codeKey(email, purpose)
	err := r.kv.Update(func(tx *buntdb.Tx) error {
		stored := &models.OneTimeCode{}
		if err := kvx.GetJSON(tx, key, stored); err != nil {
			return err
		}
		if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(code)) != 1 || stored.Expired(now) {
			return common.ErrorNotFound
		}
		_, err := tx.Delete(key)
		return err
	})
	if err != nil {
		if errors.Is(err, buntdb.ErrNotFound) || errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *BuntRepository) Invalidate(_ context.Context, email string, purpose models.CodePurpose) error {
	err := r.kv.Update(func(tx *buntdb.Tx) error {
		return kvx.Delete(tx, codeKey(email, purpose))
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: buntdb evicts expired keys itself.
func (r *BuntRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
