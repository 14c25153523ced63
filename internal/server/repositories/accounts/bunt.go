package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/kvx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"github.com/tidwall/buntdb"
)

// Key layout:
//
//	account:<email>            JSON account record
//	account_id:<id>            email
//	account_username:<name>    email
//	account_phone:<phone>      email
//	account_reset:<digest>     email, expires with the token
const (
	keyAccount  = "account:"
	keyByID     = "account_id:"
	keyByName   = "account_username:"
	keyByPhone  = "account_phone:"
	keyResetTok = "account_reset:"
)

// BuntRepository stores accounts in BuntDB. Uniqueness checks and index
// writes happen in the same write transaction, which buntdb serializes.
type BuntRepository struct {
	kv  kvx.KV
	now func() time.Time
}

// NewBuntRepository constructs a repository bound to a database or an open
// transaction.
func NewBuntRepository(kv kvx.KV) *BuntRepository {
	return &BuntRepository{kv: kv, now: time.Now}
}

func wrap(err error) error {
	if errors.Is(err, buntdb.ErrNotFound) {
		return common.ErrorNotFound
	}
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorAlreadyExists) {
		return err
	}
	return fmt.Errorf("db error: %w", err)
}

func exists(tx *buntdb.Tx, key string) (bool, error) {
	_, err := tx.Get(key)
	if errors.Is(err, buntdb.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *BuntRepository) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	err := r.kv.Update(func(tx *buntdb.Tx) error {
		keys := []string{keyAccount + a.Email}
		if a.UserName != "" {
			keys = append(keys, keyByName+a.UserName)
		}
		if a.PhoneNumber != "" {
			keys = append(keys, keyByPhone+a.PhoneNumber)
		}
		for _, k := range keys {
			taken, err := exists(tx, k)
			if err != nil {
				return err
			}
			if taken {
				return common.ErrorAlreadyExists
			}
		}

		now := r.now().UTC()
		a.ID = uuid.NewString()
		a.CreatedAt = now
		a.UpdatedAt = now

		if err := kvx.SetJSON(tx, keyAccount+a.Email, a, 0); err != nil {
			return err
		}
		if err := kvx.SetString(tx, keyByID+a.ID, a.Email, 0); err != nil {
			return err
		}
		for _, k := range keys[1:] {
			if err := kvx.SetString(tx, k, a.Email, 0); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap(err)
	}
	return a, nil
}

func (r *BuntRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	a := &models.Account{}
	err := r.kv.View(func(tx *buntdb.Tx) error {
		return kvx.GetJSON(tx, keyAccount+email, a)
	})
	if err != nil {
		return nil, wrap(err)
	}
	return a, nil
}

func (r *BuntRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	a := &models.Account{}
	err := r.kv.View(func(tx *buntdb.Tx) error {
		email, err := tx.Get(keyByID + id)
		if err != nil {
			return err
		}
		return kvx.GetJSON(tx, keyAccount+email, a)
	})
	if err != nil {
		return nil, wrap(err)
	}
	return a, nil
}

// modify applies fn to the stored account inside one write transaction.
func (r *BuntRepository) modify(email string, fn func(tx *buntdb.Tx, a *models.Account) error) (*models.Account, error) {
	a := &models.Account{}
	err := r.kv.Update(func(tx *buntdb.Tx) error {
		if err := kvx.GetJSON(tx, keyAccount+email, a); err != nil {
			return err
		}
		if err := fn(tx, a); err != nil {
			return err
		}
		a.UpdatedAt = r.now().UTC()
		return kvx.SetJSON(tx, keyAccount+email, a, 0)
	})
	if err != nil {
		return nil, wrap(err)
	}
	return a, nil
}

func (r *BuntRepository) Activate(_ context.Context, email string) (*models.Account, error) {
	return r.modify(email, func(_ *buntdb.Tx, a *models.Account) error {
		a.Status = models.StatusActive
		return nil
	})
}

// UpdatePassword also drops any outstanding reset link token.
func (r *BuntRepository) UpdatePassword(_ context.Context, email, passwordHash string) error {
	_, err := r.modify(email, func(tx *buntdb.Tx, a *models.Account) error {
		if a.ResetTokenHash != "" {
			if err := kvx.Delete(tx, keyResetTok+a.ResetTokenHash); err != nil {
				return err
			}
		}
		a.PasswordHash = passwordHash
		a.ResetTokenHash = ""
		a.ResetTokenExpiresAt = nil
		return nil
	})
	return err
}

func (r *BuntRepository) SetResetToken(_ context.Context, email, tokenHash string, expiresAt time.Time) error {
	_, err := r.modify(email, func(tx *buntdb.Tx, a *models.Account) error {
		if a.ResetTokenHash != "" {
			if err := kvx.Delete(tx, keyResetTok+a.ResetTokenHash); err != nil {
				return err
			}
		}
		a.ResetTokenHash = tokenHash
		exp := expiresAt.UTC()
		a.ResetTokenExpiresAt = &exp
		return kvx.SetString(tx, keyResetTok+tokenHash, email, time.Until(expiresAt))
	})
	return err
}

func (r *BuntRepository) ResetPasswordByToken(_ context.Context, tokenHash, passwordHash string, now time.Time) (string, error) {
	var email string
	err := r.kv.Update(func(tx *buntdb.Tx) error {
		var err error
		email, err = tx.Get(keyResetTok + tokenHash)
		if err != nil {
			return err
		}

		a := &models.Account{}
		if err := kvx.GetJSON(tx, keyAccount+email, a); err != nil {
			return err
		}
		if a.ResetTokenHash != tokenHash || a.ResetTokenExpiresAt == nil || !now.Before(*a.ResetTokenExpiresAt) {
			return common.ErrorNotFound
		}

		a.PasswordHash = passwordHash
		a.ResetTokenHash = ""
		a.ResetTokenExpiresAt = nil
		a.UpdatedAt = r.now().UTC()
		if err := kvx.SetJSON(tx, keyAccount+email, a, 0); err != nil {
			return err
		}
		return kvx.Delete(tx, keyResetTok+tokenHash)
	})
	if err != nil {
		return "", wrap(err)
	}
	return email, nil
}
