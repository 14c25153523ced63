// Package kvx holds the small BuntDB helpers shared by the key/value
// repositories: a handle implemented by both *buntdb.DB and an open
// transaction, and a helper to run a function inside one write transaction.
package kvx

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/buntdb"
)

// KV is the subset of buntdb used by the repositories. *buntdb.DB satisfies
// it directly; TxKV adapts a transaction that is already open.
type KV interface {
	View(fn func(tx *buntdb.Tx) error) error
	Update(fn func(tx *buntdb.Tx) error) error
}

// TxKV runs every View and Update call against one open transaction, so
// several repositories can share it without nesting buntdb transactions.
type TxKV struct {
	Tx *buntdb.Tx
}

func (t TxKV) View(fn func(tx *buntdb.Tx) error) error   { return fn(t.Tx) }
func (t TxKV) Update(fn func(tx *buntdb.Tx) error) error { return fn(t.Tx) }

// WithTx runs fn inside a single write transaction. buntdb serializes writers,
// so everything fn does is atomic with respect to other writers. Returning an
// error from fn rolls the transaction back.
func WithTx(db *buntdb.DB, fn func(kv KV) error) error {
	return db.Update(func(tx *buntdb.Tx) error {
		return fn(TxKV{Tx: tx})
	})
}

// GetJSON decodes the value stored under key into v. A missing key returns
// buntdb.ErrNotFound unchanged.
func GetJSON(tx *buntdb.Tx, key string, v any) error {
	raw, err := tx.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v under key. A positive ttl makes the key expire.
func SetJSON(tx *buntdb.Tx, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, _, err = tx.Set(key, string(raw), expiry(ttl))
	return err
}

// SetString stores a plain value under key. A positive ttl makes it expire.
func SetString(tx *buntdb.Tx, key, value string, ttl time.Duration) error {
	_, _, err := tx.Set(key, value, expiry(ttl))
	return err
}

// Delete removes key, treating a missing key as success.
func Delete(tx *buntdb.Tx, key string) error {
	if _, err := tx.Delete(key); err != nil && !errors.Is(err, buntdb.ErrNotFound) {
		return err
	}
	return nil
}

func expiry(ttl time.Duration) *buntdb.SetOptions {
	if ttl <= 0 {
		return nil
	}
	return &buntdb.SetOptions{Expires: true, TTL: ttl}
}
