package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/kvx"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/codes"
	"github.com/tidwall/buntdb"
)

type buntRepositories struct {
	kv kvx.KV
}

func (r buntRepositories) Accounts() accounts.Repository {
	return accounts.NewBuntRepository(r.kv)
}

func (r buntRepositories) Codes() codes.Repository {
	return codes.NewBuntRepository(r.kv)
}

// BuntRepositoryManager is the embedded BuntDB store. Code expiry relies on
// buntdb key TTLs; there is no schema to migrate.
type BuntRepositoryManager struct {
	buntRepositories
	db *buntdb.DB
}

// NewBuntRepositoryManager wraps an open *buntdb.DB.
func NewBuntRepositoryManager(db *buntdb.DB) *BuntRepositoryManager {
	return &BuntRepositoryManager{buntRepositories: buntRepositories{kv: db}, db: db}
}

// OpenBunt opens the database at path; ":memory:" keeps it in memory.
func OpenBunt(path string) (*BuntRepositoryManager, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open buntdb: %w", err)
	}
	return NewBuntRepositoryManager(db), nil
}

func (m *BuntRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return kvx.WithTx(m.db, func(kv kvx.KV) error {
		return fn(ctx, buntRepositories{kv: kv})
	})
}

func (m *BuntRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *BuntRepositoryManager) Ping(context.Context) error {
	return m.db.View(func(tx *buntdb.Tx) error {
		_, err := tx.Len()
		return err
	})
}

func (m *BuntRepositoryManager) Close() error {
	return m.db.Close()
}
