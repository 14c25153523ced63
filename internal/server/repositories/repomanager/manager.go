// Package repomanager bundles the account and code repositories behind one
// store handle, with PostgreSQL and BuntDB implementations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/codes"
)

// Repositories vends the repositories bound to one handle, either the whole
// database or a single transaction.
type Repositories interface {
	Accounts() accounts.Repository
	Codes() codes.Repository
}

// RepositoryManager is the credential store.
type RepositoryManager interface {
	Repositories

	// InTx runs fn with repositories bound to one transaction. The work is
	// committed when fn returns nil and discarded otherwise.
	InTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error

	// RunMigrations brings the schema up to date.
	RunMigrations(ctx context.Context) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}
