// Package metadata stores small key/value records in the local store. The
// session credential lives here.
package metadata

import (
	"context"

	"github.com/glycorisk/riskdash/internal/dbx"
	"github.com/glycorisk/riskdash/internal/storage"
)

// Repository is a byte-valued key/value table.
//
// Get returns (nil, nil) when the key is absent. Set is an upsert. Delete of
// an absent key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// New returns the Repository for dialect d bound to db, which may be a
// transaction.
func New(d storage.Dialect, db dbx.DBTX) Repository {
	if d == storage.Postgres {
		return NewPostgresRepository(db)
	}
	return NewSQLiteRepository(db)
}
