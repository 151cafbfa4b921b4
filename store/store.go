package store

import (
	"context"
	"errors"

	"github.com/w-h-a/tabular/record"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record id")
)

// Store is the relational backend the pipelines talk to. Implementations must be
// safe for concurrent use.
type Store interface {
	// EnsureSchema creates the table when it does not exist yet. It is idempotent.
	EnsureSchema(ctx context.Context) error
	// Insert writes rec using only the columns rec carries. It fails with
	// ErrDuplicate when the id is already stored.
	Insert(ctx context.Context, rec record.Record) error
	// SelectByID returns the record with the given id, or ErrNotFound.
	SelectByID(ctx context.Context, id string) (record.Record, error)
	Close() error
}
