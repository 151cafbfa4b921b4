package sqlite

import "github.com/w-h-a/tabular/store"

// WithMemory backs the store with a private in-memory database.
func WithMemory() store.Option {
	return store.WithLocation(Memory)
}
