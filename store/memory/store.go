package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/w-h-a/tabular/record"
	"github.com/w-h-a/tabular/store"
)

type memoryStore struct {
	options store.Options
	records map[string]record.Record
	mtx     sync.RWMutex
}

func (s *memoryStore) EnsureSchema(ctx context.Context) error {
	return nil
}

func (s *memoryStore) Insert(ctx context.Context, rec record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return fmt.Errorf("%w: %s", store.ErrDuplicate, rec.ID)
	}

	s.records[rec.ID] = clone(rec)

	return nil
}

func (s *memoryStore) SelectByID(ctx context.Context, id string) (record.Record, error) {
	if err := ctx.Err(); err != nil {
		return record.Record{}, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return record.Record{}, store.ErrNotFound
	}

	return clone(rec), nil
}

func (s *memoryStore) Close() error {
	return nil
}

// Len reports how many records are stored.
func (s *memoryStore) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.records)
}

func clone(rec record.Record) record.Record {
	cpy := record.Record{ID: rec.ID, Count: rec.Count}
	if rec.Label != nil {
		cpy.Label = record.String(*rec.Label)
	}
	if rec.Score != nil {
		cpy.Score = record.Float(*rec.Score)
	}
	return cpy
}

func NewStore(opts ...store.Option) *memoryStore {
	options := store.NewOptions(opts...)

	s := &memoryStore{
		options: options,
		records: map[string]record.Record{},
		mtx:     sync.RWMutex{},
	}

	return s
}
