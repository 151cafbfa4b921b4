package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/w-h-a/tabular/record"
	"github.com/w-h-a/tabular/store"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

const (
	Memory = ":memory:"
)

var DRIVER string

func init() {
	driver, err := otelsql.Register(
		"sqlite3",
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemSqlite),
	)
	if err != nil {
		detail := "failed to register sqlite store with otel"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	DRIVER = driver
}

type sqliteStore struct {
	options store.Options
	conn    *sql.DB
}

func (s *sqliteStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, store.CreateTableStatement(s.options.Table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.options.Table, err)
	}
	return nil
}

func (s *sqliteStore) Insert(ctx context.Context, rec record.Record) error {
	query, args := store.InsertStatement(s.options.Table, rec, store.Question)

	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", store.ErrDuplicate, rec.ID)
		}
		return err
	}

	return nil
}

func (s *sqliteStore) SelectByID(ctx context.Context, id string) (record.Record, error) {
	query := store.SelectStatement(s.options.Table, store.Question)

	rec, err := store.ScanRecord(s.conn.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, store.ErrNotFound
	}
	if err != nil {
		return record.Record{}, err
	}

	return rec, nil
}

func (s *sqliteStore) Close() error {
	return s.conn.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func dsn(location string) string {
	params := url.Values{}
	params.Add("_timeout", "5000") // 5s
	params.Add("_foreign_keys", "on")

	if len(location) == 0 || location == Memory {
		params.Add("mode", "memory")
		params.Add("cache", "shared")
		return "file:" + uuid.NewString() + "?" + params.Encode()
	}

	params.Add("_journal", "wal")
	params.Add("_sync", "normal")

	return "file:" + location + "?" + params.Encode()
}

// NewStore opens the database file named by the location option, or a private
// in-memory database when the location is empty or ":memory:".
func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	if err := store.ValidateTable(options.Table); err != nil {
		detail := "invalid table for sqlite store"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	s := &sqliteStore{
		options: options,
	}

	conn, err := sql.Open(DRIVER, dsn(options.Location))
	if err != nil {
		detail := "failed to connect with sqlite store"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	// sqlite admits a single writer; extra connections would only contend for the lock.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.PingContext(options.Context); err != nil {
		detail := "failed to ping with sqlite store"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	if err := otelsql.RecordStats(conn); err != nil {
		detail := "failed to initialize sqlite instrumentation for sqlite store"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	s.conn = conn

	return s
}
