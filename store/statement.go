package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/w-h-a/tabular/record"
)

var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Placeholder renders the n-th (1-based) bind parameter of a statement.
type Placeholder func(n int) string

func Dollar(n int) string {
	return "$" + strconv.Itoa(n)
}

func Question(int) string {
	return "?"
}

// ValidateTable rejects names that cannot be used unquoted as a table identifier.
func ValidateTable(table string) error {
	if !tablePattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

func CreateTableStatement(table string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id_str VARCHAR(450) NOT NULL,
			a_int INTEGER NOT NULL,
			opt_str VARCHAR(450),
			opt_float DOUBLE PRECISION,
			PRIMARY KEY (id_str)
		)
	`, table)
}

// InsertStatement builds the insert for rec. Optional columns rec does not
// carry are left out of the column list rather than bound as NULL.
func InsertStatement(table string, rec record.Record, ph Placeholder) (string, []any) {
	columns := []string{record.ColumnID, record.ColumnCount}
	args := []any{rec.ID, rec.Count}

	present := rec.Present()
	if present.Has(record.PresenceLabel) {
		columns = append(columns, record.ColumnLabel)
		args = append(args, *rec.Label)
	}
	if present.Has(record.PresenceScore) {
		columns = append(columns, record.ColumnScore)
		args = append(args, *rec.Score)
	}

	marks := make([]string, len(columns))
	for i := range columns {
		marks[i] = ph(i + 1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(marks, ", "),
	)

	return query, args
}

func SelectStatement(table string, ph Placeholder) string {
	return fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = %s",
		strings.Join(record.Columns, ", "),
		table,
		record.ColumnID,
		ph(1),
	)
}

type Scanner interface {
	Scan(dest ...any) error
}

// ScanRecord reads one row selected in record.Columns order.
func ScanRecord(row Scanner) (record.Record, error) {
	var (
		rec   record.Record
		label sql.NullString
		score sql.NullFloat64
	)

	if err := row.Scan(&rec.ID, &rec.Count, &label, &score); err != nil {
		return record.Record{}, err
	}

	if label.Valid {
		rec.Label = &label.String
	}
	if score.Valid {
		rec.Score = &score.Float64
	}

	return rec, nil
}
