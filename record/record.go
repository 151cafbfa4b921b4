// Package record defines the single row shape the service imports and serves,
// together with its conversion to and from named text fields.
package record

import (
	"fmt"
	"math"
	"strconv"

	getsafe "github.com/w-h-a/tabular/util/get_safe"
)

const (
	ColumnID    = "id_str"
	ColumnCount = "a_int"
	ColumnLabel = "opt_str"
	ColumnScore = "opt_float"
)

// Columns is the fixed column order used for encoding and for the table.
var Columns = []string{ColumnID, ColumnCount, ColumnLabel, ColumnScore}

type Record struct {
	ID    string   `json:"id_str"`
	Count int32    `json:"a_int"`
	Label *string  `json:"opt_str"`
	Score *float64 `json:"opt_float"`
}

// Presence is a bit set of the optional columns a record carries.
type Presence uint8

const (
	PresenceLabel Presence = 1 << iota
	PresenceScore
)

func (r Record) Present() Presence {
	var p Presence
	if r.Label != nil {
		p |= PresenceLabel
	}
	if r.Score != nil {
		p |= PresenceScore
	}
	return p
}

func (p Presence) Has(flag Presence) bool {
	return p&flag != 0
}

// Decode builds a Record from a column name to cell text mapping. Empty optional
// cells are treated as absent.
func Decode(fields map[string]string) (Record, error) {
	var rec Record

	if !getsafe.Has(fields, ColumnID) {
		return Record{}, &DecodeError{Column: ColumnID, Err: ErrMissing}
	}
	rec.ID = getsafe.String(fields, ColumnID)
	if len(rec.ID) == 0 {
		return Record{}, &DecodeError{Column: ColumnID, Err: ErrEmpty}
	}

	if !getsafe.Has(fields, ColumnCount) {
		return Record{}, &DecodeError{Column: ColumnCount, Err: ErrMissing}
	}
	count, err := strconv.ParseInt(getsafe.String(fields, ColumnCount), 10, 32)
	if err != nil {
		return Record{}, &DecodeError{Column: ColumnCount, Err: err}
	}
	rec.Count = int32(count)

	if label := getsafe.String(fields, ColumnLabel); len(label) > 0 {
		rec.Label = &label
	}

	if raw := getsafe.String(fields, ColumnScore); len(raw) > 0 {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Record{}, &DecodeError{Column: ColumnScore, Err: err}
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return Record{}, &DecodeError{Column: ColumnScore, Err: fmt.Errorf("%w: %q", ErrNotFinite, raw)}
		}
		rec.Score = &score
	}

	return rec, nil
}

// Encode renders r as cells in Columns order. Absent optional fields are empty.
func Encode(r Record) []string {
	fields := make([]string, len(Columns))
	fields[0] = r.ID
	fields[1] = strconv.FormatInt(int64(r.Count), 10)
	if r.Label != nil {
		fields[2] = *r.Label
	}
	if r.Score != nil {
		fields[3] = strconv.FormatFloat(*r.Score, 'g', -1, 64)
	}
	return fields
}

// Fields is Encode keyed by column name.
func Fields(r Record) map[string]string {
	cells := Encode(r)
	fields := make(map[string]string, len(Columns))
	for i, col := range Columns {
		fields[col] = cells[i]
	}
	return fields
}

func String(s string) *string {
	return &s
}

func Float(f float64) *float64 {
	return &f
}
