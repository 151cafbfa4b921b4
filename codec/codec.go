// Package codec converts between CSV payloads and records.
//
// A payload is a header line naming the columns followed by one line per record.
// Header columns may appear in any order; columns the record does not know are
// ignored. Empty cells denote absent optional fields.
package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/w-h-a/tabular/record"
)

const bom = "\ufeff"

var (
	ErrDuplicateColumn = errors.New("duplicate header column")
)

type Codec struct {
	options Options
}

// Decode returns a single-use sequence with one element per data line, in
// payload order. An empty payload, or one holding only a header, yields nothing.
// A header that cannot be read yields a single error for line 1.
func (c *Codec) Decode(payload []byte) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		r := csv.NewReader(bytes.NewReader(payload))
		r.Comma = c.options.Comma
		r.ReuseRecord = true

		header, err := r.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(record.Record{}, lineError(1, err))
			return
		}

		header, err = c.header(header)
		if err != nil {
			yield(record.Record{}, &record.DecodeError{Line: 1, Err: err})
			return
		}

		r.FieldsPerRecord = len(header)

		for {
			row, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				if !yield(record.Record{}, lineError(0, err)) {
					return
				}
				continue
			}

			line, _ := r.FieldPos(0)

			fields := make(map[string]string, len(header))
			for i, col := range header {
				cell := row[i]
				if c.options.TrimSpace {
					cell = strings.TrimSpace(cell)
				}
				fields[col] = cell
			}

			rec, err := record.Decode(fields)
			if err != nil {
				var de *record.DecodeError
				if errors.As(err, &de) {
					de.Line = line
				}
			}
			if !yield(rec, err) {
				return
			}
		}
	}
}

// Encode writes the header followed by one line per record, in Columns order.
func (c *Codec) Encode(records iter.Seq[record.Record]) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	w.Comma = c.options.Comma

	if err := w.Write(record.Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for rec := range records {
		if err := w.Write(record.Encode(rec)); err != nil {
			return nil, fmt.Errorf("write record %s: %w", rec.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}

	return buf.Bytes(), nil
}

func (c *Codec) header(raw []string) ([]string, error) {
	header := make([]string, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for i, col := range raw {
		if i == 0 {
			col = strings.TrimPrefix(col, bom)
		}
		if c.options.TrimSpace {
			col = strings.TrimSpace(col)
		}
		if _, ok := seen[col]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col)
		}
		seen[col] = struct{}{}
		header[i] = col
	}

	return header, nil
}

func lineError(line int, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &record.DecodeError{Line: pe.StartLine, Err: pe.Err}
	}
	return &record.DecodeError{Line: line, Err: err}
}

func New(opts ...Option) *Codec {
	return &Codec{
		options: NewOptions(opts...),
	}
}

var defaultCodec = New()

func Decode(payload []byte) iter.Seq2[record.Record, error] {
	return defaultCodec.Decode(payload)
}

func Encode(records iter.Seq[record.Record]) ([]byte, error) {
	return defaultCodec.Encode(records)
}
