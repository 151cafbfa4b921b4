package record_test

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/w-h-a/tabular/record"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   record.Record
		column string
	}{
		{
			name:   "all fields",
			fields: map[string]string{"id_str": "rec1", "a_int": "42", "opt_str": "hello", "opt_float": "3.14"},
			want:   record.Record{ID: "rec1", Count: 42, Label: record.String("hello"), Score: record.Float(3.14)},
		},
		{
			name:   "empty optionals are absent",
			fields: map[string]string{"id_str": "rec2", "a_int": "7", "opt_str": "", "opt_float": ""},
			want:   record.Record{ID: "rec2", Count: 7},
		},
		{
			name:   "missing optional columns",
			fields: map[string]string{"id_str": "rec3", "a_int": "-3478347"},
			want:   record.Record{ID: "rec3", Count: -3478347},
		},
		{
			name:   "only score",
			fields: map[string]string{"id_str": "rec4", "a_int": "0", "opt_float": "2.718281828459045"},
			want:   record.Record{ID: "rec4", Count: 0, Score: record.Float(math.E)},
		},
		{
			name:   "missing id",
			fields: map[string]string{"a_int": "1"},
			column: "id_str",
		},
		{
			name:   "empty id",
			fields: map[string]string{"id_str": "", "a_int": "1"},
			column: "id_str",
		},
		{
			name:   "missing count",
			fields: map[string]string{"id_str": "x"},
			column: "a_int",
		},
		{
			name:   "count not numeric",
			fields: map[string]string{"id_str": "x", "a_int": "forty"},
			column: "a_int",
		},
		{
			name:   "count out of int32 range",
			fields: map[string]string{"id_str": "x", "a_int": "2147483648"},
			column: "a_int",
		},
		{
			name:   "count is a float",
			fields: map[string]string{"id_str": "x", "a_int": "1.5"},
			column: "a_int",
		},
		{
			name:   "score not numeric",
			fields: map[string]string{"id_str": "x", "a_int": "1", "opt_float": "pi"},
			column: "opt_float",
		},
		{
			name:   "score not finite",
			fields: map[string]string{"id_str": "x", "a_int": "1", "opt_float": "NaN"},
			column: "opt_float",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := record.Decode(tt.fields)
			if len(tt.column) == 0 {
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
				return
			}

			require.ErrorIs(t, err, record.ErrDecode)
			var de *record.DecodeError
			require.True(t, errors.As(err, &de))
			require.Equal(t, tt.column, de.Column)
			require.Equal(t, record.Record{}, got)
		})
	}
}

func TestDecodeCountBounds(t *testing.T) {
	rec, err := record.Decode(map[string]string{"id_str": "max", "a_int": strconv.Itoa(math.MaxInt32)})
	require.NoError(t, err)
	require.Equal(t, int32(math.MaxInt32), rec.Count)

	rec, err = record.Decode(map[string]string{"id_str": "min", "a_int": strconv.Itoa(math.MinInt32)})
	require.NoError(t, err)
	require.Equal(t, int32(math.MinInt32), rec.Count)
}

func TestEncode(t *testing.T) {
	require.Equal(t,
		[]string{"rec1", "42", "hello", "3.14"},
		record.Encode(record.Record{ID: "rec1", Count: 42, Label: record.String("hello"), Score: record.Float(3.14)}),
	)
	require.Equal(t,
		[]string{"rec2", "7", "", ""},
		record.Encode(record.Record{ID: "rec2", Count: 7}),
	)
}

func TestRoundTrip(t *testing.T) {
	records := []record.Record{
		{ID: "some_string", Count: 67890, Label: record.String("my cool string"), Score: record.Float(math.Pi)},
		{ID: "another-string", Count: 8675309},
		{ID: "yet-another-string", Count: -3478347, Score: record.Float(math.E)},
		{ID: "totally-amazing-string", Count: 3748343, Label: record.String("yay")},
		{ID: "tiny", Count: math.MinInt32, Score: record.Float(5e-324)},
		{ID: "huge", Count: math.MaxInt32, Score: record.Float(math.MaxFloat64)},
		{ID: "negative-score", Count: 1, Score: record.Float(-0.1)},
	}

	for _, rec := range records {
		got, err := record.Decode(record.Fields(rec))
		require.NoError(t, err)
		require.Equal(t, rec, got)
		require.Equal(t, rec.Present(), got.Present())
	}
}

func TestPresent(t *testing.T) {
	require.Equal(t, record.Presence(0), record.Record{ID: "a"}.Present())

	p := record.Record{ID: "a", Label: record.String("l")}.Present()
	require.True(t, p.Has(record.PresenceLabel))
	require.False(t, p.Has(record.PresenceScore))

	p = record.Record{ID: "a", Label: record.String("l"), Score: record.Float(1)}.Present()
	require.True(t, p.Has(record.PresenceLabel))
	require.True(t, p.Has(record.PresenceScore))
}

func TestDecodeErrorMessage(t *testing.T) {
	err := &record.DecodeError{Line: 3, Column: "a_int", Err: record.ErrMissing}
	require.Equal(t, "line 3: column a_int: missing field", err.Error())
	require.ErrorIs(t, err, record.ErrMissing)
}
