package adapters

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowsStub serves fixed rows of (id, name), unused pgx.Rows methods panic through the nil embedded interface.
type rowsStub struct {
	pgx.Rows
	values [][]any
	cursor int
	err    error
	closed bool
}

func (r *rowsStub) Next() bool {
	if r.cursor >= len(r.values) {
		return false
	}

	r.cursor++

	return true
}

func (r *rowsStub) Scan(dest ...any) error {
	row := r.values[r.cursor-1]
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}

	*dest[0].(*int64) = row[0].(int64)
	*dest[1].(*string) = row[1].(string)

	return nil
}

func (r *rowsStub) Err() error {
	return r.err
}

func (r *rowsStub) Close() {
	r.closed = true
}

func Test_PGXRows_DelegatesToTheWrappedRows(t *testing.T) {
	// arrange
	iterationErr := errors.New("connection reset")
	stub := &rowsStub{values: [][]any{{int64(1), "Central"}, {int64(2), "North"}}, err: iterationErr}

	var rows DBRows = &pgxRows{rows: stub}

	// act
	var ids []int64
	var names []string

	for rows.Next() {
		var id int64
		var name string
		require.NoError(t, rows.Scan(&id, &name))

		ids = append(ids, id)
		names = append(names, name)
	}

	closeErr := rows.Close()

	// assert
	assert.Equal(t, []int64{1, 2}, ids)
	assert.Equal(t, []string{"Central", "North"}, names)
	assert.ErrorIs(t, rows.Err(), iterationErr)
	assert.NoError(t, closeErr)
	assert.True(t, stub.closed)
}

func Test_PGXRows_PassesScanErrorsThrough(t *testing.T) {
	// arrange
	rows := &pgxRows{rows: &rowsStub{values: [][]any{{int64(1), "Central"}}}}
	require.True(t, rows.Next())

	// act
	var id int64
	err := rows.Scan(&id)

	// assert
	assert.Error(t, err)
}
