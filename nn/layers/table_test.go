package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionTable_Rows(t *testing.T) {
	tbl, err := NewConnectionTable([][]bool{
		{true, false, true},
		{false, false, true},
	})
	require.NoError(t, err)
	outs, ins := tbl.Shape()
	assert.Equal(t, 2, outs)
	assert.Equal(t, 3, ins)
	assert.True(t, tbl.Connected(0, 0))
	assert.False(t, tbl.Connected(0, 1))
	assert.True(t, tbl.Connected(1, 2))
	assert.Equal(t, 2, tbl.Fanin(0))
	assert.Equal(t, 1, tbl.Fanin(1))
}

func TestConnectionTable_InputMajor(t *testing.T) {
	// two input lines of three outputs each
	flags := []bool{
		true, false, false, // input 0
		true, true, false, // input 1
	}
	tbl, err := NewConnectionTableInputMajor(3, 2, flags)
	require.NoError(t, err)
	assert.True(t, tbl.Connected(0, 0))
	assert.True(t, tbl.Connected(0, 1))
	assert.False(t, tbl.Connected(1, 0))
	assert.True(t, tbl.Connected(1, 1))
	assert.False(t, tbl.Connected(2, 0))
	assert.False(t, tbl.Connected(2, 1))
}

func TestConnectionTable_Errors(t *testing.T) {
	_, err := NewConnectionTable(nil)
	require.ErrorIs(t, err, ErrTableShape)
	_, err = NewConnectionTable([][]bool{{true}, {true, false}})
	require.ErrorIs(t, err, ErrTableShape)
	_, err = NewConnectionTableInputMajor(2, 2, []bool{true})
	require.ErrorIs(t, err, ErrTableShape)
}

func TestConnectionTable_OutOfBoundsPanics(t *testing.T) {
	tbl := FullTable(2, 2)
	assert.Panics(t, func() { tbl.Connected(2, 0) })
	assert.Panics(t, func() { tbl.Connected(0, -1) })
}
