package layers

import "fmt"

// ConnectionTable gates which (output channel, input channel) pairs take
// part in a convolution sum. It is fixed for a given network and never
// derived from data.
type ConnectionTable struct {
	outputs, inputs int
	conn            []bool // conn[out*inputs + in]
}

// NewConnectionTable builds a table from rows indexed [output][input].
func NewConnectionTable(rows [][]bool) (*ConnectionTable, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("connection table: %w: empty", ErrTableShape)
	}
	t := &ConnectionTable{
		outputs: len(rows),
		inputs:  len(rows[0]),
		conn:    make([]bool, len(rows)*len(rows[0])),
	}
	for o, row := range rows {
		if len(row) != t.inputs {
			return nil, fmt.Errorf("connection table: %w: row %d has %d entries, want %d",
				ErrTableShape, o, len(row), t.inputs)
		}
		copy(t.conn[o*t.inputs:], row)
	}
	return t, nil
}

// NewConnectionTableInputMajor builds a table from a flat listing where input
// channel i occupies flags[i*outputs : (i+1)*outputs]. This is how layer
// connection charts are usually printed: one line per input channel.
func NewConnectionTableInputMajor(outputs, inputs int, flags []bool) (*ConnectionTable, error) {
	if outputs <= 0 || inputs <= 0 || len(flags) != outputs*inputs {
		return nil, fmt.Errorf("connection table: %w: %d flags for %d outputs x %d inputs",
			ErrTableShape, len(flags), outputs, inputs)
	}
	rows := make([][]bool, outputs)
	for o := range rows {
		rows[o] = make([]bool, inputs)
		for i := 0; i < inputs; i++ {
			rows[o][i] = flags[o+i*outputs]
		}
	}
	return NewConnectionTable(rows)
}

// FullTable connects every output to every input.
func FullTable(outputs, inputs int) *ConnectionTable {
	t := &ConnectionTable{outputs: outputs, inputs: inputs, conn: make([]bool, outputs*inputs)}
	for i := range t.conn {
		t.conn[i] = true
	}
	return t
}

// Connected reports whether input channel in contributes to output channel out.
func (t *ConnectionTable) Connected(out, in int) bool {
	if out < 0 || out >= t.outputs || in < 0 || in >= t.inputs {
		panic(fmt.Sprintf("Connected: (%d,%d) out of bounds for %dx%d table", out, in, t.outputs, t.inputs))
	}
	return t.conn[out*t.inputs+in]
}

// Shape returns the number of output and input channels.
func (t *ConnectionTable) Shape() (outputs, inputs int) {
	return t.outputs, t.inputs
}

// Fanin counts the input channels connected to output channel out.
func (t *ConnectionTable) Fanin(out int) int {
	n := 0
	for i := 0; i < t.inputs; i++ {
		if t.Connected(out, i) {
			n++
		}
	}
	return n
}
