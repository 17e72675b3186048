package symbolic

import (
	"fmt"
	"strings"

	"github.com/njchilds90/gosymbol"
)

// Matrix is a dense rows x cols matrix of expressions.
type Matrix struct{ m *gosymbol.Matrix }

// NewMatrix returns a zero matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{m: gosymbol.NewMatrix(rows, cols)}
}

// MatrixFromInts builds a matrix from integer rows. Rows must have equal length.
func MatrixFromInts(rows [][]int64) *Matrix {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	m := NewMatrix(len(rows), cols)
	for i, r := range rows {
		for j, v := range r {
			m.Set(i, j, Int(v))
		}
	}
	return m
}

func (m *Matrix) Rows() int { return m.m.Rows() }
func (m *Matrix) Cols() int { return m.m.Cols() }

func (m *Matrix) At(i, j int) Expr { return wrap(m.m.Get(i, j)) }

func (m *Matrix) Set(i, j int, e Expr) { m.m.Set(i, j, e.node()) }

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []Expr {
	out := make([]Expr, m.Cols())
	for j := range out {
		out[j] = m.At(i, j)
	}
	return out
}

// Col returns a copy of column j.
func (m *Matrix) Col(j int) []Expr {
	out := make([]Expr, m.Rows())
	for i := range out {
		out[i] = m.At(i, j)
	}
	return out
}

// Sub returns m - o.
func (m *Matrix) Sub(o *Matrix) (*Matrix, error) {
	if m.Rows() != o.Rows() || m.Cols() != o.Cols() {
		return nil, fmt.Errorf("%w: %dx%d - %dx%d", ErrDimensionMismatch, m.Rows(), m.Cols(), o.Rows(), o.Cols())
	}
	d := m.m.MatSub(o.m)
	for i := 0; i < d.Rows(); i++ {
		for j := 0; j < d.Cols(); j++ {
			d.Set(i, j, together(d.Get(i, j)))
		}
	}
	return &Matrix{m: d}, nil
}

// Equal reports element-wise structural equality.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.Rows() != o.Rows() || m.Cols() != o.Cols() {
		return false
	}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			if !Equal(m.At(i, j), o.At(i, j)) {
				return false
			}
		}
	}
	return true
}

// IsZero reports whether every entry simplifies to zero.
func (m *Matrix) IsZero() bool {
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			if !IsZero(m.At(i, j)) {
				return false
			}
		}
	}
	return true
}

func (m *Matrix) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < m.Rows(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("[")
		for j := 0; j < m.Cols(); j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(m.At(i, j).String())
		}
		b.WriteString("]")
	}
	b.WriteString("]")
	return b.String()
}
