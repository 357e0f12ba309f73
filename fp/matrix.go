// SPDX-License-Identifier: MIT

package fp

import (
	"fmt"
	"strings"
)

// Matrix is a dense rows×cols matrix over F_p in row-major order.
// Unlike float matrices, empty shapes (rows == 0 or cols == 0) are valid:
// graded pieces of dimension zero are routine in a resolution.
//
// Convention: a matrix represents the linear map x ↦ x·M on row vectors, so
// row i is the image of the i-th source basis element.
type Matrix struct {
	p          ValidPrime
	rows, cols int
	data       []uint32
}

// NewMatrix returns the rows×cols zero matrix over F_p.
// Complexity: O(rows*cols) zeroing.
func NewMatrix(p ValidPrime, rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("fp: negative matrix shape %dx%d", rows, cols))
	}

	return &Matrix{p: p, rows: rows, cols: cols, data: make([]uint32, rows*cols)}
}

// Identity returns I_n over F_p.
func Identity(p ValidPrime, n int) *Matrix {
	m := NewMatrix(p, n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}

	return m
}

// FromRows stacks vectors of a common length cols into a matrix. An empty
// list yields a 0×cols matrix.
func FromRows(p ValidPrime, cols int, rows []Vector) (*Matrix, error) {
	m := NewMatrix(p, len(rows), cols)
	for i, r := range rows {
		if r.Len() != cols {
			return nil, fpErrorf(opFromRows, fmt.Errorf("row %d has length %d, want %d: %w", i, r.Len(), cols, ErrDimensionMismatch))
		}
		if r.p != p {
			return nil, fpErrorf(opFromRows, ErrPrimeMismatch)
		}
		copy(m.data[i*cols:(i+1)*cols], r.data)
	}

	return m, nil
}

// Prime returns the field characteristic.
func (m *Matrix) Prime() ValidPrime { return m.p }

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Row returns row i as a Vector that aliases the matrix storage; writes
// through the returned vector modify the matrix.
func (m *Matrix) Row(i int) Vector {
	return Vector{p: m.p, data: m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]}
}

// Entry returns M[i, j] or ErrOutOfRange.
func (m *Matrix) Entry(i, j int) (uint32, error) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return 0, fmt.Errorf("Entry(%d,%d): %w", i, j, ErrOutOfRange)
	}

	return m.data[i*m.cols+j], nil
}

// SetEntry assigns M[i, j] = x mod p or returns ErrOutOfRange.
func (m *Matrix) SetEntry(i, j int, x uint32) error {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return fmt.Errorf("SetEntry(%d,%d): %w", i, j, ErrOutOfRange)
	}
	m.data[i*m.cols+j] = x % uint32(m.p)

	return nil
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.p, m.rows, m.cols)
	copy(c.data, m.data)

	return c
}

// IsZero reports whether every entry is zero.
func (m *Matrix) IsZero() bool {
	for _, x := range m.data {
		if x != 0 {
			return false
		}
	}

	return true
}

// Equal reports shape and entrywise equality.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.p != o.p || m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}

	return true
}

// NonZero calls fn for every non-zero entry in row-major order.
func (m *Matrix) NonZero(fn func(i, j int, x uint32)) {
	for i := 0; i < m.rows; i++ {
		base := i * m.cols
		for j := 0; j < m.cols; j++ {
			if x := m.data[base+j]; x != 0 {
				fn(i, j, x)
			}
		}
	}
}

// Mul returns the product A×B. Deterministic i→k→j loops with zero skipping.
// Complexity: O(r*n*c).
func Mul(a, b *Matrix) (*Matrix, error) {
	if a.p != b.p {
		return nil, fpErrorf(opMul, ErrPrimeMismatch)
	}
	if a.cols != b.rows {
		return nil, fpErrorf(opMul, fmt.Errorf("%dx%d × %dx%d: %w", a.rows, a.cols, b.rows, b.cols, ErrDimensionMismatch))
	}
	res := NewMatrix(a.p, a.rows, b.cols)
	var i, k int
	for i = 0; i < a.rows; i++ {
		out := res.Row(i)
		for k = 0; k < a.cols; k++ {
			av := a.data[i*a.cols+k]
			if av == 0 {
				continue // skip zero for performance
			}
			out.addScaledAt(0, b.Row(k), av)
		}
	}

	return res, nil
}

// Apply returns x·M for a row vector x of length Rows().
func (m *Matrix) Apply(x Vector) (Vector, error) {
	if x.Len() != m.rows {
		return Vector{}, ErrDimensionMismatch
	}
	out := NewVector(m.p, m.cols)
	x.Iter(func(i int, c uint32) {
		out.addScaledAt(0, m.Row(i), c)
	})

	return out, nil
}

// Transpose returns Mᵀ.
func Transpose(m *Matrix) *Matrix {
	res := NewMatrix(m.p, m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			res.data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}

	return res
}

// RowReduce brings m to reduced row echelon form in place and returns the
// pivot column of each non-zero row (so len(pivots) is the rank).
//
// Implementation:
//   - Stage 1: scan columns c = 0..cols-1; r tracks the next pivot row.
//   - Stage 2: the first row i ≥ r with M[i,c] ≠ 0 is swapped into row r.
//   - Stage 3: scale row r so that M[r,c] = 1, then clear column c in every
//     other row (above and below).
//
// Determinism:
//   - Lowest free column wins; within a column the first eligible row wins.
//     The output is the unique RREF of the input's row space, with row order
//     fixed by pivot columns.
//
// Complexity:
//   - Time O(rows·cols·rank), Space O(1) beyond the matrix.
func (m *Matrix) RowReduce() []int {
	pivots := make([]int, 0, min(m.rows, m.cols))
	r := 0
	for c := 0; c < m.cols && r < m.rows; c++ {
		pivot := -1
		for i := r; i < m.rows; i++ {
			if m.data[i*m.cols+c] != 0 {
				pivot = i
				break
			}
		}
		if pivot == -1 {
			continue // no pivot in this column
		}
		m.swapRows(r, pivot)
		pr := m.Row(r)
		if lead := pr.data[c]; lead != 1 {
			pr.Scale(m.p.Inverse(lead))
		}
		for i := 0; i < m.rows; i++ {
			if i == r {
				continue
			}
			if f := m.data[i*m.cols+c]; f != 0 {
				m.Row(i).addScaledAt(0, pr, m.p.Neg(f))
			}
		}
		pivots = append(pivots, c)
		r++
	}

	return pivots
}

// Rank returns the rank without modifying m.
func (m *Matrix) Rank() int {
	return len(m.Clone().RowReduce())
}

func (m *Matrix) swapRows(a, b int) {
	if a == b {
		return
	}
	ra := m.data[a*m.cols : (a+1)*m.cols]
	rb := m.data[b*m.cols : (b+1)*m.cols]
	for j := range ra {
		ra[j], rb[j] = rb[j], ra[j]
	}
}

// String renders one bracketed row per line.
func (m *Matrix) String() string {
	var sb strings.Builder
	for i := 0; i < m.rows; i++ {
		sb.WriteString(m.Row(i).String())
		sb.WriteByte('\n')
	}

	return sb.String()
}
