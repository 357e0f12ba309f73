// SPDX-License-Identifier: MIT

package fp

import "fmt"

// Subspace is a subspace of F_p^n kept in reduced row echelon form. Rows are
// sorted by pivot column; every pivot is 1 and is the only non-zero entry of
// its column.
type Subspace struct {
	p      ValidPrime
	dim    int // ambient dimension
	rows   []Vector
	pivots []int
}

// NewSubspace returns the zero subspace of F_p^n.
func NewSubspace(p ValidPrime, n int) *Subspace {
	return &Subspace{p: p, dim: n}
}

// SubspaceOf returns the span of the rows of m.
func SubspaceOf(m *Matrix) *Subspace {
	r := m.Clone()
	pivots := r.RowReduce()
	s := NewSubspace(m.p, m.cols)
	for i, c := range pivots {
		s.rows = append(s.rows, r.Row(i).Clone())
		s.pivots = append(s.pivots, c)
	}

	return s
}

// Ambient returns n for a subspace of F_p^n.
func (s *Subspace) Ambient() int { return s.dim }

// Dimension returns the dimension of the subspace.
func (s *Subspace) Dimension() int { return len(s.rows) }

// Pivots returns a copy of the pivot columns in ascending order.
func (s *Subspace) Pivots() []int {
	out := make([]int, len(s.pivots))
	copy(out, s.pivots)

	return out
}

// Basis returns copies of the RREF basis vectors.
func (s *Subspace) Basis() []Vector {
	out := make([]Vector, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.Clone()
	}

	return out
}

// Matrix returns the basis as the rows of a matrix.
func (s *Subspace) Matrix() *Matrix {
	m := NewMatrix(s.p, len(s.rows), s.dim)
	for i, r := range s.rows {
		copy(m.data[i*s.dim:(i+1)*s.dim], r.data)
	}

	return m
}

// Clone returns an independent copy.
func (s *Subspace) Clone() *Subspace {
	c := &Subspace{p: s.p, dim: s.dim, pivots: s.Pivots()}
	c.rows = s.Basis()

	return c
}

// Reduce returns v minus its projection along the pivot columns, i.e. the
// canonical representative of v modulo the subspace. v is not modified.
func (s *Subspace) Reduce(v Vector) (Vector, error) {
	if v.Len() != s.dim {
		return Vector{}, fpErrorf(opSubspace, fmt.Errorf("vector length %d, want %d: %w", v.Len(), s.dim, ErrDimensionMismatch))
	}
	out := v.Clone()
	for i, c := range s.pivots {
		if f := out.data[c]; f != 0 {
			out.addScaledAt(0, s.rows[i], s.p.Neg(f))
		}
	}

	return out, nil
}

// Contains reports whether v lies in the subspace.
func (s *Subspace) Contains(v Vector) (bool, error) {
	r, err := s.Reduce(v)
	if err != nil {
		return false, err
	}

	return r.IsZero(), nil
}

// Add extends the subspace by v and reports whether the dimension grew.
//
// Implementation:
//   - Stage 1: reduce v against the current basis.
//   - Stage 2: if non-zero, normalise its leading entry to 1, clear that
//     column from existing rows and insert it at its pivot position.
func (s *Subspace) Add(v Vector) (bool, error) {
	r, err := s.Reduce(v)
	if err != nil {
		return false, err
	}
	c, lead := r.FirstNonzero()
	if c < 0 {
		return false, nil
	}
	if lead != 1 {
		r.Scale(s.p.Inverse(lead))
	}
	for _, row := range s.rows {
		if f := row.data[c]; f != 0 {
			row.addScaledAt(0, r, s.p.Neg(f))
		}
	}
	pos := len(s.pivots)
	for i, pc := range s.pivots {
		if pc > c {
			pos = i
			break
		}
	}
	s.rows = append(s.rows, Vector{})
	copy(s.rows[pos+1:], s.rows[pos:])
	s.rows[pos] = r
	s.pivots = append(s.pivots, 0)
	copy(s.pivots[pos+1:], s.pivots[pos:])
	s.pivots[pos] = c

	return true, nil
}

// Complement walks vectors in order and keeps those independent of the span
// of sub together with the vectors kept so far. It returns the kept vectors
// reduced modulo that running span; sub is not modified.
//
// Determinism:
//   - Input order decides which representatives are kept; with kernel bases in
//     RREF this makes the choice of new generators canonical.
//
// Complexity:
//   - Time O(len(vectors)·dim·n), Space O(dim·n).
func Complement(sub *Subspace, vectors []Vector) ([]Vector, error) {
	span := sub.Clone()
	var kept []Vector
	for _, v := range vectors {
		r, err := span.Reduce(v)
		if err != nil {
			return nil, err
		}
		if r.IsZero() {
			continue
		}
		if _, err = span.Add(r); err != nil {
			return nil, err
		}
		kept = append(kept, r)
	}

	return kept, nil
}
