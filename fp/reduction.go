// SPDX-License-Identifier: MIT

package fp

import "fmt"

// Reduction is the reduced augmented matrix [M | I] of a linear map M. It is
// the quasi-inverse of M: one reduction answers kernel, image and any number
// of Solve queries against the same matrix.
//
// Invariant: for every row R of the reduced matrix, left(R) = right(R)·M.
type Reduction struct {
	p       ValidPrime
	source  int // rows of M
	target  int // cols of M
	aug     *Matrix
	pivots  []int // pivot columns of the augmented matrix
	rank    int   // pivots that fall in the left block
	imgRows []int // row index of the pivot for each left-block column, -1 if none
}

// Reduce row-reduces the augmented matrix of m. m itself is not modified.
//
// Implementation:
//   - Stage 1: allocate [M | I_rows] and run RowReduce with the canonical pivot rule.
//   - Stage 2: rows whose pivot lies in the left block span the image; the
//     remaining rows have zero left part and their right parts span the kernel.
//
// Complexity:
//   - Time O(rows·(rows+cols)·min(rows, rows+cols)), Space O(rows·(rows+cols)).
func Reduce(m *Matrix) *Reduction {
	aug := NewMatrix(m.p, m.rows, m.cols+m.rows)
	for i := 0; i < m.rows; i++ {
		copy(aug.data[i*aug.cols:i*aug.cols+m.cols], m.data[i*m.cols:(i+1)*m.cols])
		aug.data[i*aug.cols+m.cols+i] = 1
	}
	pivots := aug.RowReduce()
	rank := 0
	imgRows := make([]int, m.cols)
	for j := range imgRows {
		imgRows[j] = -1
	}
	for i, c := range pivots {
		if c < m.cols {
			imgRows[c] = i
			rank++
		}
	}

	return &Reduction{p: m.p, source: m.rows, target: m.cols, aug: aug, pivots: pivots, rank: rank, imgRows: imgRows}
}

// Rank returns the rank of the reduced map.
func (r *Reduction) Rank() int { return r.rank }

// KernelDimension returns rows(M) - rank(M).
func (r *Reduction) KernelDimension() int { return r.source - r.rank }

// Kernel returns a basis of {x : x·M = 0} as the rows of a matrix with
// Rows() == KernelDimension() and Cols() == rows(M). The basis is in RREF.
func (r *Reduction) Kernel() *Matrix {
	k := NewMatrix(r.p, r.source-r.rank, r.source)
	for i := r.rank; i < r.source; i++ {
		off := i*r.aug.cols + r.target
		copy(k.data[(i-r.rank)*r.source:(i-r.rank+1)*r.source], r.aug.data[off:off+r.source])
	}

	return k
}

// Image returns the row space of M as a Subspace of F_p^{cols(M)}.
func (r *Reduction) Image() *Subspace {
	s := NewSubspace(r.p, r.target)
	for i := 0; i < r.rank; i++ {
		s.rows = append(s.rows, r.aug.Row(i).Slice(0, r.target))
		s.pivots = append(s.pivots, r.pivots[i])
	}

	return s
}

// Solve returns x with x·M = b, or ErrNoSolution when b is outside the image.
// The returned solution is the canonical one whose support lies on pivot rows.
func (r *Reduction) Solve(b Vector) (Vector, error) {
	if b.Len() != r.target {
		return Vector{}, fpErrorf(opSolve, fmt.Errorf("target length %d, want %d: %w", b.Len(), r.target, ErrDimensionMismatch))
	}
	res := b.Clone()
	x := NewVector(r.p, r.source)
	for c := 0; c < r.target; c++ {
		coef := res.data[c]
		if coef == 0 {
			continue
		}
		row := r.imgRows[c]
		if row < 0 {
			return Vector{}, fpErrorf(opSolve, fmt.Errorf("column %d: %w", c, ErrNoSolution))
		}
		full := r.aug.Row(row)
		neg := r.p.Neg(coef)
		res.addScaledAt(0, full.Slice(0, r.target), neg)
		x.addScaledAt(0, full.Slice(r.target, r.target+r.source), coef)
	}

	return x, nil
}

// Kernel is shorthand for Reduce(m).Kernel().
func Kernel(m *Matrix) *Matrix { return Reduce(m).Kernel() }

// Solve is shorthand for Reduce(m).Solve(b).
func Solve(m *Matrix, b Vector) (Vector, error) { return Reduce(m).Solve(b) }
