// SPDX-License-Identifier: MIT

package module

import (
	"github.com/katalvlaran/sseq/algebra"
	"github.com/katalvlaran/sseq/fp"
)

// Module is a graded module over an algebra with a fixed basis per degree.
type Module interface {
	Algebra() algebra.Algebra
	Prime() fp.ValidPrime
	Name() string
	// MinDegree is the lowest degree that can be non-zero.
	MinDegree() int
	// Dimension returns the dimension in degree t.
	Dimension(t int) int
	// ActOnBasis adds coeff·(op·m) to result, where op is the algebra basis
	// element (opDeg, opIdx) and m the module basis element (modDeg, modIdx).
	ActOnBasis(result fp.Vector, coeff uint32, opDeg, opIdx, modDeg, modIdx int)
	// BasisName renders basis element idx of degree t.
	BasisName(t, idx int) string
}

// Act adds coeff·(op·v) to result for an element v of degree modDeg.
func Act(m Module, result fp.Vector, coeff uint32, opDeg, opIdx, modDeg int, v fp.Vector) {
	p := m.Prime()
	v.Iter(func(i int, c uint32) {
		m.ActOnBasis(result, p.Mul(coeff, c), opDeg, opIdx, modDeg, i)
	})
}
