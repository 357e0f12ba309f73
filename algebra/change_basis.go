// SPDX-License-Identifier: MIT

package algebra

import (
	"fmt"

	"github.com/katalvlaran/sseq/fp"
)

// ToMilnor expresses the admissible monomial (degree, idx) of adem in the
// Milnor basis of milnor, using P^n ↦ P(n), β ↦ Q_0 and Sq^n ↦ Sq(n).
func ToMilnor(adem, milnor *Steenrod, degree, idx int) (fp.Vector, error) {
	if adem.typ != Adem || milnor.typ != Milnor || adem.p != milnor.p {
		return fp.Vector{}, algebraErrorf("ToMilnor", ErrBasisMismatch)
	}
	if degree > adem.maxDegree || degree > milnor.maxDegree {
		return fp.Vector{}, algebraErrorf("ToMilnor", fmt.Errorf("degree %d: %w", degree, ErrDegreeRangeExceeded))
	}
	if idx < 0 || idx >= adem.Dimension(degree) {
		return fp.Vector{}, algebraErrorf("ToMilnor", fmt.Errorf("index %d in degree %d: %w", idx, degree, ErrIndexOutOfRange))
	}
	cur := fp.NewVector(milnor.p, 1)
	cur.SetEntry(0, 1)
	curDeg := 0
	for _, tok := range adem.element(degree, idx).parts {
		var f element
		var fDeg int
		if tok == beta {
			f, fDeg = element{q: 1}, 1
		} else {
			f, fDeg = element{parts: []int{tok}}, tok*milnor.q
		}
		fIdx := milnor.indexOf(fDeg, f)
		next := fp.NewVector(milnor.p, milnor.Dimension(curDeg+fDeg))
		cur.Iter(func(i int, c uint32) {
			milnor.MultiplyBasisElements(next, c, curDeg, i, fDeg, fIdx)
		})
		cur, curDeg = next, curDeg+fDeg
	}

	return cur, nil
}

// ChangeOfBasis returns the matrix whose i-th row is ToMilnor of the i-th
// admissible monomial in degree.
func ChangeOfBasis(adem, milnor *Steenrod, degree int) (*fp.Matrix, error) {
	n := adem.Dimension(degree)
	rows := make([]fp.Vector, n)
	for i := 0; i < n; i++ {
		v, err := ToMilnor(adem, milnor, degree, i)
		if err != nil {
			return nil, err
		}
		rows[i] = v
	}

	return fp.FromRows(milnor.p, milnor.Dimension(degree), rows)
}
