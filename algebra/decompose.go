// SPDX-License-Identifier: MIT

package algebra

import (
	"fmt"

	"github.com/katalvlaran/sseq/fp"
)

// Term is one summand Coeff·g·y of a decomposition, where g is the generator
// (GenDeg, GenIdx) and y the basis element (RestDeg, RestIdx). RestDeg is 0
// exactly when y is the unit.
type Term struct {
	Coeff   uint32
	GenDeg  int
	GenIdx  int
	RestDeg int
	RestIdx int
}

// Decompose writes the basis element (degree, idx) as Σ c·g·y.
//
// Implementation:
//   - Stage 1: a generator decomposes as itself times the unit.
//   - Stage 2: otherwise row i of a matrix holds the product g_i·y_i for every
//     generator g_i of degree e in [1, degree] and every basis element y_i of
//     degree - e; the canonical fp solution of x·M = e_idx gives the terms.
//
// Results are cached per basis element.
func (a *Steenrod) Decompose(degree, idx int) ([]Term, error) {
	if degree <= 0 || degree > a.maxDegree {
		return nil, algebraErrorf("Decompose", fmt.Errorf("degree %d: %w", degree, ErrIndexOutOfRange))
	}
	dim := a.Dimension(degree)
	if idx < 0 || idx >= dim {
		return nil, algebraErrorf("Decompose", fmt.Errorf("index %d in degree %d: %w", idx, degree, ErrIndexOutOfRange))
	}
	key := [2]int{degree, idx}
	a.decompMu.Lock()
	cached, ok := a.decomp[key]
	a.decompMu.Unlock()
	if ok {
		return cached, nil
	}

	var terms []Term
	if gens := a.Generators(degree); len(gens) == 1 && gens[0] == idx {
		terms = []Term{{Coeff: 1, GenDeg: degree, GenIdx: idx}}
	} else {
		var shape []Term
		var rows []fp.Vector
		for e := 1; e <= degree; e++ {
			for _, g := range a.Generators(e) {
				for y := 0; y < a.Dimension(degree-e); y++ {
					v := fp.NewVector(a.p, dim)
					a.MultiplyBasisElements(v, 1, e, g, degree-e, y)
					rows = append(rows, v)
					shape = append(shape, Term{GenDeg: e, GenIdx: g, RestDeg: degree - e, RestIdx: y})
				}
			}
		}
		m, err := fp.FromRows(a.p, dim, rows)
		if err != nil {
			return nil, algebraErrorf("Decompose", err)
		}
		target := fp.NewVector(a.p, dim)
		target.SetEntry(idx, 1)
		x, err := fp.Solve(m, target)
		if err != nil {
			return nil, algebraErrorf("Decompose", fmt.Errorf("%s: %w", a.BasisElementToString(degree, idx), err))
		}
		x.Iter(func(i int, c uint32) {
			t := shape[i]
			t.Coeff = c
			terms = append(terms, t)
		})
	}

	a.decompMu.Lock()
	a.decomp[key] = terms
	a.decompMu.Unlock()

	return terms, nil
}
