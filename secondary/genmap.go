// SPDX-License-Identifier: MIT

package secondary

import (
	"fmt"

	"github.com/katalvlaran/sseq/fp"
	"github.com/katalvlaran/sseq/module"
	"github.com/katalvlaran/sseq/resolution"
)

// genMap is an A-linear map family C^src_{srcS+k} → C^tgt_{tgtS+k} that
// lowers internal degree by shift, stored by its values on generators.
type genMap struct {
	src, tgt   *resolution.Resolution
	srcS, tgtS int
	shift      int
	kMax, tMax int
	images     [][][]fp.Vector // images[k][t-src.MinDegree()][g]
}

func newGenMap(src, tgt *resolution.Resolution, srcS, tgtS, shift, kMax, tMax int) *genMap {
	m := &genMap{src: src, tgt: tgt, srcS: srcS, tgtS: tgtS, shift: shift, kMax: kMax, tMax: tMax}
	m.images = make([][][]fp.Vector, kMax+1)
	for k := range m.images {
		m.images[k] = make([][]fp.Vector, max(0, tMax-src.MinDegree()+1))
	}

	return m
}

func (m *genMap) inRange(k, t int) error {
	if k < 0 || k > m.kMax || t > m.tMax {
		return fmt.Errorf("map defined for k ≤ %d, t ≤ %d; asked (%d, %d): %w", m.kMax, m.tMax, k, t, ErrNotComputed)
	}

	return nil
}

// image returns the value on generator g of C^src_{srcS+k} in degree t.
func (m *genMap) image(k, t, g int) (fp.Vector, error) {
	if err := m.inRange(k, t); err != nil {
		return fp.Vector{}, err
	}
	if t < m.src.MinDegree() || g < 0 || g >= len(m.images[k][t-m.src.MinDegree()]) {
		return fp.Vector{}, fmt.Errorf("no generator %d in (%d, %d): %w", g, m.srcS+k, t, ErrInvalidClass)
	}

	return m.images[k][t-m.src.MinDegree()][g].Clone(), nil
}

// apply evaluates the map on v ∈ C^src_{srcS+k}[t].
func (m *genMap) apply(k, t int, v fp.Vector) (fp.Vector, error) {
	if err := m.inRange(k, t); err != nil {
		return fp.Vector{}, err
	}
	from := m.src.FreeModule(m.srcS + k)
	to := m.tgt.FreeModule(m.tgtS + k)
	if v.Len() != from.Dimension(t) {
		return fp.Vector{}, fmt.Errorf("secondary: apply at (%d, %d): %w", m.srcS+k, t, fp.ErrDimensionMismatch)
	}
	out := fp.NewVector(m.src.Prime(), to.Dimension(t-m.shift))
	v.Iter(func(i int, c uint32) {
		e := from.Entry(t, i)
		img := m.images[k][e.GenDeg-m.src.MinDegree()][e.GenIdx]
		module.Act(to, out, c, t-e.GenDeg, e.AlgIdx, e.GenDeg-m.shift, img)
	})

	return out, nil
}

// readout returns the matrix whose row g holds the coefficients of the
// generators of C^tgt_{tgtS+k} in degree t-shift in the value on generator g
// of C^src_{srcS+k} in degree t.
func (m *genMap) readout(k, t int) (*fp.Matrix, error) {
	if err := m.inRange(k, t); err != nil {
		return nil, err
	}
	u := t - m.shift
	to := m.tgt.FreeModule(m.tgtS + k)
	var imgs []fp.Vector
	if t >= m.src.MinDegree() {
		imgs = m.images[k][t-m.src.MinDegree()]
	}
	cols := to.NumGens(u)
	out := fp.NewMatrix(m.src.Prime(), len(imgs), cols)
	for g, img := range imgs {
		for h := 0; h < cols; h++ {
			if err := out.SetEntry(g, h, img.Entry(to.Offset(u, u, h))); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// solver caches reductions of the target differentials.
type solver struct {
	res   *resolution.Resolution
	cache map[[2]int]*fp.Reduction
}

func newSolver(res *resolution.Resolution) *solver {
	return &solver{res: res, cache: make(map[[2]int]*fp.Reduction)}
}

// solve returns the canonical x with d_s(x) = b in degree t.
func (sv *solver) solve(s, t int, b fp.Vector) (fp.Vector, error) {
	if t < sv.res.MinDegree() {
		if !b.IsZero() {
			return fp.Vector{}, fmt.Errorf("secondary: solve d_%d in degree %d below the module: %w", s, t, fp.ErrNoSolution)
		}
		return fp.NewVector(sv.res.Prime(), 0), nil
	}
	red, ok := sv.cache[[2]int{s, t}]
	if !ok {
		d, err := sv.res.DifferentialMatrix(s, t)
		if err != nil {
			return fp.Vector{}, fmt.Errorf("%w: %w", ErrNotComputed, err)
		}
		red = fp.Reduce(d)
		sv.cache[[2]int{s, t}] = red
	}

	return red.Solve(b)
}

// requireComputed checks that res covers (s, t), treating degrees below the
// module as trivially computed.
func requireComputed(res *resolution.Resolution, s, t int) error {
	if t < res.MinDegree() || res.HasComputed(s, t) {
		return nil
	}

	return fmt.Errorf("%s needs (%d, %d): %w", res.Config(), s, t, ErrNotComputed)
}
