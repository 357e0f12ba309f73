// SPDX-License-Identifier: MIT

package secondary

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/sseq/fp"
	"github.com/katalvlaran/sseq/resolution"
)

// Class is an element of Ext^{S,T}: coefficients on the generators of C_S in
// degree T.
type Class struct {
	S, T   int
	Coeffs fp.Vector
}

// IsZero reports whether the class vanishes.
func (c Class) IsZero() bool { return c.Coeffs.IsZero() }

func (c Class) String() string { return fmt.Sprintf("(%d, %d) %v", c.S, c.T, c.Coeffs) }

// Hom is a cocycle x: C_S → Σ^Shift N, where N is the module resolved by the
// target of a lift. Values[u] has one row per generator of C_S in degree
// u+Shift and one column per basis element of N[u]. Degrees with no entry
// map to zero.
type Hom struct {
	S, Shift int
	Values   map[int]*fp.Matrix
}

// IsZero reports whether every value vanishes.
func (h Hom) IsZero() bool {
	for _, m := range h.Values {
		if m != nil && !m.IsZero() {
			return false
		}
	}

	return true
}

// ChainMap is a lift f_k: C^src_{s+k} → C^tgt_k of a cocycle C^src_s → Σ^t N.
type ChainMap struct {
	genMap
	hom   Hom
	class Class
	// unit is nil when the target resolves a module that is one-dimensional
	// and concentrated in its minimum degree over the lifted range.
	unit error
}

// checkTarget verifies that res resolves a module that is one-dimensional in
// its minimum degree and zero above it, up to degree top.
func checkTarget(res *resolution.Resolution, top int) error {
	n := res.Target()
	m := res.MinDegree()
	if n.Dimension(m) != 1 {
		return fmt.Errorf("%s has dimension %d in degree %d: %w", n.Name(), n.Dimension(m), m, ErrUnsupportedTarget)
	}
	for u := m + 1; u <= top; u++ {
		if n.Dimension(u) != 0 {
			return fmt.Errorf("%s is non-zero in degree %d: %w", n.Name(), u, ErrUnsupportedTarget)
		}
	}

	return nil
}

// classHom sends the generators of (x.S, x.T) to the bottom cell of N with
// the coefficients of x.
func classHom(x Class, minDeg int) Hom {
	m := fp.NewMatrix(x.Coeffs.Prime(), x.Coeffs.Len(), 1)
	x.Coeffs.Iter(func(i int, c uint32) { _ = m.SetEntry(i, 0, c) })

	return Hom{S: x.S, Shift: x.T - minDeg, Values: map[int]*fp.Matrix{minDeg: m}}
}

// Lift extends x ∈ Ext^{x.S,x.T}(src module) to a chain map into tgt. The
// class sends its generators to the bottom cell of the target module N, so
// N must be one-dimensional in its minimum degree. f_k is computed for
// k ≤ kMax on the generators of degree ≤ tMax.
//
// Errors: ErrInvalidClass, ErrNotComputed, ErrUnsupportedTarget.
func Lift(src, tgt *resolution.Resolution, x Class, kMax, tMax int) (*ChainMap, error) {
	if kMax < 0 || tMax < x.T {
		return nil, fmt.Errorf("secondary: lift range (%d, %d) does not contain %d: %w", kMax, tMax, x.T, ErrInvalidClass)
	}
	if err := requireComputed(src, x.S+kMax, tMax); err != nil {
		return nil, err
	}
	if n := src.NumberOfGens(x.S, x.T); x.Coeffs.Len() != n {
		return nil, fmt.Errorf("secondary: class has %d coefficients, (%d, %d) has %d generators: %w", x.Coeffs.Len(), x.S, x.T, n, ErrInvalidClass)
	}
	m := tgt.MinDegree()
	if d := tgt.Target().Dimension(m); d != 1 {
		return nil, fmt.Errorf("%s has dimension %d in degree %d: %w", tgt.Target().Name(), d, m, ErrUnsupportedTarget)
	}
	f, err := LiftHom(src, tgt, classHom(x, m), kMax, tMax)
	if err != nil {
		return nil, err
	}
	f.class = Class{S: x.S, T: x.T, Coeffs: x.Coeffs.Clone()}

	return f, nil
}

// LiftHom extends the cocycle x: C^src_{x.S} → Σ^{x.Shift} N to a chain map
// into tgt, which resolves N. f_k is computed for k ≤ kMax on the generators
// of degree ≤ tMax.
//
// Implementation:
//   - Stage 1 (k = 0): f_0(g) solves ε f_0(g) = x(g).
//   - Stage 2 (k ≥ 1): f_k(g) solves d f_k(g) = f_{k-1}(d g). Only k = 1 can
//     fail, exactly when x∘d is non-zero.
//
// Errors: ErrInvalidClass for mis-sized values or a map that is not a
// cocycle, ErrNotComputed, ErrMismatch.
func LiftHom(src, tgt *resolution.Resolution, x Hom, kMax, tMax int) (*ChainMap, error) {
	if src.Prime() != tgt.Prime() || src.Algebra().Magic() != tgt.Algebra().Magic() {
		return nil, fmt.Errorf("secondary: lift %s into %s: %w", src.Config(), tgt.Config(), ErrMismatch)
	}
	if kMax < 0 {
		return nil, fmt.Errorf("secondary: lift range (%d, %d) is empty: %w", kMax, tMax, ErrInvalidClass)
	}
	if err := requireComputed(src, x.S+kMax, tMax); err != nil {
		return nil, err
	}
	shift := x.Shift
	if err := requireComputed(tgt, kMax, tMax-shift); err != nil {
		return nil, err
	}
	n := tgt.Target()
	values := make(map[int]*fp.Matrix, len(x.Values))
	for u, m := range x.Values {
		if m == nil || u+shift > tMax {
			continue
		}
		if m.Rows() != src.NumberOfGens(x.S, u+shift) || m.Cols() != n.Dimension(u) {
			return nil, fmt.Errorf("secondary: value in degree %d is %d×%d, want %d×%d: %w",
				u, m.Rows(), m.Cols(), src.NumberOfGens(x.S, u+shift), n.Dimension(u), ErrInvalidClass)
		}
		values[u] = m.Clone()
	}

	f := &ChainMap{
		genMap: *newGenMap(src, tgt, x.S, 0, shift, kMax, tMax),
		hom:    Hom{S: x.S, Shift: shift, Values: values},
		class:  Class{S: x.S, T: shift + tgt.MinDegree(), Coeffs: fp.NewVector(src.Prime(), 0)},
		unit:   checkTarget(tgt, tMax-shift),
	}
	sv := newSolver(tgt)
	p := src.Prime()
	for k := 0; k <= kMax; k++ {
		for t := src.MinDegree(); t <= tMax; t++ {
			gens := src.NumberOfGens(x.S+k, t)
			if gens == 0 {
				continue
			}
			u := t - shift
			var d *fp.Matrix
			if k > 0 {
				var err error
				if d, err = src.Differential(x.S+k, t); err != nil {
					return nil, err
				}
			}
			imgs := make([]fp.Vector, gens)
			for g := range imgs {
				var rhs fp.Vector
				if k == 0 {
					if v, ok := values[u]; ok {
						rhs = v.Row(g).Clone()
					} else {
						rhs = fp.NewVector(p, n.Dimension(u))
					}
				} else {
					var err error
					if rhs, err = f.apply(k-1, t, d.Row(g)); err != nil {
						return nil, err
					}
				}
				img, err := sv.solve(k, u, rhs)
				if k == 1 && errors.Is(err, fp.ErrNoSolution) {
					return nil, fmt.Errorf("secondary: map from (%d, %d) is not a cocycle at generator %d of (%d, %d): %w", x.S, shift, g, x.S+k, t, ErrInvalidClass)
				}
				if err != nil {
					return nil, fmt.Errorf("secondary: lift f_%d at generator %d of (%d, %d): %w", k, g, x.S+k, t, err)
				}
				imgs[g] = img
			}
			f.images[k][t-src.MinDegree()] = imgs
		}
	}

	return f, nil
}

// Class returns the lifted class. A map built by LiftHom carries no
// coefficients.
func (f *ChainMap) Class() Class {
	return Class{S: f.class.S, T: f.class.T, Coeffs: f.class.Coeffs.Clone()}
}

// Hom returns the cocycle the map lifts.
func (f *ChainMap) Hom() Hom {
	values := make(map[int]*fp.Matrix, len(f.hom.Values))
	for u, m := range f.hom.Values {
		values[u] = m.Clone()
	}

	return Hom{S: f.hom.S, Shift: f.hom.Shift, Values: values}
}

// Range returns the largest k and t the map is defined for.
func (f *ChainMap) Range() (kMax, tMax int) { return f.kMax, f.tMax }

// Shift returns the internal degree the map lowers by.
func (f *ChainMap) Shift() int { return f.shift }

// Image returns f_k of generator g of C^src_{s+k} in degree t.
func (f *ChainMap) Image(k, t, g int) (fp.Vector, error) { return f.image(k, t, g) }

// Apply evaluates f_k on v ∈ C^src_{s+k}[t]; the result lies in
// C^tgt_k[t - Shift()].
func (f *ChainMap) Apply(k, t int, v fp.Vector) (fp.Vector, error) { return f.apply(k, t, v) }

// ProductMatrix returns the matrix of the induced map from Ext^{k, t-Shift()}
// of the target to Ext^{s+k, t} of the source: row g lists the coefficients
// on the target generators of f_k(g). For a lift of x ∈ Ext(M, F_p) this is
// y ↦ x·y.
func (f *ChainMap) ProductMatrix(k, t int) (*fp.Matrix, error) { return f.readout(k, t) }

// Product returns the image of y ∈ Ext^{k, t-Shift()} of the target, as a
// class in Ext^{s+k, t} of the source.
func (f *ChainMap) Product(k, t int, y fp.Vector) (Class, error) {
	m, err := f.readout(k, t)
	if err != nil {
		return Class{}, err
	}
	if y.Len() != m.Cols() {
		return Class{}, fmt.Errorf("secondary: y has %d coefficients, (%d, %d) has %d generators: %w", y.Len(), k, t-f.shift, m.Cols(), ErrInvalidClass)
	}
	out, err := fp.Transpose(m).Apply(y)
	if err != nil {
		return Class{}, err
	}

	return Class{S: f.srcS + k, T: t, Coeffs: out}, nil
}
