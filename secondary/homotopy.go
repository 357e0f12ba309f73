// SPDX-License-Identifier: MIT

package secondary

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/sseq/fp"
)

// Compose returns outer∘inner: if inner lifts x ∈ Ext^{s,t} and outer lifts
// y ∈ Ext^{s',t'} of inner's target, the composite
//
//	h_k = outer_k ∘ inner_{s'+k}
//
// is a chain map lifting the product of x and y. Its class is read off with
// the augmentation of the final target, so outer must map into a resolution
// of a one-dimensional module; inner may map into any resolution.
func Compose(outer, inner *ChainMap) (*ChainMap, error) {
	if inner.tgt != outer.src {
		return nil, fmt.Errorf("secondary: compose %s after %s: %w", outer.src.Config(), inner.tgt.Config(), ErrMismatch)
	}
	if outer.unit != nil {
		return nil, fmt.Errorf("secondary: compose: %w", outer.unit)
	}
	sOut := outer.srcS
	kMax := min(inner.kMax-sOut, outer.kMax)
	tMax := min(inner.tMax, outer.tMax+inner.shift)
	shift := inner.shift + outer.shift
	classT := shift + outer.tgt.MinDegree()
	if kMax < 0 || tMax < classT {
		return nil, fmt.Errorf("secondary: composite has an empty range (k ≤ %d, t ≤ %d): %w", kMax, tMax, ErrNotComputed)
	}

	h := &ChainMap{genMap: *newGenMap(inner.src, outer.tgt, inner.srcS+sOut, 0, shift, kMax, tMax)}
	for k := 0; k <= kMax; k++ {
		for t := inner.src.MinDegree(); t <= tMax; t++ {
			mid := inner.images[sOut+k][t-inner.src.MinDegree()]
			imgs := make([]fp.Vector, len(mid))
			for g, v := range mid {
				img, err := outer.apply(k, t-inner.shift, v)
				if err != nil {
					return nil, err
				}
				imgs[g] = img
			}
			h.images[k][t-inner.src.MinDegree()] = imgs
		}
	}

	m, err := h.readout(0, classT)
	if err != nil {
		return nil, err
	}
	coeffs := fp.NewVector(inner.src.Prime(), m.Rows())
	for g := 0; g < m.Rows(); g++ {
		x, err := m.Entry(g, 0)
		if err != nil {
			return nil, err
		}
		coeffs.SetEntry(g, x)
	}
	h.class = Class{S: h.srcS, T: classT, Coeffs: coeffs}
	h.hom = classHom(h.class, outer.tgt.MinDegree())

	return h, nil
}

// Homotopy is a family H_k: C^src_{s+k} → C^tgt_{k+1} lowering internal
// degree by the same shift as the chain map it contracts.
type Homotopy struct {
	genMap
}

// NullHomotopy returns H with d H_k + H_{k-1} d = f_k for k ≤ f's range,
// H_{-1} = 0. It fails with ErrProductNonzero when the cocycle f lifts is
// not a coboundary.
// The target resolution must be computed one homological degree further
// than f.
//
// Implementation:
//   - Stage 1 (k = 0): solve d_1 H_0(g) = f_0(g); solvable iff ε f_0(g) = 0.
//   - Stage 2 (k ≥ 1): solve d_{k+1} H_k(g) = f_k(g) - H_{k-1}(d g).
func NullHomotopy(f *ChainMap) (*Homotopy, error) {
	if !f.hom.IsZero() {
		return nil, fmt.Errorf("secondary: null-homotopy of a non-zero map from (%d, %d): %w", f.hom.S, f.hom.Shift, ErrProductNonzero)
	}
	if err := requireComputed(f.tgt, f.kMax+1, f.tMax-f.shift); err != nil {
		return nil, err
	}

	src := f.src
	p := src.Prime()
	h := &Homotopy{genMap: *newGenMap(src, f.tgt, f.srcS, 1, f.shift, f.kMax, f.tMax)}
	sv := newSolver(f.tgt)
	for k := 0; k <= f.kMax; k++ {
		for t := src.MinDegree(); t <= f.tMax; t++ {
			fk := f.images[k][t-src.MinDegree()]
			if len(fk) == 0 {
				continue
			}
			var d *fp.Matrix
			if k > 0 {
				var err error
				if d, err = src.Differential(f.srcS+k, t); err != nil {
					return nil, err
				}
			}
			imgs := make([]fp.Vector, len(fk))
			for g := range fk {
				rhs := fk[g].Clone()
				if k > 0 {
					prev, err := h.apply(k-1, t, d.Row(g))
					if err != nil {
						return nil, err
					}
					if err := rhs.AddScaled(prev, p.Neg(1)); err != nil {
						return nil, err
					}
				}
				img, err := sv.solve(k+1, t-f.shift, rhs)
				if errors.Is(err, fp.ErrNoSolution) && k == 0 {
					return nil, fmt.Errorf("secondary: f_0 of generator %d in degree %d is not a boundary: %w", g, t, ErrProductNonzero)
				}
				if err != nil {
					return nil, fmt.Errorf("secondary: homotopy H_%d at generator %d of (%d, %d): %w", k, g, f.srcS+k, t, err)
				}
				imgs[g] = img
			}
			h.images[k][t-src.MinDegree()] = imgs
		}
	}

	return h, nil
}

// Range returns the largest k and t the homotopy is defined for.
func (h *Homotopy) Range() (kMax, tMax int) { return h.kMax, h.tMax }

// Image returns H_k of generator g of C^src_{s+k} in degree t.
func (h *Homotopy) Image(k, t, g int) (fp.Vector, error) { return h.image(k, t, g) }

// Apply evaluates H_k on v ∈ C^src_{s+k}[t].
func (h *Homotopy) Apply(k, t int, v fp.Vector) (fp.Vector, error) { return h.apply(k, t, v) }

// Readout returns, for each generator of C^src_{s+k} in degree t, the
// coefficients of H_k on the generators of C^tgt_{k+1}.
func (h *Homotopy) Readout(k, t int) (*fp.Matrix, error) { return h.readout(k, t) }
