// SPDX-License-Identifier: MIT

package secondary

import (
	"fmt"

	"github.com/katalvlaran/sseq/fp"
	"github.com/katalvlaran/sseq/resolution"
)

// Massey computes a representative of ⟨x, y, z⟩ for classes of Ext over
// res, which must resolve a one-dimensional module. The result lies in
// Ext^{s,t} with s = x.S+y.S+z.S-1 and t = x.T+y.T+z.T-2·MinDegree.
//
// Implementation:
//   - Stage 1: lift y and z to chain maps Y and Z and compose them; the
//     composite lifts a product that must vanish.
//   - Stage 2: build a null-homotopy H of Y∘Z, so d H + H d = Y∘Z.
//   - Stage 3: evaluate x on H_{x.S-1}; for a minimal resolution this is a
//     cocycle because x·y = 0 holds on the nose.
//
// The result is defined up to the indeterminacy x·Ext + Ext·z.
//
// Errors: ErrUnsupportedTarget unless res resolves a one-dimensional module;
// ErrProductNonzero when x·y or y·z is non-zero; ErrInvalidClass for
// x.S < 1 or mis-sized classes; ErrNotComputed when res is too short.
func Massey(res *resolution.Resolution, x, y, z Class) (Class, error) {
	m := res.MinDegree()
	yShift, zShift := y.T-m, z.T-m
	top := x.T + yShift + zShift
	if err := checkTarget(res, top); err != nil {
		return Class{}, fmt.Errorf("secondary: massey product: %w", err)
	}
	if x.S < 1 {
		return Class{}, fmt.Errorf("secondary: massey product needs x in positive filtration: %w", ErrInvalidClass)
	}
	if n := res.NumberOfGens(x.S, x.T); x.Coeffs.Len() != n || !res.HasComputed(x.S, x.T) {
		return Class{}, fmt.Errorf("secondary: x has %d coefficients for %d generators: %w", x.Coeffs.Len(), n, ErrInvalidClass)
	}

	Y, err := Lift(res, res, y, x.S, x.T+yShift)
	if err != nil {
		return Class{}, err
	}
	xy, err := Y.Product(x.S, x.T+yShift, x.Coeffs)
	if err != nil {
		return Class{}, err
	}
	if !xy.IsZero() {
		return Class{}, fmt.Errorf("secondary: x·y = %v: %w", xy, ErrProductNonzero)
	}

	Z, err := Lift(res, res, z, x.S+y.S-1, top)
	if err != nil {
		return Class{}, err
	}
	yz, err := Compose(Y, Z)
	if err != nil {
		return Class{}, err
	}
	if !yz.class.IsZero() {
		return Class{}, fmt.Errorf("secondary: y·z = %v: %w", yz.class, ErrProductNonzero)
	}
	H, err := NullHomotopy(yz)
	if err != nil {
		return Class{}, err
	}

	r, err := H.readout(x.S-1, top)
	if err != nil {
		return Class{}, err
	}
	out, err := fp.Transpose(r).Apply(x.Coeffs)
	if err != nil {
		return Class{}, err
	}

	return Class{S: x.S + y.S + z.S - 1, T: top, Coeffs: out}, nil
}
