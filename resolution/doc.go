// SPDX-License-Identifier: MIT

// Package resolution builds minimal free resolutions
//
//	⋯ → C_2 → C_1 → C_0 → M → 0
//
// of a module M over the Steenrod algebra, bidegree by bidegree. The number
// of generators of C_s in internal degree t is dim Ext^{s,t}(M, F_p).
//
// Algorithm (one bidegree (s, t)):
//
//   - Stage 1: apply d_s to every basis element of C_s[t] spanned by the
//     generators of degree < t. Their images span I.
//   - Stage 2: K is the kernel of d_{s-1} at t, kept from (s-1, t); at s = 0
//     K is all of M[t]. The new generators are a complement of I in K, walked
//     in the RREF order of K's basis.
//   - Stage 3: the kernel of the full d_s at t is computed and kept for
//     (s+1, t).
//
// Because new generators map onto a complement inside the kernel, no
// generator is ever hit by an element of filtration zero, so the resolution
// is minimal by construction.
//
// Scheduling:
//
//	(s, t) needs (s, t-1) and (s-1, t). Serial mode walks t outer, s inner.
//	Concurrent mode feeds a bounded errgroup from a dispatcher that releases a
//	bidegree once both dependencies are committed. Both modes commit the same
//	values because every step is a deterministic function of its inputs.
//
// Errors:
//
//	- ErrInvalidBound (wraps ErrInput) for negative or inconsistent bounds.
//	- algebra.ErrDegreeRangeExceeded / bigraded.ErrDegreeRangeExceeded when a
//	  bound exceeds the configured capacity.
//	- *BidegreeError for failures inside a step, with the bidegree and the
//	  configuration attached.
//
// Example:
//
//	alg, _ := algebra.New(fp.MustPrime(2), algebra.Milnor)
//	res, _ := resolution.New(module.GroundField(alg))
//	if err := res.ResolveThroughDegree(ctx, 3, 10); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Chart(3))
package resolution
