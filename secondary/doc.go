// SPDX-License-Identifier: MIT

// Package secondary computes products and Massey products on top of
// completed minimal resolutions.
//
// A class x ∈ Ext^{s,t}(M, F_p) is a vector of coefficients on the generators
// of C_s in degree t. Lift extends it to a chain map
//
//	f_k: C^M_{s+k} → C^N_k,   ε f_0 = x,   d f_k = f_{k-1} d,
//
// solving one linear system per generator with the resolution's
// differential matrices. Reading off the generator coefficients of f_k gives
// Yoneda products; composing lifts gives lifts of products; a lift whose
// class vanishes admits a null-homotopy H with dH_k + H_{k-1}d = f_k, and
// evaluating x on such an H yields the Massey product ⟨x, y, z⟩.
//
// LiftHom lifts an arbitrary cocycle C^M_s → Σ^t N given by its values on
// generators, and its generator readout is the induced map Ext(N) → Ext(M).
// Reading a class back off a chain map (Compose, Massey) needs N to be
// one-dimensional and concentrated in its minimum degree.
// Every solve uses the canonical solution of fp.Reduction.Solve, so all
// results are deterministic.
package secondary
