// SPDX-License-Identifier: MIT

package algebra

import "math/bits"

// tauDegree is the degree of Q_k, 2p^k - 1.
func (a *Steenrod) tauDegree(k int) int {
	return 2*int(a.p.IntPow(k)) - 1
}

// xiWeights returns w_i = (p^i - 1)/(p - 1) for every i with w_i ≤ n, so that
// P(R) has degree q·Σ r_i w_i.
func (a *Steenrod) xiWeights(n int) []int {
	p := a.p.Int()
	var w []int
	for x := 1; x <= n; x = x*p + 1 {
		w = append(w, x)
	}
	if len(w) == 0 {
		w = append(w, 1)
	}

	return w
}

// milnorBasis enumerates Q_E P(R) in degree d, ordered by the Q-part bit set
// and then by R with the highest index varying slowest.
func (a *Steenrod) milnorBasis(d int) []element {
	var out []element
	maxQ := 0
	if a.p != 2 {
		for a.tauDegree(maxQ) <= d {
			maxQ++
		}
	}
	for mask := uint32(0); mask < 1<<maxQ; mask++ {
		qdeg := 0
		for k := 0; k < maxQ; k++ {
			if mask&(1<<k) != 0 {
				qdeg += a.tauDegree(k)
			}
		}
		rem := d - qdeg
		if rem < 0 || rem%a.q != 0 {
			continue
		}
		for _, r := range partitions(rem/a.q, a.xiWeights(rem/a.q)) {
			out = append(out, element{q: mask, parts: r})
		}
	}

	return out
}

// partitions lists every R with Σ r_i w_i = n. w[0] must be 1.
func partitions(n int, w []int) [][]int {
	var out [][]int
	r := make([]int, len(w))
	var rec func(i, rem int)
	rec = func(i, rem int) {
		if i == 0 {
			r[0] = rem
			out = append(out, trimZeros(append([]int(nil), r...)))
			r[0] = 0

			return
		}
		for c := 0; c*w[i] <= rem; c++ {
			r[i] = c
			rec(i-1, rem-c*w[i])
		}
		r[i] = 0
	}
	rec(len(w)-1, n)

	return out
}

// milnorProduct emits the terms of r·s. Terms may repeat; callers sum them.
//
// Implementation:
//   - Stage 1 (odd p): move each Q_k of s leftwards past P(R) using
//     P(R) Q_k = Q_k P(R) + Σ_i Q_{k+i} P(R - p^k e_i), with the sign of the
//     permutation that sorts the Q part, and Q_k² = 0.
//   - Stage 2: multiply the P parts with Milnor matrices.
func (a *Steenrod) milnorProduct(r, s element, emit func(element, uint32)) {
	type term struct {
		q uint32
		r []int
		c uint32
	}
	cur := []term{{q: r.q, r: r.parts, c: 1}}
	for k := 0; s.q>>k != 0; k++ {
		if s.q&(1<<k) == 0 {
			continue
		}
		pk := int(a.p.IntPow(k))
		var next []term
		for _, t := range cur {
			for i := 0; i <= len(t.r); i++ {
				if i > 0 && t.r[i-1] < pk {
					continue
				}
				bit := uint32(1) << (k + i)
				if t.q&bit != 0 {
					continue
				}
				c := t.c
				if bits.OnesCount32(t.q>>(k+i+1))%2 == 1 {
					c = a.p.Neg(c)
				}
				nr := t.r
				if i > 0 {
					nr = append([]int(nil), t.r...)
					nr[i-1] -= pk
					nr = trimZeros(nr)
				}
				next = append(next, term{q: t.q | bit, r: nr, c: c})
			}
		}
		cur = next
	}
	for _, t := range cur {
		a.milnorMatrices(t.r, s.parts, func(out []int, c uint32) {
			emit(element{q: t.q, parts: out}, a.p.Mul(t.c, c))
		})
	}
}

// milnorMatrices enumerates the Milnor matrices X for P(R)·P(S): rows satisfy
// Σ_j p^j x_ij = r_i, columns Σ_i x_ij = s_j, and the product term is
// P(T) with t_n = Σ_{i+j=n} x_ij and coefficient Π_n multinomial of the n-th
// diagonal.
func (a *Steenrod) milnorMatrices(r, s []int, emit func([]int, uint32)) {
	m, n := len(r), len(s)
	if m == 0 || n == 0 {
		out := append(append([]int(nil), r...), s...)
		emit(out, 1)

		return
	}
	x := make([][]int, m+1)
	for i := range x {
		x[i] = make([]int, n+1)
	}
	rowRem := append([]int(nil), r...)
	colRem := append([]int(nil), s...)
	pj := make([]int, n+1)
	for j := range pj {
		pj[j] = int(a.p.IntPow(j))
	}
	diag := make([]int64, 0, m+n+1)

	var rec func(cell int)
	rec = func(cell int) {
		if cell == m*n {
			for i := 1; i <= m; i++ {
				x[i][0] = rowRem[i-1]
			}
			for j := 1; j <= n; j++ {
				x[0][j] = colRem[j-1]
			}
			t := make([]int, m+n)
			c := uint32(1)
			for d := 1; d <= m+n; d++ {
				diag = diag[:0]
				for i := max(0, d-n); i <= min(d, m); i++ {
					v := x[i][d-i]
					diag = append(diag, int64(v))
					t[d-1] += v
				}
				if c = a.p.Mul(c, a.p.Multinomial(diag)); c == 0 {
					return
				}
			}
			emit(trimZeros(t), c)

			return
		}
		i, j := cell/n+1, cell%n+1
		for v := 0; v*pj[j] <= rowRem[i-1] && v <= colRem[j-1]; v++ {
			x[i][j] = v
			rowRem[i-1] -= v * pj[j]
			colRem[j-1] -= v
			rec(cell + 1)
			rowRem[i-1] += v * pj[j]
			colRem[j-1] += v
		}
		x[i][j] = 0
	}
	rec(0)
}
