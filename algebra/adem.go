// SPDX-License-Identifier: MIT

package algebra

import (
	"sort"
	"strconv"
	"strings"
)

type ademTerm struct {
	word []int
	c    uint32
}

// ademBasis enumerates admissible words of degree d. At p = 2 a word
// Sq^{i_1}…Sq^{i_k} is admissible when i_j ≥ 2 i_{j+1}; at odd p a word
// β^{e_0} P^{s_1} β^{e_1} … P^{s_k} β^{e_k} when s_i ≥ p s_{i+1} + e_i.
func (a *Steenrod) ademBasis(d int) []element {
	var out []element
	var word []int
	emit := func() { out = append(out, element{parts: append([]int(nil), word...)}) }

	if a.p == 2 {
		var rec func(rem, bound int)
		rec = func(rem, bound int) {
			if rem == 0 {
				emit()
				return
			}
			for i := 1; i <= min(rem, bound); i++ {
				word = append(word, i)
				rec(rem-i, i/2)
				word = word[:len(word)-1]
			}
		}
		rec(d, d)

		return out
	}

	p := a.p.Int()
	var rec func(rem, prev int)
	rec = func(rem, prev int) {
		for e := 0; e <= 1; e++ {
			if e == 1 {
				if rem < 1 {
					break
				}
				word = append(word, beta)
				rem--
			}
			if rem == 0 {
				emit()
			} else {
				maxS := rem / a.q
				if prev > 0 {
					maxS = min(maxS, (prev-e)/p)
				}
				for s := 1; s <= maxS; s++ {
					word = append(word, s)
					rec(rem-a.q*s, s)
					word = word[:len(word)-1]
				}
			}
			if e == 1 {
				word = word[:len(word)-1]
				rem++
			}
		}
	}
	rec(d, 0)

	return out
}

func wordKey(w []int) string {
	s := make([]string, len(w))
	for i, x := range w {
		s[i] = strconv.Itoa(x)
	}

	return strings.Join(s, ",")
}

func stripIdentity(w []int) []int {
	out := w[:0:0]
	for _, x := range w {
		if x != 0 {
			out = append(out, x)
		}
	}

	return out
}

// ademReduce writes a word as a combination of admissible words. Results are
// memoized per word.
func (a *Steenrod) ademReduce(word []int) []ademTerm {
	word = stripIdentity(word)
	k := wordKey(word)
	a.ademMu.Lock()
	res, ok := a.ademMemo[k]
	a.ademMu.Unlock()
	if ok {
		return res
	}
	res = a.ademReduceOnce(word)
	a.ademMu.Lock()
	a.ademMemo[k] = res
	a.ademMu.Unlock()

	return res
}

// ademReduceOnce applies one Adem relation at the leftmost inadmissible
// position and reduces each resulting word.
func (a *Steenrod) ademReduceOnce(w []int) []ademTerm {
	pInt := a.p.Int()
	start, end := -1, -1
	var repl []ademTerm
	for i := 0; i+1 < len(w) && start < 0; i++ {
		x, y := w[i], w[i+1]
		switch {
		case x == beta && y == beta:
			return nil
		case x == beta:
		case y > 0 && x < pInt*y:
			start, end = i, i+2
			repl = a.ademRelation(x, y)
		case y == beta && i+2 < len(w) && w[i+2] > 0 && x <= pInt*w[i+2]:
			start, end = i, i+3
			repl = a.ademBetaRelation(x, w[i+2])
		}
	}
	if start < 0 {
		return []ademTerm{{word: w, c: 1}}
	}

	acc := make(map[string]*ademTerm)
	for _, r := range repl {
		nw := make([]int, 0, len(w)+1)
		nw = append(nw, w[:start]...)
		nw = append(nw, r.word...)
		nw = append(nw, w[end:]...)
		for _, t := range a.ademReduce(nw) {
			k := wordKey(t.word)
			if cur, ok := acc[k]; ok {
				cur.c = a.p.Add(cur.c, a.p.Mul(r.c, t.c))
			} else {
				acc[k] = &ademTerm{word: t.word, c: a.p.Mul(r.c, t.c)}
			}
		}
	}
	keys := make([]string, 0, len(acc))
	for k, t := range acc {
		if t.c != 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]ademTerm, len(keys))
	for i, k := range keys {
		out[i] = *acc[k]
	}

	return out
}

// signed returns c, negated when exp is odd.
func (a *Steenrod) signed(c uint32, exp int) uint32 {
	if exp%2 != 0 {
		return a.p.Neg(c)
	}

	return c
}

// ademRelation expands Sq^x Sq^y (x < 2y) or P^x P^y (x < py):
//
//	Sq^a Sq^b = Σ_j C(b-1-j, a-2j) Sq^{a+b-j} Sq^j
//	P^a P^b   = Σ_j (-1)^{a+j} C((p-1)(b-j)-1, a-pj) P^{a+b-j} P^j
func (a *Steenrod) ademRelation(x, y int) []ademTerm {
	p := a.p.Int()
	var out []ademTerm
	for j := 0; j <= x/p; j++ {
		var c uint32
		if p == 2 {
			c = a.p.Binomial(int64(y-1-j), int64(x-2*j))
		} else {
			c = a.signed(a.p.Binomial(int64((p-1)*(y-j)-1), int64(x-p*j)), x+j)
		}
		if c != 0 {
			out = append(out, ademTerm{word: []int{x + y - j, j}, c: c})
		}
	}

	return out
}

// ademBetaRelation expands P^x β P^y for x ≤ py:
//
//	Σ_j (-1)^{a+j} C((p-1)(b-j), a-pj) β P^{a+b-j} P^j
//	+ Σ_j (-1)^{a+j-1} C((p-1)(b-j)-1, a-pj-1) P^{a+b-j} β P^j
func (a *Steenrod) ademBetaRelation(x, y int) []ademTerm {
	p := a.p.Int()
	var out []ademTerm
	for j := 0; j <= x/p; j++ {
		c := a.signed(a.p.Binomial(int64((p-1)*(y-j)), int64(x-p*j)), x+j)
		if c != 0 {
			out = append(out, ademTerm{word: []int{beta, x + y - j, j}, c: c})
		}
	}
	for j := 0; j <= (x-1)/p; j++ {
		c := a.signed(a.p.Binomial(int64((p-1)*(y-j)-1), int64(x-p*j-1)), x+j-1)
		if c != 0 {
			out = append(out, ademTerm{word: []int{x + y - j, beta, j}, c: c})
		}
	}

	return out
}
