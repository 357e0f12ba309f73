// SPDX-License-Identifier: MIT

package module

import (
	"fmt"
	"sort"
	"sync"

	"github.com/katalvlaran/sseq/algebra"
	"github.com/katalvlaran/sseq/fp"
)

// FreeModule is a free module on generators added degree by degree. The basis
// of degree T lists, for each generator in order of (degree, index), the
// algebra basis of degree T minus the generator degree. Generators added at T
// therefore form the last block of degree T.
//
// Generator counts are append-only; basis indices never move once assigned.
// Methods are safe for concurrent use.
type FreeModule struct {
	alg    algebra.Algebra
	p      fp.ValidPrime
	name   string
	minDeg int

	mu      sync.RWMutex
	counts  []int         // counts[t-minDeg] generators in degree t
	layouts map[int][]int // block starts per degree, see layout
}

// NewFreeModule returns a free module with no generators whose first
// generator degree will be minDeg.
func NewFreeModule(alg algebra.Algebra, name string, minDeg int) *FreeModule {
	return &FreeModule{alg: alg, p: alg.Prime(), name: name, minDeg: minDeg, layouts: make(map[int][]int)}
}

// Algebra returns the acting algebra.
func (f *FreeModule) Algebra() algebra.Algebra { return f.alg }

// Prime returns p.
func (f *FreeModule) Prime() fp.ValidPrime { return f.p }

// Name returns the module name.
func (f *FreeModule) Name() string { return f.name }

// MinDegree returns the first generator degree.
func (f *FreeModule) MinDegree() int { return f.minDeg }

// AddGenerators records n generators in degree t. Degrees must be added
// consecutively starting at MinDegree, each exactly once.
func (f *FreeModule) AddGenerators(t, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if want := f.minDeg + len(f.counts); t != want || n < 0 {
		return fmt.Errorf("%s: add %d generators in degree %d, next degree is %d: %w", f.name, n, t, want, ErrGeneratorOrder)
	}
	f.counts = append(f.counts, n)

	return nil
}

// GeneratedThrough returns the highest degree whose generators are known,
// or MinDegree-1 when none are.
func (f *FreeModule) GeneratedThrough() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.minDeg + len(f.counts) - 1
}

// NumGens returns the number of generators in degree t, 0 when unknown.
func (f *FreeModule) NumGens(t int) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if t < f.minDeg || t-f.minDeg >= len(f.counts) {
		return 0
	}

	return f.counts[t-f.minDeg]
}

// layout returns starts with starts[i] the first basis index of generators of
// degree minDeg+i in degree T, for every known generator degree ≤ T, followed
// by the total dimension.
func (f *FreeModule) layout(T int) []int {
	f.mu.RLock()
	known := min(T-f.minDeg+1, len(f.counts))
	if known < 0 {
		known = 0
	}
	l, ok := f.layouts[T]
	f.mu.RUnlock()
	if ok && len(l) == known+1 {
		return l
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	known = max(0, min(T-f.minDeg+1, len(f.counts)))
	if l, ok = f.layouts[T]; ok && len(l) == known+1 {
		return l
	}
	l = make([]int, known+1)
	for i := 0; i < known; i++ {
		l[i+1] = l[i] + f.counts[i]*f.alg.Dimension(T-f.minDeg-i)
	}
	f.layouts[T] = l

	return l
}

// Dimension returns the dimension in degree T spanned by the generators
// known so far.
func (f *FreeModule) Dimension(T int) int {
	l := f.layout(T)

	return l[len(l)-1]
}

// Offset returns the index in degree T of (generator (genDeg, genIdx)) times
// the first algebra basis element of degree T-genDeg.
func (f *FreeModule) Offset(T, genDeg, genIdx int) int {
	l := f.layout(T)
	i := genDeg - f.minDeg
	if i < 0 || i >= len(l)-1 {
		panic(fmt.Sprintf("module: %s has no generators of degree %d in degree %d", f.name, genDeg, T))
	}

	return l[i] + genIdx*f.alg.Dimension(T-genDeg)
}

// BasisElement describes basis element idx of degree T as an algebra basis
// element times a generator.
type BasisElement struct {
	GenDeg, GenIdx, AlgIdx int
}

// Entry decodes a basis index of degree T.
func (f *FreeModule) Entry(T, idx int) BasisElement {
	l := f.layout(T)
	if idx < 0 || idx >= l[len(l)-1] {
		panic(fmt.Sprintf("module: index %d out of range in degree %d of %s", idx, T, f.name))
	}
	// last block start ≤ idx
	i := sort.Search(len(l)-1, func(i int) bool { return l[i+1] > idx })
	genDeg := f.minDeg + i
	dim := f.alg.Dimension(T - genDeg)
	rel := idx - l[i]

	return BasisElement{GenDeg: genDeg, GenIdx: rel / dim, AlgIdx: rel % dim}
}

// BasisTable lists every basis element of degree T in index order.
func (f *FreeModule) BasisTable(T int) []BasisElement {
	n := f.Dimension(T)
	out := make([]BasisElement, n)
	for i := range out {
		out[i] = f.Entry(T, i)
	}

	return out
}

// ActOnBasis adds coeff·(op·x) to result, where x is basis element modIdx of
// degree modDeg and result lives in degree modDeg+opDeg.
func (f *FreeModule) ActOnBasis(result fp.Vector, coeff uint32, opDeg, opIdx, modDeg, modIdx int) {
	e := f.Entry(modDeg, modIdx)
	T := modDeg + opDeg
	scratch := fp.NewVector(f.p, f.alg.Dimension(T-e.GenDeg))
	f.alg.MultiplyBasisElements(scratch, coeff, opDeg, opIdx, modDeg-e.GenDeg, e.AlgIdx)
	if err := result.AddScaledAt(f.Offset(T, e.GenDeg, e.GenIdx), scratch, 1); err != nil {
		panic(fmt.Sprintf("module: act on %s in degree %d: %v", f.name, T, err))
	}
}

// BasisName renders a basis element as "<algebra element> g(deg,idx)".
func (f *FreeModule) BasisName(T, idx int) string {
	e := f.Entry(T, idx)

	return fmt.Sprintf("%s g(%d,%d)", f.alg.BasisElementToString(T-e.GenDeg, e.AlgIdx), e.GenDeg, e.GenIdx)
}

var _ Module = (*FreeModule)(nil)
