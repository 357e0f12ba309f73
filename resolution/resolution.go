// SPDX-License-Identifier: MIT

package resolution

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/katalvlaran/sseq/algebra"
	"github.com/katalvlaran/sseq/bigraded"
	"github.com/katalvlaran/sseq/checkpoint"
	"github.com/katalvlaran/sseq/fp"
	"github.com/katalvlaran/sseq/module"
)

// cell is the committed state of one bidegree.
type cell struct {
	gens   int
	images *fp.Matrix // gens × dim target[t], the differentials of the new generators
	kernel *fp.Matrix // RREF basis of ker(d_s) in C_s[t]
}

// Resolution is a minimal free resolution of a module, grown on demand.
// Queries are safe for concurrent use; Resolve calls are serialized.
type Resolution struct {
	target module.Module
	alg    algebra.Algebra
	p      fp.ValidPrime
	minDeg int
	config string

	log      *zap.Logger
	metrics  *metrics
	store    checkpoint.Store
	compress bool
	retry    checkpoint.RetryPolicy
	workers  int
	maxS     int
	maxT     int

	resolving sync.Mutex

	mu    sync.RWMutex
	chain []*module.FreeModule // chain[s] = C_s
	cells *bigraded.Store[*cell]
}

// New returns an empty resolution of target.
func New(target module.Module, opts ...Option) (*Resolution, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil module", ErrInput)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	alg := target.Algebra()
	name := o.name
	if name == "" {
		name = target.Name()
	}
	r := &Resolution{
		target:   target,
		alg:      alg,
		p:        target.Prime(),
		minDeg:   target.MinDegree(),
		config:   fmt.Sprintf("%s@%s p=%d", name, alg.Type(), target.Prime()),
		log:      o.log,
		metrics:  newMetrics(o.registerer),
		compress: o.compress,
		retry:    o.retry,
		workers:  o.workers,
		maxS:     o.maxS,
		maxT:     o.maxT,
	}
	if o.store != nil {
		r.store = o.store
		if !o.noPrefixing {
			r.store = checkpoint.WithPrefix(o.store, checkpoint.ConfigPrefix(name, alg.Type().String(), target.Prime().Value()))
		}
	}

	mode := bigraded.Serial
	if r.workers > 1 {
		mode = bigraded.Concurrent
	}
	storeOpts := []bigraded.Option{bigraded.WithMode(mode)}
	if r.maxS >= 0 && r.maxT >= 0 {
		storeOpts = append(storeOpts, bigraded.WithCapacity(r.maxS, r.maxT-r.minDeg))
	}
	r.cells = bigraded.New[*cell](storeOpts...)

	return r, nil
}

// Target returns the resolved module M.
func (r *Resolution) Target() module.Module { return r.target }

// Algebra returns the acting algebra.
func (r *Resolution) Algebra() algebra.Algebra { return r.alg }

// Prime returns p.
func (r *Resolution) Prime() fp.ValidPrime { return r.p }

// MinDegree returns the lowest internal degree of M.
func (r *Resolution) MinDegree() int { return r.minDeg }

// Config names the configuration, for example "S_2@milnor p=2".
func (r *Resolution) Config() string { return r.config }

func (r *Resolution) key(s, t int) bigraded.Bidegree {
	return bigraded.Bidegree{S: s, T: t - r.minDeg}
}

// FreeModule returns C_s, creating it if needed.
func (r *Resolution) FreeModule(s int) *module.FreeModule {
	r.mu.RLock()
	if s < len(r.chain) {
		c := r.chain[s]
		r.mu.RUnlock()
		return c
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.chain) <= s {
		r.chain = append(r.chain, module.NewFreeModule(r.alg, fmt.Sprintf("C%d", len(r.chain)), r.minDeg))
	}

	return r.chain[s]
}

// targetOf returns the codomain of d_s: M for s = 0, C_{s-1} otherwise.
func (r *Resolution) targetOf(s int) module.Module {
	if s == 0 {
		return r.target
	}

	return r.FreeModule(s - 1)
}

func (r *Resolution) lookup(s, t int) (*cell, bool) {
	if s < 0 || t < r.minDeg {
		return nil, false
	}

	return r.cells.Get(r.key(s, t))
}

// HasComputed reports whether (s, t) is committed.
func (r *Resolution) HasComputed(s, t int) bool {
	_, ok := r.lookup(s, t)

	return ok
}

// NumberOfGens returns dim Ext^{s,t}, or 0 when (s, t) is not computed.
func (r *Resolution) NumberOfGens(s, t int) int {
	c, ok := r.lookup(s, t)
	if !ok {
		return 0
	}

	return c.gens
}

// BasisDimension returns dim C_s[t] over the generators known so far.
func (r *Resolution) BasisDimension(s, t int) int {
	if s < 0 || t < r.minDeg {
		return 0
	}

	return r.FreeModule(s).Dimension(t)
}

// Differential returns the images of the generators of C_s in degree t, one
// row per generator, in the basis of the target of d_s at degree t.
func (r *Resolution) Differential(s, t int) (*fp.Matrix, error) {
	c, ok := r.lookup(s, t)
	if !ok {
		return nil, fmt.Errorf("(%d, %d): %w", s, t, ErrNotComputed)
	}

	return c.images.Clone(), nil
}

// Kernel returns an RREF basis of ker(d_s: C_s[t] → target[t]).
func (r *Resolution) Kernel(s, t int) (*fp.Matrix, error) {
	c, ok := r.lookup(s, t)
	if !ok {
		return nil, fmt.Errorf("(%d, %d): %w", s, t, ErrNotComputed)
	}

	return c.kernel.Clone(), nil
}

// DifferentialMatrix returns the matrix of d_s at degree t: one row per basis
// element of C_s[t].
func (r *Resolution) DifferentialMatrix(s, t int) (*fp.Matrix, error) {
	if !r.HasComputed(s, t) {
		return nil, fmt.Errorf("(%d, %d): %w", s, t, ErrNotComputed)
	}
	cols := r.targetOf(s).Dimension(t)
	rows := r.FreeModule(s).Dimension(t)
	m := fp.NewMatrix(r.p, rows, cols)
	for i := 0; i < rows; i++ {
		// Row aliases the matrix storage
		if err := m.Row(i).AddScaled(r.applyBasis(s, t, i), 1); err != nil {
			return nil, r.fail("differential matrix", s, t, err)
		}
	}

	return m, nil
}

// Apply returns d_s(v) for v in C_s[t].
func (r *Resolution) Apply(s, t int, v fp.Vector) (fp.Vector, error) {
	if !r.HasComputed(s, t) {
		return fp.Vector{}, fmt.Errorf("(%d, %d): %w", s, t, ErrNotComputed)
	}
	if v.Len() != r.FreeModule(s).Dimension(t) {
		return fp.Vector{}, fmt.Errorf("resolution: apply d_%d at %d: %w", s, t, fp.ErrDimensionMismatch)
	}
	out := fp.NewVector(r.p, r.targetOf(s).Dimension(t))
	var err error
	v.Iter(func(i int, c uint32) {
		if err != nil {
			return
		}
		img := r.applyBasis(s, t, i)
		err = out.AddScaled(img, c)
	})

	return out, err
}

// applyBasis returns d_s of basis element idx of C_s[t]. The generator of
// that element must be committed.
func (r *Resolution) applyBasis(s, t, idx int) fp.Vector {
	e := r.FreeModule(s).Entry(t, idx)
	g, _ := r.lookup(s, e.GenDeg)
	out := fp.NewVector(r.p, r.targetOf(s).Dimension(t))
	module.Act(r.targetOf(s), out, 1, t-e.GenDeg, e.AlgIdx, e.GenDeg, g.images.Row(e.GenIdx))

	return out
}

// MaxComputedDegree returns the largest t with (s, t) committed, or
// MinDegree-1 when none is.
func (r *Resolution) MaxComputedDegree(s int) int {
	best := r.minDeg - 1
	r.cells.Range(func(b bigraded.Bidegree, _ *cell) bool {
		if b.S == s && b.T+r.minDeg > best {
			best = b.T + r.minDeg
		}
		return true
	})

	return best
}
