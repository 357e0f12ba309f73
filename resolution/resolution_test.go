// SPDX-License-Identifier: MIT

package resolution_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/katalvlaran/sseq/algebra"
	"github.com/katalvlaran/sseq/bigraded"
	"github.com/katalvlaran/sseq/checkpoint"
	"github.com/katalvlaran/sseq/fp"
	"github.com/katalvlaran/sseq/module"
	"github.com/katalvlaran/sseq/resolution"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func steenrod(t *testing.T, p uint32, typ algebra.Type, opts ...algebra.Option) *algebra.Steenrod {
	t.Helper()
	a, err := algebra.New(fp.MustPrime(p), typ, opts...)
	require.NoError(t, err)

	return a
}

func sphere(t *testing.T, p uint32, typ algebra.Type, opts ...resolution.Option) *resolution.Resolution {
	t.Helper()
	res, err := resolution.New(module.GroundField(steenrod(t, p, typ)), opts...)
	require.NoError(t, err)

	return res
}

func builtin(t *testing.T, name string, typ algebra.Type, opts ...resolution.Option) *resolution.Resolution {
	t.Helper()
	spec, err := module.Find(module.Name{Module: name})
	require.NoError(t, err)
	m, err := module.NewFiniteModule(spec, steenrod(t, spec.P, typ))
	require.NoError(t, err)
	res, err := resolution.New(m, opts...)
	require.NoError(t, err)

	return res
}

// ext2 lists the non-zero Ext^{s,t}(F_2, F_2) for s ≤ 3, t ≤ 10; every
// entry is one-dimensional.
var ext2 = map[int][]int{
	0: {0},
	1: {1, 2, 4, 8},
	2: {2, 4, 5, 8, 9, 10},
	3: {3, 6, 10},
}

func TestSphereChart(t *testing.T) {
	for _, typ := range []algebra.Type{algebra.Milnor, algebra.Adem} {
		t.Run(typ.String(), func(t *testing.T) {
			res := sphere(t, 2, typ)
			require.NoError(t, res.ResolveThroughDegree(context.Background(), 3, 10))
			for s := 0; s <= 3; s++ {
				nonzero := make(map[int]bool)
				for _, tt := range ext2[s] {
					nonzero[tt] = true
				}
				for tt := 0; tt <= 10; tt++ {
					want := 0
					if nonzero[tt] {
						want = 1
					}
					assert.Equal(t, want, res.NumberOfGens(s, tt), "(%d, %d)", s, tt)
				}
			}
			assert.Equal(t, "·     ·       ·\n·   · ·     · · ·\n· ·   ·       ·\n·", res.Chart(3))
		})
	}
}

func TestOddPrimeSphere(t *testing.T) {
	res := sphere(t, 3, algebra.Milnor)
	require.NoError(t, res.ResolveThroughDegree(context.Background(), 1, 13))
	assert.Equal(t, 1, res.NumberOfGens(0, 0))
	for tt := 0; tt <= 13; tt++ {
		want := 0
		if tt == 1 || tt == 4 || tt == 12 {
			want = 1
		}
		assert.Equal(t, want, res.NumberOfGens(1, tt), "t = %d", tt)
	}
}

// checkComplex verifies d∘d = 0, exactness and minimality on every computed
// bidegree.
func checkComplex(t *testing.T, res *resolution.Resolution, sMax, tMax int) {
	t.Helper()
	for tt := res.MinDegree(); tt <= tMax; tt++ {
		for s := 0; s <= sMax; s++ {
			d, err := res.DifferentialMatrix(s, tt)
			require.NoError(t, err)
			if s == 0 {
				assert.Equal(t, res.Target().Dimension(tt), d.Rank(), "augmentation onto in degree %d", tt)
				continue
			}
			prev, err := res.DifferentialMatrix(s-1, tt)
			require.NoError(t, err)
			dd, err := fp.Mul(d, prev)
			require.NoError(t, err)
			assert.True(t, dd.IsZero(), "d∘d at (%d, %d)", s, tt)

			ker, err := res.Kernel(s-1, tt)
			require.NoError(t, err)
			assert.Equal(t, ker.Rows(), d.Rank(), "exactness at (%d, %d)", s-1, tt)

			images, err := res.Differential(s, tt)
			require.NoError(t, err)
			prevFree := res.FreeModule(s - 1)
			for g := 0; g < images.Rows(); g++ {
				for i := 0; i < prevFree.NumGens(tt); i++ {
					x, err := images.Entry(g, prevFree.Offset(tt, tt, i))
					require.NoError(t, err)
					assert.Zero(t, x, "generator %d of (%d, %d) hits a generator", g, s, tt)
				}
			}
		}
	}
}

func TestChainComplexInvariants(t *testing.T) {
	cases := []struct {
		name       string
		res        func(t *testing.T) *resolution.Resolution
		sMax, tMax int
	}{
		{"S_2", func(t *testing.T) *resolution.Resolution { return sphere(t, 2, algebra.Milnor) }, 4, 14},
		{"S_2 adem", func(t *testing.T) *resolution.Resolution { return sphere(t, 2, algebra.Adem) }, 3, 12},
		{"S_3", func(t *testing.T) *resolution.Resolution { return sphere(t, 3, algebra.Milnor) }, 3, 16},
		{"C2", func(t *testing.T) *resolution.Resolution { return builtin(t, "C2", algebra.Milnor) }, 3, 10},
		{"Joker", func(t *testing.T) *resolution.Resolution { return builtin(t, "Joker", algebra.Milnor) }, 3, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := tc.res(t)
			require.NoError(t, res.ResolveThroughDegree(context.Background(), tc.sMax, tc.tMax))
			checkComplex(t, res, tc.sMax, tc.tMax)
		})
	}
}

func TestIdempotentAndExtensible(t *testing.T) {
	ctx := context.Background()
	res := sphere(t, 2, algebra.Milnor)
	require.NoError(t, res.ResolveThroughDegree(ctx, 2, 6))
	before, err := res.Differential(2, 5)
	require.NoError(t, err)
	require.NoError(t, res.ResolveThroughDegree(ctx, 2, 6))
	require.NoError(t, res.ResolveThroughDegree(ctx, 1, 4))
	after, err := res.Differential(2, 5)
	require.NoError(t, err)
	assert.True(t, before.Equal(after))

	require.NoError(t, res.ResolveThroughDegree(ctx, 3, 10))
	assert.Equal(t, 1, res.NumberOfGens(3, 10))
	assert.True(t, res.HasComputed(3, 10))
	assert.False(t, res.HasComputed(4, 10))
	assert.Equal(t, 10, res.MaxComputedDegree(3))
}

func TestResolveThroughStem(t *testing.T) {
	res := sphere(t, 2, algebra.Milnor)
	require.NoError(t, res.ResolveThroughStem(context.Background(), 2, 3))
	assert.True(t, res.HasComputed(2, 5))
	assert.True(t, res.HasComputed(0, 5))
	assert.False(t, res.HasComputed(0, 6))
	assert.Equal(t, 1, res.NumberOfGens(2, 5))
}

func TestSerialConcurrentAgree(t *testing.T) {
	ctx := context.Background()
	serial := sphere(t, 2, algebra.Milnor)
	concurrent := sphere(t, 2, algebra.Milnor, resolution.WithConcurrency(4))
	require.NoError(t, serial.ResolveThroughDegree(ctx, 5, 18))
	require.NoError(t, concurrent.ResolveThroughDegree(ctx, 5, 18))

	for s := 0; s <= 5; s++ {
		for tt := 0; tt <= 18; tt++ {
			a, err := serial.Differential(s, tt)
			require.NoError(t, err)
			b, err := concurrent.Differential(s, tt)
			require.NoError(t, err)
			assert.True(t, a.Equal(b), "(%d, %d)", s, tt)
		}
	}
	assert.Equal(t, serial.Chart(5), concurrent.Chart(5))
}

func TestInvalidBounds(t *testing.T) {
	ctx := context.Background()
	res := sphere(t, 2, algebra.Milnor)
	for _, b := range [][2]int{{-1, 4}, {0, -1}, {3, 2}} {
		err := res.ResolveThroughDegree(ctx, b[0], b[1])
		require.ErrorIs(t, err, resolution.ErrInvalidBound, "%v", b)
		assert.ErrorIs(t, err, resolution.ErrInput)
	}
	assert.False(t, res.HasComputed(0, 0))
	assert.Equal(t, "", res.Chart(0))

	small, err := resolution.New(module.GroundField(steenrod(t, 2, algebra.Milnor, algebra.WithMaxDegree(8))))
	require.NoError(t, err)
	assert.ErrorIs(t, small.ResolveThroughDegree(ctx, 1, 9), algebra.ErrDegreeRangeExceeded)
	assert.False(t, small.HasComputed(0, 0))

	capped := sphere(t, 2, algebra.Milnor, resolution.WithCapacity(2, 6))
	assert.ErrorIs(t, capped.ResolveThroughDegree(ctx, 3, 6), bigraded.ErrDegreeRangeExceeded)
	assert.ErrorIs(t, capped.ResolveThroughDegree(ctx, 2, 7), bigraded.ErrDegreeRangeExceeded)
	require.NoError(t, capped.ResolveThroughDegree(ctx, 2, 6))
}

func TestQueriesBeforeCompute(t *testing.T) {
	res := sphere(t, 2, algebra.Milnor)
	_, err := res.Differential(1, 1)
	assert.ErrorIs(t, err, resolution.ErrNotComputed)
	_, err = res.Kernel(1, 1)
	assert.ErrorIs(t, err, resolution.ErrNotComputed)
	_, err = res.DifferentialMatrix(1, 1)
	assert.ErrorIs(t, err, resolution.ErrNotComputed)
	assert.Equal(t, 0, res.NumberOfGens(1, 1))
	assert.Equal(t, 0, res.BasisDimension(1, 1))
	assert.Equal(t, "S_2@milnor p=2", res.Config())
}

func TestApply(t *testing.T) {
	res := sphere(t, 2, algebra.Milnor)
	require.NoError(t, res.ResolveThroughDegree(context.Background(), 2, 4))
	// C_1[2] = span{Sq(1) h0, h1}; d(Sq(1) h0) = Sq(1)Sq(1) = 0.
	require.Equal(t, 2, res.BasisDimension(1, 2))
	v := fp.NewVector(fp.MustPrime(2), 2)
	v.SetEntry(0, 1)
	out, err := res.Apply(1, 2, v)
	require.NoError(t, err)
	assert.True(t, out.IsZero())

	v = fp.NewVector(fp.MustPrime(2), 2)
	v.SetEntry(1, 1)
	out, err = res.Apply(1, 2, v)
	require.NoError(t, err)
	assert.False(t, out.IsZero())

	_, err = res.Apply(1, 2, fp.NewVector(fp.MustPrime(2), 3))
	assert.ErrorIs(t, err, fp.ErrDimensionMismatch)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, workers := range []int{1, 3} {
		res := sphere(t, 2, algebra.Milnor, resolution.WithConcurrency(workers))
		err := res.ResolveThroughDegree(ctx, 2, 6)
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, res.HasComputed(0, 0))
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := checkpoint.NewMemory()
	first := sphere(t, 2, algebra.Milnor, resolution.WithCheckpoints(store), resolution.WithCompression(true))
	require.NoError(t, first.ResolveThroughDegree(ctx, 3, 10))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 4*11)
	assert.Contains(t, keys, "S_2-milnor-p2/s3_t10.res")

	second := sphere(t, 2, algebra.Milnor, resolution.WithCheckpoints(store), resolution.WithConcurrency(3))
	require.NoError(t, second.ResolveThroughDegree(ctx, 3, 10))
	for s := 0; s <= 3; s++ {
		for tt := 0; tt <= 10; tt++ {
			a, err := first.Differential(s, tt)
			require.NoError(t, err)
			b, err := second.Differential(s, tt)
			require.NoError(t, err)
			assert.True(t, a.Equal(b), "(%d, %d)", s, tt)
		}
	}
	checkComplex(t, second, 3, 10)

	// a fresh run writes the same bytes
	other := checkpoint.NewMemory()
	third := sphere(t, 2, algebra.Milnor, resolution.WithCheckpoints(other), resolution.WithCompression(true))
	require.NoError(t, third.ResolveThroughDegree(ctx, 3, 10))
	for _, k := range keys {
		a, err := store.Get(ctx, k)
		require.NoError(t, err)
		b, err := other.Get(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, a, b, k)
	}
}

func TestCheckpointMismatch(t *testing.T) {
	ctx := context.Background()
	store := checkpoint.NewMemory()
	milnorRes := sphere(t, 2, algebra.Milnor, resolution.WithCheckpoints(store), resolution.WithRawCheckpointKeys())
	require.NoError(t, milnorRes.ResolveThroughDegree(ctx, 1, 2))

	ademRes := sphere(t, 2, algebra.Adem, resolution.WithCheckpoints(store), resolution.WithRawCheckpointKeys())
	err := ademRes.ResolveThroughDegree(ctx, 1, 2)
	require.ErrorIs(t, err, checkpoint.ErrAlgebraMismatch)
	var be *resolution.BidegreeError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 0, be.S)
	assert.Equal(t, 0, be.T)
	assert.Equal(t, "load", be.Op)

	// a record that claims no generator where one is needed
	bad := checkpoint.NewMemory()
	data, err := checkpoint.Encode(checkpoint.Record{
		Prime: 2, Algebra: algebra.MilnorMagic, S: 0, T: 0,
		Differential: fp.NewMatrix(fp.MustPrime(2), 0, 1),
	}, checkpoint.Options{})
	require.NoError(t, err)
	require.NoError(t, bad.Put(ctx, checkpoint.Key(0, 0), data))
	res := sphere(t, 2, algebra.Milnor, resolution.WithCheckpoints(bad), resolution.WithRawCheckpointKeys())
	assert.ErrorIs(t, res.ResolveThroughDegree(ctx, 0, 0), resolution.ErrInconsistentCheckpoint)
	assert.False(t, res.HasComputed(0, 0))
}

type brokenStore struct{ checkpoint.Store }

func (brokenStore) Put(context.Context, string, []byte) error {
	return &checkpoint.IOError{Op: "put", Key: "x", Err: errors.New("disk full")}
}

func TestCheckpointWriteFailure(t *testing.T) {
	mem := checkpoint.NewMemory()
	res := sphere(t, 2, algebra.Milnor,
		resolution.WithCheckpoints(brokenStore{mem}),
		resolution.WithRetry(checkpoint.RetryPolicy{Attempts: 2, InitialDelay: 1, MaxDelay: 1}))
	err := res.ResolveThroughDegree(context.Background(), 1, 1)
	var ioe *checkpoint.IOError
	require.ErrorAs(t, err, &ioe)
	var be *resolution.BidegreeError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "save", be.Op)
	assert.False(t, res.HasComputed(0, 0))

	// nothing was committed, so a later run with a working store succeeds
	assert.Equal(t, 0, res.FreeModule(0).NumGens(0))
	keys, err := mem.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)

	again := sphere(t, 2, algebra.Milnor, resolution.WithCheckpoints(mem))
	require.NoError(t, again.ResolveThroughDegree(context.Background(), 1, 1))
	assert.True(t, again.HasComputed(0, 0))
	assert.True(t, again.HasComputed(1, 1))
	assert.Equal(t, 1, again.NumberOfGens(1, 1))
	keys, err = mem.List(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, keys)
}

func TestShiftedModule(t *testing.T) {
	spec, err := module.Find(module.Name{Module: "S_2", Shift: 2})
	require.NoError(t, err)
	m, err := module.NewFiniteModule(spec, steenrod(t, 2, algebra.Milnor))
	require.NoError(t, err)
	res, err := resolution.New(m)
	require.NoError(t, err)
	ctx := context.Background()
	assert.ErrorIs(t, res.ResolveThroughDegree(ctx, 2, 3), resolution.ErrInvalidBound)
	require.NoError(t, res.ResolveThroughDegree(ctx, 2, 12))
	for s, ts := range ext2 {
		if s > 2 {
			continue
		}
		for _, tt := range ts {
			assert.Equal(t, 1, res.NumberOfGens(s, tt+2), "(%d, %d)", s, tt+2)
		}
	}
}
