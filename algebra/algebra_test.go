// SPDX-License-Identifier: MIT

package algebra_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sseq/algebra"
	"github.com/katalvlaran/sseq/fp"
)

func mustAlgebra(t *testing.T, p uint32, typ algebra.Type) *algebra.Steenrod {
	t.Helper()
	a, err := algebra.New(fp.MustPrime(p), typ, algebra.WithMaxDegree(64))
	require.NoError(t, err)

	return a
}

// indexByName finds a basis element by its rendered name.
func indexByName(t *testing.T, a *algebra.Steenrod, degree int, name string) int {
	t.Helper()
	for i := 0; i < a.Dimension(degree); i++ {
		if a.BasisElementToString(degree, i) == name {
			return i
		}
	}
	t.Fatalf("no basis element %q in degree %d", name, degree)

	return -1
}

func product(t *testing.T, a *algebra.Steenrod, rDeg int, r string, sDeg int, s string) string {
	t.Helper()
	v := fp.NewVector(a.Prime(), a.Dimension(rDeg+sDeg))
	a.MultiplyBasisElements(v, 1, rDeg, indexByName(t, a, rDeg, r), sDeg, indexByName(t, a, sDeg, s))

	return a.ElementToString(rDeg+sDeg, v)
}

func TestParseType(t *testing.T) {
	typ, err := algebra.ParseType("Adem")
	require.NoError(t, err)
	assert.Equal(t, algebra.Adem, typ)
	typ, err = algebra.ParseType("")
	require.NoError(t, err)
	assert.Equal(t, algebra.Milnor, typ)
	_, err = algebra.ParseType("serre-cartan")
	assert.ErrorIs(t, err, algebra.ErrUnknownType)
	assert.Equal(t, "milnor", algebra.Milnor.String())
}

func TestDimensions(t *testing.T) {
	cases := []struct {
		p    uint32
		want []int
	}{
		{2, []int{1, 1, 1, 2, 2, 2, 3, 4, 4, 5, 6}},
		{3, []int{1, 1, 0, 0, 1, 2, 1, 0, 1, 2, 1}},
	}
	for _, tc := range cases {
		for _, typ := range []algebra.Type{algebra.Milnor, algebra.Adem} {
			t.Run(fmt.Sprintf("p%d_%s", tc.p, typ), func(t *testing.T) {
				a := mustAlgebra(t, tc.p, typ)
				require.NoError(t, a.ComputeBasis(len(tc.want)-1))
				got := make([]int, len(tc.want))
				for d := range got {
					got[d] = a.Dimension(d)
				}
				assert.Equal(t, tc.want, got)
				assert.Equal(t, 0, a.Dimension(-1))
			})
		}
	}
}

func TestMilnorProducts(t *testing.T) {
	a := mustAlgebra(t, 2, algebra.Milnor)
	assert.Equal(t, "0", product(t, a, 1, "Sq(1)", 1, "Sq(1)"))
	assert.Equal(t, "Sq(3)", product(t, a, 1, "Sq(1)", 2, "Sq(2)"))
	assert.Equal(t, "Sq(3) + Sq(0,1)", product(t, a, 2, "Sq(2)", 1, "Sq(1)"))
	assert.Equal(t, "Sq(1,1)", product(t, a, 2, "Sq(2)", 2, "Sq(2)"))

	b := mustAlgebra(t, 3, algebra.Milnor)
	assert.Equal(t, "2 P(2)", product(t, b, 4, "P(1)", 4, "P(1)"))
	assert.Equal(t, "0", product(t, b, 1, "Q_0", 1, "Q_0"))
	assert.Equal(t, "Q_0 Q_1", product(t, b, 1, "Q_0", 5, "Q_1"))
	assert.Equal(t, "2 Q_0 Q_1", product(t, b, 5, "Q_1", 1, "Q_0"))
}

func TestAdemProducts(t *testing.T) {
	a := mustAlgebra(t, 2, algebra.Adem)
	assert.Equal(t, "0", product(t, a, 1, "Sq1", 1, "Sq1"))
	assert.Equal(t, "Sq3", product(t, a, 1, "Sq1", 2, "Sq2"))
	assert.Equal(t, "Sq3 Sq1", product(t, a, 2, "Sq2", 2, "Sq2"))
	assert.Equal(t, "Sq2 Sq1", product(t, a, 2, "Sq2", 1, "Sq1"))

	b := mustAlgebra(t, 3, algebra.Adem)
	assert.Equal(t, "2 P2", product(t, b, 4, "P1", 4, "P1"))
	assert.Equal(t, "0", product(t, b, 1, "b", 1, "b"))
}

// TestAssociativity checks (xy)z = x(yz) over all basis triples of small
// total degree.
func TestAssociativity(t *testing.T) {
	for _, tc := range []struct {
		p   uint32
		max int
	}{{2, 9}, {3, 14}} {
		for _, typ := range []algebra.Type{algebra.Milnor, algebra.Adem} {
			a := mustAlgebra(t, tc.p, typ)
			p := a.Prime()
			for d1 := 1; d1 <= tc.max; d1++ {
				for d2 := 1; d1+d2 <= tc.max; d2++ {
					for d3 := 1; d1+d2+d3 <= tc.max; d3++ {
						for i := 0; i < a.Dimension(d1); i++ {
							for j := 0; j < a.Dimension(d2); j++ {
								for k := 0; k < a.Dimension(d3); k++ {
									xy := fp.NewVector(p, a.Dimension(d1+d2))
									a.MultiplyBasisElements(xy, 1, d1, i, d2, j)
									left := fp.NewVector(p, a.Dimension(d1+d2+d3))
									xy.Iter(func(m int, c uint32) { a.MultiplyBasisElements(left, c, d1+d2, m, d3, k) })

									yz := fp.NewVector(p, a.Dimension(d2+d3))
									a.MultiplyBasisElements(yz, 1, d2, j, d3, k)
									right := fp.NewVector(p, a.Dimension(d1+d2+d3))
									yz.Iter(func(m int, c uint32) { a.MultiplyBasisElements(right, c, d1, i, d2+d3, m) })
									require.True(t, left.Equal(right), "p=%d %s: (%d,%d)(%d,%d)(%d,%d)", tc.p, typ, d1, i, d2, j, d3, k)
								}
							}
						}
					}
				}
			}
		}
	}
}

// TestCrossBasisConsistency checks that the change of basis is invertible
// and multiplicative: ToMilnor(x·y) = ToMilnor(x)·ToMilnor(y).
func TestCrossBasisConsistency(t *testing.T) {
	for _, tc := range []struct {
		p   uint32
		max int
	}{{2, 14}, {3, 30}, {5, 40}} {
		adem := mustAlgebra(t, tc.p, algebra.Adem)
		milnor := mustAlgebra(t, tc.p, algebra.Milnor)
		p := adem.Prime()
		for d := 0; d <= tc.max; d++ {
			require.Equal(t, milnor.Dimension(d), adem.Dimension(d), "dim %d", d)
			m, err := algebra.ChangeOfBasis(adem, milnor, d)
			require.NoError(t, err)
			require.Equal(t, adem.Dimension(d), m.Rank(), "change of basis singular in degree %d", d)
		}
		for d1 := 1; d1 < tc.max; d1++ {
			for d2 := 1; d1+d2 <= tc.max; d2++ {
				for i := 0; i < adem.Dimension(d1); i++ {
					for j := 0; j < adem.Dimension(d2); j++ {
						prod := fp.NewVector(p, adem.Dimension(d1+d2))
						adem.MultiplyBasisElements(prod, 1, d1, i, d2, j)
						lhs := fp.NewVector(p, milnor.Dimension(d1+d2))
						var err error
						prod.Iter(func(k int, c uint32) {
							v, e := algebra.ToMilnor(adem, milnor, d1+d2, k)
							if e != nil {
								err = e
								return
							}
							require.NoError(t, lhs.AddScaled(v, c))
						})
						require.NoError(t, err)

						x, err := algebra.ToMilnor(adem, milnor, d1, i)
						require.NoError(t, err)
						y, err := algebra.ToMilnor(adem, milnor, d2, j)
						require.NoError(t, err)
						rhs := fp.NewVector(p, milnor.Dimension(d1+d2))
						algebra.MultiplyElements(milnor, rhs, 1, d1, x, d2, y)
						require.True(t, lhs.Equal(rhs), "p=%d %s · %s", tc.p,
							adem.BasisElementToString(d1, i), adem.BasisElementToString(d2, j))
					}
				}
			}
		}
	}
}

func TestGenerators(t *testing.T) {
	a := mustAlgebra(t, 2, algebra.Milnor)
	assert.Len(t, a.Generators(4), 1)
	assert.Empty(t, a.Generators(3))
	deg, idx, err := a.ParseGenerator("Sq^4")
	require.NoError(t, err)
	assert.Equal(t, 4, deg)
	assert.Equal(t, "Sq4", a.GeneratorName(deg, idx))
	assert.Equal(t, "Sq(4)", a.BasisElementToString(deg, idx))
	_, _, err = a.ParseGenerator("Sq3")
	assert.ErrorIs(t, err, algebra.ErrUnknownGenerator)
	_, _, err = a.ParseGenerator("P1")
	assert.ErrorIs(t, err, algebra.ErrUnknownGenerator)

	b := mustAlgebra(t, 3, algebra.Adem)
	for _, tc := range []struct {
		name   string
		degree int
		str    string
	}{
		{"b", 1, "b"},
		{"P1", 4, "P1"},
		{"P^3", 12, "P3"},
	} {
		deg, idx, err := b.ParseGenerator(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.degree, deg)
		assert.Equal(t, tc.str, b.BasisElementToString(deg, idx))
	}
	_, _, err = b.ParseGenerator("P2")
	assert.ErrorIs(t, err, algebra.ErrUnknownGenerator)
}

// TestDecompose recomposes every basis element from its decomposition.
func TestDecompose(t *testing.T) {
	for _, p := range []uint32{2, 3} {
		for _, typ := range []algebra.Type{algebra.Milnor, algebra.Adem} {
			a := mustAlgebra(t, p, typ)
			for d := 1; d <= 20; d++ {
				for idx := 0; idx < a.Dimension(d); idx++ {
					terms, err := a.Decompose(d, idx)
					require.NoError(t, err)
					got := fp.NewVector(a.Prime(), a.Dimension(d))
					for _, term := range terms {
						require.NotEmpty(t, a.GeneratorName(term.GenDeg, term.GenIdx))
						require.Equal(t, d, term.GenDeg+term.RestDeg)
						a.MultiplyBasisElements(got, term.Coeff, term.GenDeg, term.GenIdx, term.RestDeg, term.RestIdx)
					}
					want := fp.NewVector(a.Prime(), a.Dimension(d))
					want.SetEntry(idx, 1)
					require.True(t, got.Equal(want), "p=%d %s %s", p, typ, a.BasisElementToString(d, idx))
				}
			}
		}
	}
	a := mustAlgebra(t, 2, algebra.Milnor)
	_, err := a.Decompose(0, 0)
	assert.ErrorIs(t, err, algebra.ErrIndexOutOfRange)
}

func TestDegreeRange(t *testing.T) {
	a, err := algebra.New(fp.MustPrime(2), algebra.Milnor, algebra.WithMaxDegree(8))
	require.NoError(t, err)
	assert.ErrorIs(t, a.ComputeBasis(9), algebra.ErrDegreeRangeExceeded)
	assert.NoError(t, a.ComputeBasis(8))
	assert.NotEqual(t, algebra.MilnorMagic, algebra.AdemMagic)
	assert.Equal(t, algebra.MilnorMagic, a.Magic())
}

func TestConcurrentBasis(t *testing.T) {
	a := mustAlgebra(t, 2, algebra.Milnor)
	var wg sync.WaitGroup
	dims := make([]int, 16)
	for i := range dims {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dims[i] = a.Dimension(20)
		}(i)
	}
	wg.Wait()
	for _, d := range dims {
		assert.Equal(t, dims[0], d)
	}
}
