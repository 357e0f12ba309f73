// SPDX-License-Identifier: MIT

package module

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/sseq/algebra"
	"github.com/katalvlaran/sseq/fp"
)

// FiniteModule is a finite dimensional module with a precomputed action of
// every algebra basis element. It is immutable after construction.
type FiniteModule struct {
	name   string
	alg    algebra.Algebra
	p      fp.ValidPrime
	minDeg int
	names  [][]string // names[t-minDeg][idx]
	// actions[(opDeg, opIdx, modDeg, modIdx)] is the image in degree opDeg+modDeg.
	actions map[[4]int]fp.Vector
}

// NewFiniteModule validates spec against alg and builds the full action table.
//
// Implementation:
//   - Stage 1: check prime, algebra list, generator names and degrees, and
//     every action line (operation is an algebra generator, degrees match,
//     coefficients lie in [0, p), no element is assigned twice).
//   - Stage 2: derive the action of each positive-degree basis element from
//     Algebra.Decompose; unspecified generator actions are zero.
//   - Stage 3: verify g·(b·m) = (g·b)·m for every generator g, basis element b
//     and module basis element m.
//
// Errors: every failure wraps ErrInvalidSpec; independent problems found in
// stage 1 are joined.
func NewFiniteModule(spec *Spec, alg algebra.Algebra) (*FiniteModule, error) {
	p := alg.Prime()
	var problems []error
	bad := func(format string, args ...any) { problems = append(problems, fmt.Errorf(format, args...)) }

	if spec.P != p.Value() {
		bad("module prime %d does not match algebra prime %d", spec.P, p)
	}
	if len(spec.Algebra) > 0 {
		ok := false
		for _, name := range spec.Algebra {
			ok = ok || strings.EqualFold(name, alg.Type().String())
		}
		if !ok {
			bad("module does not support the %s basis", alg.Type())
		}
	}
	if len(spec.Gens) == 0 {
		bad("module has no generators")
	}

	m := &FiniteModule{name: spec.Name, alg: alg, p: p, actions: make(map[[4]int]fp.Vector)}
	if m.name == "" {
		m.name = "module"
	}
	type loc struct{ deg, idx int }
	where := make(map[string]loc, len(spec.Gens))
	minDeg, maxDeg := 0, 0
	for i, g := range spec.Gens {
		if i == 0 || g.Degree < minDeg {
			minDeg = g.Degree
		}
		if i == 0 || g.Degree > maxDeg {
			maxDeg = g.Degree
		}
	}
	if len(spec.Gens) > 0 {
		m.minDeg = minDeg
		m.names = make([][]string, maxDeg-minDeg+1)
	}
	for _, g := range spec.Gens {
		switch {
		case g.Name == "" || strings.ContainsAny(g.Name, " \t=+*"):
			bad("invalid generator name %q", g.Name)
			continue
		case g.Degree < 0:
			bad("generator %q has negative degree %d", g.Name, g.Degree)
			continue
		}
		if _, dup := where[g.Name]; dup {
			bad("duplicate generator %q", g.Name)
			continue
		}
		row := g.Degree - minDeg
		where[g.Name] = loc{g.Degree, len(m.names[row])}
		m.names[row] = append(m.names[row], g.Name)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, errors.Join(problems...))
	}
	if maxDeg-minDeg > alg.MaxDegree() {
		return nil, fmt.Errorf("%w: module spans %d degrees: %w", ErrInvalidSpec, maxDeg-minDeg, algebra.ErrDegreeRangeExceeded)
	}
	if err := alg.ComputeBasis(maxDeg - minDeg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	// Stage 1: explicit generator actions.
	given := make(map[[4]int]fp.Vector)
	for _, line := range spec.Actions {
		act, err := parseAction(line)
		if err != nil {
			bad("%w", err)
			continue
		}
		opDeg, opIdx, err := alg.ParseGenerator(act.op)
		if err != nil {
			bad("action %q: %w", line, err)
			continue
		}
		src, ok := where[act.elem]
		if !ok {
			bad("action %q: unknown generator %q", line, act.elem)
			continue
		}
		tgt := src.deg + opDeg
		v := fp.NewVector(p, m.Dimension(tgt))
		for _, term := range act.rhs {
			dst, ok := where[term.elem]
			switch {
			case !ok:
				bad("action %q: unknown generator %q", line, term.elem)
			case dst.deg != tgt:
				bad("action %q: %s has degree %d, want %d", line, term.elem, dst.deg, tgt)
			case term.coeff < 0 || term.coeff >= int64(p):
				bad("action %q: coefficient %d outside F_%d", line, term.coeff, p)
			default:
				v.AddEntry(dst.idx, uint32(term.coeff))
			}
		}
		key := [4]int{opDeg, opIdx, src.deg, src.idx}
		if _, dup := given[key]; dup {
			bad("action %q: %s %s assigned twice", line, act.op, act.elem)
			continue
		}
		given[key] = v
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, errors.Join(problems...))
	}

	// Stage 2: derived actions, filled bottom-up by operation degree.
	span := maxDeg - minDeg
	for opDeg := 1; opDeg <= span; opDeg++ {
		for opIdx := 0; opIdx < alg.Dimension(opDeg); opIdx++ {
			for modDeg := minDeg; modDeg+opDeg <= maxDeg; modDeg++ {
				for modIdx := 0; modIdx < m.Dimension(modDeg); modIdx++ {
					v, err := m.derive(given, opDeg, opIdx, modDeg, modIdx)
					if err != nil {
						return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
					}
					m.actions[[4]int{opDeg, opIdx, modDeg, modIdx}] = v
				}
			}
		}
	}

	// Stage 3: associativity.
	if err := m.checkAssociativity(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	return m, nil
}

// derive computes op·m for op of positive degree. Generators read the given
// table; other elements use Decompose, whose factors of lower degree are
// already in m.actions.
func (m *FiniteModule) derive(given map[[4]int]fp.Vector, opDeg, opIdx, modDeg, modIdx int) (fp.Vector, error) {
	tgt := modDeg + opDeg
	if gens := m.alg.Generators(opDeg); len(gens) == 1 && gens[0] == opIdx {
		if v, ok := given[[4]int{opDeg, opIdx, modDeg, modIdx}]; ok {
			return v, nil
		}

		return fp.NewVector(m.p, m.Dimension(tgt)), nil
	}
	terms, err := m.alg.Decompose(opDeg, opIdx)
	if err != nil {
		return fp.Vector{}, err
	}
	out := fp.NewVector(m.p, m.Dimension(tgt))
	var addErr error
	for _, term := range terms {
		// y·m first, then the generator on the result.
		inner := m.unit(modDeg, modIdx)
		if term.RestDeg > 0 {
			inner = m.actions[[4]int{term.RestDeg, term.RestIdx, modDeg, modIdx}]
		}
		mid := modDeg + term.RestDeg
		inner.Iter(func(i int, c uint32) {
			g, ok := given[[4]int{term.GenDeg, term.GenIdx, mid, i}]
			if !ok || addErr != nil {
				return
			}
			addErr = out.AddScaled(g, m.p.Mul(c, term.Coeff))
		})
		if addErr != nil {
			return fp.Vector{}, fmt.Errorf("derive action in degree %d on %s: %w", opDeg, m.names[modDeg-m.minDeg][modIdx], addErr)
		}
	}

	return out, nil
}

func (m *FiniteModule) unit(t, idx int) fp.Vector {
	v := fp.NewVector(m.p, m.Dimension(t))
	v.SetEntry(idx, 1)

	return v
}

func (m *FiniteModule) checkAssociativity() error {
	maxDeg := m.minDeg + len(m.names) - 1
	span := maxDeg - m.minDeg
	for gDeg := 1; gDeg <= span; gDeg++ {
		for _, g := range m.alg.Generators(gDeg) {
			for bDeg := 1; gDeg+bDeg <= span; bDeg++ {
				for b := 0; b < m.alg.Dimension(bDeg); b++ {
					gb := fp.NewVector(m.p, m.alg.Dimension(gDeg+bDeg))
					m.alg.MultiplyBasisElements(gb, 1, gDeg, g, bDeg, b)
					for modDeg := m.minDeg; modDeg+gDeg+bDeg <= maxDeg; modDeg++ {
						for x := 0; x < m.Dimension(modDeg); x++ {
							tgt := modDeg + gDeg + bDeg
							left := fp.NewVector(m.p, m.Dimension(tgt))
							bx := fp.NewVector(m.p, m.Dimension(modDeg+bDeg))
							m.ActOnBasis(bx, 1, bDeg, b, modDeg, x)
							Act(m, left, 1, gDeg, g, modDeg+bDeg, bx)
							right := fp.NewVector(m.p, m.Dimension(tgt))
							gb.Iter(func(i int, c uint32) {
								m.ActOnBasis(right, c, gDeg+bDeg, i, modDeg, x)
							})
							if !left.Equal(right) {
								return fmt.Errorf("%s (%s %s) = %s but (%s) %s = %s",
									m.alg.BasisElementToString(gDeg, g), m.alg.BasisElementToString(bDeg, b), m.BasisName(modDeg, x),
									m.ElementToString(tgt, left),
									m.alg.ElementToString(gDeg+bDeg, gb), m.BasisName(modDeg, x),
									m.ElementToString(tgt, right))
							}
						}
					}
				}
			}
		}
	}

	return nil
}

// GroundField is F_p concentrated in degree 0, the module whose resolution
// computes the Ext of the sphere.
func GroundField(alg algebra.Algebra) *FiniteModule {
	p := alg.Prime()
	return &FiniteModule{
		name:    fmt.Sprintf("S_%d", p),
		alg:     alg,
		p:       p,
		names:   [][]string{{"x0"}},
		actions: map[[4]int]fp.Vector{},
	}
}

// Algebra returns the acting algebra.
func (m *FiniteModule) Algebra() algebra.Algebra { return m.alg }

// Prime returns p.
func (m *FiniteModule) Prime() fp.ValidPrime { return m.p }

// Name returns the module name from the spec.
func (m *FiniteModule) Name() string { return m.name }

// MinDegree returns the lowest generator degree.
func (m *FiniteModule) MinDegree() int { return m.minDeg }

// MaxDegree returns the highest generator degree.
func (m *FiniteModule) MaxDegree() int { return m.minDeg + len(m.names) - 1 }

// TotalDimension returns Σ_t Dimension(t).
func (m *FiniteModule) TotalDimension() int {
	n := 0
	for _, row := range m.names {
		n += len(row)
	}

	return n
}

// IsUnit reports whether m is one-dimensional, i.e. a shifted ground field.
func (m *FiniteModule) IsUnit() bool { return m.TotalDimension() == 1 }

// Dimension returns the dimension in degree t.
func (m *FiniteModule) Dimension(t int) int {
	if t < m.minDeg || t-m.minDeg >= len(m.names) {
		return 0
	}

	return len(m.names[t-m.minDeg])
}

// ActOnBasis adds coeff·(op·x) to result.
func (m *FiniteModule) ActOnBasis(result fp.Vector, coeff uint32, opDeg, opIdx, modDeg, modIdx int) {
	if opDeg == 0 {
		result.AddEntry(modIdx, coeff)
		return
	}
	v, ok := m.actions[[4]int{opDeg, opIdx, modDeg, modIdx}]
	if !ok {
		return // lands outside the module
	}
	if err := result.AddScaled(v, coeff); err != nil {
		panic(fmt.Sprintf("module: act on %s in degree %d: %v", m.name, modDeg+opDeg, err))
	}
}

// BasisName returns the generator name of basis element idx in degree t.
func (m *FiniteModule) BasisName(t, idx int) string {
	return m.names[t-m.minDeg][idx]
}

// ElementToString renders a combination such as "x2 + 2 y2".
func (m *FiniteModule) ElementToString(t int, v fp.Vector) string {
	var terms []string
	v.Iter(func(i int, c uint32) {
		if c == 1 {
			terms = append(terms, m.BasisName(t, i))
		} else {
			terms = append(terms, fmt.Sprintf("%d %s", c, m.BasisName(t, i)))
		}
	})
	if len(terms) == 0 {
		return "0"
	}

	return strings.Join(terms, " + ")
}

var _ Module = (*FiniteModule)(nil)
