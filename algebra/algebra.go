// SPDX-License-Identifier: MIT

package algebra

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/katalvlaran/sseq/fp"
)

// Type selects the basis encoding of a Steenrod instance.
type Type uint8

const (
	// Milnor is the Milnor basis Q_E P(R).
	Milnor Type = iota + 1
	// Adem is the admissible-monomial basis.
	Adem
)

// Identifiers written into checkpoint headers.
const (
	MilnorMagic uint32 = 0x4d494c4e // "MILN"
	AdemMagic   uint32 = 0x4144454d // "ADEM"
)

// DefaultMaxDegree is the largest internal degree served unless WithMaxDegree
// says otherwise.
const DefaultMaxDegree = 1 << 10

// String returns the lower-case type name used in configuration files.
func (t Type) String() string {
	switch t {
	case Milnor:
		return "milnor"
	case Adem:
		return "adem"
	default:
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
}

// ParseType maps "milnor" or "adem" (any case) to a Type. The empty string
// selects Milnor.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "milnor":
		return Milnor, nil
	case "adem":
		return Adem, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownType)
	}
}

// Algebra is a connected graded algebra over F_p with a finite ordered basis
// in each degree. Implementations are safe for concurrent use.
type Algebra interface {
	// Prime returns the characteristic.
	Prime() fp.ValidPrime
	// Type reports the basis encoding.
	Type() Type
	// Magic identifies the algebra and basis in persisted data.
	Magic() uint32
	// MaxDegree is the largest degree ComputeBasis accepts.
	MaxDegree() int
	// ComputeBasis enumerates bases through degree. Calling it again is a no-op.
	ComputeBasis(degree int) error
	// Dimension returns the dimension in degree; 0 for negative degrees.
	Dimension(degree int) int
	// MultiplyBasisElements adds coeff·(r·s) to result, which lives in degree
	// rDeg+sDeg.
	MultiplyBasisElements(result fp.Vector, coeff uint32, rDeg, rIdx, sDeg, sIdx int)
	// BasisElementToString renders one basis element.
	BasisElementToString(degree, idx int) string
	// ElementToString renders a linear combination of basis elements.
	ElementToString(degree int, v fp.Vector) string
	// Generators lists the basis indices of algebra generators in degree.
	Generators(degree int) []int
	// Decompose writes a basis element of positive degree as Σ c·g·y with g a
	// generator.
	Decompose(degree, idx int) ([]Term, error)
	// GeneratorName returns the module-specification name of a generator or "".
	GeneratorName(degree, idx int) string
	// ParseGenerator is the inverse of GeneratorName.
	ParseGenerator(name string) (degree, idx int, err error)
}

// element is a basis monomial. For the Milnor basis q is the Q-part bit set
// and parts is R; for the Adem basis parts is the word of operations, with
// beta standing for the Bockstein.
type element struct {
	q     uint32
	parts []int
}

const beta = -1

func (e element) key() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(uint64(e.q), 10))
	sb.WriteByte(':')
	for i, x := range e.parts {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(x))
	}

	return sb.String()
}

type degreeBasis struct {
	elems []element
	index map[string]int
}

func newDegreeBasis(elems []element) *degreeBasis {
	b := &degreeBasis{elems: elems, index: make(map[string]int, len(elems))}
	for i, e := range elems {
		b.index[e.key()] = i
	}

	return b
}

var emptyBasis = newDegreeBasis(nil)

// Steenrod is the mod-p Steenrod algebra in one of the supported bases.
type Steenrod struct {
	p         fp.ValidPrime
	typ       Type
	q         int // degree unit of P parts: 2(p-1), or 1 at p = 2
	maxDegree int

	mu    sync.RWMutex
	bases map[int]*degreeBasis

	ademMu   sync.Mutex
	ademMemo map[string][]ademTerm

	decompMu sync.Mutex
	decomp   map[[2]int][]Term
}

// Option configures a Steenrod instance.
type Option func(*Steenrod)

// WithMaxDegree bounds the degrees the instance will enumerate.
func WithMaxDegree(n int) Option {
	return func(a *Steenrod) { a.maxDegree = n }
}

// New returns the Steenrod algebra at p in the given basis.
func New(p fp.ValidPrime, typ Type, opts ...Option) (*Steenrod, error) {
	if typ != Milnor && typ != Adem {
		return nil, algebraErrorf("New", fmt.Errorf("%v: %w", typ, ErrUnknownType))
	}
	a := &Steenrod{
		p:         p,
		typ:       typ,
		q:         2 * (p.Int() - 1),
		maxDegree: DefaultMaxDegree,
		bases:     make(map[int]*degreeBasis),
		ademMemo:  make(map[string][]ademTerm),
		decomp:    make(map[[2]int][]Term),
	}
	if p == 2 {
		a.q = 1
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.maxDegree < 0 {
		return nil, algebraErrorf("New", fmt.Errorf("max degree %d: %w", a.maxDegree, ErrDegreeRangeExceeded))
	}

	return a, nil
}

// Prime returns p.
func (a *Steenrod) Prime() fp.ValidPrime { return a.p }

// Type returns the basis encoding.
func (a *Steenrod) Type() Type { return a.typ }

// Magic returns MilnorMagic or AdemMagic.
func (a *Steenrod) Magic() uint32 {
	if a.typ == Adem {
		return AdemMagic
	}

	return MilnorMagic
}

// MaxDegree returns the configured degree bound.
func (a *Steenrod) MaxDegree() int { return a.maxDegree }

// ComputeBasis enumerates every degree in [0, degree].
func (a *Steenrod) ComputeBasis(degree int) error {
	if degree > a.maxDegree {
		return algebraErrorf("ComputeBasis", fmt.Errorf("degree %d > %d: %w", degree, a.maxDegree, ErrDegreeRangeExceeded))
	}
	for d := 0; d <= degree; d++ {
		a.basis(d)
	}

	return nil
}

// Dimension returns the number of basis elements in degree. It panics for
// degrees above MaxDegree; callers bound their requests with ComputeBasis.
func (a *Steenrod) Dimension(degree int) int {
	return len(a.basis(degree).elems)
}

func (a *Steenrod) basis(d int) *degreeBasis {
	if d < 0 {
		return emptyBasis
	}
	a.mu.RLock()
	b := a.bases[d]
	a.mu.RUnlock()
	if b != nil {
		return b
	}
	if d > a.maxDegree {
		panic(fmt.Sprintf("algebra: degree %d beyond max degree %d", d, a.maxDegree))
	}
	var elems []element
	if a.typ == Milnor {
		elems = a.milnorBasis(d)
	} else {
		elems = a.ademBasis(d)
	}
	b = newDegreeBasis(elems)
	a.mu.Lock()
	if prev := a.bases[d]; prev != nil {
		b = prev
	} else {
		a.bases[d] = b
	}
	a.mu.Unlock()

	return b
}

// indexOf returns the index of e in degree d. A missing element means a
// product left the basis, which is a bug in the multiplication code.
func (a *Steenrod) indexOf(d int, e element) int {
	i, ok := a.basis(d).index[e.key()]
	if !ok {
		panic(fmt.Sprintf("algebra: %s not in basis of degree %d", e.key(), d))
	}

	return i
}

func (a *Steenrod) element(d, idx int) element {
	elems := a.basis(d).elems
	if idx < 0 || idx >= len(elems) {
		panic(fmt.Sprintf("algebra: index %d out of range in degree %d (dim %d)", idx, d, len(elems)))
	}

	return elems[idx]
}

// MultiplyBasisElements adds coeff·(r·s) into result.
func (a *Steenrod) MultiplyBasisElements(result fp.Vector, coeff uint32, rDeg, rIdx, sDeg, sIdx int) {
	coeff %= a.p.Value()
	if coeff == 0 {
		return
	}
	r, s := a.element(rDeg, rIdx), a.element(sDeg, sIdx)
	d := rDeg + sDeg
	if a.typ == Milnor {
		a.milnorProduct(r, s, func(e element, c uint32) {
			result.AddEntry(a.indexOf(d, e), a.p.Mul(coeff, c))
		})

		return
	}
	word := make([]int, 0, len(r.parts)+len(s.parts))
	word = append(append(word, r.parts...), s.parts...)
	for _, t := range a.ademReduce(word) {
		result.AddEntry(a.indexOf(d, element{parts: t.word}), a.p.Mul(coeff, t.c))
	}
}

// MultiplyElements adds coeff·(r·s) into result for arbitrary elements r of
// degree rDeg and s of degree sDeg.
func MultiplyElements(a Algebra, result fp.Vector, coeff uint32, rDeg int, r fp.Vector, sDeg int, s fp.Vector) {
	p := a.Prime()
	r.Iter(func(i int, x uint32) {
		s.Iter(func(j int, y uint32) {
			a.MultiplyBasisElements(result, p.Mul(coeff, p.Mul(x, y)), rDeg, i, sDeg, j)
		})
	})
}

// generatorElement returns the generator monomial of degree d, if any.
// Generators are Sq^{2^k} at p = 2, and β, P^{p^k} at odd p.
func (a *Steenrod) generatorElement(d int) (element, bool) {
	p := a.p.Int()
	if d <= 0 {
		return element{}, false
	}
	if p == 2 {
		if d&(d-1) != 0 {
			return element{}, false
		}

		return element{parts: []int{d}}, true
	}
	if d == 1 {
		if a.typ == Milnor {
			return element{q: 1}, true
		}

		return element{parts: []int{beta}}, true
	}
	if d%a.q != 0 {
		return element{}, false
	}
	n := d / a.q
	for n%p == 0 {
		n /= p
	}
	if n != 1 {
		return element{}, false
	}

	return element{parts: []int{d / a.q}}, true
}

// Generators returns the indices of generators in degree, at most one.
func (a *Steenrod) Generators(degree int) []int {
	e, ok := a.generatorElement(degree)
	if !ok {
		return nil
	}

	return []int{a.indexOf(degree, e)}
}

// GeneratorName returns Sq<n>, P<n> or b, or "" for non-generators.
func (a *Steenrod) GeneratorName(degree, idx int) string {
	e, ok := a.generatorElement(degree)
	if !ok || a.indexOf(degree, e) != idx {
		return ""
	}
	switch {
	case a.p == 2:
		return "Sq" + strconv.Itoa(degree)
	case degree == 1:
		return "b"
	default:
		return "P" + strconv.Itoa(degree/a.q)
	}
}

// ParseGenerator accepts Sq<n> or Sq^<n> at p = 2 and b, beta, Q0, P<n> or
// P^<n> at odd primes.
func (a *Steenrod) ParseGenerator(name string) (int, int, error) {
	s := strings.TrimSpace(name)
	var degree int
	switch lower := strings.ToLower(s); {
	case a.p != 2 && (lower == "b" || lower == "beta" || lower == "q0"):
		degree = 1
	case a.p == 2 && strings.HasPrefix(lower, "sq"):
		n, err := strconv.Atoi(strings.TrimPrefix(lower[2:], "^"))
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("%q: %w", name, ErrUnknownGenerator)
		}
		degree = n
	case a.p != 2 && strings.HasPrefix(lower, "p"):
		n, err := strconv.Atoi(strings.TrimPrefix(lower[1:], "^"))
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("%q: %w", name, ErrUnknownGenerator)
		}
		degree = n * a.q
	default:
		return 0, 0, fmt.Errorf("%q: %w", name, ErrUnknownGenerator)
	}
	e, ok := a.generatorElement(degree)
	if !ok {
		return 0, 0, fmt.Errorf("%q is not an algebra generator: %w", name, ErrUnknownGenerator)
	}
	if degree > a.maxDegree {
		return 0, 0, fmt.Errorf("%q: %w", name, ErrDegreeRangeExceeded)
	}

	return degree, a.indexOf(degree, e), nil
}

// BasisElementToString renders Sq(1,2), Q_0 P(1) or Sq2 Sq1 / b P1 style names.
func (a *Steenrod) BasisElementToString(degree, idx int) string {
	e := a.element(degree, idx)
	if degree == 0 {
		return "1"
	}
	var words []string
	if a.typ == Milnor {
		if a.p == 2 {
			return "Sq(" + joinInts(e.parts) + ")"
		}
		for k := 0; e.q>>k != 0; k++ {
			if e.q&(1<<k) != 0 {
				words = append(words, "Q_"+strconv.Itoa(k))
			}
		}
		if len(e.parts) > 0 {
			words = append(words, "P("+joinInts(e.parts)+")")
		}

		return strings.Join(words, " ")
	}
	prefix := "P"
	if a.p == 2 {
		prefix = "Sq"
	}
	for _, x := range e.parts {
		if x == beta {
			words = append(words, "b")
		} else {
			words = append(words, prefix+strconv.Itoa(x))
		}
	}

	return strings.Join(words, " ")
}

// ElementToString renders a combination such as "Sq(3) + Sq(0,1)".
func (a *Steenrod) ElementToString(degree int, v fp.Vector) string {
	var terms []string
	v.Iter(func(i int, c uint32) {
		name := a.BasisElementToString(degree, i)
		if c != 1 {
			name = strconv.FormatUint(uint64(c), 10) + " " + name
		}
		terms = append(terms, name)
	})
	if len(terms) == 0 {
		return "0"
	}

	return strings.Join(terms, " + ")
}

func joinInts(xs []int) string {
	s := make([]string, len(xs))
	for i, x := range xs {
		s[i] = strconv.Itoa(x)
	}

	return strings.Join(s, ",")
}

func trimZeros(xs []int) []int {
	n := len(xs)
	for n > 0 && xs[n-1] == 0 {
		n--
	}

	return xs[:n]
}

var _ Algebra = (*Steenrod)(nil)
