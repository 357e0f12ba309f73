// SPDX-License-Identifier: MIT

package fp

import (
	"fmt"
	"strings"
)

// Vector is a dense row vector over F_p. Entries are always reduced to [0, p).
type Vector struct {
	p    ValidPrime
	data []uint32
}

// NewVector returns the zero vector of length n over F_p.
func NewVector(p ValidPrime, n int) Vector {
	return Vector{p: p, data: make([]uint32, n)}
}

// VectorFrom builds a vector from arbitrary integers, reducing each mod p.
func VectorFrom(p ValidPrime, values []int64) Vector {
	v := NewVector(p, len(values))
	for i, x := range values {
		v.data[i] = p.Reduce(x)
	}

	return v
}

// Prime returns the field characteristic.
func (v Vector) Prime() ValidPrime { return v.p }

// Len returns the number of entries.
func (v Vector) Len() int { return len(v.data) }

// Entry returns v[i]. It panics on out-of-range access, like a slice index.
func (v Vector) Entry(i int) uint32 { return v.data[i] }

// SetEntry assigns v[i] = x mod p.
func (v Vector) SetEntry(i int, x uint32) { v.data[i] = x % uint32(v.p) }

// AddEntry adds x to v[i].
func (v Vector) AddEntry(i int, x uint32) {
	v.data[i] = v.p.Add(v.data[i], x%uint32(v.p))
}

// Values returns a copy of the raw entries.
func (v Vector) Values() []uint32 {
	out := make([]uint32, len(v.data))
	copy(out, v.data)

	return out
}

// Clone returns a deep copy.
func (v Vector) Clone() Vector {
	return Vector{p: v.p, data: v.Values()}
}

// IsZero reports whether every entry is zero.
func (v Vector) IsZero() bool {
	for _, x := range v.data {
		if x != 0 {
			return false
		}
	}

	return true
}

// FirstNonzero returns the index and value of the first non-zero entry,
// or (-1, 0) for the zero vector.
func (v Vector) FirstNonzero() (int, uint32) {
	for i, x := range v.data {
		if x != 0 {
			return i, x
		}
	}

	return -1, 0
}

// Iter calls fn for each non-zero entry in index order.
func (v Vector) Iter(fn func(i int, x uint32)) {
	for i, x := range v.data {
		if x != 0 {
			fn(i, x)
		}
	}
}

// Scale multiplies every entry by c in place.
func (v Vector) Scale(c uint32) {
	c %= uint32(v.p)
	for i := range v.data {
		v.data[i] = v.p.Mul(v.data[i], c)
	}
}

// AddScaled performs v += c·w in place. Lengths must match.
func (v Vector) AddScaled(w Vector, c uint32) error {
	if len(v.data) != len(w.data) {
		return ErrDimensionMismatch
	}
	c %= uint32(v.p)
	if c == 0 {
		return nil
	}
	for i, x := range w.data {
		if x != 0 {
			v.data[i] = v.p.Add(v.data[i], v.p.Mul(c, x))
		}
	}

	return nil
}

// addScaledAt is AddScaled on a window: v[offset+i] += c·w[i].
// Used by free-module arithmetic where a vector covers several blocks.
func (v Vector) addScaledAt(offset int, w Vector, c uint32) {
	for i, x := range w.data {
		if x != 0 {
			v.data[offset+i] = v.p.Add(v.data[offset+i], v.p.Mul(c, x))
		}
	}
}

// AddScaledAt performs v[offset+i] += c·w[i] for every i. It returns
// ErrOutOfRange when the window does not fit.
func (v Vector) AddScaledAt(offset int, w Vector, c uint32) error {
	if offset < 0 || offset+len(w.data) > len(v.data) {
		return ErrOutOfRange
	}
	c %= uint32(v.p)
	if c != 0 {
		v.addScaledAt(offset, w, c)
	}

	return nil
}

// Slice returns a copy of entries [start, end).
func (v Vector) Slice(start, end int) Vector {
	out := NewVector(v.p, end-start)
	copy(out.data, v.data[start:end])

	return out
}

// Equal reports entrywise equality over the same prime.
func (v Vector) Equal(w Vector) bool {
	if v.p != w.p || len(v.data) != len(w.data) {
		return false
	}
	for i := range v.data {
		if v.data[i] != w.data[i] {
			return false
		}
	}

	return true
}

// Dot returns Σ v[i]·w[i].
func (v Vector) Dot(w Vector) (uint32, error) {
	if len(v.data) != len(w.data) {
		return 0, ErrDimensionMismatch
	}
	var acc uint64
	for i, x := range v.data {
		acc += uint64(x) * uint64(w.data[i])
	}

	return uint32(acc % uint64(v.p)), nil
}

// String formats the vector as [a, b, c].
func (v Vector) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, x := range v.data {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", x)
	}
	sb.WriteByte(']')

	return sb.String()
}
