// SPDX-License-Identifier: MIT

package fp

import "fmt"

// MaxPrime bounds the supported primes so that products of two residues fit
// comfortably in a uint64 accumulator.
const MaxPrime = 1 << 16

// ValidPrime is a prime p < MaxPrime. The zero value is not valid; build one
// with NewPrime or MustPrime.
type ValidPrime uint32

// NewPrime validates p and returns it as a ValidPrime.
// Complexity: O(√p).
func NewPrime(p uint32) (ValidPrime, error) {
	if p < 2 || p >= MaxPrime {
		return 0, fmt.Errorf("%d: %w", p, ErrInvalidPrime)
	}
	for d := uint32(2); d*d <= p; d++ {
		if p%d == 0 {
			return 0, fmt.Errorf("%d: %w", p, ErrInvalidPrime)
		}
	}

	return ValidPrime(p), nil
}

// MustPrime is NewPrime for constants known to be prime; it panics otherwise.
func MustPrime(p uint32) ValidPrime {
	vp, err := NewPrime(p)
	if err != nil {
		panic(err)
	}

	return vp
}

// Value returns p as a plain integer.
func (p ValidPrime) Value() uint32 { return uint32(p) }

// Int returns p as an int, handy for loop bounds.
func (p ValidPrime) Int() int { return int(p) }

// Reduce maps any signed integer into [0, p).
func (p ValidPrime) Reduce(x int64) uint32 {
	m := int64(p)
	r := x % m
	if r < 0 {
		r += m
	}

	return uint32(r)
}

// Add returns a + b mod p. Inputs must already be reduced.
func (p ValidPrime) Add(a, b uint32) uint32 {
	s := a + b
	if s >= uint32(p) {
		s -= uint32(p)
	}

	return s
}

// Sub returns a - b mod p. Inputs must already be reduced.
func (p ValidPrime) Sub(a, b uint32) uint32 {
	if a >= b {
		return a - b
	}

	return a + uint32(p) - b
}

// Neg returns -a mod p.
func (p ValidPrime) Neg(a uint32) uint32 {
	if a == 0 {
		return 0
	}

	return uint32(p) - a
}

// Mul returns a * b mod p.
func (p ValidPrime) Mul(a, b uint32) uint32 {
	return uint32((uint64(a) * uint64(b)) % uint64(p))
}

// Pow returns a^e mod p by square-and-multiply.
func (p ValidPrime) Pow(a uint32, e uint64) uint32 {
	result := uint32(1) % uint32(p)
	base := a % uint32(p)
	for e > 0 {
		if e&1 == 1 {
			result = p.Mul(result, base)
		}
		base = p.Mul(base, base)
		e >>= 1
	}

	return result
}

// Inverse returns a^{-1} mod p. a must be non-zero; Inverse(0) panics because
// every caller reaches it only through a pivot, which is non-zero by construction.
func (p ValidPrime) Inverse(a uint32) uint32 {
	if a%uint32(p) == 0 {
		panic("fp: inverse of zero")
	}
	// extended Euclid on (a, p)
	var t, newT int64 = 0, 1
	var r, newR int64 = int64(p), int64(a % uint32(p))
	for newR != 0 {
		q := r / newR
		t, newT = newT, t-q*newT
		r, newR = newR, r-q*newR
	}

	return p.Reduce(t)
}

// Binomial returns C(n, k) mod p using Lucas' theorem. Negative n, negative k
// or k > n give 0.
// Complexity: O(log_p n · p) in the worst case (per-digit factorial products).
func (p ValidPrime) Binomial(n, k int64) uint32 {
	if n < 0 || k < 0 || k > n {
		return 0
	}
	P := int64(p)
	result := uint32(1)
	for n > 0 || k > 0 {
		nd, kd := n%P, k%P
		if kd > nd {
			return 0
		}
		result = p.Mul(result, p.smallBinomial(uint32(nd), uint32(kd)))
		n /= P
		k /= P
	}

	return result
}

// smallBinomial computes C(n, k) mod p for 0 ≤ k ≤ n < p directly.
func (p ValidPrime) smallBinomial(n, k uint32) uint32 {
	if k > n-k {
		k = n - k
	}
	num, den := uint32(1), uint32(1)
	for i := uint32(0); i < k; i++ {
		num = p.Mul(num, n-i)
		den = p.Mul(den, i+1)
	}

	return p.Mul(num, p.Inverse(den))
}

// Multinomial returns (Σ parts)! / Π parts! mod p, computed as a product of
// binomials so that carries in base p are detected exactly.
func (p ValidPrime) Multinomial(parts []int64) uint32 {
	result := uint32(1)
	var total int64
	for _, part := range parts {
		if part == 0 {
			continue
		}
		total += part
		result = p.Mul(result, p.Binomial(total, part))
		if result == 0 {
			return 0
		}
	}

	return result
}

// IntPow returns p^e as an int64. It is used for degree arithmetic, not field
// arithmetic; callers keep e small.
func (p ValidPrime) IntPow(e int) int64 {
	r := int64(1)
	for i := 0; i < e; i++ {
		r *= int64(p)
	}

	return r
}
