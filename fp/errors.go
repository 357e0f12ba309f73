// SPDX-License-Identifier: MIT

package fp

import (
	"errors"
	"fmt"
)

// Sentinel errors for the finite-field kernel. Callers match them with errors.Is.
var (
	// ErrInvalidPrime is returned when a modulus is not a prime below MaxPrime.
	ErrInvalidPrime = errors.New("fp: invalid prime")

	// ErrDimensionMismatch indicates incompatible operand shapes.
	ErrDimensionMismatch = errors.New("fp: dimension mismatch")

	// ErrOutOfRange indicates that an index is outside valid bounds.
	ErrOutOfRange = errors.New("fp: index out of range")

	// ErrNoSolution is returned by Solve when the target is not in the row space.
	ErrNoSolution = errors.New("fp: no solution")

	// ErrPrimeMismatch indicates operands over different primes.
	ErrPrimeMismatch = errors.New("fp: prime mismatch")
)

// Operation tags for wrapped errors.
const (
	opMul       = "Mul"
	opTranspose = "Transpose"
	opSolve     = "Solve"
	opKernel    = "Kernel"
	opFromRows  = "FromRows"
	opSubspace  = "Subspace"
)

// fpErrorf wraps err with an operation tag, preserving it for errors.Is.
func fpErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
