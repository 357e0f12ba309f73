// SPDX-License-Identifier: MIT

package algebra

import (
	"errors"
	"fmt"
)

var (
	// ErrDegreeRangeExceeded is returned when a degree above the configured
	// MaxDegree is requested.
	ErrDegreeRangeExceeded = errors.New("algebra: degree range exceeded")

	// ErrUnknownType indicates an algebra type name outside {milnor, adem}.
	ErrUnknownType = errors.New("algebra: unknown algebra type")

	// ErrUnknownGenerator is returned by ParseGenerator for names that do not
	// denote an operation or denote one that is not an algebra generator.
	ErrUnknownGenerator = errors.New("algebra: unknown generator")

	// ErrIndexOutOfRange reports a basis index outside [0, Dimension(degree)).
	ErrIndexOutOfRange = errors.New("algebra: basis index out of range")

	// ErrBasisMismatch indicates algebras of different primes or types.
	ErrBasisMismatch = errors.New("algebra: basis mismatch")
)

func algebraErrorf(op string, err error) error {
	return fmt.Errorf("algebra.%s: %w", op, err)
}
