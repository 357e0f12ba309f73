// SPDX-License-Identifier: MIT

package secondary

import "errors"

var (
	// ErrNotComputed is returned when a resolution has not been computed far
	// enough for the requested lift.
	ErrNotComputed = errors.New("secondary: resolution not computed through the requested range")

	// ErrInvalidClass is returned for a class whose coefficient vector does
	// not match the generators of its bidegree.
	ErrInvalidClass = errors.New("secondary: invalid class")

	// ErrUnsupportedTarget is returned when a class must be read off the
	// augmentation of a resolution that does not resolve a one-dimensional
	// module.
	ErrUnsupportedTarget = errors.New("secondary: target must resolve a one-dimensional module")

	// ErrProductNonzero is returned by NullHomotopy and Massey when a product
	// that must vanish does not.
	ErrProductNonzero = errors.New("secondary: product is not zero")

	// ErrMismatch is returned when chain maps do not compose.
	ErrMismatch = errors.New("secondary: chain maps do not compose")
)
