// SPDX-License-Identifier: MIT

// Package fp is the finite-field kernel: exact arithmetic over a small prime
// field F_p, dense vectors and matrices, and the row-reduction family built on
// top of them (kernels, subspaces, complements and linear solves).
//
// Determinism:
//   - Every reduction follows one pivot rule: columns are scanned from index 0
//     upward and the first row at or below the current rank holding a non-zero
//     entry in that column becomes the pivot row. Pivots are normalised to 1
//     and cleared from every other row, so the result is the unique reduced row
//     echelon form and any basis derived from it is canonical.
//   - Downstream minimality decisions (which generators a resolution picks)
//     depend on this exact rule; do not change it without re-pinning the
//     reference checkpoints.
//
// Errors:
//
//	ErrInvalidPrime       - modulus is not a prime in the supported range.
//	ErrDimensionMismatch  - operands have incompatible shapes.
//	ErrOutOfRange         - row/column index outside the matrix or vector.
//	ErrNoSolution         - linear system has no solution.
//	ErrPrimeMismatch      - operands live over different fields.
package fp
