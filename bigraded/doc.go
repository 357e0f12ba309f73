// SPDX-License-Identifier: MIT

// Package bigraded provides Store, a table of single-assignment cells keyed by
// bidegree (s, t).
//
// A cell moves once from absent to committed. Committing twice is a
// programming error and panics with *ConcurrencyViolation. In Concurrent mode
// readers block in Wait on a per-cell readiness channel that is closed at
// commit; in Serial mode reading an absent cell through MustGet or Wait
// panics, since a correct serial schedule never does it.
//
// The addressable range grows on demand. WithCapacity bounds it, and requests
// outside the bound fail with ErrDegreeRangeExceeded instead of growing.
package bigraded
