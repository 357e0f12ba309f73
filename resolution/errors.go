// SPDX-License-Identifier: MIT

package resolution

import (
	"errors"
	"fmt"
)

var (
	// ErrInput marks requests rejected before any computation.
	ErrInput = errors.New("resolution: invalid input")

	// ErrInvalidBound is returned for negative bounds or t < s.
	ErrInvalidBound = fmt.Errorf("%w: invalid bound", ErrInput)

	// ErrNotComputed is returned by queries on bidegrees that are not
	// committed yet.
	ErrNotComputed = errors.New("resolution: bidegree not computed")

	// ErrInconsistentCheckpoint is returned when a stored record decodes but
	// does not fit the data it is loaded against.
	ErrInconsistentCheckpoint = errors.New("resolution: checkpoint inconsistent with resolution")
)

// BidegreeError reports a failure while computing or loading one bidegree.
type BidegreeError struct {
	Op     string
	S, T   int
	Config string
	Err    error
}

func (e *BidegreeError) Error() string {
	return fmt.Sprintf("resolution: %s (%d, %d) [%s]: %v", e.Op, e.S, e.T, e.Config, e.Err)
}

func (e *BidegreeError) Unwrap() error { return e.Err }

func (r *Resolution) fail(op string, s, t int, err error) error {
	return &BidegreeError{Op: op, S: s, T: t, Config: r.config, Err: err}
}
