// SPDX-License-Identifier: MIT

package checkpoint

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Store.Get for missing keys. A missing record
	// means the bidegree has not been computed yet.
	ErrNotFound = errors.New("checkpoint: not found")

	// ErrAlgebraMismatch is returned when a record's prime or algebra
	// identifier differs from the active configuration.
	ErrAlgebraMismatch = errors.New("checkpoint: algebra mismatch")

	// ErrHeaderMismatch is returned when another header field (bidegree,
	// shape) differs from what the reader expects.
	ErrHeaderMismatch = errors.New("checkpoint: header mismatch")

	// ErrCorrupt marks undecodable data: bad magic, unknown version, short
	// input or a checksum failure.
	ErrCorrupt = errors.New("checkpoint: corrupt record")

	// ErrUnknownScheme is returned by Open for unsupported URL schemes.
	ErrUnknownScheme = errors.New("checkpoint: unknown store scheme")
)

// IOError wraps a storage failure. It is the only error class that writers
// retry.
type IOError struct {
	Op  string
	Key string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("checkpoint: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func ioErr(op, key string, err error) error {
	return &IOError{Op: op, Key: key, Err: err}
}
