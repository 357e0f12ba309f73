// SPDX-License-Identifier: MIT

package module

import "errors"

var (
	// ErrInvalidSpec marks a malformed or inconsistent module specification.
	ErrInvalidSpec = errors.New("module: invalid module specification")

	// ErrSpecNotFound is returned by Find when no file or built-in module matches.
	ErrSpecNotFound = errors.New("module: module specification not found")

	// ErrGeneratorOrder is returned when free-module generators are added out of
	// degree order or twice for one degree.
	ErrGeneratorOrder = errors.New("module: generators added out of order")
)
