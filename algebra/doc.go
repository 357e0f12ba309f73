// SPDX-License-Identifier: MIT

// Package algebra models the mod-p Steenrod algebra as a graded algebra with
// a finite, totally ordered basis in each degree.
//
// Two bases are provided behind one interface:
//
//	Milnor - Q_E P(R) monomials (Sq(R) at p = 2), multiplied with Milnor matrices.
//	Adem   - admissible monomials in Sq^i (or β and P^i), reduced with Adem relations.
//
// Both are instances of the tagged variant Steenrod built with New(p, Type).
// The basis of a degree is enumerated once, on first use, and never reordered;
// every other package refers to basis elements by (degree, index).
//
// The algebra is read-only after construction apart from its internal caches,
// which are safe for concurrent use.
package algebra
