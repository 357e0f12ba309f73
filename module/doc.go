// SPDX-License-Identifier: MIT

// Package module holds the modules a resolution works with: finite modules
// described by a Spec document, the ground field, and the free modules that
// make up each stage of a resolution.
//
// A Spec lists generators with their degrees and the action of algebra
// generators on them:
//
//	name: C2
//	p: 2
//	type: finite dimensional module
//	gens: {x0: 0, x1: 1}
//	actions: ["Sq1 x0 = x1"]
//
// JSON documents are accepted as well. The action of every other basis element
// is derived through Algebra.Decompose and checked for associativity before the
// module is handed out; a spec that fails any check is rejected with
// ErrInvalidSpec.
package module
