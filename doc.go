// Package sseq computes Ext over the mod p Steenrod algebra by building
// minimal free resolutions, one bidegree at a time.
//
// What is in the box?
//
//	• Field kernel: F_p vectors and matrices with a canonical row reduction
//	• Algebras: the Steenrod algebra in the Milnor and the Adem basis
//	• Modules: finite modules from JSON/YAML specs, free-module bookkeeping
//	• Resolutions: serial or concurrent, checkpointed, observable
//	• Secondary structure: Yoneda products, null-homotopies, Massey products
//
// Everything is organized under flat subpackages:
//
//	fp/           prime field arithmetic, vectors, matrices, subspaces
//	algebra/      Steenrod algebra, Milnor and Adem bases, change of basis
//	module/       module specifications, finite and free modules
//	bigraded/     single-assignment store keyed by bidegree (s, t)
//	resolution/   the resolution builder, scheduler and chart
//	checkpoint/   record codec plus filesystem, Badger, SQLite and S3 stores
//	secondary/    chain maps, homotopies and Massey products
//	config/       YAML run configuration and logger construction
//	cmd/sseq/     command-line front end
//
// Quick example (the sphere at p = 2):
//
//	alg, _ := algebra.New(fp.MustPrime(2), algebra.Milnor)
//	res, _ := resolution.New(module.GroundField(alg))
//	_ = res.ResolveThroughDegree(ctx, 3, 10)
//	fmt.Println(res.Chart(3))
//
//	·     ·       ·
//	·   · ·     · · ·
//	· ·   ·       ·
//	·
//
// The rows are s = 3 down to 0; the columns are t - s.
//
//	go install github.com/katalvlaran/sseq/cmd/sseq@latest
package sseq
