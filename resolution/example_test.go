// SPDX-License-Identifier: MIT

package resolution_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/sseq/algebra"
	"github.com/katalvlaran/sseq/fp"
	"github.com/katalvlaran/sseq/module"
	"github.com/katalvlaran/sseq/resolution"
)

// ExampleResolution_Chart resolves the sphere at p = 2 and prints the
// classical Adams chart through t = 10. Rows run from s = 3 down to 0.
func ExampleResolution_Chart() {
	alg, err := algebra.New(fp.MustPrime(2), algebra.Milnor)
	if err != nil {
		fmt.Println(err)
		return
	}
	res, err := resolution.New(module.GroundField(alg))
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := res.ResolveThroughDegree(context.Background(), 3, 10); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(res.Chart(3))
	fmt.Println("h0, h1, h2, h3:", res.NumberOfGens(1, 1), res.NumberOfGens(1, 2), res.NumberOfGens(1, 4), res.NumberOfGens(1, 8))
	// Output:
	// ·     ·       ·
	// ·   · ·     · · ·
	// · ·   ·       ·
	// ·
	// h0, h1, h2, h3: 1 1 1 1
}
