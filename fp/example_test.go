// SPDX-License-Identifier: MIT

package fp_test

import (
	"fmt"

	"github.com/katalvlaran/sseq/fp"
)

// ExampleReduce reduces a rank-one map over F_3 and prints its kernel.
func ExampleReduce() {
	p := fp.MustPrime(3)
	m, err := fp.FromRows(p, 2, []fp.Vector{
		fp.VectorFrom(p, []int64{1, 2}),
		fp.VectorFrom(p, []int64{2, 1}),
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	red := fp.Reduce(m)
	fmt.Println("rank", red.Rank())
	fmt.Print(red.Kernel())
	// Output:
	// rank 1
	// [1, 1]
}
