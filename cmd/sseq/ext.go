// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/sseq/config"
	"github.com/katalvlaran/sseq/fp"
	"github.com/katalvlaran/sseq/resolution"
	"github.com/katalvlaran/sseq/secondary"
)

var (
	productFlags runFlags
	masseyFlags  runFlags
)

var productCmd = &cobra.Command{
	Use:   "product [module] x y",
	Short: "Yoneda product of two Ext classes",
	Long: `Compute x·y for classes written s,t or s,t,g (the g-th generator of
bidegree (s, t), default 0). The module must be one-dimensional, such as S_2.`,
	Example: "  sseq product 1,1 1,2\n  sseq product S_3 1,1 1,4",
	Args:    cobra.RangeArgs(2, 3),
	RunE:    runProduct,
}

var masseyCmd = &cobra.Command{
	Use:     "massey [module] x y z",
	Short:   "Massey product <x, y, z> of three Ext classes",
	Example: "  sseq massey 1,1 1,2 1,1",
	Args:    cobra.RangeArgs(3, 4),
	RunE:    runMassey,
}

func init() {
	productFlags.register(productCmd)
	masseyFlags.register(masseyCmd)
}

// ref is a class argument before the resolution can size it.
type ref struct{ s, t, g int }

func parseRef(arg string) (ref, error) {
	parts := strings.Split(arg, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return ref{}, fmt.Errorf("class %q: want s,t or s,t,g", arg)
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			return ref{}, fmt.Errorf("class %q: bad number %q", arg, p)
		}
		n[i] = v
	}

	return ref{s: n[0], t: n[1], g: n[2]}, nil
}

// parseRefs splits the trailing n class arguments from an optional leading
// module argument.
func parseRefs(args []string, n int) ([]string, []ref, error) {
	head, tail := args[:len(args)-n], args[len(args)-n:]
	refs := make([]ref, n)
	for i, a := range tail {
		r, err := parseRef(a)
		if err != nil {
			return nil, nil, err
		}
		refs[i] = r
	}

	return head, refs, nil
}

func (r ref) class(res *resolution.Resolution) (secondary.Class, error) {
	n := res.NumberOfGens(r.s, r.t)
	if r.g >= n {
		return secondary.Class{}, fmt.Errorf("(%d, %d) has %d generators, no generator %d: %w", r.s, r.t, n, r.g, secondary.ErrInvalidClass)
	}
	v := fp.NewVector(res.Prime(), n)
	v.SetEntry(r.g, 1)

	return secondary.Class{S: r.s, T: r.t, Coeffs: v}, nil
}

// resolveFor builds the resolution and resolves it through the bidegree
// bound returns for the module's minimal degree.
func resolveFor(cmd *cobra.Command, cfg config.Config, bound func(minDeg int) (s, t int)) (*resolution.Resolution, func() error, error) {
	res, closeStore, err := openResolution(cmd.Context(), cfg, logger, nil)
	if err != nil {
		return nil, nil, err
	}
	s, t := bound(res.MinDegree())
	if lo := res.MinDegree() + s; t < lo {
		t = lo
	}
	if err := res.ResolveThroughDegree(cmd.Context(), s, t); err != nil {
		_ = closeStore()
		return nil, nil, err
	}

	return res, closeStore, nil
}

func runProduct(cmd *cobra.Command, args []string) error {
	head, refs, err := parseRefs(args, 2)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, head, &productFlags)
	if err != nil {
		return err
	}
	x, y := refs[0], refs[1]
	res, closeStore, err := resolveFor(cmd, cfg, func(m int) (int, int) {
		return x.s + y.s, x.t + y.t - m
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()
	yShift := y.t - res.MinDegree()

	xc, err := x.class(res)
	if err != nil {
		return err
	}
	yc, err := y.class(res)
	if err != nil {
		return err
	}
	f, err := secondary.Lift(res, res, yc, x.s, x.t+yShift)
	if err != nil {
		return err
	}
	out, err := f.Product(x.s, x.t+yShift, xc.Coeffs)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

func runMassey(cmd *cobra.Command, args []string) error {
	head, refs, err := parseRefs(args, 3)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, head, &masseyFlags)
	if err != nil {
		return err
	}
	x, y, z := refs[0], refs[1], refs[2]
	res, closeStore, err := resolveFor(cmd, cfg, func(m int) (int, int) {
		return x.s + y.s + z.s, x.t + y.t + z.t - 2*m
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	classes := make([]secondary.Class, 3)
	for i, r := range refs {
		if classes[i], err = r.class(res); err != nil {
			return err
		}
	}
	out, err := secondary.Massey(res, classes[0], classes[1], classes[2])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
