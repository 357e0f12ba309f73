// SPDX-License-Identifier: MIT

package resolution

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/sseq/algebra"
)

type pos struct{ s, t int }

// ResolveThroughDegree computes every bidegree (s, t) with s ≤ sMax and
// t ≤ tMax that is not committed yet. It is idempotent; calling it with a
// larger bound extends the resolution.
//
// Errors:
//   - ErrInvalidBound when sMax < 0, tMax is below the module's minimum
//     degree, or tMax - MinDegree() < sMax. The store is not touched.
//   - algebra.ErrDegreeRangeExceeded / bigraded.ErrDegreeRangeExceeded when
//     the bound exceeds the algebra or the configured capacity.
//   - *BidegreeError from a failing step; committed bidegrees stay valid.
func (r *Resolution) ResolveThroughDegree(ctx context.Context, sMax, tMax int) error {
	if err := r.checkBounds(sMax, tMax); err != nil {
		return fmt.Errorf("resolution: resolve through (%d, %d): %w", sMax, tMax, err)
	}
	r.resolving.Lock()
	defer r.resolving.Unlock()

	todo := r.pending(sMax, tMax)
	if len(todo) == 0 {
		return nil
	}
	start := time.Now()
	r.log.Info("resolving",
		zap.String("config", r.config),
		zap.Int("max_s", sMax),
		zap.Int("max_t", tMax),
		zap.Int("bidegrees", len(todo)),
		zap.Int("workers", r.workers))

	var err error
	if r.workers <= 1 {
		err = r.runSerial(ctx, todo)
	} else {
		err = r.runConcurrent(ctx, todo)
	}
	if err != nil {
		r.log.Error("resolve failed", zap.String("config", r.config), zap.Error(err))
		return err
	}
	r.log.Info("resolved",
		zap.String("config", r.config),
		zap.Int("max_s", sMax),
		zap.Int("max_t", tMax),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}

// ResolveThroughStem computes every bidegree with s ≤ sMax and t - s ≤ nMax.
// The dependency closure of that region is the rectangle t ≤ nMax + sMax, so
// this resolves through degree (sMax, nMax+sMax).
func (r *Resolution) ResolveThroughStem(ctx context.Context, sMax, nMax int) error {
	if sMax < 0 {
		return fmt.Errorf("resolution: resolve through stem (%d, %d): negative s: %w", sMax, nMax, ErrInvalidBound)
	}

	return r.ResolveThroughDegree(ctx, sMax, nMax+sMax)
}

func (r *Resolution) checkBounds(sMax, tMax int) error {
	switch {
	case sMax < 0:
		return fmt.Errorf("negative s: %w", ErrInvalidBound)
	case tMax < r.minDeg:
		return fmt.Errorf("t below minimum degree %d: %w", r.minDeg, ErrInvalidBound)
	case tMax-r.minDeg < sMax:
		return fmt.Errorf("t - %d < s: %w", r.minDeg, ErrInvalidBound)
	case tMax-r.minDeg > r.alg.MaxDegree():
		return fmt.Errorf("degree %d above algebra maximum %d: %w", tMax-r.minDeg, r.alg.MaxDegree(), algebra.ErrDegreeRangeExceeded)
	}

	return r.cells.Check(r.key(sMax, tMax))
}

// pending lists the uncommitted bidegrees of the rectangle, t outer, s inner.
func (r *Resolution) pending(sMax, tMax int) []pos {
	var out []pos
	for t := r.minDeg; t <= tMax; t++ {
		for s := 0; s <= sMax; s++ {
			if !r.HasComputed(s, t) {
				out = append(out, pos{s, t})
			}
		}
	}

	return out
}

func (r *Resolution) runSerial(ctx context.Context, todo []pos) error {
	for _, c := range todo {
		if err := r.step(ctx, c.s, c.t); err != nil {
			return err
		}
	}

	return nil
}

// runConcurrent releases a bidegree to the worker pool once (s-1, t) and
// (s, t-1) are committed.
func (r *Resolution) runConcurrent(ctx context.Context, todo []pos) error {
	waiting := make(map[pos]int, len(todo))
	var ready []pos
	for _, c := range todo {
		n := 0
		if c.s > 0 && !r.HasComputed(c.s-1, c.t) {
			n++
		}
		if c.t > r.minDeg && !r.HasComputed(c.s, c.t-1) {
			n++
		}
		waiting[c] = n
		if n == 0 {
			ready = append(ready, c)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	done := make(chan pos, len(todo))
	remaining := len(todo)

dispatch:
	for remaining > 0 {
		for len(ready) > 0 {
			c := ready[0]
			ready = ready[1:]
			g.Go(func() error {
				if err := r.step(gctx, c.s, c.t); err != nil {
					return err
				}
				done <- c
				return nil
			})
		}
		select {
		case c := <-done:
			remaining--
			for _, next := range [2]pos{{c.s + 1, c.t}, {c.s, c.t + 1}} {
				n, ok := waiting[next]
				if !ok {
					continue
				}
				waiting[next] = n - 1
				if n == 1 {
					ready = append(ready, next)
				}
			}
		case <-gctx.Done():
			break dispatch
		}
	}

	err := g.Wait()
	if err == nil && remaining > 0 {
		err = ctx.Err()
	}

	return err
}
