// SPDX-License-Identifier: MIT

package resolution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/katalvlaran/sseq/checkpoint"
	"github.com/katalvlaran/sseq/fp"
)

// step computes (or loads) bidegree (s, t) and commits it. Its dependencies
// must be committed or about to be.
func (r *Resolution) step(ctx context.Context, s, t int) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}
	ctx, span := tracer.Start(ctx, "resolution.step",
		trace.WithAttributes(attribute.Int("s", s), attribute.Int("t", t)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	start := time.Now()

	var kernel *fp.Matrix
	if s > 0 {
		prev, err := r.cells.Wait(ctx, r.key(s-1, t))
		if err != nil {
			return err
		}
		kernel = prev.kernel
	}
	if t > r.minDeg {
		if _, err := r.cells.Wait(ctx, r.key(s, t-1)); err != nil {
			return err
		}
	}

	free := r.FreeModule(s)
	cols := r.targetOf(s).Dimension(t)
	rows := make([]fp.Vector, free.Dimension(t))
	for i := range rows {
		rows[i] = r.applyBasis(s, t, i)
	}
	old, err := fp.FromRows(r.p, cols, rows)
	if err != nil {
		return r.fail("image", s, t, err)
	}
	image := fp.SubspaceOf(old)

	// K: ker d_{s-1} at t, or all of M[t]
	var candidates []fp.Vector
	if s == 0 {
		candidates = make([]fp.Vector, cols)
		for i := range candidates {
			candidates[i] = fp.NewVector(r.p, cols)
			candidates[i].SetEntry(i, 1)
		}
	} else {
		candidates = make([]fp.Vector, kernel.Rows())
		for i := range candidates {
			candidates[i] = kernel.Row(i)
		}
	}

	fresh, loaded, err := r.load(ctx, s, t, cols)
	if err != nil {
		return r.fail("load", s, t, err)
	}
	if loaded {
		if err = r.checkLoaded(image, candidates, fresh); err != nil {
			return r.fail("load", s, t, err)
		}
	} else {
		kept, err := fp.Complement(image, candidates)
		if err != nil {
			return r.fail("complement", s, t, err)
		}
		if fresh, err = fp.FromRows(r.p, cols, kept); err != nil {
			return r.fail("complement", s, t, err)
		}
	}
	gens := fresh.Rows()

	all := rows
	for i := 0; i < gens; i++ {
		all = append(all, fresh.Row(i))
	}
	full, err := fp.FromRows(r.p, cols, all)
	if err != nil {
		return r.fail("kernel", s, t, err)
	}
	ker := fp.Kernel(full)

	if !loaded && r.store != nil {
		if err = r.save(ctx, s, t, fresh); err != nil {
			return r.fail("save", s, t, err)
		}
	}

	if err = free.AddGenerators(t, gens); err != nil {
		return r.fail("commit", s, t, err)
	}
	if err = r.cells.Set(r.key(s, t), &cell{gens: gens, images: fresh, kernel: ker}); err != nil {
		return r.fail("commit", s, t, err)
	}

	elapsed := time.Since(start)
	r.metrics.duration.Observe(elapsed.Seconds())
	r.metrics.addGenerators(s, gens)
	if loaded {
		r.metrics.loaded.Inc()
	} else {
		r.metrics.computed.Inc()
	}
	span.SetAttributes(attribute.Int("generators", gens), attribute.Bool("loaded", loaded))
	r.log.Debug("bidegree committed",
		zap.Int("s", s),
		zap.Int("t", t),
		zap.Int("generators", gens),
		zap.Bool("loaded", loaded),
		zap.Duration("elapsed", elapsed))

	return nil
}

// checkLoaded accepts stored generator images only if they extend the image
// of the old generators to all of K.
func (r *Resolution) checkLoaded(image *fp.Subspace, candidates []fp.Vector, fresh *fp.Matrix) error {
	k, err := fp.FromRows(r.p, image.Ambient(), candidates)
	if err != nil {
		return err
	}
	want := len(candidates) - image.Dimension()
	if fresh.Rows() != want {
		return fmt.Errorf("%d generators stored, expected %d: %w", fresh.Rows(), want, ErrInconsistentCheckpoint)
	}
	kernel := fp.SubspaceOf(k)
	span := image.Clone()
	for i := 0; i < fresh.Rows(); i++ {
		v := fresh.Row(i)
		in, err := kernel.Contains(v)
		if err != nil {
			return err
		}
		if !in {
			return fmt.Errorf("generator %d is not a cycle: %w", i, ErrInconsistentCheckpoint)
		}
		grew, err := span.Add(v)
		if err != nil {
			return err
		}
		if !grew {
			return fmt.Errorf("generator %d is decomposable: %w", i, ErrInconsistentCheckpoint)
		}
	}

	return nil
}

func (r *Resolution) load(ctx context.Context, s, t, cols int) (*fp.Matrix, bool, error) {
	if r.store == nil {
		return nil, false, nil
	}
	data, err := r.store.Get(ctx, checkpoint.Key(s, t))
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rec, err := checkpoint.DecodeExpect(data, checkpoint.Expect{
		Prime:   r.p.Value(),
		Algebra: r.alg.Magic(),
		S:       s,
		T:       t,
		Columns: cols,
	})
	if err != nil {
		return nil, false, err
	}

	return rec.Differential, true, nil
}

func (r *Resolution) save(ctx context.Context, s, t int, images *fp.Matrix) error {
	data, err := checkpoint.Encode(checkpoint.Record{
		Prime:        r.p.Value(),
		Algebra:      r.alg.Magic(),
		S:            s,
		T:            t,
		Differential: images,
	}, checkpoint.Options{Compress: r.compress})
	if err != nil {
		return err
	}

	return checkpoint.PutWithRetry(ctx, r.store, checkpoint.Key(s, t), data, r.retry, r.log)
}
