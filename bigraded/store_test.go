// SPDX-License-Identifier: MIT

package bigraded_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/katalvlaran/sseq/bigraded"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSetGet(t *testing.T) {
	st := bigraded.New[string]()
	b := bigraded.Bidegree{S: 2, T: 5}
	_, ok := st.Get(b)
	assert.False(t, ok)
	require.NoError(t, st.Set(b, "x"))
	v, ok := st.Get(b)
	require.True(t, ok)
	assert.Equal(t, "x", v)
	assert.True(t, st.Has(b))
	assert.False(t, st.Has(bigraded.Bidegree{S: 0, T: 0}))
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, "(2, 5)", b.String())
}

func TestDoubleCommitPanics(t *testing.T) {
	st := bigraded.New[int]()
	b := bigraded.Bidegree{S: 1, T: 1}
	require.NoError(t, st.Set(b, 1))
	defer func() {
		r := recover()
		cv, ok := r.(*bigraded.ConcurrencyViolation)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, b, cv.Bidegree)
		v, _ := st.Get(b)
		assert.Equal(t, 1, v, "first commit must survive")
	}()
	_ = st.Set(b, 2)
}

func TestSerialMustGetPanics(t *testing.T) {
	st := bigraded.New[int]()
	assert.Panics(t, func() { st.MustGet(bigraded.Bidegree{S: 0, T: 3}) })
	assert.Panics(t, func() { _, _ = st.Wait(context.Background(), bigraded.Bidegree{S: 0, T: 3}) })
}

func TestCapacity(t *testing.T) {
	st := bigraded.New[int](bigraded.WithCapacity(2, 10))
	assert.ErrorIs(t, st.Set(bigraded.Bidegree{S: 3, T: 0}, 1), bigraded.ErrDegreeRangeExceeded)
	assert.ErrorIs(t, st.Set(bigraded.Bidegree{S: 0, T: 11}, 1), bigraded.ErrDegreeRangeExceeded)
	assert.ErrorIs(t, st.Check(bigraded.Bidegree{S: -1, T: 0}), bigraded.ErrDegreeRangeExceeded)
	assert.NoError(t, st.Set(bigraded.Bidegree{S: 2, T: 10}, 1))
	assert.Equal(t, 1, st.Len())
}

func TestRangeOrder(t *testing.T) {
	st := bigraded.New[int]()
	for _, b := range []bigraded.Bidegree{{S: 1, T: 3}, {S: 0, T: 7}, {S: 1, T: 1}, {S: 0, T: 0}} {
		require.NoError(t, st.Set(b, b.S*100+b.T))
	}
	var got []bigraded.Bidegree
	st.Range(func(b bigraded.Bidegree, v int) bool {
		assert.Equal(t, b.S*100+b.T, v)
		got = append(got, b)
		return true
	})
	assert.Equal(t, []bigraded.Bidegree{{S: 0, T: 0}, {S: 0, T: 7}, {S: 1, T: 1}, {S: 1, T: 3}}, got)

	n := 0
	st.Range(func(bigraded.Bidegree, int) bool { n++; return false })
	assert.Equal(t, 1, n)
}

// TestConcurrentWaiters blocks many readers on one cell and commits it once.
func TestConcurrentWaiters(t *testing.T) {
	st := bigraded.New[int](bigraded.WithMode(bigraded.Concurrent))
	b := bigraded.Bidegree{S: 3, T: 4}
	const readers = 32
	var wg sync.WaitGroup
	results := make([]int, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := st.Wait(context.Background(), b)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, st.Set(b, 42))
	wg.Wait()
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

// TestConcurrentCommitRace lets several goroutines race to commit one cell:
// exactly one wins, the rest observe a ConcurrencyViolation.
func TestConcurrentCommitRace(t *testing.T) {
	st := bigraded.New[int](bigraded.WithMode(bigraded.Concurrent))
	b := bigraded.Bidegree{S: 0, T: 0}
	const writers = 16
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		violations int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					_, ok := r.(*bigraded.ConcurrencyViolation)
					assert.True(t, ok)
					mu.Lock()
					violations++
					mu.Unlock()
				}
			}()
			_ = st.Set(b, i)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, writers-1, violations)
	assert.Equal(t, 1, st.Len())
}

func TestWaitCancelled(t *testing.T) {
	st := bigraded.New[int](bigraded.WithMode(bigraded.Concurrent))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := st.Wait(ctx, bigraded.Bidegree{S: 1, T: 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, err = st.Wait(context.Background(), bigraded.Bidegree{S: -1, T: 1})
	assert.ErrorIs(t, err, bigraded.ErrDegreeRangeExceeded)
}
