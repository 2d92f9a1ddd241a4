package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_Process(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	t.Run("Sequential", func(t *testing.T) {
		p := NewSequentialProcessor[int]()
		var order []int

		err := p.Process(context.Background(), items, func(_ context.Context, item int, index int) error {
			assert.Equal(t, item, index)
			order = append(order, index)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, items, order)
	})

	t.Run("Concurrent", func(t *testing.T) {
		p, err := NewProcessor[int](4)
		require.NoError(t, err)
		var processed int32
		results := make([]int, len(items))

		err = p.Process(context.Background(), items, func(_ context.Context, item int, index int) error {
			atomic.AddInt32(&processed, 1)
			results[index] = item * 2
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int32(25), processed)
		for i, v := range results {
			assert.Equal(t, i*2, v)
		}
	})

	t.Run("StopsAtFirstError", func(t *testing.T) {
		p := NewSequentialProcessor[int]()
		var calls int

		err := p.Process(context.Background(), items, func(_ context.Context, _ int, index int) error {
			calls++
			if index == 1 {
				return errors.New("fail")
			}
			return nil
		})
		require.Error(t, err)
		assert.Equal(t, 2, calls)

		var itemErr *ItemError
		require.ErrorAs(t, err, &itemErr)
		assert.Equal(t, 1, itemErr.Index)
		assert.Contains(t, err.Error(), "item 1 failed")
	})

	t.Run("ConcurrentStopsAtFirstError", func(t *testing.T) {
		p, err := NewProcessor[int](3)
		require.NoError(t, err)
		boom := errors.New("boom")

		err = p.Process(context.Background(), items, func(_ context.Context, _ int, index int) error {
			if index == 5 {
				return boom
			}
			return nil
		})
		require.ErrorIs(t, err, boom)
	})

	t.Run("ContinueOnError", func(t *testing.T) {
		for _, concurrency := range []int{1, 4} {
			p, err := NewProcessor[int](concurrency)
			require.NoError(t, err)
			p.ContinueOnError(true)
			var calls int32

			err = p.Process(context.Background(), items, func(_ context.Context, _ int, index int) error {
				atomic.AddInt32(&calls, 1)
				if index%10 == 3 {
					return errors.New("bad")
				}
				return nil
			})
			require.Error(t, err)
			assert.Equal(t, int32(25), calls)

			joined, ok := err.(interface{ Unwrap() []error })
			require.True(t, ok)
			errs := joined.Unwrap()
			require.Len(t, errs, 3)
			var first *ItemError
			require.ErrorAs(t, errs[0], &first)
			assert.Equal(t, 3, first.Index)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewSequentialProcessor[int]()

		err := p.Process(ctx, items, func(_ context.Context, _ int, index int) error {
			if index == 2 {
				cancel()
			}
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("EmptyItems", func(t *testing.T) {
		p := NewSequentialProcessor[int]()
		err := p.Process(context.Background(), nil, nil)
		assert.Equal(t, ErrEmptyItems, err)
	})

	t.Run("NilCallback", func(t *testing.T) {
		p := NewSequentialProcessor[int]()
		err := p.Process(context.Background(), items, nil)
		assert.Equal(t, ErrNilCallback, err)
	})

	t.Run("InvalidConcurrency", func(t *testing.T) {
		_, err := NewProcessor[int](0)
		assert.ErrorIs(t, err, ErrInvalidConcurrency)
		_, err = NewProcessor[int](MaxConcurrency + 1)
		assert.ErrorIs(t, err, ErrInvalidConcurrency)
	})
}

func TestProcessor_ProgressCallback(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	p, err := NewProcessor[string](2)
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []int
	p.WithProgressCallback(func(s ProgressSnapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.Processed)
		assert.Equal(t, 4, s.Total)
	})

	err = p.Process(context.Background(), items, func(context.Context, string, int) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, seen, "snapshots are delivered serially with increasing counts")
}

func TestProgress(t *testing.T) {
	p := NewProgress(4)

	assert.Equal(t, 0.0, p.PercentComplete())
	assert.False(t, p.IsComplete())
	assert.Equal(t, time.Duration(0), p.EstimatedTimeRemaining())

	p.Add(false)
	p.Add(true)
	assert.Equal(t, 50.0, p.PercentComplete())

	snap := p.Snapshot()
	assert.Equal(t, 2, snap.Processed)
	assert.Equal(t, 1, snap.Failed)
	assert.InDelta(t, 0.5, snap.Ratio(), 1e-9)

	p.Add(false)
	p.Add(false)
	assert.True(t, p.IsComplete())
	assert.GreaterOrEqual(t, p.ElapsedTime(), time.Duration(0))
}
