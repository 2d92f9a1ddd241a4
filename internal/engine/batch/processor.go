package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Concurrency limits.
const (
	// DefaultConcurrency processes items strictly one after another.
	DefaultConcurrency = 1

	// MinConcurrency is the minimum allowed concurrency.
	MinConcurrency = 1

	// MaxConcurrency is the maximum allowed concurrency.
	MaxConcurrency = 64
)

// Common processing errors.
var (
	ErrInvalidConcurrency = errors.New("concurrency must be between 1 and 64")
	ErrNilCallback        = errors.New("item callback cannot be nil")
	ErrEmptyItems         = errors.New("items slice cannot be empty")
)

// ItemFunc processes a single item. index is the item's 0-based position.
type ItemFunc[T any] func(ctx context.Context, item T, index int) error

// ProgressCallback is invoked after each item completes, successfully or not.
// Calls are never concurrent with each other.
type ProgressCallback func(progress ProgressSnapshot)

// ItemError identifies the item whose callback failed.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d failed: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Processor applies an ItemFunc to every item of a slice.
type Processor[T any] struct {
	// concurrency is the maximum number of items in flight.
	concurrency int

	// continueOnError keeps processing after a failed item.
	continueOnError bool

	// onProgress is an optional callback for progress updates.
	onProgress ProgressCallback

	// mu serializes progress updates and callbacks.
	mu sync.Mutex
}

// NewProcessor creates a processor with the given concurrency.
func NewProcessor[T any](concurrency int) (*Processor[T], error) {
	if concurrency < MinConcurrency || concurrency > MaxConcurrency {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, concurrency)
	}
	return &Processor[T]{concurrency: concurrency}, nil
}

// NewSequentialProcessor creates a processor that handles one item at a time.
func NewSequentialProcessor[T any]() *Processor[T] {
	return &Processor[T]{concurrency: DefaultConcurrency}
}

// WithProgressCallback sets a progress callback for the processor.
func (p *Processor[T]) WithProgressCallback(callback ProgressCallback) *Processor[T] {
	p.onProgress = callback
	return p
}

// ContinueOnError makes Process visit every item even after failures. The
// returned error then joins one *ItemError per failed item, in index order.
func (p *Processor[T]) ContinueOnError(v bool) *Processor[T] {
	p.continueOnError = v
	return p
}

// Concurrency returns the configured concurrency.
func (p *Processor[T]) Concurrency() int {
	return p.concurrency
}

// Process runs fn over items. Unless ContinueOnError is set, it stops at the
// first failure and returns that item's *ItemError.
func (p *Processor[T]) Process(ctx context.Context, items []T, fn ItemFunc[T]) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	if fn == nil {
		return ErrNilCallback
	}

	progress := NewProgress(len(items))
	if p.concurrency <= 1 {
		return p.processSequential(ctx, items, fn, progress)
	}
	return p.processConcurrent(ctx, items, fn, progress)
}

func (p *Processor[T]) processSequential(ctx context.Context, items []T, fn ItemFunc[T], progress *Progress) error {
	var failed []error
	for i, item := range items {
		// Check for context cancellation
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx, item, i)
		p.record(progress, err != nil)
		if err == nil {
			continue
		}

		itemErr := &ItemError{Index: i, Err: err}
		if !p.continueOnError {
			return itemErr
		}
		failed = append(failed, itemErr)
	}
	return errors.Join(failed...)
}

func (p *Processor[T]) processConcurrent(ctx context.Context, items []T, fn ItemFunc[T], progress *Progress) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	itemErrs := make([]error, len(items))
	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := fn(gctx, item, i)
			p.record(progress, err != nil)
			if err == nil {
				return nil
			}
			itemErr := &ItemError{Index: i, Err: err}
			if p.continueOnError {
				itemErrs[i] = itemErr
				return nil
			}
			return itemErr
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Join(itemErrs...)
}

// record updates progress and notifies the callback under the lock.
func (p *Processor[T]) record(progress *Progress, failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	progress.Add(failed)
	if p.onProgress != nil {
		p.onProgress(progress.Snapshot())
	}
}
