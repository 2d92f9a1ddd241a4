package batch

import (
	"sync"
	"time"
)

// percentMultiplier is used to convert a ratio to percentage (0-100).
const percentMultiplier = 100

// Progress tracks how many items of a run have completed.
// It is safe for concurrent use.
type Progress struct {
	// Total is the number of items to process.
	Total int

	// Processed counts completed items, including failed ones.
	Processed int

	// Failed counts items whose callback returned an error.
	Failed int

	// StartTime is when processing started.
	StartTime time.Time

	// LastUpdateTime is when progress was last updated.
	LastUpdateTime time.Time

	// mu protects concurrent access to progress fields.
	mu sync.RWMutex
}

// NewProgress creates a new progress tracker.
func NewProgress(total int) *Progress {
	now := time.Now()
	return &Progress{
		Total:          total,
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Add records one completed item.
func (p *Progress) Add(failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Processed++
	if failed {
		p.Failed++
	}
	p.LastUpdateTime = time.Now()
}

// PercentComplete returns the completion percentage (0-100).
func (p *Progress) PercentComplete() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.percentCompleteUnsafe()
}

// IsComplete returns true if all items have been processed.
func (p *Progress) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Processed >= p.Total
}

// ElapsedTime returns the time elapsed since processing started.
func (p *Progress) ElapsedTime() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return time.Since(p.StartTime)
}

// EstimatedTimeRemaining extrapolates from the average time per item.
// Returns 0 if no items have been processed yet.
func (p *Progress) EstimatedTimeRemaining() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.Processed == 0 {
		return 0
	}
	avg := time.Since(p.StartTime) / time.Duration(p.Processed)
	return avg * time.Duration(p.Total-p.Processed)
}

// Snapshot returns a copy of the current progress state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return ProgressSnapshot{
		Total:           p.Total,
		Processed:       p.Processed,
		Failed:          p.Failed,
		StartTime:       p.StartTime,
		LastUpdateTime:  p.LastUpdateTime,
		PercentComplete: p.percentCompleteUnsafe(),
		ElapsedTime:     time.Since(p.StartTime),
	}
}

// ProgressSnapshot is an immutable snapshot of progress state.
type ProgressSnapshot struct {
	Total           int
	Processed       int
	Failed          int
	StartTime       time.Time
	LastUpdateTime  time.Time
	PercentComplete float64
	ElapsedTime     time.Duration
}

// Ratio returns completion as a value in [0, 1].
func (s ProgressSnapshot) Ratio() float64 {
	return s.PercentComplete / percentMultiplier
}

// percentCompleteUnsafe must be called with the lock held.
func (p *Progress) percentCompleteUnsafe() float64 {
	if p.Total == 0 {
		return 0
	}
	return (float64(p.Processed) / float64(p.Total)) * percentMultiplier
}
