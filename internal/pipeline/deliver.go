package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Deliverer hands a finished archive to its destination.
type Deliverer interface {
	Deliver(ctx context.Context, name string, data []byte) error
}

// DeliverFunc adapts a function to Deliverer.
type DeliverFunc func(ctx context.Context, name string, data []byte) error

// Deliver calls f(ctx, name, data).
func (f DeliverFunc) Deliver(ctx context.Context, name string, data []byte) error {
	return f(ctx, name, data)
}

// DirDeliverer writes the archive into Dir, creating it if needed.
type DirDeliverer struct {
	Dir string
}

// Path returns where an archive called name is written.
func (d DirDeliverer) Path(name string) string {
	return filepath.Join(d.Dir, name)
}

// Deliver implements Deliverer.
func (d DirDeliverer) Deliver(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.Dir != "" {
		if err := os.MkdirAll(d.Dir, 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(d.Path(name), data, 0o600); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	return nil
}

// MemoryDeliverer keeps the last delivered archive in memory.
type MemoryDeliverer struct {
	mu   sync.Mutex
	name string
	data []byte
}

// Deliver implements Deliverer.
func (m *MemoryDeliverer) Deliver(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
	m.data = data
	return nil
}

// Delivered returns the last archive and whether one was delivered.
func (m *MemoryDeliverer) Delivered() (string, []byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name, m.data, m.data != nil
}
