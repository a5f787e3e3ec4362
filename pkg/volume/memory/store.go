package memory

import (
	"context"
	"sync"

	"github.com/marmos91/extentvol/pkg/bufpool"
	"github.com/marmos91/extentvol/pkg/volume"
)

// Store is an in-memory implementation of volume.Store backed by a
// growable byte slice representing the whole volume address space.
type Store struct {
	mu     sync.RWMutex
	data   []byte
	closed bool
}

// NewStore creates an in-memory volume store with the given initial
// capacity. The backing buffer grows on demand as writes land past it.
func NewStore(capacity uint64) *Store {
	return &Store{data: make([]byte, capacity)}
}

// WriteAt implements volume.Store.
func (s *Store) WriteAt(_ context.Context, pOffset uint64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return volume.ErrClosed
	}

	end := pOffset + uint64(len(data))
	if end > uint64(len(s.data)) {
		grown := make([]byte, end)
		copy(grown, s.data)
		s.data = grown
	}

	copy(s.data[pOffset:end], data)
	return nil
}

// ReadAt implements volume.Store. Bytes past the current backing size but
// within a region that was never allocated read back as zero, matching the
// "unwritten means undefined, but zero is an acceptable concrete choice for
// an in-memory demo" stance of this reference implementation.
func (s *Store) ReadAt(_ context.Context, pOffset uint64, length uint64) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, volume.ErrClosed
	}

	out := bufpool.Get(int(length))
	end := pOffset + length

	if pOffset >= uint64(len(s.data)) {
		for i := range out {
			out[i] = 0
		}
		return out, nil
	}

	copyEnd := min(end, uint64(len(s.data)))
	n := copy(out, s.data[pOffset:copyEnd])
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	return out, nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Size returns the current backing buffer length (for tests/CLI reporting).
func (s *Store) Size() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.data))
}

var (
	_ volume.Store = (*Store)(nil)
)
