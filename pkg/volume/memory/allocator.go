// Package memory provides in-memory reference implementations of
// volume.Allocator and volume.Store for tests, demos, and the extentctl CLI.
// Neither implementation is durable; both discard their state on process
// exit.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/marmos91/extentvol/pkg/extentmap"
	"github.com/marmos91/extentvol/pkg/volume"
)

// region is a contiguous free physical range.
type region struct {
	offset, length uint64
}

// Allocator is a bump/free-list in-memory allocator over a volume of fixed
// capacity. It honours LeftHint/RightHint on a best-effort basis by
// placing the allocation so it starts at LeftHint (or ends at RightHint)
// when a free region contains that range.
type Allocator struct {
	mu       sync.Mutex
	capacity uint64
	free     []region // sorted by offset, non-overlapping
	closed   bool
}

// New creates an allocator over a volume of the given byte capacity, with
// the whole volume initially free.
func New(capacity uint64) *Allocator {
	return &Allocator{capacity: capacity, free: []region{{offset: 0, length: capacity}}}
}

// Allocate implements volume.Allocator.
func (a *Allocator) Allocate(_ context.Context, info extentmap.AllocInfo) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return 0, volume.ErrClosed
	}
	if info.Len == 0 {
		return 0, volume.ErrInvalidAlloc
	}

	idx := a.findBestFit(info)
	if idx < 0 {
		return 0, volume.ErrExhausted
	}

	r := a.free[idx]
	offset := r.offset
	if info.LeftHint != nil && *info.LeftHint >= r.offset && *info.LeftHint+info.Len <= r.offset+r.length {
		offset = *info.LeftHint
	} else if info.RightHint != nil && *info.RightHint >= info.Len && *info.RightHint-info.Len >= r.offset && *info.RightHint <= r.offset+r.length {
		offset = *info.RightHint - info.Len
	}

	a.carve(idx, offset, info.Len)
	return offset, nil
}

// findBestFit returns the index of a free region large enough to satisfy
// info, preferring one containing a hinted offset, else the first (by
// offset) region that fits.
func (a *Allocator) findBestFit(info extentmap.AllocInfo) int {
	if info.LeftHint != nil {
		if idx := a.regionContaining(*info.LeftHint, info.Len); idx >= 0 {
			return idx
		}
	}
	if info.RightHint != nil && *info.RightHint >= info.Len {
		if idx := a.regionContaining(*info.RightHint-info.Len, info.Len); idx >= 0 {
			return idx
		}
	}
	for i, r := range a.free {
		if r.length >= info.Len {
			return i
		}
	}
	return -1
}

func (a *Allocator) regionContaining(offset, length uint64) int {
	for i, r := range a.free {
		if offset >= r.offset && offset+length <= r.offset+r.length {
			return i
		}
	}
	return -1
}

// carve removes [offset, offset+length) from the free region at idx,
// splitting it into up to two remaining free regions.
func (a *Allocator) carve(idx int, offset, length uint64) {
	r := a.free[idx]
	a.free = append(a.free[:idx], a.free[idx+1:]...)

	if left := offset - r.offset; left > 0 {
		a.free = append(a.free, region{offset: r.offset, length: left})
	}
	if right := (r.offset + r.length) - (offset + length); right > 0 {
		a.free = append(a.free, region{offset: offset + length, length: right})
	}

	sort.Slice(a.free, func(i, j int) bool { return a.free[i].offset < a.free[j].offset })
}

// Free implements volume.Allocator, returning a range to the free list and
// coalescing it with adjacent free regions.
func (a *Allocator) Free(_ context.Context, pOffset, length uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return volume.ErrClosed
	}
	if pOffset+length > a.capacity {
		return volume.ErrOutOfBounds
	}

	a.free = append(a.free, region{offset: pOffset, length: length})
	sort.Slice(a.free, func(i, j int) bool { return a.free[i].offset < a.free[j].offset })

	merged := a.free[:0]
	for _, r := range a.free {
		if len(merged) > 0 && merged[len(merged)-1].offset+merged[len(merged)-1].length == r.offset {
			merged[len(merged)-1].length += r.length
		} else {
			merged = append(merged, r)
		}
	}
	a.free = merged
	return nil
}

// Close marks the allocator closed; subsequent calls return volume.ErrClosed.
func (a *Allocator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

// FreeBytes returns the total bytes currently unallocated (for tests/CLI
// reporting).
func (a *Allocator) FreeBytes() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	var total uint64
	for _, r := range a.free {
		total += r.length
	}
	return total
}
