package extentmap

import (
	"sync"
)

// SliceTable is the whole-file extent map: an ordered map from slice-region
// start offset to Slice, dispatching file-level requests to the slices they
// touch and splitting or joining work at slice boundaries.
//
// The core primitives on Slice are lock-free and single-threaded per the
// package's concurrency model; SliceTable adds the per-file coordination
// point (a single RWMutex) so a caller doesn't have to reimplement that
// discipline at every call site.
type SliceTable struct {
	cfg Config

	mu     sync.RWMutex
	slices map[uint64]*Slice
	order  []uint64 // slice starts, kept sorted
}

// NewSliceTable creates an empty table for the given configuration. It
// returns an error if cfg is invalid.
func NewSliceTable(cfg Config) (*SliceTable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SliceTable{cfg: cfg, slices: make(map[uint64]*Slice)}, nil
}

// Config returns the table's configuration.
func (t *SliceTable) Config() Config {
	return t.cfg
}

// sliceStartsFor returns the sorted slice-region starts intersecting
// [offset, offset+length).
func (t *SliceTable) sliceStartsFor(offset, length uint64) []uint64 {
	if length == 0 {
		return nil
	}
	start := t.cfg.sliceStart(offset)
	end := t.cfg.sliceStart(offset + length - 1)

	starts := make([]uint64, 0, (end-start)/t.cfg.SliceSize+1)
	for s := start; s <= end; s += t.cfg.SliceSize {
		starts = append(starts, s)
	}
	return starts
}

// clip returns the portion of [offset, offset+length) that falls inside the
// slice region starting at sliceStart.
func (t *SliceTable) clip(sliceStart, offset, length uint64) (clippedOffset, clippedLength uint64) {
	regionEnd := sliceStart + t.cfg.SliceSize
	reqEnd := offset + length

	lo := max(offset, sliceStart)
	hi := min(reqEnd, regionEnd)
	if hi <= lo {
		return lo, 0
	}
	return lo, hi - lo
}

// getOrCreate returns the slice at sliceStart, creating and registering an
// empty one if it doesn't exist yet. Must be called with mu held for
// writing.
func (t *SliceTable) getOrCreate(sliceStart uint64) *Slice {
	if s, ok := t.slices[sliceStart]; ok {
		return s
	}
	s := newSlice(sliceStart, t.cfg)
	t.slices[sliceStart] = s
	t.insertOrder(sliceStart)
	return s
}

func (t *SliceTable) insertOrder(start uint64) {
	i := 0
	for i < len(t.order) && t.order[i] < start {
		i++
	}
	if i < len(t.order) && t.order[i] == start {
		return
	}
	t.order = append(t.order, 0)
	copy(t.order[i+1:], t.order[i:])
	t.order[i] = start
}

func (t *SliceTable) removeOrderIfEmpty(start uint64) {
	s, ok := t.slices[start]
	if !ok || !s.Empty() {
		return
	}
	delete(t.slices, start)
	for i, v := range t.order {
		if v == start {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// DivideForWrite dispatches a file-level write request to every slice it
// intersects and concatenates their outputs in ascending logical order. It
// does not create slices: a missing slice is treated as empty, and Merge
// creates it.
func (t *SliceTable) DivideForWrite(offset, length uint64) ([]WritePart, []AllocPart, error) {
	if length == 0 {
		return nil, nil, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var allocated []WritePart
	var needAlloc []AllocPart

	for _, sliceStart := range t.sliceStartsFor(offset, length) {
		clipOff, clipLen := t.clip(sliceStart, offset, length)
		if clipLen == 0 {
			continue
		}
		// DivideForWrite never mutates the table: a slice that doesn't
		// exist yet is simply empty, so it's computed against a transient
		// Slice rather than registering one (a slice is only created for
		// real by Merge, once an allocation actually completes).
		s, ok := t.slices[sliceStart]
		if !ok {
			s = newSlice(sliceStart, t.cfg)
		}
		a, n, err := s.DivideForWrite(clipOff, clipLen)
		if err != nil {
			return nil, nil, err
		}
		for i := range a {
			a[i].BufOffset += clipOff - offset
		}
		for i := range n {
			n[i].BufOffset += clipOff - offset
		}
		allocated = append(allocated, a...)
		needAlloc = append(needAlloc, n...)
	}

	return allocated, needAlloc, nil
}

// DivideForRead dispatches a file-level read request to every slice it
// intersects. A slice that doesn't exist yet contributes one hole spanning
// its clipped range.
func (t *SliceTable) DivideForRead(offset, length uint64) ([]ReadPart, []HolePart, error) {
	if length == 0 {
		return nil, nil, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var reads []ReadPart
	var holes []HolePart

	for _, sliceStart := range t.sliceStartsFor(offset, length) {
		clipOff, clipLen := t.clip(sliceStart, offset, length)
		if clipLen == 0 {
			continue
		}

		s, ok := t.slices[sliceStart]
		if !ok {
			holes = append(holes, HolePart{FSOffset: clipOff, Length: clipLen, BufOffset: clipOff - offset})
			continue
		}

		r, h, err := s.DivideForRead(clipOff, clipLen)
		if err != nil {
			return nil, nil, err
		}
		for i := range r {
			r[i].BufOffset += clipOff - offset
		}
		for i := range h {
			h[i].BufOffset += clipOff - offset
		}
		reads = append(reads, r...)
		holes = append(holes, h...)
	}

	return reads, holes, nil
}

// Merge inserts a newly allocated extent at loffset into the slice covering
// it, creating the slice on demand.
func (t *SliceTable) Merge(loffset uint64, e PExtent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := t.cfg.sliceStart(loffset)
	s := t.getOrCreate(start)
	if err := s.Merge(loffset, e); err != nil {
		t.removeOrderIfEmpty(start)
		return err
	}
	return nil
}

// MarkWritten dispatches a completed-write notification to every slice the
// range intersects.
func (t *SliceTable) MarkWritten(offset, length uint64) error {
	if length == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, sliceStart := range t.sliceStartsFor(offset, length) {
		clipOff, clipLen := t.clip(sliceStart, offset, length)
		if clipLen == 0 {
			continue
		}
		s, ok := t.slices[sliceStart]
		if !ok {
			continue
		}
		if err := s.MarkWritten(clipOff, clipLen); err != nil {
			return err
		}
	}

	return nil
}

// Slice returns the slice covering offset, if one has been created.
func (t *SliceTable) Slice(offset uint64) (*Slice, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	start := t.cfg.sliceStart(offset)
	s, ok := t.slices[start]
	return s, ok
}

// SliceCount returns the number of non-empty slices currently in the table.
func (t *SliceTable) SliceCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.slices)
}

// Slices returns every slice currently in the table, ordered by increasing
// region start offset. Used by callers that need to walk the whole-file map,
// e.g. to dump or serialise it in full.
func (t *SliceTable) Slices() []*Slice {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Slice, 0, len(t.order))
	for _, start := range t.order {
		out = append(out, t.slices[start])
	}
	return out
}
