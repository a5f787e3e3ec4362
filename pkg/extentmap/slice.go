package extentmap

import "fmt"

// Slice is a sorted interval map over one fixed-size, fixed-aligned region
// of a file's logical address space: [Offset, Offset+cfg.SliceSize). It owns
// zero or more non-overlapping PExtent records whose logical ranges lie
// inside that region, and provides the four primitives that translate
// logical read/write requests into physical work lists.
//
// A Slice is not safe for concurrent use; callers serialise access (the
// reference SliceTable does this with a per-table RWMutex).
type Slice struct {
	Offset  uint64
	cfg     Config
	extents *extentTree
}

func newSlice(offset uint64, cfg Config) *Slice {
	return &Slice{Offset: offset, cfg: cfg, extents: newExtentTree()}
}

// end returns the exclusive logical end of the slice's region.
func (s *Slice) end() uint64 {
	return s.Offset + s.cfg.SliceSize
}

// Empty reports whether the slice currently owns no extents.
func (s *Slice) Empty() bool {
	return s.extents.Len() == 0
}

// ExtentCount returns the number of extents currently in the slice. Used by
// callers that need to observe coalescing/splitting behaviour (e.g. metrics
// instrumentation) without reaching into the slice's internal tree.
func (s *Slice) ExtentCount() int {
	return s.extents.Len()
}

func (s *Slice) checkRange(offset, length uint64) error {
	if length == 0 {
		return nil
	}
	if offset < s.Offset || offset+length > s.end() {
		return fmt.Errorf("%w: [%d,%d) not inside slice region [%d,%d)",
			ErrOutOfRange, offset, offset+length, s.Offset, s.end())
	}
	return nil
}

// DivideForWrite splits a logical write request into parts that can be
// written immediately (their backing extent already exists) and parts that
// require a fresh allocation first. Both lists are in ascending logical
// order; BufOffset on every part is relative to offset.
func (s *Slice) DivideForWrite(offset, length uint64) (allocated []WritePart, needAlloc []AllocPart, err error) {
	if err := s.checkRange(offset, length); err != nil {
		return nil, nil, err
	}
	if length == 0 {
		return nil, nil, nil
	}

	reqEnd := offset + length
	overlaps := s.extents.overlapping(offset, reqEnd)

	curOff := offset
	var leftHint *uint64

	emitAlloc := func(boundEnd *uint64) {
		lo := alignDown(curOff, s.cfg.BlockSize)
		var hi uint64
		var gapEnd uint64

		if boundEnd != nil && *boundEnd < reqEnd {
			// The gap is bounded by an existing extent the request
			// continues into: allocate exactly up to that boundary.
			hi = *boundEnd
			gapEnd = *boundEnd
		} else {
			// The remaining request finishes before reaching any further
			// extent: size the allocation with the prealloc policy, then
			// clamp so it never runs into the next extent in the tree, even
			// one entirely beyond reqEnd that overlapping() never returned,
			// nor past the end of the slice region.
			natural := alignUp(reqEnd, s.cfg.BlockSize) - lo
			if natural < s.cfg.PreallocSize {
				natural = s.cfg.PreallocSize
			}
			hi = lo + natural
			if next, ok := s.extents.ceil(reqEnd); ok && hi > next.fsOffset {
				hi = next.fsOffset
			}
			if hi > s.end() {
				hi = s.end()
			}
			gapEnd = reqEnd
		}

		writeLength := gapEnd - curOff
		padding := curOff - lo

		info := AllocInfo{LOffset: lo, Len: hi - lo}
		if leftHint != nil {
			hint := *leftHint
			info.LeftHint = &hint
		} else if boundEnd != nil {
			if next, ok := s.extents.ceil(hi); ok {
				hint := next.extent.PhysicalOffset
				info.RightHint = &hint
			}
		}
		leftHint = nil

		needAlloc = append(needAlloc, AllocPart{
			AllocInfo:   info,
			WriteLength: writeLength,
			Padding:     padding,
			BufOffset:   curOff - offset,
		})
		curOff = gapEnd
	}

	for _, ext := range overlaps {
		if curOff >= reqEnd {
			break
		}

		extStart, extEnd := ext.fsOffset, ext.logicalEnd()

		if curOff < extStart {
			bound := extStart
			emitAlloc(&bound)
			if curOff >= reqEnd {
				break
			}
		}

		if curOff >= extStart && curOff < extEnd {
			writeEnd := min(reqEnd, extEnd)
			allocated = append(allocated, WritePart{
				PhysicalOffset: ext.extent.PhysicalOffset + (curOff - extStart),
				Length:         writeEnd - curOff,
				BufOffset:      curOff - offset,
			})
			curOff = writeEnd
		}

		if curOff == extEnd || alignDown(curOff, s.cfg.BlockSize) == extEnd {
			hint := ext.extent.end()
			leftHint = &hint
		}
	}

	if curOff < reqEnd {
		emitAlloc(nil)
	}

	return allocated, needAlloc, nil
}

// DivideForRead splits a logical read request into parts backed by written
// extents and holes (gaps, or overlap with unwritten extents). The union of
// both lists in order exactly covers [offset, offset+length) once.
func (s *Slice) DivideForRead(offset, length uint64) (reads []ReadPart, holes []HolePart, err error) {
	if err := s.checkRange(offset, length); err != nil {
		return nil, nil, err
	}
	if length == 0 {
		return nil, nil, nil
	}

	reqEnd := offset + length
	overlaps := s.extents.overlapping(offset, reqEnd)
	curOff := offset

	emitHole := func(end uint64) {
		if end <= curOff {
			return
		}
		holes = append(holes, HolePart{FSOffset: curOff, Length: end - curOff, BufOffset: curOff - offset})
		curOff = end
	}

	for _, ext := range overlaps {
		if curOff >= reqEnd {
			break
		}
		extStart, extEnd := ext.fsOffset, ext.logicalEnd()

		if curOff < extStart {
			emitHole(min(reqEnd, extStart))
			if curOff >= reqEnd {
				break
			}
		}

		if curOff >= extStart && curOff < extEnd {
			segEnd := min(reqEnd, extEnd)
			if ext.extent.Unwritten {
				holes = append(holes, HolePart{FSOffset: curOff, Length: segEnd - curOff, BufOffset: curOff - offset})
			} else {
				reads = append(reads, ReadPart{
					PhysicalOffset: ext.extent.PhysicalOffset + (curOff - extStart),
					Length:         segEnd - curOff,
					BufOffset:      curOff - offset,
				})
			}
			curOff = segEnd
		}
	}

	emitHole(reqEnd)

	return reads, holes, nil
}

// Merge inserts a newly allocated extent into the slice, eagerly coalescing
// it with an immediate left and/or right neighbour when both are written
// and logically and physically contiguous with it. The new extent's range
// must be disjoint from every existing extent; violating this is a
// programmer error.
func (s *Slice) Merge(loffset uint64, e PExtent) error {
	if err := s.checkRange(loffset, e.Length); err != nil {
		return err
	}
	if e.Length == 0 {
		return nil
	}

	cur := logicalExtent{fsOffset: loffset, extent: e}

	next, hasNext := s.extents.ceil(loffset)
	if hasNext && next.fsOffset < cur.logicalEnd() {
		return fmt.Errorf("%w: new extent at %d overlaps existing extent at [%d,%d)",
			ErrOverlap, loffset, next.fsOffset, next.logicalEnd())
	}

	if prev, ok := s.extents.floor(loffset); ok {
		if prev.logicalEnd() > loffset {
			return fmt.Errorf("%w: new extent at %d overlaps existing extent at [%d,%d)",
				ErrOverlap, loffset, prev.fsOffset, prev.logicalEnd())
		}
		if prev.coalescable(cur) {
			s.extents.Delete(prev.fsOffset)
			cur = logicalExtent{
				fsOffset: prev.fsOffset,
				extent: PExtent{
					PhysicalOffset: prev.extent.PhysicalOffset,
					Length:         prev.extent.Length + cur.extent.Length,
				},
			}
		}
	}

	if hasNext {
		if cur.coalescable(next) {
			s.extents.Delete(next.fsOffset)
			cur = logicalExtent{
				fsOffset: cur.fsOffset,
				extent: PExtent{
					PhysicalOffset: cur.extent.PhysicalOffset,
					Length:         cur.extent.Length + next.extent.Length,
				},
			}
		}
	}

	s.extents.Set(cur.fsOffset, cur.extent)
	return nil
}

// MarkWritten flips the unwritten flag to false for every extent overlapping
// [offset, offset+length), splitting extents as needed to keep the flag
// uniform per extent, and coalesces newly-written pieces with an eligible
// left neighbour as it goes.
func (s *Slice) MarkWritten(offset, length uint64) error {
	if err := s.checkRange(offset, length); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}

	reqEnd := offset + length
	overlaps := s.extents.overlapping(offset, reqEnd)

	var prev *logicalExtent
	// Seed the rolling left neighbour from a written extent that ends
	// exactly at the request's start. The loop below never sets prev from
	// it (it contributes no bytes to the request), and when another extent
	// starts at offset overlapping() does not return it at all, so it is
	// looked up here as the entry with the greatest key below offset.
	if offset > 0 {
		if f, ok := s.extents.floor(offset - 1); ok && f.logicalEnd() == offset && !f.extent.Unwritten {
			seed := f
			prev = &seed
		}
	}

	for _, ext := range overlaps {
		if offset >= reqEnd {
			break
		}

		extStart, extEnd := ext.fsOffset, ext.logicalEnd()
		overlapStart := max(offset, extStart)
		overlapEnd := min(reqEnd, extEnd)
		if overlapStart >= overlapEnd {
			continue
		}

		if !ext.extent.Unwritten {
			// Already written: left untouched, but still eligible to
			// absorb a rolling left neighbour.
			cur := ext
			if prev != nil && prev.coalescable(cur) {
				s.extents.Delete(prev.fsOffset)
				s.extents.Delete(cur.fsOffset)
				cur = logicalExtent{
					fsOffset: prev.fsOffset,
					extent: PExtent{
						PhysicalOffset: prev.extent.PhysicalOffset,
						Length:         prev.extent.Length + cur.extent.Length,
					},
				}
				s.extents.Set(cur.fsOffset, cur.extent)
			}
			prevCopy := cur
			prev = &prevCopy
			continue
		}

		// Split the unwritten extent into up to three pieces: left
		// remainder (still unwritten), middle (now written), right
		// remainder (still unwritten).
		s.extents.Delete(extStart)

		if extStart < overlapStart {
			left := PExtent{PhysicalOffset: ext.extent.PhysicalOffset, Length: overlapStart - extStart, Unwritten: true}
			s.extents.Set(extStart, left)
		}

		middle := logicalExtent{
			fsOffset: overlapStart,
			extent: PExtent{
				PhysicalOffset: ext.extent.PhysicalOffset + (overlapStart - extStart),
				Length:         overlapEnd - overlapStart,
				Unwritten:      false,
			},
		}

		if extEnd > overlapEnd {
			right := PExtent{
				PhysicalOffset: ext.extent.PhysicalOffset + (overlapEnd - extStart),
				Length:         extEnd - overlapEnd,
				Unwritten:      true,
			}
			s.extents.Set(overlapEnd, right)
		}

		if prev != nil && prev.coalescable(middle) {
			s.extents.Delete(prev.fsOffset)
			middle = logicalExtent{
				fsOffset: prev.fsOffset,
				extent: PExtent{
					PhysicalOffset: prev.extent.PhysicalOffset,
					Length:         prev.extent.Length + middle.extent.Length,
				},
			}
		}
		s.extents.Set(middle.fsOffset, middle.extent)

		if extEnd > overlapEnd {
			// A right-unwritten remainder exists; nothing further in this
			// extent can coalesce, and the request cannot extend past it
			// without first passing through that remainder (which isn't
			// part of this overlap set). The request is fully consumed up
			// to overlapEnd==reqEnd in that case.
			prev = nil
			if overlapEnd >= reqEnd {
				return nil
			}
			continue
		}

		prevCopy := middle
		prev = &prevCopy

		if overlapEnd >= reqEnd {
			return nil
		}
	}

	return nil
}
