package extentmap

// PExtent is one contiguous physical run backing a logical range. pOffset
// and the owning fsOffset key together describe the mapping
// fsOffset -> [PhysicalOffset, PhysicalOffset+Length).
//
// Unwritten extents are space the allocator has reserved but whose contents
// are undefined; reads over an unwritten extent surface as holes until a
// MarkWritten call flips the flag.
type PExtent struct {
	PhysicalOffset uint64
	Length         uint64
	Unwritten      bool
}

// end returns the exclusive physical end of the extent.
func (e PExtent) end() uint64 {
	return e.PhysicalOffset + e.Length
}

// logicalExtent pairs a PExtent with the logical offset it starts at, the
// key it is stored under in a Slice's tree.
type logicalExtent struct {
	fsOffset uint64
	extent   PExtent
}

func (e logicalExtent) logicalEnd() uint64 {
	return e.fsOffset + e.extent.Length
}

// physicallyAbuts reports whether e's physical range is immediately
// followed by next's physical range (no gap, no overlap).
func (e logicalExtent) physicallyAbuts(next logicalExtent) bool {
	return e.extent.end() == next.extent.PhysicalOffset
}

// logicallyAbuts reports whether e's logical range is immediately followed
// by next's logical range.
func (e logicalExtent) logicallyAbuts(next logicalExtent) bool {
	return e.logicalEnd() == next.fsOffset
}

// coalescable reports whether e and next satisfy the §4.3 merge predicate:
// both written, and logically and physically contiguous.
func (e logicalExtent) coalescable(next logicalExtent) bool {
	if e.extent.Unwritten || next.extent.Unwritten {
		return false
	}
	return e.logicallyAbuts(next) && e.physicallyAbuts(next)
}
