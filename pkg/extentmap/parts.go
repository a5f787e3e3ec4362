package extentmap

// WritePart is a physical write that can proceed immediately: the backing
// extent already exists (written or not — writing into a reserved-but-
// unwritten extent is valid; MarkWritten later flips the flag).
type WritePart struct {
	PhysicalOffset uint64
	Length         uint64

	// BufOffset is the offset into the caller's write buffer this part's
	// bytes come from.
	BufOffset uint64
}

// ReadPart is a physical read of an already-written extent.
type ReadPart struct {
	PhysicalOffset uint64
	Length         uint64

	// BufOffset is the offset into the caller's read buffer this part's
	// bytes should land at.
	BufOffset uint64
}

// HolePart is a read-side region with no backing extent, or one backed by
// an unwritten extent. The caller zero-fills it.
type HolePart struct {
	FSOffset uint64
	Length   uint64

	// BufOffset is the offset into the caller's read buffer this hole
	// should be zeroed at.
	BufOffset uint64
}

// AllocInfo describes an allocation request to be issued to the volume
// allocator before the associated write. LOffset and Len are aligned to the
// table's block size. At most one of LeftHint/RightHint is set.
type AllocInfo struct {
	LOffset uint64
	Len     uint64

	// LeftHint, if non-nil, is the physical offset immediately following a
	// neighbouring extent the allocator should try to extend from.
	LeftHint *uint64

	// RightHint, if non-nil, is the physical start of a neighbouring extent
	// the allocator should try to place immediately before.
	RightHint *uint64
}

// AllocPart is one allocation that must complete before its associated
// write can proceed. WriteLength may be smaller than AllocInfo.Len: the
// allocation is block-aligned and may be padded or extended by prealloc,
// while the actual write covers only WriteLength bytes starting at
// Padding bytes into the allocated region.
type AllocPart struct {
	AllocInfo   AllocInfo
	WriteLength uint64
	Padding     uint64

	// BufOffset is the offset into the caller's write buffer this part's
	// bytes come from.
	BufOffset uint64
}
