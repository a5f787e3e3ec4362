package extentmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDivideForWrite_ZeroLength(t *testing.T) {
	s := newSlice(0, testConfig())
	allocated, needAlloc, err := s.DivideForWrite(1000, 0)
	require.NoError(t, err)
	require.Empty(t, allocated)
	require.Empty(t, needAlloc)
}

func TestDivideForWrite_OutOfRange(t *testing.T) {
	cfg := testConfig()
	s := newSlice(0, cfg)
	_, _, err := s.DivideForWrite(cfg.SliceSize-10, 100)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestDivideForWrite_CoversRequestExactlyOnce(t *testing.T) {
	cfg := testConfig()
	s := newSlice(0, cfg)
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 1 << 20, Length: 4096}))
	require.NoError(t, s.Merge(4096, PExtent{PhysicalOffset: 2 << 20, Length: 4096, Unwritten: true}))

	offset, length := uint64(2000), uint64(6000)
	allocated, needAlloc, err := s.DivideForWrite(offset, length)
	require.NoError(t, err)

	var total uint64
	for _, a := range allocated {
		total += a.Length
	}
	for _, n := range needAlloc {
		total += n.WriteLength
	}
	require.Equal(t, length, total)
}

func TestDivideForRead_MissingSliceIsAllHole(t *testing.T) {
	s := newSlice(0, testConfig())
	reads, holes, err := s.DivideForRead(0, 4096)
	require.NoError(t, err)
	require.Empty(t, reads)
	require.Equal(t, []HolePart{{FSOffset: 0, Length: 4096}}, holes)
}

func TestDivideForRead_CoversRequestExactlyOnce(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 1 << 20, Length: 4096}))
	require.NoError(t, s.Merge(8192, PExtent{PhysicalOffset: 2 << 20, Length: 4096, Unwritten: true}))

	reads, holes, err := s.DivideForRead(1000, 10000)
	require.NoError(t, err)

	var total uint64
	for _, r := range reads {
		total += r.Length
	}
	for _, h := range holes {
		total += h.Length
	}
	require.Equal(t, uint64(10000), total)
}

func TestMerge_RejectsOverlap(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 1000, Length: 4096}))

	err := s.Merge(2048, PExtent{PhysicalOffset: 9000, Length: 4096})
	require.ErrorIs(t, err, ErrOverlap)
}

func TestMerge_CoalescesBothNeighbours(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 1000, Length: 4096}))
	require.NoError(t, s.Merge(8192, PExtent{PhysicalOffset: 9192, Length: 4096}))

	require.NoError(t, s.Merge(4096, PExtent{PhysicalOffset: 5096, Length: 4096}))

	require.Equal(t, 1, s.extents.Len())
	e, ok := s.extents.Get(0)
	require.True(t, ok)
	require.Equal(t, PExtent{PhysicalOffset: 1000, Length: 12288}, e)
}

func TestMerge_DoesNotCoalesceUnwritten(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 1000, Length: 4096, Unwritten: true}))
	require.NoError(t, s.Merge(4096, PExtent{PhysicalOffset: 5096, Length: 4096, Unwritten: true}))

	require.Equal(t, 2, s.extents.Len())
}

func TestMerge_DoesNotCoalesceAcrossPhysicalGap(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 1000, Length: 4096}))
	require.NoError(t, s.Merge(4096, PExtent{PhysicalOffset: 999999, Length: 4096}))

	require.Equal(t, 2, s.extents.Len())
}

func TestMarkWritten_AlreadyWrittenIsNoOp(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 1000, Length: 4096}))

	require.NoError(t, s.MarkWritten(0, 4096))

	require.Equal(t, 1, s.extents.Len())
	e, ok := s.extents.Get(0)
	require.True(t, ok)
	require.Equal(t, PExtent{PhysicalOffset: 1000, Length: 4096}, e)
}

func TestMarkWritten_AllOverlappingBecomeWritten(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 1000, Length: 8192, Unwritten: true}))

	require.NoError(t, s.MarkWritten(0, 8192))

	var allWritten = true
	s.extents.ascend(func(e logicalExtent) bool {
		if e.extent.Unwritten {
			allWritten = false
		}
		return true
	})
	require.True(t, allWritten)
}

func TestDivideForWrite_ResidualAllocClampsAgainstLaterExtent(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 1000, Length: 4096}))
	require.NoError(t, s.Merge(49152, PExtent{PhysicalOffset: 9000, Length: 4096}))

	_, needAlloc, err := s.DivideForWrite(4096, 100)
	require.NoError(t, err)
	require.Len(t, needAlloc, 1)

	a := needAlloc[0]
	require.Equal(t, uint64(4096), a.AllocInfo.LOffset)
	// Prealloc would naturally size this to 65536 bytes, which would run
	// straight through the extent sitting at 49152; it must be clamped to
	// stop exactly at that extent's start instead.
	require.Equal(t, uint64(45056), a.AllocInfo.Len)
	require.Equal(t, uint64(100), a.WriteLength)
}

func TestDivideForWrite_LeftHintSeededFromExtentTouchingRequestStart(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 1000, Length: 4096}))

	_, needAlloc, err := s.DivideForWrite(4096, 100)
	require.NoError(t, err)
	require.Len(t, needAlloc, 1)

	require.NotNil(t, needAlloc[0].AllocInfo.LeftHint)
	require.Equal(t, uint64(5096), *needAlloc[0].AllocInfo.LeftHint)
}

func TestInvariant_ExtentsDisjointAndSortedAfterMutations(t *testing.T) {
	cfg := testConfig()
	s := newSlice(0, cfg)

	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 1000, Length: 4096, Unwritten: true}))
	require.NoError(t, s.Merge(4096, PExtent{PhysicalOffset: 5096, Length: 4096, Unwritten: true}))
	require.NoError(t, s.MarkWritten(1024, 6144))

	var prevEnd uint64
	first := true
	s.extents.ascend(func(e logicalExtent) bool {
		if !first {
			require.GreaterOrEqual(t, e.fsOffset, prevEnd, "extents must be disjoint and sorted")
		}
		first = false
		prevEnd = e.logicalEnd()
		require.GreaterOrEqual(t, e.fsOffset, s.Offset)
		require.LessOrEqual(t, e.logicalEnd(), s.end())
		return true
	})
}
