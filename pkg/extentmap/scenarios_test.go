package extentmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testConfig mirrors the scenarios in the design document: block size 4096,
// slice size 1MiB, prealloc 64KiB.
func testConfig() Config {
	return Config{BlockSize: 4096, SliceSize: 1 << 20, PreallocSize: 64 << 10}
}

func ptr(v uint64) *uint64 { return &v }

// Scenario 1: first write to an empty slice.
func TestScenario1_FirstWriteToEmptySlice(t *testing.T) {
	s := newSlice(0, testConfig())

	allocated, needAlloc, err := s.DivideForWrite(100, 200)
	require.NoError(t, err)
	require.Empty(t, allocated)
	require.Equal(t, []AllocPart{{
		AllocInfo:   AllocInfo{LOffset: 0, Len: 65536},
		WriteLength: 200,
		Padding:     100,
	}}, needAlloc)
}

// Scenario 2: write entirely inside a written extent.
func TestScenario2_WriteInsideWrittenExtent(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 10000, Length: 8192}))

	allocated, needAlloc, err := s.DivideForWrite(4000, 100)
	require.NoError(t, err)
	require.Equal(t, []WritePart{{PhysicalOffset: 14000, Length: 100}}, allocated)
	require.Empty(t, needAlloc)
}

// Scenario 3: write straddling the right edge of a written extent.
func TestScenario3_WriteStraddlingExtentEnd(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 10000, Length: 8192}))

	allocated, needAlloc, err := s.DivideForWrite(4000, 8192)
	require.NoError(t, err)
	require.Equal(t, []WritePart{{PhysicalOffset: 14000, Length: 4192}}, allocated)
	require.Equal(t, []AllocPart{{
		AllocInfo:   AllocInfo{LOffset: 8192, Len: 65536, LeftHint: ptr(18192)},
		WriteLength: 4000,
		Padding:     0,
		BufOffset:   4192,
	}}, needAlloc)
}

// Scenario 4: read over a hole between two written extents.
func TestScenario4_ReadOverHoleBetweenExtents(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 100000, Length: 4096}))
	require.NoError(t, s.Merge(8192, PExtent{PhysicalOffset: 200000, Length: 4096}))

	reads, holes, err := s.DivideForRead(0, 12288)
	require.NoError(t, err)
	require.Equal(t, []ReadPart{
		{PhysicalOffset: 100000, Length: 4096, BufOffset: 0},
		{PhysicalOffset: 200000, Length: 4096, BufOffset: 8192},
	}, reads)
	require.Equal(t, []HolePart{{FSOffset: 4096, Length: 4096, BufOffset: 4096}}, holes)
}

// Scenario 5: mark-written partially covering an unwritten extent splits it
// into left-unwritten, middle-written, right-unwritten.
func TestScenario5_MarkWrittenSplitsUnwrittenExtent(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 90000, Length: 8192, Unwritten: true}))

	require.NoError(t, s.MarkWritten(2048, 2048))

	e0, ok := s.extents.Get(0)
	require.True(t, ok)
	require.Equal(t, PExtent{PhysicalOffset: 90000, Length: 2048, Unwritten: true}, e0)

	e1, ok := s.extents.Get(2048)
	require.True(t, ok)
	require.Equal(t, PExtent{PhysicalOffset: 92048, Length: 2048, Unwritten: false}, e1)

	e2, ok := s.extents.Get(4096)
	require.True(t, ok)
	require.Equal(t, PExtent{PhysicalOffset: 94096, Length: 4096, Unwritten: true}, e2)

	require.Equal(t, 3, s.extents.Len())
}

// Scenario 6: mark-written coalesces a freshly-written remainder into an
// already-written left neighbour.
func TestScenario6_MarkWrittenCoalesces(t *testing.T) {
	s := newSlice(0, testConfig())
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 90000, Length: 4096}))
	require.NoError(t, s.Merge(4096, PExtent{PhysicalOffset: 94096, Length: 4096, Unwritten: true}))

	require.NoError(t, s.MarkWritten(4096, 4096))

	require.Equal(t, 1, s.extents.Len())
	e, ok := s.extents.Get(0)
	require.True(t, ok)
	require.Equal(t, PExtent{PhysicalOffset: 90000, Length: 8192, Unwritten: false}, e)
}
