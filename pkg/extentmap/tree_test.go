package extentmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtentTree_OverlappingIncludesFloorTouchingLo(t *testing.T) {
	tr := newExtentTree()
	tr.Set(0, PExtent{PhysicalOffset: 1000, Length: 4096})

	out := tr.overlapping(4096, 4200)
	require.Len(t, out, 1)
	require.Equal(t, uint64(0), out[0].fsOffset)
}

func TestExtentTree_OverlappingExcludesFloorEndingBeforeLo(t *testing.T) {
	tr := newExtentTree()
	tr.Set(0, PExtent{PhysicalOffset: 1000, Length: 2048})

	out := tr.overlapping(4096, 4200)
	require.Empty(t, out)
}
