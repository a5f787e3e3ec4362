package extentmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeParse_RoundTrip(t *testing.T) {
	cfg := testConfig()
	s := newSlice(1<<20, cfg)

	require.NoError(t, s.Merge(1<<20, PExtent{PhysicalOffset: 5000, Length: 4096, Unwritten: true}))
	require.NoError(t, s.MarkWritten(1<<20+1024, 1024))
	require.NoError(t, s.Merge(1<<20+4096, PExtent{PhysicalOffset: 900000, Length: 8192}))

	before := snapshot(s)

	data, err := s.Serialize()
	require.NoError(t, err)

	parsed, err := Parse(data, cfg)
	require.NoError(t, err)

	require.Equal(t, s.Offset, parsed.Offset)
	require.Equal(t, before, snapshot(parsed))
}

func TestSerializeParse_EmptySlice(t *testing.T) {
	cfg := testConfig()
	s := newSlice(0, cfg)

	data, err := s.Serialize()
	require.NoError(t, err)

	parsed, err := Parse(data, cfg)
	require.NoError(t, err)
	require.Equal(t, 0, parsed.extents.Len())
}

func TestSerializeParse_PreservesSplitUnwrittenRuns(t *testing.T) {
	cfg := testConfig()
	s := newSlice(0, cfg)
	require.NoError(t, s.Merge(0, PExtent{PhysicalOffset: 1000, Length: 8192, Unwritten: true}))
	require.NoError(t, s.MarkWritten(2048, 2048))

	before := snapshot(s)

	data, err := s.Serialize()
	require.NoError(t, err)
	parsed, err := Parse(data, cfg)
	require.NoError(t, err)

	require.Equal(t, before, snapshot(parsed))
	require.Equal(t, 3, parsed.extents.Len())
}

// snapshot returns a comparable, ordered view of a slice's extents.
func snapshot(s *Slice) []logicalExtent {
	var out []logicalExtent
	s.extents.ascend(func(e logicalExtent) bool {
		out = append(out, e)
		return true
	})
	return out
}
