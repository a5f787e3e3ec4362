package extentsvc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marmos91/extentvol/pkg/extentmap"
)

func newTable(t *testing.T) *Table {
	t.Helper()
	raw, err := extentmap.NewSliceTable(extentmap.Config{BlockSize: 4096, SliceSize: 1 << 20, PreallocSize: 64 << 10})
	require.NoError(t, err)
	return New(raw)
}

func TestTable_NilMetricsIsSafe(t *testing.T) {
	table := newTable(t)

	_, _, err := table.DivideForWrite(0, 4096)
	require.NoError(t, err)

	require.NoError(t, table.Merge(0, extentmap.PExtent{PhysicalOffset: 90000, Length: 4096}))
	require.NoError(t, table.MarkWritten(0, 4096))

	_, _, err = table.DivideForRead(0, 4096)
	require.NoError(t, err)
}

func TestTable_MergeDelegatesToWrappedTable(t *testing.T) {
	table := newTable(t)

	require.NoError(t, table.Merge(0, extentmap.PExtent{PhysicalOffset: 100000, Length: 4096}))
	require.Equal(t, 1, table.SliceCount())

	s, ok := table.Slice(0)
	require.True(t, ok)
	require.Equal(t, 1, s.ExtentCount())
}

func TestTable_MarkWrittenSplitsAreObservable(t *testing.T) {
	table := newTable(t)
	require.NoError(t, table.Merge(0, extentmap.PExtent{PhysicalOffset: 90000, Length: 8192, Unwritten: true}))

	require.NoError(t, table.MarkWritten(2048, 2048))

	s, ok := table.Slice(0)
	require.True(t, ok)
	require.Equal(t, 3, s.ExtentCount())
}

func TestNew_PanicsOnNilTable(t *testing.T) {
	require.Panics(t, func() { New(nil) })
}
