// Package extentsvc wraps pkg/extentmap.SliceTable with the structured
// logging and metrics the embedding repository adds around the core's four
// primitives. It exists so that pkg/extentmap itself stays free of any
// import on internal/logger or pkg/metrics, per the core's own contract
// (see pkg/extentmap's package doc): instrumentation is an ambient,
// demonstration-layer concern, wired in here rather than inside the core.
package extentsvc

import (
	"time"

	"github.com/marmos91/extentvol/internal/logger"
	"github.com/marmos91/extentvol/pkg/extentmap"
	"github.com/marmos91/extentvol/pkg/metrics"
)

// Table wraps a *extentmap.SliceTable, logging and recording metrics for
// every call to its four primitives. The zero value is not usable; build
// one with New.
type Table struct {
	*extentmap.SliceTable

	metrics metrics.ExtentMapMetrics
}

// New wraps table for instrumented use. A nil table is a programmer error
// and panics.
func New(table *extentmap.SliceTable) *Table {
	if table == nil {
		panic("extentsvc: New called with nil table")
	}
	return &Table{SliceTable: table}
}

// SetMetrics installs m as the table's metrics sink. A nil m (the default)
// disables metrics recording with zero overhead.
func (t *Table) SetMetrics(m metrics.ExtentMapMetrics) {
	t.metrics = m
}

// DivideForWrite calls the wrapped table's DivideForWrite, then records its
// duration and part counts.
func (t *Table) DivideForWrite(offset, length uint64) ([]extentmap.WritePart, []extentmap.AllocPart, error) {
	start := time.Now()
	allocated, needAlloc, err := t.SliceTable.DivideForWrite(offset, length)
	elapsed := time.Since(start)
	if err != nil {
		return allocated, needAlloc, err
	}

	metrics.ObserveDivideForWrite(t.metrics, len(allocated), len(needAlloc), elapsed)
	var requested int64
	for _, a := range needAlloc {
		requested += int64(a.AllocInfo.Len)
	}
	metrics.RecordAllocationRequested(t.metrics, requested)

	logger.Debug("divide_for_write",
		logger.Operation("divide_for_write"), logger.Offset(offset), logger.Length(length),
		logger.WriteParts(len(allocated)), logger.AllocParts(len(needAlloc)),
		logger.DurationMs(msOf(elapsed)))

	return allocated, needAlloc, nil
}

// DivideForRead calls the wrapped table's DivideForRead, then records its
// duration and part counts.
func (t *Table) DivideForRead(offset, length uint64) ([]extentmap.ReadPart, []extentmap.HolePart, error) {
	start := time.Now()
	reads, holes, err := t.SliceTable.DivideForRead(offset, length)
	elapsed := time.Since(start)
	if err != nil {
		return reads, holes, err
	}

	metrics.ObserveDivideForRead(t.metrics, len(reads), len(holes), elapsed)

	logger.Debug("divide_for_read",
		logger.Operation("divide_for_read"), logger.Offset(offset), logger.Length(length),
		logger.ReadParts(len(reads)), logger.HoleParts(len(holes)),
		logger.DurationMs(msOf(elapsed)))

	return reads, holes, nil
}

// Merge calls the wrapped table's Merge, then records its duration and
// whether the insertion coalesced with a neighbouring extent.
func (t *Table) Merge(loffset uint64, e extentmap.PExtent) error {
	sliceStart := alignToSliceStart(t.Config(), loffset)
	before := t.sliceExtentCount(sliceStart)

	start := time.Now()
	if err := t.SliceTable.Merge(loffset, e); err != nil {
		return err
	}
	elapsed := time.Since(start)

	after := t.sliceExtentCount(sliceStart)
	coalesced := after < before+1

	metrics.ObserveMerge(t.metrics, coalesced, elapsed)
	metrics.RecordSliceCount(t.metrics, t.SliceCount())

	logger.Debug("merge",
		logger.Operation("merge"), logger.SliceOffset(sliceStart), logger.Offset(loffset),
		logger.Length(e.Length), logger.PhysicalAddr(e.PhysicalOffset),
		logger.Coalesced(coalesced), logger.DurationMs(msOf(elapsed)))

	return nil
}

// MarkWritten calls the wrapped table's MarkWritten, then records its
// duration and the number of extent splits it performed.
func (t *Table) MarkWritten(offset, length uint64) error {
	sliceStart := alignToSliceStart(t.Config(), offset)
	before := t.sliceExtentCount(sliceStart)

	start := time.Now()
	if err := t.SliceTable.MarkWritten(offset, length); err != nil {
		return err
	}
	elapsed := time.Since(start)

	after := t.sliceExtentCount(sliceStart)
	splits := 0
	if after > before {
		splits = after - before
	}

	metrics.ObserveMarkWritten(t.metrics, splits, elapsed)

	logger.Debug("mark_written",
		logger.Operation("mark_written"), logger.Offset(offset), logger.Length(length),
		logger.Splits(splits), logger.DurationMs(msOf(elapsed)))

	return nil
}

// sliceExtentCount returns the number of extents in the slice starting at
// sliceStart, or 0 if no such slice exists yet.
func (t *Table) sliceExtentCount(sliceStart uint64) int {
	s, ok := t.Slice(sliceStart)
	if !ok {
		return 0
	}
	return s.ExtentCount()
}

func msOf(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

// alignToSliceStart returns the start offset of the slice region containing
// off, mirroring extentmap.Config's own (unexported) alignment rule.
func alignToSliceStart(cfg extentmap.Config, off uint64) uint64 {
	return off - off%cfg.SliceSize
}
