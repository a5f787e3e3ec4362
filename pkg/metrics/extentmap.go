package metrics

import "time"

// ExtentMapMetrics records the four extent-map primitives and the
// allocation/coalescing activity they trigger. Every implementation must
// tolerate a nil receiver so callers can pass a nil ExtentMapMetrics when
// metrics are disabled.
type ExtentMapMetrics interface {
	// ObserveDivideForWrite records one DivideForWrite call: the number of
	// write parts and alloc parts it produced, and how long it took.
	ObserveDivideForWrite(writeParts, allocParts int, duration time.Duration)

	// ObserveDivideForRead records one DivideForRead call: the number of
	// read parts and hole parts it produced, and how long it took.
	ObserveDivideForRead(readParts, holeParts int, duration time.Duration)

	// ObserveMerge records one Merge call and whether it coalesced with an
	// existing neighbour.
	ObserveMerge(coalesced bool, duration time.Duration)

	// ObserveMarkWritten records one MarkWritten call and how many extent
	// splits it performed.
	ObserveMarkWritten(splits int, duration time.Duration)

	// RecordAllocationRequested records the bytes requested of an
	// Allocator: the summed AllocInfo.Len of the AllocParts of one
	// DivideForWrite call.
	RecordAllocationRequested(bytes int64)

	// RecordSliceCount records the current number of live slices in a
	// SliceTable.
	RecordSliceCount(count int)
}

// newPrometheusExtentMapMetrics is installed by pkg/metrics/prometheus's
// init() to avoid an import cycle between metrics and metrics/prometheus.
var newPrometheusExtentMapMetrics func() ExtentMapMetrics

// RegisterExtentMapMetricsConstructor registers the Prometheus-backed
// constructor. Called from pkg/metrics/prometheus/extentmap.go's init.
func RegisterExtentMapMetricsConstructor(constructor func() ExtentMapMetrics) {
	newPrometheusExtentMapMetrics = constructor
}

// NewExtentMapMetrics returns a Prometheus-backed ExtentMapMetrics, or nil
// if metrics are disabled (InitRegistry was never called). Passing a nil
// ExtentMapMetrics to the Observe*/Record* helpers below is always safe.
func NewExtentMapMetrics() ExtentMapMetrics {
	if !IsEnabled() || newPrometheusExtentMapMetrics == nil {
		return nil
	}
	return newPrometheusExtentMapMetrics()
}

// ObserveDivideForWrite is a nil-safe wrapper around
// ExtentMapMetrics.ObserveDivideForWrite.
func ObserveDivideForWrite(m ExtentMapMetrics, writeParts, allocParts int, duration time.Duration) {
	if m != nil {
		m.ObserveDivideForWrite(writeParts, allocParts, duration)
	}
}

// ObserveDivideForRead is a nil-safe wrapper around
// ExtentMapMetrics.ObserveDivideForRead.
func ObserveDivideForRead(m ExtentMapMetrics, readParts, holeParts int, duration time.Duration) {
	if m != nil {
		m.ObserveDivideForRead(readParts, holeParts, duration)
	}
}

// ObserveMerge is a nil-safe wrapper around ExtentMapMetrics.ObserveMerge.
func ObserveMerge(m ExtentMapMetrics, coalesced bool, duration time.Duration) {
	if m != nil {
		m.ObserveMerge(coalesced, duration)
	}
}

// ObserveMarkWritten is a nil-safe wrapper around
// ExtentMapMetrics.ObserveMarkWritten.
func ObserveMarkWritten(m ExtentMapMetrics, splits int, duration time.Duration) {
	if m != nil {
		m.ObserveMarkWritten(splits, duration)
	}
}

// RecordAllocationRequested is a nil-safe wrapper around
// ExtentMapMetrics.RecordAllocationRequested.
func RecordAllocationRequested(m ExtentMapMetrics, bytes int64) {
	if m != nil {
		m.RecordAllocationRequested(bytes)
	}
}

// RecordSliceCount is a nil-safe wrapper around
// ExtentMapMetrics.RecordSliceCount.
func RecordSliceCount(m ExtentMapMetrics, count int) {
	if m != nil {
		m.RecordSliceCount(count)
	}
}
