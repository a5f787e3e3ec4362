// Package prometheus provides the Prometheus-backed implementation of
// pkg/metrics's ExtentMapMetrics, registered against pkg/metrics's active
// registry via an init-time constructor to avoid an import cycle.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/extentvol/pkg/metrics"
)

func init() {
	metrics.RegisterExtentMapMetricsConstructor(newExtentMapMetrics)
}

// extentMapMetrics is the Prometheus implementation of
// metrics.ExtentMapMetrics.
type extentMapMetrics struct {
	divideWriteOps      prometheus.Counter
	divideWriteDuration prometheus.Histogram
	writeParts          prometheus.Histogram
	allocParts          prometheus.Histogram

	divideReadOps      prometheus.Counter
	divideReadDuration prometheus.Histogram
	readParts          prometheus.Histogram
	holeParts          prometheus.Histogram

	mergeOps        *prometheus.CounterVec
	mergeDuration   prometheus.Histogram
	markWrittenOps  prometheus.Counter
	markWrittenDur  prometheus.Histogram
	extentSplits    prometheus.Histogram
	allocBytes      prometheus.Counter
	liveSliceCount  prometheus.Gauge
}

func newExtentMapMetrics() metrics.ExtentMapMetrics {
	reg := metrics.GetRegistry()

	callDurationBuckets := []float64{
		0.001, // 1us
		0.01,  // 10us
		0.1,   // 100us
		1,     // 1ms
		10,    // 10ms
		100,   // 100ms
	}
	partCountBuckets := []float64{1, 2, 4, 8, 16, 32, 64}

	return &extentMapMetrics{
		divideWriteOps: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "extentvol_divide_for_write_total",
			Help: "Total number of DivideForWrite calls",
		}),
		divideWriteDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "extentvol_divide_for_write_duration_milliseconds",
			Help:    "Duration of DivideForWrite calls in milliseconds",
			Buckets: callDurationBuckets,
		}),
		writeParts: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "extentvol_divide_for_write_parts",
			Help:    "Number of WriteParts produced per DivideForWrite call",
			Buckets: partCountBuckets,
		}),
		allocParts: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "extentvol_divide_for_write_alloc_parts",
			Help:    "Number of AllocParts produced per DivideForWrite call",
			Buckets: partCountBuckets,
		}),
		divideReadOps: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "extentvol_divide_for_read_total",
			Help: "Total number of DivideForRead calls",
		}),
		divideReadDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "extentvol_divide_for_read_duration_milliseconds",
			Help:    "Duration of DivideForRead calls in milliseconds",
			Buckets: callDurationBuckets,
		}),
		readParts: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "extentvol_divide_for_read_parts",
			Help:    "Number of ReadParts produced per DivideForRead call",
			Buckets: partCountBuckets,
		}),
		holeParts: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "extentvol_divide_for_read_hole_parts",
			Help:    "Number of HoleParts produced per DivideForRead call",
			Buckets: partCountBuckets,
		}),
		mergeOps: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "extentvol_merge_total",
			Help: "Total number of Merge calls by whether they coalesced a neighbour",
		}, []string{"coalesced"}),
		mergeDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "extentvol_merge_duration_milliseconds",
			Help:    "Duration of Merge calls in milliseconds",
			Buckets: callDurationBuckets,
		}),
		markWrittenOps: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "extentvol_mark_written_total",
			Help: "Total number of MarkWritten calls",
		}),
		markWrittenDur: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "extentvol_mark_written_duration_milliseconds",
			Help:    "Duration of MarkWritten calls in milliseconds",
			Buckets: callDurationBuckets,
		}),
		extentSplits: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "extentvol_mark_written_splits",
			Help:    "Number of extent splits performed per MarkWritten call",
			Buckets: []float64{0, 1, 2, 3, 4},
		}),
		allocBytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "extentvol_allocation_bytes_requested_total",
			Help: "Total bytes requested of an Allocator across all AllocParts",
		}),
		liveSliceCount: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "extentvol_live_slice_count",
			Help: "Current number of non-empty slices in a SliceTable",
		}),
	}
}

func (m *extentMapMetrics) ObserveDivideForWrite(writeParts, allocParts int, duration time.Duration) {
	m.divideWriteOps.Inc()
	m.divideWriteDuration.Observe(float64(duration.Microseconds()) / 1000)
	m.writeParts.Observe(float64(writeParts))
	m.allocParts.Observe(float64(allocParts))
}

func (m *extentMapMetrics) ObserveDivideForRead(readParts, holeParts int, duration time.Duration) {
	m.divideReadOps.Inc()
	m.divideReadDuration.Observe(float64(duration.Microseconds()) / 1000)
	m.readParts.Observe(float64(readParts))
	m.holeParts.Observe(float64(holeParts))
}

func (m *extentMapMetrics) ObserveMerge(coalesced bool, duration time.Duration) {
	label := "false"
	if coalesced {
		label = "true"
	}
	m.mergeOps.WithLabelValues(label).Inc()
	m.mergeDuration.Observe(float64(duration.Microseconds()) / 1000)
}

func (m *extentMapMetrics) ObserveMarkWritten(splits int, duration time.Duration) {
	m.markWrittenOps.Inc()
	m.markWrittenDur.Observe(float64(duration.Microseconds()) / 1000)
	m.extentSplits.Observe(float64(splits))
}

func (m *extentMapMetrics) RecordAllocationRequested(bytes int64) {
	if bytes > 0 {
		m.allocBytes.Add(float64(bytes))
	}
}

func (m *extentMapMetrics) RecordSliceCount(count int) {
	m.liveSliceCount.Set(float64(count))
}
