package logger

import (
	"log/slog"
)

// Standard field keys for structured logging, covering the extent-map
// primitives, the volume.Allocator/volume.Store collaborators, and ambient
// operational metadata. Use these keys consistently across all log
// statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Extent-Map Operations
	// ========================================================================
	KeyOperation    = "operation"     // divide_for_write, divide_for_read, merge, mark_written
	KeyOffset       = "offset"        // Logical file offset for an operation
	KeySliceOffset  = "slice_offset"  // Region start of the slice being operated on
	KeyLength       = "length"        // Length of the requested range in bytes
	KeyExtentCount  = "extent_count"  // Number of extents in a slice after an operation
	KeyWriteParts   = "write_parts"   // Number of WriteParts produced by DivideForWrite
	KeyAllocParts   = "alloc_parts"   // Number of AllocParts produced by DivideForWrite
	KeyReadParts    = "read_parts"    // Number of ReadParts produced by DivideForRead
	KeyHoleParts    = "hole_parts"    // Number of HoleParts produced by DivideForRead
	KeySplits       = "splits"        // Number of extent splits performed by MarkWritten
	KeyCoalesced    = "coalesced"     // Whether Merge coalesced with a neighbouring extent
	KeyWritten      = "written"       // Whether an extent is in the written state
	KeyAllocLength  = "alloc_length"  // Bytes requested of an Allocator
	KeyHintOffset   = "hint_offset"   // Physical offset passed as an allocation hint
	KeyPhysicalAddr = "physical_addr" // Physical volume offset

	// ========================================================================
	// Volume Collaborators (Allocator / Store)
	// ========================================================================
	KeyStoreName = "store_name" // Named volume.Store/Allocator implementation
	KeyStoreType = "store_type" // Store/allocator type: memory, etc.

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric error code
	KeySource     = "source"      // Data source identifier
	KeyAttempt    = "attempt"     // Retry attempt number
	KeyMaxRetries = "max_retries" // Maximum retry attempts
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Operation returns a slog.Attr for the extent-map operation name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Offset returns a slog.Attr for a logical file offset
func Offset(off uint64) slog.Attr {
	return slog.Uint64(KeyOffset, off)
}

// SliceOffset returns a slog.Attr for a slice region's start offset
func SliceOffset(off uint64) slog.Attr {
	return slog.Uint64(KeySliceOffset, off)
}

// Length returns a slog.Attr for a requested range length
func Length(n uint64) slog.Attr {
	return slog.Uint64(KeyLength, n)
}

// ExtentCount returns a slog.Attr for the number of extents in a slice
func ExtentCount(n int) slog.Attr {
	return slog.Int(KeyExtentCount, n)
}

// WriteParts returns a slog.Attr for the number of WriteParts produced
func WriteParts(n int) slog.Attr {
	return slog.Int(KeyWriteParts, n)
}

// AllocParts returns a slog.Attr for the number of AllocParts produced
func AllocParts(n int) slog.Attr {
	return slog.Int(KeyAllocParts, n)
}

// ReadParts returns a slog.Attr for the number of ReadParts produced
func ReadParts(n int) slog.Attr {
	return slog.Int(KeyReadParts, n)
}

// HoleParts returns a slog.Attr for the number of HoleParts produced
func HoleParts(n int) slog.Attr {
	return slog.Int(KeyHoleParts, n)
}

// Splits returns a slog.Attr for the number of extent splits performed
func Splits(n int) slog.Attr {
	return slog.Int(KeySplits, n)
}

// Coalesced returns a slog.Attr for whether Merge coalesced a neighbour
func Coalesced(c bool) slog.Attr {
	return slog.Bool(KeyCoalesced, c)
}

// Written returns a slog.Attr for an extent's written state
func Written(w bool) slog.Attr {
	return slog.Bool(KeyWritten, w)
}

// AllocLength returns a slog.Attr for bytes requested of an Allocator
func AllocLength(n uint64) slog.Attr {
	return slog.Uint64(KeyAllocLength, n)
}

// HintOffset returns a slog.Attr for an allocation hint's physical offset
func HintOffset(off uint64) slog.Attr {
	return slog.Uint64(KeyHintOffset, off)
}

// PhysicalAddr returns a slog.Attr for a physical volume offset
func PhysicalAddr(off uint64) slog.Attr {
	return slog.Uint64(KeyPhysicalAddr, off)
}

// StoreName returns a slog.Attr for a named volume.Store/Allocator
func StoreName(name string) slog.Attr {
	return slog.String(KeyStoreName, name)
}

// StoreType returns a slog.Attr for store/allocator type
func StoreType(t string) slog.Attr {
	return slog.String(KeyStoreType, t)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for numeric error code
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Source returns a slog.Attr for data source
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}

// Attempt returns a slog.Attr for retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for maximum retry attempts
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}
