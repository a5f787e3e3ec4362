// Package volume defines the external collaborators that the extent-map
// core consumes but never implements: the block allocator and the physical
// byte-addressed I/O path for a single backing volume. pkg/extentmap emits
// AllocInfo requests and WritePart/ReadPart/HolePart work lists; a caller
// wires those against an Allocator and a Store to actually move bytes.
package volume

import (
	"context"
	"errors"

	"github.com/marmos91/extentvol/pkg/extentmap"
)

// Common errors returned by Allocator and Store implementations.
var (
	// ErrExhausted is returned when the allocator has no space left to
	// satisfy a request.
	ErrExhausted = errors.New("volume: allocator exhausted")

	// ErrInvalidAlloc is returned when an AllocInfo violates the core's
	// contract (len not a positive multiple of the configured block size).
	ErrInvalidAlloc = errors.New("volume: invalid allocation request")

	// ErrOutOfBounds is returned when a physical offset/length falls
	// outside the volume's address space.
	ErrOutOfBounds = errors.New("volume: offset out of bounds")

	// ErrClosed is returned when operations are attempted on a closed
	// allocator or store.
	ErrClosed = errors.New("volume: closed")
)

// Allocator reserves physical byte ranges on the backing volume on behalf
// of extentmap.AllocInfo requests produced by Slice.DivideForWrite. The
// core's only contract with an Allocator is that AllocInfo.Len is a
// positive multiple of the table's block size and that LeftHint/RightHint,
// when set, are physical offsets of currently-valid extents; hints are
// best-effort placement advice, never a correctness requirement.
type Allocator interface {
	// Allocate reserves Len contiguous bytes and returns their physical
	// start offset. The allocator may use LeftHint/RightHint to prefer
	// placement adjacent to an existing extent but is free to ignore them.
	Allocate(ctx context.Context, info extentmap.AllocInfo) (pOffset uint64, err error)

	// Free releases a previously allocated physical range back to the
	// allocator. Called when a slice's extent is dropped (e.g. truncate),
	// which is beyond the extent-map core itself.
	Free(ctx context.Context, pOffset, length uint64) error
}

// Store performs byte-addressed physical I/O against a single backing
// volume. It consumes the WritePart/ReadPart records emitted by the
// extent-map core; hole zero-filling and partial-I/O retry semantics are
// the caller's responsibility, per the core's Non-goals.
type Store interface {
	// WriteAt writes data at the given physical offset.
	WriteAt(ctx context.Context, pOffset uint64, data []byte) error

	// ReadAt reads length bytes starting at the given physical offset.
	ReadAt(ctx context.Context, pOffset uint64, length uint64) ([]byte, error)

	// Close releases any resources held by the store.
	Close() error
}
