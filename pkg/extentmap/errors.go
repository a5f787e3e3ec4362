package extentmap

import "errors"

// Errors returned by this package are all precondition violations: they
// indicate a bug in the caller (a request outside the slice region, an
// overlapping merge, a malformed Config), never a recoverable domain
// failure. Domain failures such as allocation exhaustion or physical I/O
// errors belong to the external collaborators in pkg/volume and are never
// raised from here.
var (
	// ErrInvalidConfig is returned by Config.Validate when the tunables
	// don't satisfy the block/slice/prealloc alignment relationship.
	ErrInvalidConfig = errors.New("extentmap: invalid configuration")

	// ErrOutOfRange is returned when a request range falls outside the
	// slice region it was issued against.
	ErrOutOfRange = errors.New("extentmap: request range outside slice region")

	// ErrOverlap is returned by Merge when the new extent is not disjoint
	// from an existing extent in the slice.
	ErrOverlap = errors.New("extentmap: merge range overlaps an existing extent")

	// ErrCorruptWireForm is returned by Parse when the serialised bytes do
	// not decode to a well-formed slice.
	ErrCorruptWireForm = errors.New("extentmap: corrupt wire form")
)
