package extentmap

import (
	"bytes"
	"fmt"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// wireExtent is the on-the-wire record for one extent. IsUsed is the
// negation of the in-memory Unwritten flag.
type wireExtent struct {
	FSOffset     uint64
	VolumeOffset uint64
	Length       uint64
	IsUsed       bool
}

// wireSlice is the canonical, lossless on-the-wire form of a Slice.
// Serialisation never coalesces: split boundaries inside unwritten runs
// round-trip exactly.
type wireSlice struct {
	Offset  uint64
	Extents []wireExtent
}

// Serialize encodes the slice to its canonical wire form using XDR. The
// result decodes back to an identical extent set via Parse.
func (s *Slice) Serialize() ([]byte, error) {
	w := wireSlice{Offset: s.Offset}

	s.extents.ascend(func(e logicalExtent) bool {
		w.Extents = append(w.Extents, wireExtent{
			FSOffset:     e.fsOffset,
			VolumeOffset: e.extent.PhysicalOffset,
			Length:       e.extent.Length,
			IsUsed:       !e.extent.Unwritten,
		})
		return true
	})

	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, &w); err != nil {
		return nil, fmt.Errorf("extentmap: serialize slice at %d: %w", s.Offset, err)
	}
	return buf.Bytes(), nil
}

// Parse decodes a slice previously produced by Serialize, under the given
// configuration.
func Parse(data []byte, cfg Config) (*Slice, error) {
	var w wireSlice
	if _, err := xdr.Unmarshal(bytes.NewReader(data), &w); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptWireForm, err)
	}

	s := newSlice(w.Offset, cfg)
	for _, we := range w.Extents {
		s.extents.Set(we.FSOffset, PExtent{
			PhysicalOffset: we.VolumeOffset,
			Length:         we.Length,
			Unwritten:      !we.IsUsed,
		})
	}
	return s, nil
}
