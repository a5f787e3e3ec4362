package memory

import (
	"context"
	"testing"

	"github.com/marmos91/extentvol/pkg/extentmap"
	"github.com/marmos91/extentvol/pkg/volume"
)

func TestAllocator_AllocateAndFree(t *testing.T) {
	ctx := context.Background()
	a := New(1 << 20)

	off, err := a.Allocate(ctx, extentmap.AllocInfo{Len: 4096})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if a.FreeBytes() != (1<<20)-4096 {
		t.Fatalf("free bytes = %d, want %d", a.FreeBytes(), (1<<20)-4096)
	}

	if err := a.Free(ctx, off, 4096); err != nil {
		t.Fatalf("Free failed: %v", err)
	}
	if a.FreeBytes() != 1<<20 {
		t.Fatalf("free bytes after Free = %d, want %d", a.FreeBytes(), 1<<20)
	}
}

func TestAllocator_ExhaustionReturnsError(t *testing.T) {
	ctx := context.Background()
	a := New(4096)

	if _, err := a.Allocate(ctx, extentmap.AllocInfo{Len: 4096}); err != nil {
		t.Fatalf("first Allocate failed: %v", err)
	}
	if _, err := a.Allocate(ctx, extentmap.AllocInfo{Len: 4096}); err != volume.ErrExhausted {
		t.Fatalf("got %v, want ErrExhausted", err)
	}
}

func TestAllocator_HonoursLeftHint(t *testing.T) {
	ctx := context.Background()
	a := New(1 << 20)

	first, err := a.Allocate(ctx, extentmap.AllocInfo{Len: 4096})
	if err != nil {
		t.Fatalf("first Allocate failed: %v", err)
	}
	if err := a.Free(ctx, first, 4096); err != nil {
		t.Fatalf("Free failed: %v", err)
	}

	hint := first
	second, err := a.Allocate(ctx, extentmap.AllocInfo{Len: 4096, LeftHint: &hint})
	if err != nil {
		t.Fatalf("second Allocate failed: %v", err)
	}
	if second != hint {
		t.Fatalf("allocate with hint = %d, want %d", second, hint)
	}
}

func TestAllocator_NeverOverlapsSuccessiveAllocations(t *testing.T) {
	ctx := context.Background()
	a := New(1 << 20)

	seen := map[uint64]bool{}
	for i := 0; i < 32; i++ {
		off, err := a.Allocate(ctx, extentmap.AllocInfo{Len: 4096})
		if err != nil {
			t.Fatalf("Allocate %d failed: %v", i, err)
		}
		if seen[off] {
			t.Fatalf("offset %d allocated twice", off)
		}
		seen[off] = true
	}
}
