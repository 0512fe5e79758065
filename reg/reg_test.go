//go:build !tinygo

package reg

import "testing"

func TestRegisterBitOps(t *testing.T) {
	var r Register32

	r.Set(0x0F)
	if got := r.Get(); got != 0x0F {
		t.Fatalf("Set/Get: expected 0x0F, got 0x%X", got)
	}

	r.SetBits(0xF0)
	if got := r.Get(); got != 0xFF {
		t.Errorf("SetBits: expected 0xFF, got 0x%X", got)
	}

	r.ClearBits(0x0F)
	if got := r.Get(); got != 0xF0 {
		t.Errorf("ClearBits: expected 0xF0, got 0x%X", got)
	}

	if !r.HasBits(0x10) {
		t.Error("HasBits(0x10) should be true")
	}
	if r.HasBits(0x01) {
		t.Error("HasBits(0x01) should be false")
	}
}

func TestReplaceBits(t *testing.T) {
	var r Register32
	r.Set(0xFFFF_FFFF)

	// 3-bit field at bit 4
	r.ReplaceBits(0x2, 0x7, 4)
	if got := r.Get(); got != 0xFFFF_FFAF {
		t.Errorf("expected 0xFFFFFFAF, got 0x%08X", got)
	}

	r.Set(0)
	r.ReplaceBits(0x5, 0x7, 28)
	if got := r.Get(); got != 0x5000_0000 {
		t.Errorf("expected 0x50000000, got 0x%08X", got)
	}
}
