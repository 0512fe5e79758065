//go:build !tinygo

// Package reg provides the 32-bit memory-mapped register type used by the
// device and hal packages.
//
// On regular Go the registers are plain memory. Loads and stores are atomic
// so a test goroutine can stand in for the hardware while driver code spins
// on a status bit.
package reg

import "sync/atomic"

// Register32 mirrors the method set of TinyGo's volatile.Register32.
type Register32 struct {
	Reg uint32
}

// Get returns the register value
func (r *Register32) Get() uint32 {
	return atomic.LoadUint32(&r.Reg)
}

// Set stores value into the register
func (r *Register32) Set(value uint32) {
	atomic.StoreUint32(&r.Reg, value)
}

// SetBits performs r |= value (read-modify-write, not atomic as a whole)
func (r *Register32) SetBits(value uint32) {
	r.Set(r.Get() | value)
}

// ClearBits performs r &^= value
func (r *Register32) ClearBits(value uint32) {
	r.Set(r.Get() &^ value)
}

// HasBits reports whether any bit in value is set
func (r *Register32) HasBits(value uint32) bool {
	return r.Get()&value > 0
}

// ReplaceBits replaces the field mask<<pos with value<<pos
func (r *Register32) ReplaceBits(value uint32, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | value<<pos)
}
