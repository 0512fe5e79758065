//go:build tinygo

// Package reg provides the 32-bit memory-mapped register type used by the
// device and hal packages.
package reg

import "runtime/volatile"

// Register32 is a volatile 32-bit hardware register.
type Register32 = volatile.Register32
