//go:build tinygo

package sn32

import "unsafe"

// Peripherals
var (
	CT16B0 = (*CT16_Type)(unsafe.Pointer(uintptr(CT16B0_BASE)))
	CT16B1 = (*CT16_Type)(unsafe.Pointer(uintptr(CT16B1_BASE)))
	SYS0   = (*SYS0_Type)(unsafe.Pointer(uintptr(SYS0_BASE)))
	SYS1   = (*SYS1_Type)(unsafe.Pointer(uintptr(SYS1_BASE)))
	FLASH  = (*FLASH_Type)(unsafe.Pointer(uintptr(FLASH_BASE)))
)

//export CT16B0_IRQHandler
func interruptCT16B0() {
	callHandlers(IRQ_CT16B0)
}

//export CT16B1_IRQHandler
func interruptCT16B1() {
	callHandlers(IRQ_CT16B1)
}

// Dispatches to the handlers registered with interrupt.New.
//
//go:linkname callHandlers runtime/interrupt.callHandlers
func callHandlers(num int)
