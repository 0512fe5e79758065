//go:build !tinygo

package sn32

// On regular Go the peripherals live in ordinary memory so the HAL can be
// exercised by tests.
var (
	ct16b0 CT16_Type
	ct16b1 CT16_Type
	sys0   SYS0_Type
	sys1   SYS1_Type
	flash  FLASH_Type
)

// Peripherals
var (
	CT16B0 = &ct16b0
	CT16B1 = &ct16b1
	SYS0   = &sys0
	SYS1   = &sys1
	FLASH  = &flash
)

// ResetPeripherals returns every modeled register to zero.
func ResetPeripherals() {
	ct16b0 = CT16_Type{}
	ct16b1 = CT16_Type{}
	sys0 = SYS0_Type{}
	sys1 = SYS1_Type{}
	flash = FLASH_Type{}
}
