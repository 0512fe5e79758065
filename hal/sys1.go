package hal

import "sn32hal/device/sn32"

// EnableAHB ungates the AHB clock of the peripherals in mask.
func EnableAHB(mask uint32) {
	sn32.SYS1.AHBCLKEN.SetBits(mask)
	_ = sn32.SYS1.AHBCLKEN.Get()
}

// DisableAHB gates the AHB clock of the peripherals in mask.
func DisableAHB(mask uint32) {
	sn32.SYS1.AHBCLKEN.ClearBits(mask)
	_ = sn32.SYS1.AHBCLKEN.Get()
}

// ResetPeripheral pulses the reset line of the peripherals in mask.
func ResetPeripheral(mask uint32) {
	sn32.SYS1.PRST.SetBits(mask)
	sn32.SYS1.PRST.ClearBits(mask)
	_ = sn32.SYS1.PRST.Get()
}

// SelectAPB0 sets APB0 prescaler bits.
func SelectAPB0(mask uint32) {
	sn32.SYS1.APBCP0.SetBits(mask)
	_ = sn32.SYS1.APBCP0.Get()
}

// SelectAPB1 sets APB1 prescaler bits.
func SelectAPB1(mask uint32) {
	sn32.SYS1.APBCP1.SetBits(mask)
	_ = sn32.SYS1.APBCP1.Get()
}

// EnableClockOut routes sel to the CLKOUT pin. ClockOutDisabled turns it off.
func EnableClockOut(sel ClockOut) {
	sn32.SYS1.AHBCLKEN.ReplaceBits(uint32(sel),
		sn32.SYS1_AHBCLKEN_CLKOUTSEL_Msk, sn32.SYS1_AHBCLKEN_CLKOUTSEL_Pos)
}
