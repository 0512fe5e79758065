//go:build tinygo

package hal

import (
	"device/arm"

	"sn32hal/device/sn32"
)

// enableVector clears any pending request, sets the priority and enables irq.
func enableVector(irq uint32, prio uint8) {
	arm.SetPriority(irq, uint32(prio)<<(8-sn32.NVIC_PRIO_BITS))
	arm.NVIC.ICPR[irq>>5].Set(1 << (irq & 31))
	arm.EnableIRQ(irq)
}

func disableVector(irq uint32) {
	arm.DisableIRQ(irq)
	arm.NVIC.ICPR[irq>>5].Set(1 << (irq & 31))
}
