//go:build tinygo

package hal

import (
	"runtime/interrupt"

	"sn32hal/device/sn32"
)

func bindVectors() {
	interrupt.New(sn32.IRQ_CT16B0, func(interrupt.Interrupt) {
		ServeCT16B0()
	})
	interrupt.New(sn32.IRQ_CT16B1, func(interrupt.Interrupt) {
		ServeCT16B1()
	})
}
