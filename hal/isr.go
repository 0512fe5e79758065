package hal

import "sn32hal/device/sn32"

// InterruptServer is a driver that can be attached to a CT16 vector.
type InterruptServer interface {
	ServeInterrupt()
}

// GPT drivers live outside this package. They are attached here when the
// GPT flags in halconf.go select them.
var (
	GPTD1 InterruptServer // CT16B0
	GPTD2 InterruptServer // CT16B1
)

// ServeCT16B0 is the CT16B0 service routine (vector 0x7C).
func ServeCT16B0() {
	if halUseGPT && gptUseCT16B0 && GPTD1 != nil {
		GPTD1.ServeInterrupt()
	}
}

// ServeCT16B1 is the CT16B1 service routine (vector 0x80). The line is
// shared between GPTD2 and PWMD1.
func ServeCT16B1() {
	if halUseGPT && gptUseCT16B1 && GPTD2 != nil {
		GPTD2.ServeInterrupt()
	}
	if halUsePWM && pwmUseCT16B1 {
		PWMD1.ServeInterrupt()
	}
}

// IRQInit binds the service routines and enables the configured vectors.
func IRQInit() {
	if !halUseGPT && !halUsePWM {
		return
	}
	bindVectors()
	if halUseGPT && gptUseCT16B0 {
		enableVector(sn32.IRQ_CT16B0, GPTCT16B0IRQPriority)
	}
	if halUseGPT && gptUseCT16B1 {
		enableVector(sn32.IRQ_CT16B1, GPTCT16B1IRQPriority)
	}
	if halUsePWM && pwmUseCT16B1 {
		enableVector(sn32.IRQ_CT16B1, PWMCT16B1IRQPriority)
	}
}

// IRQDeinit disables both CT16 vectors.
func IRQDeinit() {
	if !halUseGPT && !halUsePWM {
		return
	}
	disableVector(sn32.IRQ_CT16B0)
	disableVector(sn32.IRQ_CT16B1)
}
