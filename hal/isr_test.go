//go:build !tinygo

package hal

import (
	"testing"

	"sn32hal/device/sn32"
)

type countingServer struct{ n int }

func (s *countingServer) ServeInterrupt() { s.n++ }

func TestIRQInitEnablesPWMVector(t *testing.T) {
	resetHAL(t)

	IRQInit()
	if !VectorEnabled(sn32.IRQ_CT16B1) {
		t.Error("CT16B1 vector not enabled")
	}
	if got := VectorPriority(sn32.IRQ_CT16B1); got != PWMCT16B1IRQPriority {
		t.Errorf("CT16B1 priority = %d, want %d", got, PWMCT16B1IRQPriority)
	}
	// No GPT driver is configured on CT16B0
	if VectorEnabled(sn32.IRQ_CT16B0) {
		t.Error("CT16B0 vector enabled")
	}

	IRQDeinit()
	if VectorEnabled(sn32.IRQ_CT16B0) || VectorEnabled(sn32.IRQ_CT16B1) {
		t.Error("vectors still enabled after IRQDeinit")
	}
}

func TestServeCT16B1RoutesToPWM(t *testing.T) {
	resetHAL(t)

	matches := 0
	cfg := activeHighConfig(1000000, 100)
	cfg.Channels[0].Callback = func(*PWMDriver) { matches++ }
	PWMD1.Start(cfg)

	gpt := &countingServer{}
	GPTD2 = gpt
	defer func() { GPTD2 = nil }()

	sn32.CT16B1.RIS.Set(1)
	ServeCT16B1()

	if matches != 1 {
		t.Errorf("PWM callback ran %d times, want 1", matches)
	}
	if gpt.n != 0 {
		t.Error("GPTD2 served while GPT is not configured")
	}
}

func TestServeCT16B0WithoutGPT(t *testing.T) {
	resetHAL(t)

	gpt := &countingServer{}
	GPTD1 = gpt
	defer func() { GPTD1 = nil }()

	ServeCT16B0()
	if gpt.n != 0 {
		t.Error("GPTD1 served while GPT is not configured")
	}
}

func TestServeCT16B1StoppedPWM(t *testing.T) {
	resetHAL(t)
	sn32.CT16B1.RIS.Set(0xFFFFFFFF)
	ServeCT16B1()
	if n := len(Events()); n != 0 {
		t.Errorf("stopped driver recorded %d events", n)
	}
}
