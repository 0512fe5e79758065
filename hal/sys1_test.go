//go:build !tinygo

package hal

import (
	"testing"

	"sn32hal/device/sn32"
)

func TestAHBGate(t *testing.T) {
	sn32.ResetPeripherals()

	EnableAHB(sn32.SYS1_AHBCLKEN_CT16B0 | sn32.SYS1_AHBCLKEN_CT16B1)
	DisableAHB(sn32.SYS1_AHBCLKEN_CT16B0)

	if got, want := sn32.SYS1.AHBCLKEN.Get(), uint32(sn32.SYS1_AHBCLKEN_CT16B1); got != want {
		t.Errorf("AHBCLKEN = 0x%08X, want 0x%08X", got, want)
	}
}

func TestResetPeripheralReleasesReset(t *testing.T) {
	sn32.ResetPeripherals()
	sn32.SYS1.PRST.Set(sn32.SYS1_PRST_CT16B0)

	ResetPeripheral(sn32.SYS1_PRST_CT16B1)

	if got, want := sn32.SYS1.PRST.Get(), uint32(sn32.SYS1_PRST_CT16B0); got != want {
		t.Errorf("PRST = 0x%08X, want 0x%08X", got, want)
	}
}

func TestAPBPrescalers(t *testing.T) {
	sn32.ResetPeripherals()
	SelectAPB0(0x3)
	SelectAPB1(0x5)
	if got := sn32.SYS1.APBCP0.Get(); got != 0x3 {
		t.Errorf("APBCP0 = 0x%X", got)
	}
	if got := sn32.SYS1.APBCP1.Get(); got != 0x5 {
		t.Errorf("APBCP1 = 0x%X", got)
	}
}

func TestEnableClockOut(t *testing.T) {
	tests := []struct {
		sel  ClockOut
		want uint32
	}{
		{ClockOutDisabled, 0},
		{ClockOutILRC, 1 << 28},
		{ClockOutHCLK, 4 << 28},
		{ClockOutPLL, 7 << 28},
	}

	for _, tt := range tests {
		sn32.ResetPeripherals()
		sn32.SYS1.AHBCLKEN.Set(7<<28 | sn32.SYS1_AHBCLKEN_CT16B1)
		EnableClockOut(tt.sel)
		want := tt.want | sn32.SYS1_AHBCLKEN_CT16B1
		if got := sn32.SYS1.AHBCLKEN.Get(); got != want {
			t.Errorf("sel %d: AHBCLKEN = 0x%08X, want 0x%08X", tt.sel, got, want)
		}
	}
}
