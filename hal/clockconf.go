package hal

// BoardClock is the clock tree the firmware brings up at boot: PLL fed by
// the IHRC, M=24, P=6, F=1, HCLK undivided. That gives a 24 MHz core clock.
var BoardClock = ClockConfig{
	Source:       ClockPLL,
	EHSFreqMHz:   12,
	PLLMSel:      24,
	PLLPSel:      3,
	PLLFSel:      0,
	PLLInput:     PLLInputIHRC,
	PLLEnable:    true,
	AHBPrescaler: 0,
	ClockOut:     ClockOutDisabled,
}
