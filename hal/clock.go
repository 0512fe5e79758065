package hal

import (
	"sn32hal/device/sn32"
	"sn32hal/x/mathx"
)

// ClockSource is the SYSCLKSEL encoding of the system clock source.
type ClockSource uint8

const (
	ClockIHRC    ClockSource = iota // internal 12 MHz RC
	ClockILRC                       // internal 32 kHz RC
	ClockEHSXtal                    // external high-speed crystal
	ClockELSXtal                    // external 32.768 kHz crystal
	ClockPLL
)

// PLLInput selects the PLL reference.
type PLLInput uint8

const (
	PLLInputIHRC PLLInput = iota
	PLLInputEHS
)

// ClockOut is the CLKOUTSEL encoding.
type ClockOut uint8

const (
	ClockOutDisabled ClockOut = 0
	ClockOutILRC     ClockOut = 1
	ClockOutELS      ClockOut = 2
	ClockOutHCLK     ClockOut = 4
	ClockOutIHRC     ClockOut = 5
	ClockOutEHS      ClockOut = 6
	ClockOutPLL      ClockOut = 7
)

// Fixed oscillator frequencies
const (
	IHRCFreq = 12000000
	ILRCFreq = 32000
	ELSFreq  = 32768
)

// ClockConfig is the build-time clock tree selection.
type ClockConfig struct {
	Source     ClockSource
	EHSFreqMHz uint32 // crystal frequency when EHS feeds SYSCLK or the PLL

	// PLL: F_CLKOUT = F_CLKIN / F * M / P / 2 with P = 2*PLLPSel
	PLLMSel   uint8 // M, 3..31
	PLLPSel   uint8 // 3..7
	PLLFSel   uint8 // 0: F=1, 1: F=2
	PLLInput  PLLInput
	PLLEnable bool

	AHBPrescaler uint8 // code 0..9, HCLK = SYSCLK >> code
	ClockOut     ClockOut
}

// CoreClock is the HCLK frequency in Hz. Updated by CoreClockUpdate.
var CoreClock uint32

var ahbDivisors = [...]uint32{1, 2, 4, 8, 16, 32, 64, 128, 256, 512}

// PLLInputHz is the PLL reference frequency (F_CLKIN).
func (c *ClockConfig) PLLInputHz() uint32 {
	if c.PLLInput == PLLInputEHS {
		return c.EHSFreqMHz * 1000000
	}
	return IHRCFreq
}

func (c *ClockConfig) pllF() uint32 {
	if c.PLLFSel == 0 {
		return 1
	}
	return 2
}

// pllVCOHz is F_CLKIN / F * M.
func (c *ClockConfig) pllVCOHz() uint32 {
	return c.PLLInputHz() / c.pllF() * uint32(c.PLLMSel)
}

// PLLOutputHz returns the PLL output frequency for cfg.
func PLLOutputHz(cfg *ClockConfig) uint32 {
	p := 2 * uint32(cfg.PLLPSel)
	if p == 0 {
		return 0
	}
	return cfg.pllVCOHz() / p / 2
}

// pllctrl packs the PLLCTRL register value.
func (c *ClockConfig) pllctrl() uint32 {
	v := uint32(c.PLLMSel)&sn32.SYS0_PLLCTRL_MSEL_Msk<<sn32.SYS0_PLLCTRL_MSEL_Pos |
		uint32(c.PLLPSel)&sn32.SYS0_PLLCTRL_PSEL_Msk<<sn32.SYS0_PLLCTRL_PSEL_Pos |
		uint32(c.PLLFSel)&sn32.SYS0_PLLCTRL_FSEL_Msk<<sn32.SYS0_PLLCTRL_FSEL_Pos |
		uint32(c.PLLInput)&sn32.SYS0_PLLCTRL_CLKIN_Msk<<sn32.SYS0_PLLCTRL_CLKIN_Pos
	if c.PLLEnable {
		v |= sn32.SYS0_PLLCTRL_PLLEN
	}
	return v
}

// Validate checks cfg against the datasheet operating ranges.
func (c *ClockConfig) Validate() error {
	if c.Source > ClockPLL {
		return ErrInvalidClockSource
	}
	if int(c.AHBPrescaler) >= len(ahbDivisors) {
		return ErrInvalidAHBDivider
	}
	usesEHS := c.Source == ClockEHSXtal || (c.Source == ClockPLL && c.PLLInput == PLLInputEHS)
	if usesEHS && !mathx.Between(c.EHSFreqMHz, 10, 25) {
		return ErrInvalidCrystal
	}
	if c.Source != ClockPLL {
		return nil
	}
	if !c.PLLEnable || c.PLLInput > PLLInputEHS || c.PLLFSel > 1 {
		return ErrPLLOutOfRange
	}
	if !mathx.Between(c.PLLMSel, 3, 31) || !mathx.Between(c.PLLPSel, 3, 7) {
		return ErrPLLOutOfRange
	}
	if !mathx.Between(c.PLLInputHz(), 10000000, 25000000) {
		return ErrPLLOutOfRange
	}
	if !mathx.Between(c.pllVCOHz(), 156000000, 320000000) {
		return ErrPLLOutOfRange
	}
	return nil
}

// CoreClockUpdate recomputes CoreClock from the active clock source and AHB
// prescaler. Frequencies of the crystal and PLL come from cfg.
func CoreClockUpdate(cfg *ClockConfig) uint32 {
	sys0 := sn32.SYS0
	var clk uint32
	st := (sys0.CLKCFG.Get() >> sn32.SYS0_CLKCFG_SYSCLKST_Pos) & sn32.SYS0_CLKCFG_SYSCLKST_Msk
	switch ClockSource(st) {
	case ClockIHRC:
		clk = IHRCFreq
	case ClockILRC:
		clk = ILRCFreq
	case ClockEHSXtal:
		clk = cfg.EHSFreqMHz * 1000000
	case ClockELSXtal:
		clk = ELSFreq
	case ClockPLL:
		clk = PLLOutputHz(cfg)
	}

	// Codes above 9 are reserved; leave HCLK undivided.
	code := (sys0.AHBCP.Get() >> sn32.SYS0_AHBCP_AHBPRE_Pos) & sn32.SYS0_AHBCP_AHBPRE_Msk
	if int(code) < len(ahbDivisors) {
		clk /= ahbDivisors[code]
	}

	CoreClock = clk
	return clk
}

// CoreClockHz recomputes and returns the core clock for the board
// configuration.
func CoreClockHz() uint32 {
	return CoreClockUpdate(&BoardClock)
}

// InitClockTree brings up the configured clock source and switches SYSCLK
// to it. Every wait is unbounded: a source that never reports ready hangs
// boot.
func InitClockTree(cfg *ClockConfig) {
	sys0 := sn32.SYS0

	sn32.FLASH.LPCTRL.Set(sn32.FLASH_LPCTRL_SLOW_OFF)

	switch cfg.Source {
	case ClockIHRC:
		sys0.ANBCTRL.SetBits(sn32.SYS0_ANBCTRL_IHRCEN)
		waitReady(sn32.SYS0_CSST_IHRCRDY)
	case ClockILRC:
		// Always running.
	case ClockEHSXtal:
		enableEHS(cfg)
	case ClockELSXtal:
		sys0.ANBCTRL.SetBits(sn32.SYS0_ANBCTRL_ELSEN)
		waitReady(sn32.SYS0_CSST_ELSRDY)
	case ClockPLL:
		sys0.PLLCTRL.Set(cfg.pllctrl())
		if cfg.PLLInput == PLLInputEHS {
			enableEHS(cfg)
		}
		waitReady(sn32.SYS0_CSST_PLLRDY)
	}
	switchSysClock(cfg.Source)

	sys0.AHBCP.ReplaceBits(uint32(cfg.AHBPrescaler), sn32.SYS0_AHBCP_AHBPRE_Msk, sn32.SYS0_AHBCP_AHBPRE_Pos)

	if cfg.ClockOut != ClockOutDisabled {
		EnableClockOut(cfg.ClockOut)
	}
	RecordEvent(EvtClockSwitch, uint8(cfg.Source), sys0.PLLCTRL.Get(), uint32(cfg.AHBPrescaler))
}

func enableEHS(cfg *ClockConfig) {
	anb := &sn32.SYS0.ANBCTRL
	if cfg.EHSFreqMHz > 12 {
		anb.SetBits(sn32.SYS0_ANBCTRL_EHSFREQ)
	} else {
		anb.ClearBits(sn32.SYS0_ANBCTRL_EHSFREQ)
	}
	anb.SetBits(sn32.SYS0_ANBCTRL_EHSEN)
	waitReady(sn32.SYS0_CSST_EHSRDY)
}

// waitReady spins until CSST reports every bit in mask.
func waitReady(mask uint32) {
	for sn32.SYS0.CSST.Get()&mask != mask {
	}
}

// switchSysClock selects src and spins until SYSCLKST confirms it.
func switchSysClock(src ClockSource) {
	clkcfg := &sn32.SYS0.CLKCFG
	clkcfg.ReplaceBits(uint32(src), sn32.SYS0_CLKCFG_SYSCLKSEL_Msk, sn32.SYS0_CLKCFG_SYSCLKSEL_Pos)
	for (clkcfg.Get()>>sn32.SYS0_CLKCFG_SYSCLKST_Pos)&sn32.SYS0_CLKCFG_SYSCLKST_Msk != uint32(src) {
	}
}
