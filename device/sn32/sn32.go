// Package sn32 describes the SN32F24xB peripherals used by the HAL:
// the CT16 complex timers, the SYS0/SYS1 clock and reset blocks and the
// flash controller.
//
// Layouts follow the vendor SN32F240B device header. Only the blocks the
// HAL touches are described.
package sn32

import "sn32hal/reg"

// Peripheral base addresses
const (
	CT16B0_BASE = 0x40000000
	CT16B1_BASE = 0x40002000
	SYS1_BASE   = 0x4005E000
	SYS0_BASE   = 0x40060000
	FLASH_BASE  = 0x40062000
)

// Interrupt numbers. CT16B0 sits at vector offset 0x7C, CT16B1 at 0x80.
const (
	IRQ_CT16B0 = 15
	IRQ_CT16B1 = 16

	// Cortex-M0 implements two priority bits.
	NVIC_PRIO_BITS = 2
)

// CT16_Type is a 16-bit complex timer with 24 PWM channels and a period
// match register (MR24).
type CT16_Type struct {
	TMRCTRL  reg.Register32     // 0x00 timer control
	TC       reg.Register32     // 0x04 timer counter
	PRE      reg.Register32     // 0x08 prescaler
	PC       reg.Register32     // 0x0C prescale counter
	CNTCTRL  reg.Register32     // 0x10 counter control
	MCTRL    reg.Register32     // 0x14 match control MR0..MR9
	MCTRL2   reg.Register32     // 0x18 match control MR10..MR19
	MCTRL3   reg.Register32     // 0x1C match control MR20..MR24
	MR       [25]reg.Register32 // 0x20..0x80 match registers, MR24 is the period
	CAPCTRL  reg.Register32     // 0x84 capture control
	CAP0     reg.Register32     // 0x88 capture 0
	EM       reg.Register32     // 0x8C external match
	EMC      reg.Register32     // 0x90 external match control
	EMC2     reg.Register32     // 0x94 external match control 2
	PWMCTRL  reg.Register32     // 0x98 PWM mode, channels 0..15
	PWMCTRL2 reg.Register32     // 0x9C PWM mode, channels 16..23
	PWMENB   reg.Register32     // 0xA0 PWM enable
	PWMIOENB reg.Register32     // 0xA4 PWM pin output enable
	RIS      reg.Register32     // 0xA8 raw interrupt status
	IC       reg.Register32     // 0xAC interrupt clear (write 1 to clear)
}

// CT16 register bits
const (
	CT16_TMRCTRL_CEN     = 1 << 0 // counter enable
	CT16_TMRCTRL_CRST    = 1 << 1 // counter reset
	CT16_TMRCTRL_CEN_DIS = 0

	// Match control packs three bits per match register, ten registers per
	// MCTRL word.
	CT16_MCTRL_IE        = 1 << 0 // interrupt on match
	CT16_MCTRL_RST       = 1 << 1 // reset TC on match
	CT16_MCTRL_STOP      = 1 << 2 // stop TC on match
	CT16_MCTRL_WIDTH     = 3
	CT16_MCTRL_PER_WORD  = 10
	CT16_PERIOD_MR       = 24
	CT16_PWM_CHANNELS    = 24
	CT16_PWMCTRL_WIDTH   = 2
	CT16_PWMCTRL_PER_REG = 16
	CT16_PWMCTRL_Msk     = 0x3

	CT16_RIS_MR24IF = 1 << 24 // period match
	CT16_RIS_CAP0IF = 1 << 25
	CT16_IC_ALL     = 0x03FF_FFFF
)

// SYS0_Type holds the clock source, PLL and AHB prescaler registers.
type SYS0_Type struct {
	ANBCTRL   reg.Register32 // 0x00 analog block control
	PLLCTRL   reg.Register32 // 0x04 PLL control
	CSST      reg.Register32 // 0x08 clock source status
	CLKCFG    reg.Register32 // 0x0C system clock config
	AHBCP     reg.Register32 // 0x10 AHB clock prescale
	RSTST     reg.Register32 // 0x14 reset status
	LVDCTRL   reg.Register32 // 0x18 LVD control
	EXRSTCTRL reg.Register32 // 0x1C external reset pin control
	SWDCTRL   reg.Register32 // 0x20 SWD pin control
}

// SYS0 register bits
const (
	SYS0_ANBCTRL_IHRCEN  = 1 << 0
	SYS0_ANBCTRL_ELSEN   = 1 << 2
	SYS0_ANBCTRL_EHSEN   = 1 << 4
	SYS0_ANBCTRL_EHSFREQ = 1 << 5 // crystal above 12 MHz

	SYS0_CSST_IHRCRDY = 1 << 0
	SYS0_CSST_ELSRDY  = 1 << 2
	SYS0_CSST_EHSRDY  = 1 << 4
	SYS0_CSST_PLLRDY  = 1 << 6

	SYS0_CLKCFG_SYSCLKSEL_Pos = 0
	SYS0_CLKCFG_SYSCLKSEL_Msk = 0x7
	SYS0_CLKCFG_SYSCLKST_Pos  = 4
	SYS0_CLKCFG_SYSCLKST_Msk  = 0x7

	SYS0_AHBCP_AHBPRE_Pos = 0
	SYS0_AHBCP_AHBPRE_Msk = 0xF

	SYS0_PLLCTRL_MSEL_Pos  = 0
	SYS0_PLLCTRL_MSEL_Msk  = 0x1F
	SYS0_PLLCTRL_PSEL_Pos  = 5
	SYS0_PLLCTRL_PSEL_Msk  = 0x7
	SYS0_PLLCTRL_FSEL_Pos  = 8
	SYS0_PLLCTRL_FSEL_Msk  = 0x1
	SYS0_PLLCTRL_CLKIN_Pos = 12
	SYS0_PLLCTRL_CLKIN_Msk = 0x3
	SYS0_PLLCTRL_PLLEN     = 1 << 15
)

// SYS1_Type holds peripheral clock gates, APB prescalers and resets.
type SYS1_Type struct {
	AHBCLKEN reg.Register32 // 0x00 AHB clock enable, CLKOUTSEL in [30:28]
	APBCP0   reg.Register32 // 0x04 APB clock prescale 0
	APBCP1   reg.Register32 // 0x08 APB clock prescale 1
	APBCP2   reg.Register32 // 0x0C APB clock prescale 2
	PRST     reg.Register32 // 0x10 peripheral reset
}

// SYS1 register bits
const (
	SYS1_AHBCLKEN_CT16B0 = 1 << 5
	SYS1_AHBCLKEN_CT16B1 = 1 << 6

	SYS1_AHBCLKEN_CLKOUTSEL_Pos = 28
	SYS1_AHBCLKEN_CLKOUTSEL_Msk = 0x7

	SYS1_PRST_CT16B0 = 1 << 5
	SYS1_PRST_CT16B1 = 1 << 6
)

// FLASH_Type is the flash memory controller.
type FLASH_Type struct {
	LPCTRL reg.Register32 // 0x00 low power control
	STATUS reg.Register32 // 0x04
	CTRL   reg.Register32 // 0x08
	DATA   reg.Register32 // 0x0C
	ADDR   reg.Register32 // 0x10
	CHKSUM reg.Register32 // 0x14
}

// Writing this key to LPCTRL turns slow-mode power saving off.
const FLASH_LPCTRL_SLOW_OFF = 0x5AFA0000
