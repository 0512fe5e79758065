package hal

import (
	"sn32hal/device/sn32"
	"sn32hal/x/mathx"
)

// PWMChannels is the number of compare-match channels on CT16B1.
const PWMChannels = sn32.CT16_PWM_CHANNELS

// PWMOutputMode is a channel's output polarity.
type PWMOutputMode uint8

const (
	PWMOutputDisabled PWMOutputMode = iota
	PWMOutputActiveHigh
	PWMOutputActiveLow
)

// 2-bit PWMCTRL field per mode
var pwmModeBits = [...]uint32{
	PWMOutputDisabled:   0b00,
	PWMOutputActiveHigh: 0b10,
	PWMOutputActiveLow:  0b11,
}

// bits returns the PWMCTRL field for m. Unknown modes read as disabled.
func (m PWMOutputMode) bits() uint32 {
	if int(m) >= len(pwmModeBits) {
		return 0
	}
	return pwmModeBits[m]
}

// PWMCallback runs in interrupt context. Keep it short.
type PWMCallback func(p *PWMDriver)

// PWMChannelConfig is the per-channel part of PWMConfig.
type PWMChannelConfig struct {
	Mode     PWMOutputMode
	Callback PWMCallback // on compare match, nil to leave the match IRQ off
}

// PWMConfig must not change while the driver is started.
type PWMConfig struct {
	Frequency uint32      // timer tick rate in Hz, must divide the core clock exactly
	Period    uint32      // ticks per PWM cycle
	Callback  PWMCallback // on period match (cycle complete)
	Channels  [PWMChannels]PWMChannelConfig
}

// Validate checks cfg against clock the way Start would, without asserting.
func (cfg *PWMConfig) Validate(clock uint32) error {
	if _, ok := Prescaler(clock, cfg.Frequency); !ok {
		return ErrInvalidFrequency
	}
	if cfg.Period == 0 {
		return ErrInvalidPeriod
	}
	for i := range cfg.Channels {
		if cfg.Channels[i].Mode > PWMOutputActiveLow {
			return ErrInvalidMode
		}
	}
	return nil
}

// PWMState is the driver lifecycle state.
type PWMState uint8

const (
	PWMStop PWMState = iota
	PWMReady
)

func (s PWMState) String() string {
	if s == PWMReady {
		return "ready"
	}
	return "stop"
}

// PWMDriver drives one CT16 timer in compare-match PWM mode.
type PWMDriver struct {
	State  PWMState
	Config *PWMConfig
	Period uint32 // ticks per cycle, latched from Config at Start
	Clock  uint32 // timer input clock, latched from CoreClock on first Start

	ct       *sn32.CT16_Type
	gate     uint32 // AHBCLKEN bit
	reset    uint32 // PRST bit
	irq      uint32
	priority uint8
	enabled  uint32 // channels enabled since the last Start
}

// PWMD1 is the PWM driver on CT16B1.
var PWMD1 = newCT16B1Driver()

func newCT16B1Driver() PWMDriver {
	return PWMDriver{
		ct:       sn32.CT16B1,
		gate:     sn32.SYS1_AHBCLKEN_CT16B1,
		reset:    sn32.SYS1_PRST_CT16B1,
		irq:      sn32.IRQ_CT16B1,
		priority: PWMCT16B1IRQPriority,
	}
}

// PWMInit puts PWMD1 back in its initial stopped state. Registers are not
// touched.
func PWMInit() {
	PWMD1 = newCT16B1Driver()
}

// Prescaler returns the PRE value that divides clock down to frequency.
// ok is false unless the division is exact and fits the 16-bit prescaler.
func Prescaler(clock, frequency uint32) (uint32, bool) {
	div, exact := mathx.ExactDiv(clock, frequency)
	if !exact || div == 0 || div-1 > 0xFFFF {
		return 0, false
	}
	return div - 1, true
}

// Start configures and starts the timer. Starting a driver that is already
// ready tears the timer down first, which disables every enabled channel.
// Panics with "invalid frequency" when cfg.Frequency is not an exact
// divisor of the timer clock.
func (p *PWMDriver) Start(cfg *PWMConfig) {
	p.Config = cfg
	p.Period = cfg.Period
	p.start()
	p.State = PWMReady
}

func (p *PWMDriver) start() {
	ct := p.ct
	cfg := p.Config

	if p.State == PWMStop {
		// Clock activation and timer reset
		EnableAHB(p.gate)
		ResetPeripheral(p.reset)
		enableVector(p.irq, p.priority)
		p.Clock = CoreClock
	} else {
		// Re-configuration: stop counting and rewind
		ct.TMRCTRL.Set(sn32.CT16_TMRCTRL_CEN_DIS)
		ct.TC.Set(0)
	}
	p.enabled = 0

	psc, ok := Prescaler(p.Clock, cfg.Frequency)
	assert(ok, "invalid frequency")
	ct.PRE.Set(psc)
	ct.MR[sn32.CT16_PERIOD_MR].Set(p.Period - 1)

	var pwmctrl, pwmctrl2, outputs uint32
	var mctrl [3]uint32
	for i := range cfg.Channels {
		ch := &cfg.Channels[i]
		if i < sn32.CT16_PWMCTRL_PER_REG {
			pwmctrl |= ch.Mode.bits() << (sn32.CT16_PWMCTRL_WIDTH * i)
		} else {
			pwmctrl2 |= ch.Mode.bits() << (sn32.CT16_PWMCTRL_WIDTH * (i - sn32.CT16_PWMCTRL_PER_REG))
		}
		if ch.Mode != PWMOutputDisabled {
			outputs |= 1 << i
		}
		if ch.Callback != nil {
			mctrl[i/sn32.CT16_MCTRL_PER_WORD] |= sn32.CT16_MCTRL_IE << mctrlShift(i)
		}
		// Zero duty until EnableChannel
		ct.MR[i].Set(0)
	}

	// MR24 restarts the counter every period
	period := sn32.CT16_PERIOD_MR
	mctrl[period/sn32.CT16_MCTRL_PER_WORD] |= sn32.CT16_MCTRL_RST << mctrlShift(period)
	if cfg.Callback != nil {
		mctrl[period/sn32.CT16_MCTRL_PER_WORD] |= sn32.CT16_MCTRL_IE << mctrlShift(period)
	}

	ct.PWMCTRL.Set(pwmctrl)
	ct.PWMCTRL2.Set(pwmctrl2)
	ct.MCTRL.Set(mctrl[0])
	ct.MCTRL2.Set(mctrl[1])
	ct.MCTRL3.Set(mctrl[2])
	ct.PWMENB.Set(outputs)
	ct.PWMIOENB.Set(outputs)

	// Pending flags are cleared before counting starts
	ct.IC.Set(sn32.CT16_IC_ALL)
	ct.TMRCTRL.SetBits(sn32.CT16_TMRCTRL_CEN)

	RecordEvent(EvtPWMStart, 0, psc, p.Period)
}

// mctrlShift is the bit offset of match register n inside its MCTRL word.
func mctrlShift(n int) uint32 {
	return uint32(sn32.CT16_MCTRL_WIDTH * (n % sn32.CT16_MCTRL_PER_WORD))
}

// Stop halts the timer, releases its vector and gates its clock. No effect
// unless the driver is ready.
func (p *PWMDriver) Stop() {
	if p.State != PWMReady {
		return
	}
	ct := p.ct
	ct.TMRCTRL.Set(sn32.CT16_TMRCTRL_CEN_DIS)
	ct.IC.Set(sn32.CT16_IC_ALL)
	disableVector(p.irq)
	DisableAHB(p.gate)

	p.enabled = 0
	p.State = PWMStop
	p.Config = nil
	RecordEvent(EvtPWMStop, 0, 0, 0)
}

// EnableChannel sets the pulse width of channel in timer ticks. The new
// width is latched at the next period boundary. channel must be below
// PWMChannels and the driver ready; neither is checked.
func (p *PWMDriver) EnableChannel(channel uint8, width uint32) {
	p.ct.MR[channel].Set(width)
	if p.Config.Channels[channel].Mode != PWMOutputDisabled {
		p.ct.PWMIOENB.SetBits(1 << channel)
	}
	p.enabled |= 1 << channel
	RecordEvent(EvtPWMChannel, channel, width, 0)
}

// DisableChannel zeroes the width of channel and releases its output pin to
// the idle level.
func (p *PWMDriver) DisableChannel(channel uint8) {
	p.ct.MR[channel].Set(0)
	p.ct.PWMIOENB.ClearBits(1 << channel)
	p.enabled &^= 1 << channel
	RecordEvent(EvtPWMChannel, channel, 0, 0)
}

// IsChannelEnabled reports whether channel was enabled since the last Start.
func (p *PWMDriver) IsChannelEnabled(channel uint8) bool {
	return p.enabled&(1<<channel) != 0
}

// ChannelWidth reads back the match register of channel.
func (p *PWMDriver) ChannelWidth(channel uint8) uint32 {
	return p.ct.MR[channel].Get()
}

// Not supported by this timer; these are no-ops.
func (p *PWMDriver) EnablePeriodicNotification() {}

func (p *PWMDriver) DisablePeriodicNotification() {}

func (p *PWMDriver) EnableChannelNotification(channel uint8) {}

func (p *PWMDriver) DisableChannelNotification(channel uint8) {}

// ServeInterrupt demultiplexes the CT16 interrupt. RIS is read once; channel
// callbacks run in ascending channel order, then the cycle callback.
func (p *PWMDriver) ServeInterrupt() {
	ris := p.ct.RIS.Get()
	cfg := p.Config
	if cfg == nil {
		return
	}
	RecordEvent(EvtPWMServe, 0, ris, p.enabled)

	for i := range cfg.Channels {
		if ris&(1<<i) != 0 && cfg.Channels[i].Callback != nil {
			cfg.Channels[i].Callback(p)
		}
	}
	if ris&sn32.CT16_RIS_MR24IF != 0 && cfg.Callback != nil {
		cfg.Callback(p)
	}

	if pwmAckInISR {
		p.ct.IC.Set(ris)
	}
}
