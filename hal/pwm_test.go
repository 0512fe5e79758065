//go:build !tinygo

package hal

import (
	"testing"

	"sn32hal/device/sn32"
)

const testClock = 48000000

// resetHAL returns registers, vectors and drivers to power-on state.
func resetHAL(t *testing.T) {
	t.Helper()
	sn32.ResetPeripherals()
	ResetVectors()
	ClearEvents()
	PWMInit()
	CoreClock = testClock
}

func activeHighConfig(freq, period uint32) *PWMConfig {
	cfg := &PWMConfig{Frequency: freq, Period: period}
	for i := range cfg.Channels {
		cfg.Channels[i].Mode = PWMOutputActiveHigh
	}
	return cfg
}

func TestPrescaler(t *testing.T) {
	tests := []struct {
		clock, freq uint32
		want        uint32
		ok          bool
	}{
		{48000000, 1000000, 47, true},
		{48000000, 48000000, 0, true},
		{48000000, 1000, 47999, true},
		{24000000, 1000, 23999, true},
		{48000000, 7, 0, false},        // inexact
		{48000000, 500, 0, false},      // 95999 overflows 16 bits
		{48000000, 732, 0, false},      // inexact and large
		{12000000, 24000000, 0, false}, // faster than the clock
		{0, 1000, 0, false},
		{48000000, 0, 0, false},
	}

	for _, tt := range tests {
		got, ok := Prescaler(tt.clock, tt.freq)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Prescaler(%d, %d) = (%d, %v), want (%d, %v)", tt.clock, tt.freq, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStartProgramsTimer(t *testing.T) {
	resetHAL(t)

	cfg := activeHighConfig(1000000, 256)
	PWMD1.Start(cfg)
	ct := sn32.CT16B1

	if PWMD1.State != PWMReady {
		t.Fatalf("state = %v, want ready", PWMD1.State)
	}
	if PWMD1.Clock != testClock {
		t.Errorf("Clock = %d, want %d", PWMD1.Clock, testClock)
	}
	if got := ct.PRE.Get(); got != 47 {
		t.Errorf("PRE = %d, want 47", got)
	}
	if got := ct.MR[sn32.CT16_PERIOD_MR].Get(); got != 255 {
		t.Errorf("MR24 = %d, want 255", got)
	}
	if !ct.TMRCTRL.HasBits(sn32.CT16_TMRCTRL_CEN) {
		t.Error("counter not enabled")
	}
	if got := ct.IC.Get(); got != sn32.CT16_IC_ALL {
		t.Errorf("IC = 0x%08X, want all flags cleared", got)
	}
	if got := ct.PWMENB.Get(); got != 0x00FF_FFFF {
		t.Errorf("PWMENB = 0x%08X, want all 24 channels", got)
	}
	if got := ct.PWMIOENB.Get(); got != 0x00FF_FFFF {
		t.Errorf("PWMIOENB = 0x%08X, want all 24 channels", got)
	}
	for i := 0; i < PWMChannels; i++ {
		if got := ct.MR[i].Get(); got != 0 {
			t.Errorf("MR%d = %d, want 0 (zero duty)", i, got)
		}
	}

	// MR24 resets the counter, no IRQ without a cycle callback
	mr24 := ct.MCTRL3.Get() >> 12 & 0x7
	if mr24 != sn32.CT16_MCTRL_RST {
		t.Errorf("MCTRL3 MR24 field = %03b, want %03b", mr24, sn32.CT16_MCTRL_RST)
	}

	if !sn32.SYS1.AHBCLKEN.HasBits(sn32.SYS1_AHBCLKEN_CT16B1) {
		t.Error("CT16B1 clock not enabled")
	}
	if sn32.SYS1.PRST.HasBits(sn32.SYS1_PRST_CT16B1) {
		t.Error("CT16B1 left in reset")
	}
	if !VectorEnabled(sn32.IRQ_CT16B1) {
		t.Error("CT16B1 vector not enabled")
	}
	if got := VectorPriority(sn32.IRQ_CT16B1); got != PWMCT16B1IRQPriority {
		t.Errorf("vector priority = %d, want %d", got, PWMCT16B1IRQPriority)
	}
}

func TestStartInvalidFrequencyPanics(t *testing.T) {
	for _, freq := range []uint32{7, 500, 0, 96000000} {
		resetHAL(t)
		func() {
			defer func() {
				r := recover()
				if r == nil {
					t.Errorf("frequency %d: expected panic", freq)
					return
				}
				if msg, _ := r.(string); msg != "invalid frequency" {
					t.Errorf("frequency %d: panic %v, want \"invalid frequency\"", freq, r)
				}
			}()
			PWMD1.Start(activeHighConfig(freq, 100))
		}()
	}
}

func TestStartPolarityFields(t *testing.T) {
	modes := []struct {
		mode PWMOutputMode
		bits uint32
	}{
		{PWMOutputDisabled, 0b00},
		{PWMOutputActiveHigh, 0b10},
		{PWMOutputActiveLow, 0b11},
	}

	for ch := 0; ch < PWMChannels; ch++ {
		for _, m := range modes {
			resetHAL(t)
			cfg := &PWMConfig{Frequency: 1000000, Period: 100}
			cfg.Channels[ch].Mode = m.mode
			PWMD1.Start(cfg)

			reg, other := sn32.CT16B1.PWMCTRL.Get(), sn32.CT16B1.PWMCTRL2.Get()
			shift := 2 * ch
			if ch >= 16 {
				reg, other = other, reg
				shift = 2 * (ch - 16)
			}
			if got := reg >> shift & 0x3; got != m.bits {
				t.Errorf("ch%d mode %d: field = %02b, want %02b", ch, m.mode, got, m.bits)
			}
			if rest := reg &^ (0x3 << shift); rest != 0 {
				t.Errorf("ch%d mode %d: other fields altered: 0x%08X", ch, m.mode, rest)
			}
			if other != 0 {
				t.Errorf("ch%d mode %d: other mode register altered: 0x%08X", ch, m.mode, other)
			}

			wantOut := uint32(0)
			if m.mode != PWMOutputDisabled {
				wantOut = 1 << ch
			}
			if got := sn32.CT16B1.PWMIOENB.Get(); got != wantOut {
				t.Errorf("ch%d mode %d: PWMIOENB = 0x%08X, want 0x%08X", ch, m.mode, got, wantOut)
			}
		}
	}
}

func TestStartMatchInterruptEnables(t *testing.T) {
	resetHAL(t)

	noop := func(*PWMDriver) {}
	cfg := activeHighConfig(1000000, 100)
	cfg.Channels[0].Callback = noop
	cfg.Channels[11].Callback = noop
	cfg.Channels[23].Callback = noop
	cfg.Callback = noop
	PWMD1.Start(cfg)

	ct := sn32.CT16B1
	if got, want := ct.MCTRL.Get(), uint32(sn32.CT16_MCTRL_IE); got != want {
		t.Errorf("MCTRL = 0x%08X, want 0x%08X", got, want)
	}
	if got, want := ct.MCTRL2.Get(), uint32(sn32.CT16_MCTRL_IE<<3); got != want {
		t.Errorf("MCTRL2 = 0x%08X, want 0x%08X", got, want)
	}
	want3 := uint32(sn32.CT16_MCTRL_IE<<9 | (sn32.CT16_MCTRL_IE|sn32.CT16_MCTRL_RST)<<12)
	if got := ct.MCTRL3.Get(); got != want3 {
		t.Errorf("MCTRL3 = 0x%08X, want 0x%08X", got, want3)
	}
}

func TestEnableChannelWritesMatch(t *testing.T) {
	resetHAL(t)
	PWMD1.Start(activeHighConfig(1000000, 0x10000))

	widths := []uint32{0, 1, 0x7FFF, 0xFFFF, 0x10000, 0xFFFF_FFFF}
	for ch := uint8(0); ch < PWMChannels; ch++ {
		for _, w := range widths {
			PWMD1.EnableChannel(ch, w)
			if got := sn32.CT16B1.MR[ch].Get(); got != w {
				t.Errorf("ch%d: MR = %d, want %d", ch, got, w)
			}
			if got := PWMD1.ChannelWidth(ch); got != w {
				t.Errorf("ch%d: ChannelWidth = %d, want %d", ch, got, w)
			}
		}
		if !PWMD1.IsChannelEnabled(ch) {
			t.Errorf("ch%d not reported enabled", ch)
		}
	}
}

func TestDisableChannel(t *testing.T) {
	for target := uint8(0); target < PWMChannels; target++ {
		resetHAL(t)
		PWMD1.Start(activeHighConfig(1000000, 1000))
		for ch := uint8(0); ch < PWMChannels; ch++ {
			PWMD1.EnableChannel(ch, uint32(ch)+100)
		}

		PWMD1.DisableChannel(target)

		ct := sn32.CT16B1
		if got := ct.MR[target].Get(); got != 0 {
			t.Errorf("ch%d: MR = %d after disable", target, got)
		}
		if ct.PWMIOENB.HasBits(1 << target) {
			t.Errorf("ch%d: output still enabled", target)
		}
		if PWMD1.IsChannelEnabled(target) {
			t.Errorf("ch%d: still reported enabled", target)
		}
		for ch := uint8(0); ch < PWMChannels; ch++ {
			if ch == target {
				continue
			}
			if got := ct.MR[ch].Get(); got != uint32(ch)+100 {
				t.Errorf("disable ch%d changed MR%d to %d", target, ch, got)
			}
			if !ct.PWMIOENB.HasBits(1 << ch) {
				t.Errorf("disable ch%d cleared output of ch%d", target, ch)
			}
		}
		if got := ct.PWMENB.Get(); got != 0x00FF_FFFF {
			t.Errorf("disable ch%d changed PWMENB to 0x%08X", target, got)
		}
	}
}

func TestDisableThenEnableRestoresOutput(t *testing.T) {
	resetHAL(t)
	cfg := activeHighConfig(1000000, 1000)
	cfg.Channels[4].Mode = PWMOutputDisabled
	PWMD1.Start(cfg)

	PWMD1.DisableChannel(3)
	PWMD1.EnableChannel(3, 500)
	if !sn32.CT16B1.PWMIOENB.HasBits(1 << 3) {
		t.Error("EnableChannel did not restore output of active channel")
	}

	// Disabled channels keep their pin released
	PWMD1.EnableChannel(4, 500)
	if sn32.CT16B1.PWMIOENB.HasBits(1 << 4) {
		t.Error("EnableChannel drove the pin of a disabled channel")
	}
}

func TestServeInterruptOrder(t *testing.T) {
	resetHAL(t)

	var calls []int
	cfg := activeHighConfig(1000000, 1000)
	cfg.Channels[5].Callback = func(p *PWMDriver) {
		if p != &PWMD1 {
			t.Error("callback got wrong driver")
		}
		calls = append(calls, 5)
	}
	cfg.Channels[9].Callback = func(*PWMDriver) { calls = append(calls, 9) }
	PWMD1.Start(cfg)

	sn32.CT16B1.RIS.Set(1<<2 | 1<<5 | 1<<9)
	PWMD1.ServeInterrupt()

	if len(calls) != 2 || calls[0] != 5 || calls[1] != 9 {
		t.Errorf("callbacks = %v, want [5 9]", calls)
	}
}

func TestServeInterruptAllChannelsAscending(t *testing.T) {
	resetHAL(t)

	var calls []int
	cfg := activeHighConfig(1000000, 1000)
	for i := range cfg.Channels {
		ch := i
		cfg.Channels[i].Callback = func(*PWMDriver) { calls = append(calls, ch) }
	}
	cfg.Callback = func(*PWMDriver) { calls = append(calls, 24) }
	PWMD1.Start(cfg)

	sn32.CT16B1.RIS.Set(0x01FF_FFFF)
	PWMD1.ServeInterrupt()

	if len(calls) != 25 {
		t.Fatalf("got %d callbacks, want 25", len(calls))
	}
	for i, c := range calls {
		if c != i {
			t.Fatalf("callback order %v", calls)
		}
	}
}

func TestServeInterruptCycleCallback(t *testing.T) {
	resetHAL(t)

	cycles := 0
	cfg := activeHighConfig(1000000, 1000)
	cfg.Callback = func(*PWMDriver) { cycles++ }
	PWMD1.Start(cfg)

	sn32.CT16B1.RIS.Set(1 << 3)
	PWMD1.ServeInterrupt()
	if cycles != 0 {
		t.Errorf("cycle callback ran on channel match")
	}

	sn32.CT16B1.RIS.Set(sn32.CT16_RIS_MR24IF)
	PWMD1.ServeInterrupt()
	if cycles != 1 {
		t.Errorf("cycles = %d, want 1", cycles)
	}

	// Flags are left for Start/Stop to clear
	if got := sn32.CT16B1.RIS.Get(); got != sn32.CT16_RIS_MR24IF {
		t.Errorf("RIS = 0x%08X after serve", got)
	}
}

func TestServeInterruptStoppedDriver(t *testing.T) {
	resetHAL(t)
	sn32.CT16B1.RIS.Set(0xFFFF_FFFF)
	PWMD1.ServeInterrupt() // must not dereference a nil config
}

func TestStopOnStoppedDriverIsNoop(t *testing.T) {
	resetHAL(t)
	sn32.CT16B1.TC.Set(77)
	sn32.CT16B1.TMRCTRL.Set(sn32.CT16_TMRCTRL_CEN)
	sn32.SYS1.AHBCLKEN.Set(0x1234_5678)

	ctBefore := *sn32.CT16B1
	sysBefore := *sn32.SYS1

	PWMD1.Stop()

	if PWMD1.State != PWMStop {
		t.Errorf("state = %v, want stop", PWMD1.State)
	}
	if *sn32.CT16B1 != ctBefore {
		t.Error("Stop on stopped driver wrote CT16B1 registers")
	}
	if *sn32.SYS1 != sysBefore {
		t.Error("Stop on stopped driver wrote SYS1 registers")
	}
}

func TestStopReleasesTimer(t *testing.T) {
	resetHAL(t)
	PWMD1.Start(activeHighConfig(1000000, 1000))
	PWMD1.EnableChannel(1, 10)

	PWMD1.Stop()

	ct := sn32.CT16B1
	if PWMD1.State != PWMStop || PWMD1.Config != nil {
		t.Errorf("state = %v config = %v after Stop", PWMD1.State, PWMD1.Config)
	}
	if ct.TMRCTRL.HasBits(sn32.CT16_TMRCTRL_CEN) {
		t.Error("counter still enabled")
	}
	if ct.IC.Get() != sn32.CT16_IC_ALL {
		t.Error("pending flags not cleared")
	}
	if VectorEnabled(sn32.IRQ_CT16B1) {
		t.Error("vector still enabled")
	}
	if sn32.SYS1.AHBCLKEN.HasBits(sn32.SYS1_AHBCLKEN_CT16B1) {
		t.Error("clock still enabled")
	}
	if PWMD1.IsChannelEnabled(1) {
		t.Error("channel still reported enabled")
	}

	// Second stop is harmless
	PWMD1.Stop()
}

func TestRestartResetsCounter(t *testing.T) {
	resetHAL(t)

	PWMD1.Start(activeHighConfig(1000000, 1000))
	PWMD1.EnableChannel(0, 300)
	sn32.CT16B1.TC.Set(1234) // ticks elapsed

	// Clock changes are not picked up until the driver is stopped
	CoreClock = 24000000
	PWMD1.Start(activeHighConfig(2000000, 500))

	ct := sn32.CT16B1
	if got := ct.TC.Get(); got != 0 {
		t.Errorf("TC = %d after restart, want 0", got)
	}
	if PWMD1.State != PWMReady {
		t.Errorf("state = %v, want ready", PWMD1.State)
	}
	if PWMD1.Clock != testClock {
		t.Errorf("Clock = %d, want latched %d", PWMD1.Clock, testClock)
	}
	if got := ct.PRE.Get(); got != 23 {
		t.Errorf("PRE = %d, want 23", got)
	}
	if got := ct.MR[sn32.CT16_PERIOD_MR].Get(); got != 499 {
		t.Errorf("MR24 = %d, want 499", got)
	}
	if got := ct.MR[0].Get(); got != 0 || PWMD1.IsChannelEnabled(0) {
		t.Errorf("channel 0 survived restart: MR0 = %d", got)
	}
	if !ct.TMRCTRL.HasBits(sn32.CT16_TMRCTRL_CEN) {
		t.Error("counter not re-enabled")
	}
	if !sn32.SYS1.AHBCLKEN.HasBits(sn32.SYS1_AHBCLKEN_CT16B1) || !VectorEnabled(sn32.IRQ_CT16B1) {
		t.Error("restart released the clock gate or vector")
	}
}

func TestNotificationHooksAreNoops(t *testing.T) {
	resetHAL(t)
	PWMD1.Start(activeHighConfig(1000000, 1000))
	before := *sn32.CT16B1

	PWMD1.EnablePeriodicNotification()
	PWMD1.DisablePeriodicNotification()
	PWMD1.EnableChannelNotification(3)
	PWMD1.DisableChannelNotification(3)

	if *sn32.CT16B1 != before {
		t.Error("notification hook wrote registers")
	}
}

func TestPWMConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  PWMConfig
		err  error
	}{
		{"ok", PWMConfig{Frequency: 1000000, Period: 100}, nil},
		{"inexact", PWMConfig{Frequency: 7, Period: 100}, ErrInvalidFrequency},
		{"zero period", PWMConfig{Frequency: 1000000}, ErrInvalidPeriod},
	}
	bad := PWMConfig{Frequency: 1000000, Period: 100}
	bad.Channels[7].Mode = PWMOutputMode(3)
	tests = append(tests, struct {
		name string
		cfg  PWMConfig
		err  error
	}{"bad mode", bad, ErrInvalidMode})

	for _, tt := range tests {
		if err := tt.cfg.Validate(testClock); err != tt.err {
			t.Errorf("%s: Validate = %v, want %v", tt.name, err, tt.err)
		}
	}
}

func TestPWMEventsRecorded(t *testing.T) {
	resetHAL(t)
	PWMD1.Start(activeHighConfig(1000000, 1000))
	PWMD1.EnableChannel(2, 50)
	PWMD1.Stop()

	evts := Events()
	kinds := []uint8{EvtPWMStart, EvtPWMChannel, EvtPWMStop}
	if len(evts) != len(kinds) {
		t.Fatalf("events = %+v", evts)
	}
	for i, k := range kinds {
		if evts[i].Kind != k {
			t.Errorf("event %d kind = %d, want %d", i, evts[i].Kind, k)
		}
	}
	if evts[0].Value1 != 47 || evts[0].Value2 != 1000 {
		t.Errorf("start event = %+v", evts[0])
	}
	if evts[1].Arg != 2 || evts[1].Value1 != 50 {
		t.Errorf("channel event = %+v", evts[1])
	}
}
