package command

import (
	"sync/atomic"

	"sn32hal/hal"
	"sn32hal/protocol"
	"sn32hal/x/mathx"
)

// PWM mode names, indexed by hal.PWMOutputMode.
var pwmModeNames = []string{"disabled", "active_high", "active_low"}

// Host commands edit staged; pwm_start copies it into active, which the
// driver holds until the next start or stop.
var (
	staged hal.PWMConfig
	active hal.PWMConfig

	matchCount [hal.PWMChannels]uint32 // atomic, written in interrupt context
	cycleCount uint32                  // atomic

	matchCallbacks [hal.PWMChannels]hal.PWMCallback
)

func init() {
	for i := range matchCallbacks {
		counter := &matchCount[i]
		matchCallbacks[i] = func(*hal.PWMDriver) { atomic.AddUint32(counter, 1) }
	}
}

func countCycle(*hal.PWMDriver) { atomic.AddUint32(&cycleCount, 1) }

// InitPWMCommands registers the PWM commands and their dictionary entries.
func InitPWMCommands() {
	RegisterCommand("pwm_set_mode", "channel=%c mode=%c", handlePWMSetMode)
	RegisterCommand("pwm_set_notify", "channel=%c enable=%c", handlePWMSetNotify)
	RegisterCommand("pwm_set_cycle_notify", "enable=%c", handlePWMSetCycleNotify)
	RegisterCommand("pwm_start", "frequency=%u period=%u", handlePWMStart)
	RegisterCommand("pwm_stop", "", handlePWMStop)
	RegisterCommand("pwm_enable_channel", "channel=%c width=%u", handlePWMEnableChannel)
	RegisterCommand("pwm_disable_channel", "channel=%c", handlePWMDisableChannel)
	RegisterCommand("pwm_query", "channel=%c", handlePWMQuery)

	RegisterResponse("pwm_state", "channel=%c ready=%c width=%u matches=%u cycles=%u")

	RegisterConstant("PWM_CHANNELS", hal.PWMChannels)
	RegisterEnumeration("pwm_mode", pwmModeNames)
}

func resetPWMState() {
	staged = hal.PWMConfig{}
	active = hal.PWMConfig{}
	resetCounters()
}

func resetCounters() {
	for i := range matchCount {
		atomic.StoreUint32(&matchCount[i], 0)
	}
	atomic.StoreUint32(&cycleCount, 0)
}

// decodeChannel reads a channel argument and range-checks it.
func decodeChannel(data *[]byte) (uint8, error) {
	ch, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return 0, err
	}
	if !mathx.InRange(ch, hal.PWMChannels) {
		return 0, hal.ErrInvalidChannel
	}
	return uint8(ch), nil
}

func decodeFlag(data *[]byte) (bool, error) {
	v, err := protocol.DecodeVLQUint(data)
	return v != 0, err
}

func handlePWMSetMode(data *[]byte) error {
	ch, err := decodeChannel(data)
	if err != nil {
		return err
	}
	mode, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	if mode > uint32(hal.PWMOutputActiveLow) {
		return hal.ErrInvalidMode
	}
	staged.Channels[ch].Mode = hal.PWMOutputMode(mode)
	return nil
}

func handlePWMSetNotify(data *[]byte) error {
	ch, err := decodeChannel(data)
	if err != nil {
		return err
	}
	enable, err := decodeFlag(data)
	if err != nil {
		return err
	}
	staged.Channels[ch].Callback = nil
	if enable {
		staged.Channels[ch].Callback = matchCallbacks[ch]
	}
	return nil
}

func handlePWMSetCycleNotify(data *[]byte) error {
	enable, err := decodeFlag(data)
	if err != nil {
		return err
	}
	staged.Callback = nil
	if enable {
		staged.Callback = countCycle
	}
	return nil
}

// handlePWMStart validates the staged configuration against the core clock,
// so a bad frequency is reported instead of tripping the driver's
// assertion. A running driver is stopped first: the ISR reads the active
// configuration.
func handlePWMStart(data *[]byte) error {
	freq, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	period, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	if IsShutdown() {
		return ErrShutdown
	}

	cfg := staged
	cfg.Frequency = freq
	cfg.Period = period

	if err := cfg.Validate(hal.CoreClock); err != nil {
		return err
	}

	hal.PWMD1.Stop()
	active = cfg
	resetCounters()
	hal.PWMD1.Start(&active)
	return nil
}

func handlePWMStop(_ *[]byte) error {
	hal.PWMD1.Stop()
	return nil
}

func handlePWMEnableChannel(data *[]byte) error {
	ch, err := decodeChannel(data)
	if err != nil {
		return err
	}
	width, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	if IsShutdown() {
		return ErrShutdown
	}
	if hal.PWMD1.State != hal.PWMReady {
		return hal.ErrNotReady
	}
	hal.PWMD1.EnableChannel(ch, width)
	return nil
}

func handlePWMDisableChannel(data *[]byte) error {
	ch, err := decodeChannel(data)
	if err != nil {
		return err
	}
	if hal.PWMD1.State != hal.PWMReady {
		return hal.ErrNotReady
	}
	hal.PWMD1.DisableChannel(ch)
	return nil
}

func handlePWMQuery(data *[]byte) error {
	ch, err := decodeChannel(data)
	if err != nil {
		return err
	}

	var ready, width uint32
	if hal.PWMD1.State == hal.PWMReady {
		ready = 1
		width = hal.PWMD1.ChannelWidth(ch)
	}
	matches := atomic.LoadUint32(&matchCount[ch])
	cycles := atomic.LoadUint32(&cycleCount)

	SendResponse("pwm_state", func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, uint32(ch))
		protocol.EncodeVLQUint(output, ready)
		protocol.EncodeVLQUint(output, width)
		protocol.EncodeVLQUint(output, matches)
		protocol.EncodeVLQUint(output, cycles)
	})
	return nil
}
