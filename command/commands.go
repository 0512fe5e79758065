package command

import (
	"errors"
	"sync/atomic"

	"sn32hal/hal"
	"sn32hal/protocol"
	"sn32hal/x/mathx"
)

// ErrShutdown is returned by output commands after emergency_stop until
// the next reset.
var ErrShutdown = errors.New("command: firmware is shut down")

// identifyChunkMax keeps identify_response inside one frame.
const identifyChunkMax = 40

var (
	transport *protocol.Transport

	shutdown     uint32 // atomic bool
	resetPending uint32 // atomic bool
	resetHandler func()
)

// SetTransport sets the transport responses are sent on.
func SetTransport(t *protocol.Transport) {
	transport = t
}

// SetResetHandler sets the platform reset, run by CheckPendingReset.
func SetResetHandler(handler func()) {
	resetHandler = handler
}

// InitCoreCommands registers the bootstrap and system commands. The host
// relies on identify_response being id 0 and identify id 1, so this must
// run before any other registration.
func InitCoreCommands() {
	RegisterResponse("identify_response", "offset=%u data=%*s")
	RegisterCommand("identify", "offset=%u count=%c", handleIdentify)

	RegisterCommand("get_core_clock", "", handleGetCoreClock)
	RegisterCommand("emergency_stop", "", handleEmergencyStop)
	RegisterCommand("reset", "", handleReset)

	RegisterResponse("core_clock", "freq=%u")
	RegisterResponse("shutdown", "reason=%*s")

	RegisterConstantString("MCU", "sn32f24xb")
	RegisterConstant("CLOCK_FREQ", hal.CoreClock)
}

// SendResponse sends the registered response name. Sending a response that
// was never registered is a programming error and panics.
func SendResponse(name string, args func(output protocol.OutputBuffer)) {
	if transport == nil {
		return
	}
	cmd, ok := globalRegistry.Lookup(name)
	if !ok || !cmd.IsResponse() {
		panic("response not registered: " + name)
	}
	transport.SendCommand(cmd.ID, args)
}

func handleIdentify(data *[]byte) error {
	offset, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	count, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	count = mathx.Clamp(count, 0, identifyChunkMax)

	chunk := globalDictionary.Chunk(offset, uint8(count))
	SendResponse("identify_response", func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, offset)
		protocol.EncodeVLQBytes(output, chunk)
	})
	return nil
}

func handleGetCoreClock(_ *[]byte) error {
	freq := hal.CoreClockHz()
	SendResponse("core_clock", func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, freq)
	})
	return nil
}

func handleEmergencyStop(_ *[]byte) error {
	Shutdown("emergency_stop")
	return nil
}

// Shutdown stops every output, latches the shutdown state and tells the
// host why. Output commands fail with ErrShutdown until reset.
func Shutdown(reason string) {
	atomic.StoreUint32(&shutdown, 1)
	hal.PWMD1.Stop()
	hal.DebugPrintln("[SHUTDOWN] " + reason)
	SendResponse("shutdown", func(output protocol.OutputBuffer) {
		protocol.EncodeVLQString(output, reason)
	})
}

// IsShutdown reports whether Shutdown ran since the last reset.
func IsShutdown() bool {
	return atomic.LoadUint32(&shutdown) != 0
}

// handleReset only flags the reset: the ACK must reach the host first.
func handleReset(_ *[]byte) error {
	atomic.StoreUint32(&resetPending, 1)
	return nil
}

// CheckPendingReset runs a requested reset. Call it from the main loop
// after the output queue has been drained.
func CheckPendingReset() {
	if atomic.SwapUint32(&resetPending, 0) == 0 {
		return
	}
	ResetState()
	if resetHandler != nil {
		resetHandler()
	}
}

// ResetState stops the PWM driver and clears the shutdown latch and the
// staged PWM configuration.
func ResetState() {
	hal.PWMD1.Stop()
	resetPWMState()
	atomic.StoreUint32(&shutdown, 0)
}
