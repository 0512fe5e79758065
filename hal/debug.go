package hal

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event is one entry of the post-mortem event ring.
type Event struct {
	Kind   uint8  // Event type code
	Arg    uint8  // Channel or clock source
	Value1 uint32 // Context-dependent value
	Value2 uint32 // Context-dependent value
}

// Event type codes
const (
	EvtPWMStart    = 1 // Value1 = prescaler, Value2 = period
	EvtPWMStop     = 2
	EvtPWMServe    = 3 // Value1 = RIS snapshot, Value2 = enabled channels
	EvtPWMChannel  = 4 // Arg = channel, Value1 = width (0 when disabled)
	EvtClockSwitch = 5 // Arg = source, Value1 = PLLCTRL, Value2 = AHB code
	EvtAssert      = 6
)

// EventRingSize is the number of events kept for post-mortem dumps.
const EventRingSize = 32

var (
	// debugPrintln is set by platform code
	debugPrintln DebugWriter = func(s string) {}

	// Off by default: the console is shared with the protocol.
	debugEnabled bool

	eventRing [EventRingSize]Event
	eventHead uint8
	eventFull bool
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes msg through the platform writer when debug is enabled
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent stores an event in the ring. Safe to call from interrupt
// context: no allocation, no output.
func RecordEvent(kind, arg uint8, value1, value2 uint32) {
	idx := eventHead
	eventRing[idx] = Event{Kind: kind, Arg: arg, Value1: value1, Value2: value2}
	eventHead = (idx + 1) % EventRingSize
	if eventHead == 0 {
		eventFull = true
	}
}

// Events returns the recorded events, oldest first.
func Events() []Event {
	if !eventFull {
		out := make([]Event, eventHead)
		copy(out, eventRing[:eventHead])
		return out
	}
	out := make([]Event, 0, EventRingSize)
	out = append(out, eventRing[eventHead:]...)
	out = append(out, eventRing[:eventHead]...)
	return out
}

// ClearEvents empties the ring.
func ClearEvents() {
	eventRing = [EventRingSize]Event{}
	eventHead = 0
	eventFull = false
}

func eventName(kind uint8) string {
	switch kind {
	case EvtPWMStart:
		return "PWM_START"
	case EvtPWMStop:
		return "PWM_STOP"
	case EvtPWMServe:
		return "PWM_IRQ"
	case EvtPWMChannel:
		return "PWM_CH"
	case EvtClockSwitch:
		return "CLK_SWITCH"
	case EvtAssert:
		return "ASSERT!"
	}
	return "UNKNOWN"
}

// DumpEvents writes the ring through the debug writer regardless of the
// enable flag. Call it after a shutdown, not from interrupt context.
func DumpEvents() {
	if debugPrintln == nil {
		return
	}
	debugPrintln("[EVENTS] === Event Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln("[EVENTS] " + eventName(evt.Kind) +
			" arg=" + utoa(uint32(evt.Arg)) +
			" v1=" + hex32(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[EVENTS] === End Dump ===")
}
