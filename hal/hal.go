// Package hal is the SN32F24xB hardware abstraction layer: clock tree
// bring-up, the CT16 interrupt vectors and the CT16B1 PWM driver.
//
// Drivers are static singletons bound to their register blocks at build
// time. Host builds run against the in-memory register model in
// device/sn32 so the drivers can be tested without silicon.
package hal

// assert halts on a violated configuration invariant. These are
// programming errors, not runtime conditions.
func assert(cond bool, msg string) {
	if !cond {
		RecordEvent(EvtAssert, 0, 0, 0)
		panic(msg)
	}
}
