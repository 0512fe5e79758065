//go:build tinygo && sn32f24xb

// Firmware for SN32F24xB boards: brings up the PLL clock tree and serves
// the PWM command set over the board's serial console.
package main

import (
	"device/arm"
	"machine"
	"runtime"
	"time"

	"sn32hal/command"
	"sn32hal/hal"
	"sn32hal/protocol"
)

var (
	inputBuffer  *protocol.FifoBuffer
	outputBuffer *protocol.QueueOutput
	transport    *protocol.Transport

	rxErrors uint32
	panics   uint32
)

func main() {
	hal.SetDebugWriter(debugWrite)

	// An invalid board clock leaves SYSCLK on the reset IHRC
	if err := hal.BoardClock.Validate(); err != nil {
		hal.DebugPrintln("[CLOCK] " + err.Error())
	} else {
		hal.InitClockTree(&hal.BoardClock)
	}
	hal.CoreClockHz()
	hal.IRQInit()
	hal.PWMInit()

	command.InitCoreCommands()
	command.InitPWMCommands()
	command.GlobalDictionary().SetBuildVersion(runtime.Version())
	command.GlobalDictionary().Build()

	inputBuffer = protocol.NewFifoBuffer(256)
	outputBuffer = protocol.NewQueueOutput(256)

	transport = protocol.NewTransport(outputBuffer, command.Dispatch)
	transport.SetResetCallback(func() {
		inputBuffer.Reset()
		outputBuffer.Reset()
		command.ResetState()
	})
	transport.SetFlushCallback(writeSerial)
	transport.SetErrorCallback(func(err error) {
		hal.DebugPrintln("[PROTO] " + err.Error())
	})
	command.SetTransport(transport)
	command.SetResetHandler(arm.SystemReset)

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					panics++
					command.Shutdown("panic")
					hal.DumpEvents()
					inputBuffer.Reset()
					outputBuffer.Reset()
				}
			}()

			readSerial()
			if inputBuffer.Available() > 0 {
				transport.Receive(inputBuffer)
			}
			writeSerial()

			// The ACK is on the wire now
			command.CheckPendingReset()
		}()

		time.Sleep(50 * time.Microsecond)
	}
}

// readSerial moves everything the UART has buffered into inputBuffer.
func readSerial() {
	for machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			rxErrors++
			return
		}
		if inputBuffer.Write([]byte{b}) == 0 {
			// Full: let the transport drain it first
			rxErrors++
			return
		}
	}
}

func writeSerial() {
	if outputBuffer.Len() == 0 {
		return
	}
	machine.Serial.Write(outputBuffer.Bytes())
	outputBuffer.Reset()
}

// debugWrite shares the console with the protocol, so it is only enabled
// on bench builds without a host attached.
func debugWrite(s string) {
	machine.Serial.Write([]byte(s))
	machine.Serial.Write([]byte("\r\n"))
}
