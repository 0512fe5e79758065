// Package serial opens the link to the SN32 firmware's command UART.
package serial

import (
	"errors"
	"io"
	"time"
)

// ErrNoDevice is returned by Open when Config.Device is empty.
var ErrNoDevice = errors.New("serial: no device given")

// Port is the host end of the command link. Tests substitute a net.Pipe.
type Port interface {
	io.ReadWriteCloser

	// Flush discards data received but not yet read.
	Flush() error
}

// Config describes the UART. The firmware runs USART0 at 115200 8N1.
type Config struct {
	Device      string        // e.g. /dev/ttyUSB0 or COM3
	Baud        int           // bits per second
	ReadTimeout time.Duration // per read; 0 blocks
}

// DefaultBaud matches the firmware's UART setup.
const DefaultBaud = 115200

// DefaultReadTimeout keeps the host reader responsive to Close.
const DefaultReadTimeout = 100 * time.Millisecond

// DefaultConfig returns the firmware's line settings for device.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: DefaultReadTimeout,
	}
}
