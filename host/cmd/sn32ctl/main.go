// sn32ctl talks to SN32F24xB firmware over its command UART.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sn32hal/host/mcu"
	"sn32hal/host/serial"
	"sn32hal/protocol"
)

var (
	rootOpts = struct {
		device  string
		baud    int
		timeout time.Duration
	}{}

	rootCmd = &cobra.Command{
		Use:           "sn32ctl",
		Short:         "Control SN32F24xB firmware over its serial link",
		Long:          "sn32ctl downloads the firmware dictionary and sends commands such as pwm_start or get_core_clock.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rootOpts.device, "device", "d", "/dev/ttyUSB0", "serial device")
	flags.IntVarP(&rootOpts.baud, "baud", "b", serial.DefaultBaud, "baud rate")
	flags.DurationVarP(&rootOpts.timeout, "timeout", "t", protocol.DefaultTimeout, "ACK and response timeout")

	rootCmd.AddCommand(dictCmd, sendCmd, shellCmd)
}

// connect opens the board and downloads its dictionary.
func connect() (*mcu.MCU, error) {
	cfg := serial.DefaultConfig(rootOpts.device)
	cfg.Baud = rootOpts.baud

	m, err := mcu.Connect(cfg)
	if err != nil {
		return nil, err
	}
	m.Timeout = rootOpts.timeout

	if err := m.RetrieveDictionary(); err != nil {
		m.Close()
		return nil, fmt.Errorf("retrieve dictionary: %w", err)
	}
	return m, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
