package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sn32hal/host/mcu"
)

var (
	sendOpts = struct {
		listen time.Duration
	}{}

	sendCmd = &cobra.Command{
		Use:   "send <command> [name=value ...]",
		Short: "Send one command and print the responses it triggers",
		Example: `  sn32ctl send pwm_set_mode channel=3 mode=active_high
  sn32ctl send pwm_start frequency=1000000 period=1000
  sn32ctl send pwm_query channel=3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := connect()
			if err != nil {
				return err
			}
			defer m.Close()

			return sendAndPrint(m, strings.Join(args, " "), sendOpts.listen, cmd.OutOrStdout())
		},
	}
)

func init() {
	sendCmd.Flags().DurationVarP(&sendOpts.listen, "listen", "l", 200*time.Millisecond,
		"how long to print responses after the ACK")
}

// sendAndPrint sends line and prints every response arriving within listen.
func sendAndPrint(m *mcu.MCU, line string, listen time.Duration, w io.Writer) error {
	if err := m.SendLine(line); err != nil {
		return err
	}
	deadline := time.Now().Add(listen)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return nil
		}
		resp, err := m.Receive(left)
		if err != nil {
			// Quiet once the listen window closes
			return nil
		}
		fmt.Fprintln(w, resp)
	}
}
