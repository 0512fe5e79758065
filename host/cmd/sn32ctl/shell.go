package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sn32hal/host/mcu"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive command prompt",
	Long: `Reads command lines such as "pwm_enable_channel channel=3 width=250"
and prints the responses. Besides firmware commands it understands
help, dict and quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := connect()
		if err != nil {
			return err
		}
		defer m.Close()

		return runShell(m, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func runShell(m *mcu.MCU, in io.Reader, out, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			printHelp(m, out)
			continue
		case "dict":
			m.PrintDictionary(out)
			continue
		}

		err := sendAndPrint(m, line, sendOpts.listen, out)
		if errors.Is(err, mcu.ErrEmptyLine) {
			continue
		}
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
	}
}

func printHelp(m *mcu.MCU, w io.Writer) {
	fmt.Fprintln(w, "Built-ins: help, dict, quit")
	fmt.Fprintln(w, "Firmware commands:")
	for _, name := range m.CommandNames() {
		mf, _ := m.Command(name)
		fmt.Fprintf(w, "  %s\n", mf.Signature())
	}
}
