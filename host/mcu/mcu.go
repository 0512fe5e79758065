//go:build !tinygo

// Package mcu is the host side of the SN32 command link: it downloads the
// firmware dictionary and turns command lines into messages and messages
// back into named responses.
package mcu

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"sn32hal/host/serial"
	"sn32hal/protocol"
)

var (
	ErrNoDictionary   = errors.New("mcu: dictionary not loaded")
	ErrUnknownCommand = errors.New("mcu: unknown command")
	ErrUnknownMessage = errors.New("mcu: unknown response id")
	ErrBadIdentify    = errors.New("mcu: malformed identify response")
)

// identifyChunk is the dictionary chunk size requested per identify.
const identifyChunk = 40

// Bounds the dictionary download; the firmware's is well under this.
const maxDictionarySize = 64 * 1024

// Dictionary is the parsed firmware dictionary.
type Dictionary struct {
	Version       string                    `json:"version"`
	BuildVersions string                    `json:"build_versions"`
	Config        map[string]string         `json:"config"`
	Commands      map[string]int            `json:"commands"`
	Responses     map[string]int            `json:"responses"`
	Enumerations  map[string]map[string]int `json:"enumerations,omitempty"`
}

// ParseDictionary inflates and decodes a downloaded dictionary.
func ParseDictionary(compressed []byte) (*Dictionary, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("inflate dictionary: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate dictionary: %w", err)
	}
	dict := &Dictionary{}
	if err := json.Unmarshal(raw, dict); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	return dict, nil
}

// MCU is a connection to one SN32 board.
type MCU struct {
	transport *protocol.HostTransport
	port      io.ReadWriteCloser

	// Timeout bounds every ACK and response wait.
	Timeout time.Duration

	dict      *Dictionary
	commands  map[string]*MessageFormat
	responses map[uint16]*MessageFormat
}

// New wraps an already open port. The transport starts reading at once.
func New(port io.ReadWriteCloser) *MCU {
	return &MCU{
		transport: protocol.NewHostTransport(port),
		port:      port,
		Timeout:   protocol.DefaultTimeout,
	}
}

// Connect opens the serial device described by cfg.
func Connect(cfg *serial.Config) (*MCU, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, fmt.Errorf("flush %s: %w", cfg.Device, err)
	}
	return New(port), nil
}

// Close stops the reader and closes the port.
func (m *MCU) Close() error {
	return m.transport.Close()
}

// Dictionary returns the loaded dictionary, nil before RetrieveDictionary.
func (m *MCU) Dictionary() *Dictionary { return m.dict }

// RetrieveDictionary downloads the dictionary with identify and indexes its
// message formats.
func (m *MCU) RetrieveDictionary() error {
	var compressed []byte
	for {
		chunk, err := m.identify(uint32(len(compressed)))
		if err != nil {
			return fmt.Errorf("identify at %d: %w", len(compressed), err)
		}
		if len(chunk) == 0 {
			break
		}
		compressed = append(compressed, chunk...)
		if len(compressed) > maxDictionarySize {
			return fmt.Errorf("dictionary exceeds %d bytes", maxDictionarySize)
		}
	}

	dict, err := ParseDictionary(compressed)
	if err != nil {
		return err
	}
	return m.LoadDictionary(dict)
}

// LoadDictionary installs dict without talking to the board.
func (m *MCU) LoadDictionary(dict *Dictionary) error {
	commands := make(map[string]*MessageFormat, len(dict.Commands))
	for sig, id := range dict.Commands {
		mf, err := ParseFormat(uint16(id), sig)
		if err != nil {
			return err
		}
		commands[mf.Name] = mf
	}
	responses := make(map[uint16]*MessageFormat, len(dict.Responses))
	for sig, id := range dict.Responses {
		mf, err := ParseFormat(uint16(id), sig)
		if err != nil {
			return err
		}
		responses[mf.ID] = mf
	}

	m.dict = dict
	m.commands = commands
	m.responses = responses
	return nil
}

// identify fetches one dictionary chunk. identify and identify_response
// have fixed ids so they work before the dictionary is known.
func (m *MCU) identify(offset uint32) ([]byte, error) {
	err := m.transport.SendCommandWithTimeout(1, func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, offset)
		protocol.EncodeVLQUint(output, identifyChunk)
	}, m.Timeout)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(m.Timeout)
	for {
		msg, err := m.transport.ReceiveResponse(time.Until(deadline))
		if err != nil {
			return nil, err
		}
		payload := msg.Payload
		id, err := protocol.DecodeVLQUint(&payload)
		if err != nil || id != 0 {
			continue // not ours
		}
		got, err := protocol.DecodeVLQUint(&payload)
		if err != nil {
			return nil, ErrBadIdentify
		}
		if got != offset {
			continue // late answer to an earlier request
		}
		data, err := protocol.DecodeVLQBytes(&payload)
		if err != nil {
			return nil, ErrBadIdentify
		}
		return append([]byte(nil), data...), nil
	}
}

// Command returns the format of the named command.
func (m *MCU) Command(name string) (*MessageFormat, error) {
	if m.dict == nil {
		return nil, ErrNoDictionary
	}
	mf, ok := m.commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return mf, nil
}

// CommandNames lists the dictionary's commands alphabetically.
func (m *MCU) CommandNames() []string {
	names := make([]string, 0, len(m.commands))
	for name := range m.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// lookupEnum resolves value through the enumeration named after param, or
// one whose name ends in "_"+param (pwm_mode serves mode=).
func (m *MCU) lookupEnum(param, value string) (int64, bool) {
	if m.dict == nil {
		return 0, false
	}
	for name, members := range m.dict.Enumerations {
		if name != param && !strings.HasSuffix(name, "_"+param) {
			continue
		}
		if v, ok := members[value]; ok {
			return int64(v), true
		}
	}
	return 0, false
}

// Encode builds the payload of a named command.
func (m *MCU) Encode(name string, args map[string]string) ([]byte, error) {
	mf, err := m.Command(name)
	if err != nil {
		return nil, err
	}
	return mf.Encode(args, m.lookupEnum)
}

// Send encodes and sends one command and waits for its ACK.
func (m *MCU) Send(name string, args map[string]string) error {
	payload, err := m.Encode(name, args)
	if err != nil {
		return err
	}
	return m.transport.SendPayload(payload, m.Timeout)
}

// SendLine parses and sends a shell line.
func (m *MCU) SendLine(line string) error {
	name, args, err := ParseCommandLine(line)
	if err != nil {
		return err
	}
	return m.Send(name, args)
}

// Decode turns a received payload into a named response.
func (m *MCU) Decode(payload []byte) (*Response, error) {
	if m.dict == nil {
		return nil, ErrNoDictionary
	}
	id, err := protocol.DecodeVLQUint(&payload)
	if err != nil {
		return nil, err
	}
	mf, ok := m.responses[uint16(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessage, id)
	}
	return mf.Decode(payload)
}

// Receive waits for the next response.
func (m *MCU) Receive(timeout time.Duration) (*Response, error) {
	msg, err := m.transport.ReceiveResponse(timeout)
	if err != nil {
		return nil, err
	}
	return m.Decode(msg.Payload)
}

// Query sends line and waits for a response called want. Other responses
// arriving meanwhile are dropped.
func (m *MCU) Query(line, want string) (*Response, error) {
	if err := m.SendLine(line); err != nil {
		return nil, err
	}
	deadline := time.Now().Add(m.Timeout)
	for {
		resp, err := m.Receive(time.Until(deadline))
		if err != nil {
			return nil, fmt.Errorf("waiting for %s: %w", want, err)
		}
		if resp.Name() == want {
			return resp, nil
		}
	}
}

// Reset sends the reset command and rewinds the host sequence, since the
// board restarts its own.
func (m *MCU) Reset() error {
	if err := m.Send("reset", nil); err != nil {
		return err
	}
	m.transport.Reset()
	return nil
}

// PrintDictionary writes a summary of the dictionary to w.
func (m *MCU) PrintDictionary(w io.Writer) {
	if m.dict == nil {
		fmt.Fprintln(w, "no dictionary loaded")
		return
	}
	d := m.dict
	fmt.Fprintf(w, "version: %s\nbuild:   %s\n", d.Version, d.BuildVersions)

	fmt.Fprintln(w, "\nconfig:")
	for _, k := range sortedKeys(d.Config) {
		fmt.Fprintf(w, "  %s = %s\n", k, d.Config[k])
	}

	fmt.Fprintf(w, "\ncommands (%d):\n", len(d.Commands))
	printIDs(w, d.Commands)
	fmt.Fprintf(w, "\nresponses (%d):\n", len(d.Responses))
	printIDs(w, d.Responses)

	if len(d.Enumerations) > 0 {
		fmt.Fprintln(w, "\nenumerations:")
		for _, name := range sortedKeys(d.Enumerations) {
			members := d.Enumerations[name]
			fmt.Fprintf(w, "  %s:", name)
			for _, k := range sortedKeys(members) {
				fmt.Fprintf(w, " %s=%d", k, members[k])
			}
			fmt.Fprintln(w)
		}
	}
}

func printIDs(w io.Writer, ids map[string]int) {
	sigs := sortedKeys(ids)
	slices.SortFunc(sigs, func(a, b string) int { return ids[a] - ids[b] })
	for _, sig := range sigs {
		fmt.Fprintf(w, "  [%2d] %s\n", ids[sig], sig)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
