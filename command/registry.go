// Package command is the firmware's message layer: a registry of named
// commands and responses with stable ids, the data dictionary the host
// downloads to learn them, and the handlers that drive the HAL.
package command

import (
	"errors"
	"sync"
)

var ErrUnknownCommand = errors.New("command: unknown command id")

// Handler decodes its own arguments from data.
type Handler func(data *[]byte) error

// Command is one dictionary entry. Responses (MCU to host) have a nil
// Handler.
type Command struct {
	ID      uint16
	Name    string
	Format  string // argument list, e.g. "channel=%c width=%u"
	Handler Handler
}

// Signature is the dictionary key: the name followed by the format.
func (c *Command) Signature() string {
	if c.Format == "" {
		return c.Name
	}
	return c.Name + " " + c.Format
}

// IsResponse reports whether c flows from the MCU to the host.
func (c *Command) IsResponse() bool { return c.Handler == nil }

// Registry assigns ids in registration order.
type Registry struct {
	mu       sync.RWMutex
	commands []*Command
	byName   map[string]*Command
}

var globalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Command)}
}

// Register adds a command and returns its id. Registering a name again
// returns the existing id.
func (r *Registry) Register(name, format string, handler Handler) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cmd, ok := r.byName[name]; ok {
		return cmd.ID
	}
	cmd := &Command{
		ID:      uint16(len(r.commands)),
		Name:    name,
		Format:  format,
		Handler: handler,
	}
	r.commands = append(r.commands, cmd)
	r.byName[name] = cmd
	return cmd.ID
}

// Get returns the command with id.
func (r *Registry) Get(id uint16) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.commands) {
		return nil, false
	}
	return r.commands[id], true
}

// Lookup returns the command called name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[name]
	return cmd, ok
}

// All returns the commands in id order.
func (r *Registry) All() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Command, len(r.commands))
	copy(out, r.commands)
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch runs the handler of id. Responses cannot be dispatched.
func (r *Registry) Dispatch(id uint16, data *[]byte) error {
	cmd, ok := r.Get(id)
	if !ok || cmd.Handler == nil {
		return ErrUnknownCommand
	}
	return cmd.Handler(data)
}

// RegisterCommand adds a host-to-MCU command to the global registry.
func RegisterCommand(name, format string, handler Handler) uint16 {
	return globalRegistry.Register(name, format, handler)
}

// RegisterResponse adds an MCU-to-host message to the global registry.
func RegisterResponse(name, format string) uint16 {
	return globalRegistry.Register(name, format, nil)
}

// Dispatch runs a command from the global registry. It has the shape of
// protocol.DispatchFunc.
func Dispatch(id uint16, data *[]byte) error {
	return globalRegistry.Dispatch(id, data)
}

// GlobalRegistry returns the registry the firmware serves.
func GlobalRegistry() *Registry {
	return globalRegistry
}
