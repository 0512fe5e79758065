package command

import (
	"sync"

	"golang.org/x/exp/slices"

	"sn32hal/protocol"
	"sn32hal/tinycompress"
)

// Dictionary describes the firmware to the host: version, constants,
// enumerations and every command and response with its id. The host
// downloads it compressed, in chunks, through identify.
type Dictionary struct {
	mu           sync.RWMutex
	registry     *Registry
	version      string
	buildVersion string
	constants    map[string]string
	enumerations map[string][]string // value name by index
	cached       []byte              // compressed, nil until Build
}

var globalDictionary = NewDictionary(globalRegistry)

func NewDictionary(r *Registry) *Dictionary {
	return &Dictionary{
		registry:     r,
		version:      protocol.Version,
		buildVersion: "tinygo",
		constants:    make(map[string]string),
		enumerations: make(map[string][]string),
	}
}

// RegisterConstant publishes a numeric constant in the global dictionary.
func RegisterConstant(name string, value uint32) {
	globalDictionary.AddConstant(name, utoa(value))
}

// RegisterConstantString publishes a string constant in the global
// dictionary.
func RegisterConstantString(name, value string) {
	globalDictionary.AddConstant(name, value)
}

// RegisterEnumeration publishes an enumeration; values[i] is encoded as i.
func RegisterEnumeration(name string, values []string) {
	globalDictionary.AddEnumeration(name, values)
}

// GlobalDictionary returns the dictionary the firmware serves.
func GlobalDictionary() *Dictionary {
	return globalDictionary
}

func (d *Dictionary) AddConstant(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.constants[name] = value
	d.cached = nil
}

func (d *Dictionary) AddEnumeration(name string, values []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enumerations[name] = slices.Clone(values)
	d.cached = nil
}

// SetBuildVersion records the toolchain the firmware was built with.
func (d *Dictionary) SetBuildVersion(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buildVersion = v
	d.cached = nil
}

// Build renders and compresses the dictionary. Call it once every command
// is registered; later registrations invalidate the cache.
func (d *Dictionary) Build() []byte {
	commands := d.registry.All()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.cached = tinycompress.Compress(d.renderLocked(commands))
	return d.cached
}

// JSON renders the uncompressed dictionary.
func (d *Dictionary) JSON() []byte {
	commands := d.registry.All()

	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.renderLocked(commands)
}

func (d *Dictionary) renderLocked(commands []*Command) []byte {
	out := make([]byte, 0, 1024)
	out = append(out, `{"version":`...)
	out = appendJSONString(out, d.version)
	out = append(out, `,"build_versions":`...)
	out = appendJSONString(out, d.buildVersion)

	out = append(out, `,"config":{`...)
	names := sortedKeys(d.constants)
	for i, name := range names {
		if i > 0 {
			out = append(out, ',')
		}
		out = appendJSONString(out, name)
		out = append(out, ':')
		out = appendJSONString(out, d.constants[name])
	}

	out = append(out, `},"commands":{`...)
	out = appendIDs(out, commands, false)
	out = append(out, `},"responses":{`...)
	out = appendIDs(out, commands, true)
	out = append(out, '}')

	if len(d.enumerations) > 0 {
		out = append(out, `,"enumerations":{`...)
		names = sortedKeys(d.enumerations)
		for i, name := range names {
			if i > 0 {
				out = append(out, ',')
			}
			out = appendJSONString(out, name)
			out = append(out, ":{"...)
			first := true
			for idx, value := range d.enumerations[name] {
				if value == "" {
					continue
				}
				if !first {
					out = append(out, ',')
				}
				out = appendJSONString(out, value)
				out = append(out, ':')
				out = append(out, utoa(uint32(idx))...)
				first = false
			}
			out = append(out, '}')
		}
		out = append(out, '}')
	}

	return append(out, '}')
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// appendIDs writes "signature":id pairs in id order.
func appendIDs(out []byte, commands []*Command, responses bool) []byte {
	first := true
	for _, cmd := range commands {
		if cmd.IsResponse() != responses {
			continue
		}
		if !first {
			out = append(out, ',')
		}
		out = appendJSONString(out, cmd.Signature())
		out = append(out, ':')
		out = append(out, utoa(uint32(cmd.ID))...)
		first = false
	}
	return out
}

// Chunk returns up to count bytes of the compressed dictionary starting at
// offset. An offset at or past the end yields an empty chunk, which tells
// the host the transfer is complete.
func (d *Dictionary) Chunk(offset uint32, count uint8) []byte {
	d.mu.RLock()
	data := d.cached
	d.mu.RUnlock()
	if data == nil {
		data = d.Build()
	}

	if offset >= uint32(len(data)) {
		return nil
	}
	end := offset + uint32(count)
	if end > uint32(len(data)) {
		end = uint32(len(data))
	}
	return data[offset:end]
}
