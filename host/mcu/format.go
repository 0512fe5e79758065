package mcu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sn32hal/protocol"
)

var (
	ErrUnknownType    = errors.New("mcu: unknown parameter type")
	ErrMissingArg     = errors.New("mcu: missing argument")
	ErrUnexpectedArg  = errors.New("mcu: unexpected argument")
	ErrTrailingData   = errors.New("mcu: trailing bytes after message")
	ErrArgOutOfRange  = errors.New("mcu: argument out of range")
	ErrMalformedParam = errors.New("mcu: malformed parameter")
)

// ParamType is the wire type of one message parameter.
type ParamType uint8

const (
	ParamUint32 ParamType = iota // %u
	ParamInt32                   // %i
	ParamUint16                  // %hu
	ParamByte                    // %c
	ParamBuffer                  // %*s, %.*s
)

var paramTypes = map[string]ParamType{
	"%u":   ParamUint32,
	"%i":   ParamInt32,
	"%hu":  ParamUint16,
	"%c":   ParamByte,
	"%*s":  ParamBuffer,
	"%.*s": ParamBuffer,
}

// Param is one name=%type pair of a message format.
type Param struct {
	Name string
	Type ParamType
}

// MessageFormat is a dictionary entry: id, name and ordered parameters.
type MessageFormat struct {
	ID     uint16
	Name   string
	Params []Param
}

// ParseFormat splits a dictionary signature such as
// "pwm_start frequency=%u period=%u".
func ParseFormat(id uint16, signature string) (*MessageFormat, error) {
	fields := strings.Fields(signature)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty signature", ErrMalformedParam)
	}
	mf := &MessageFormat{ID: id, Name: fields[0]}
	for _, f := range fields[1:] {
		name, typ, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q in %q", ErrMalformedParam, f, signature)
		}
		pt, ok := paramTypes[typ]
		if !ok {
			return nil, fmt.Errorf("%w: %q in %q", ErrUnknownType, typ, signature)
		}
		mf.Params = append(mf.Params, Param{Name: name, Type: pt})
	}
	return mf, nil
}

// Signature renders mf back into dictionary form.
func (mf *MessageFormat) Signature() string {
	var b strings.Builder
	b.WriteString(mf.Name)
	for _, p := range mf.Params {
		b.WriteByte(' ')
		b.WriteString(p.Name)
		b.WriteByte('=')
		switch p.Type {
		case ParamUint32:
			b.WriteString("%u")
		case ParamInt32:
			b.WriteString("%i")
		case ParamUint16:
			b.WriteString("%hu")
		case ParamByte:
			b.WriteString("%c")
		case ParamBuffer:
			b.WriteString("%*s")
		}
	}
	return b.String()
}

// EnumLookup resolves a symbolic argument value. ok is false when value
// is not an enumeration member for param.
type EnumLookup func(param, value string) (v int64, ok bool)

// Encode builds the payload for mf: the id followed by every parameter in
// format order. args maps parameter name to its textual value.
func (mf *MessageFormat) Encode(args map[string]string, enum EnumLookup) ([]byte, error) {
	for name := range args {
		if !mf.hasParam(name) {
			return nil, fmt.Errorf("%s: %w %q", mf.Name, ErrUnexpectedArg, name)
		}
	}

	out := protocol.AppendVLQInt(nil, int32(mf.ID))
	for _, p := range mf.Params {
		raw, ok := args[p.Name]
		if !ok {
			return nil, fmt.Errorf("%s: %w %q", mf.Name, ErrMissingArg, p.Name)
		}
		if p.Type == ParamBuffer {
			if len(raw) > protocol.MessagePayloadMax {
				return nil, fmt.Errorf("%s %s: %w", mf.Name, p.Name, ErrArgOutOfRange)
			}
			out = protocol.AppendVLQInt(out, int32(len(raw)))
			out = append(out, raw...)
			continue
		}
		v, err := parseInt(p, raw, enum)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", mf.Name, p.Name, err)
		}
		out = protocol.AppendVLQInt(out, int32(v))
	}
	return out, nil
}

func (mf *MessageFormat) hasParam(name string) bool {
	for _, p := range mf.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}

func parseInt(p Param, raw string, enum EnumLookup) (int64, error) {
	v, err := strconv.ParseInt(raw, 0, 64)
	if err != nil {
		ev, ok := int64(0), false
		if enum != nil {
			ev, ok = enum(p.Name, raw)
		}
		if !ok {
			return 0, err
		}
		v = ev
	}

	var lo, hi int64
	switch p.Type {
	case ParamUint32:
		lo, hi = 0, 1<<32-1
	case ParamInt32:
		lo, hi = -1<<31, 1<<31-1
	case ParamUint16:
		lo, hi = 0, 1<<16-1
	case ParamByte:
		lo, hi = 0, 1<<8-1
	}
	if v < lo || v > hi {
		return 0, ErrArgOutOfRange
	}
	return v, nil
}

// Response is a decoded MCU message.
type Response struct {
	Format *MessageFormat
	Values map[string]int64
	Bytes  map[string][]byte
}

// Name is the response name from the dictionary.
func (r *Response) Name() string { return r.Format.Name }

// Uint returns an integer parameter, or 0 when absent.
func (r *Response) Uint(name string) uint32 { return uint32(r.Values[name]) }

// String renders r as "name a=1 b=2" in format order.
func (r *Response) String() string {
	var b strings.Builder
	b.WriteString(r.Format.Name)
	for _, p := range r.Format.Params {
		b.WriteByte(' ')
		b.WriteString(p.Name)
		b.WriteByte('=')
		if p.Type == ParamBuffer {
			b.WriteString(strconv.Quote(string(r.Bytes[p.Name])))
		} else {
			b.WriteString(strconv.FormatInt(r.Values[p.Name], 10))
		}
	}
	return b.String()
}

// Decode parses the parameters of mf from data, which follows the id.
func (mf *MessageFormat) Decode(data []byte) (*Response, error) {
	r := &Response{
		Format: mf,
		Values: make(map[string]int64, len(mf.Params)),
		Bytes:  make(map[string][]byte),
	}
	for _, p := range mf.Params {
		switch p.Type {
		case ParamBuffer:
			b, err := protocol.DecodeVLQBytes(&data)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", mf.Name, p.Name, err)
			}
			r.Bytes[p.Name] = append([]byte(nil), b...)
		case ParamInt32:
			v, err := protocol.DecodeVLQInt(&data)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", mf.Name, p.Name, err)
			}
			r.Values[p.Name] = int64(v)
		default:
			v, err := protocol.DecodeVLQUint(&data)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", mf.Name, p.Name, err)
			}
			r.Values[p.Name] = int64(v)
		}
	}
	if len(data) != 0 {
		return nil, fmt.Errorf("%s: %w (%d)", mf.Name, ErrTrailingData, len(data))
	}
	return r, nil
}
