package protocol

import (
	"bytes"
	"math"
	"testing"
)

func TestVLQEncoding(t *testing.T) {
	tests := []struct {
		v    int32
		want []byte
	}{
		{0, []byte{0x00}},
		{95, []byte{0x5F}},
		{96, []byte{0x80, 0x60}},
		{-32, []byte{0x60}},
		{-33, []byte{0xFF, 0x5F}},
		{-1, []byte{0x7F}},
		{12287, []byte{0xDF, 0x7F}},
		{12288, []byte{0x80, 0xE0, 0x00}},
		{-4096, []byte{0xE0, 0x00}},
		{-4097, []byte{0xFF, 0xDF, 0x7F}},
		{1000000, []byte{0xBD, 0x84, 0x40}},
		{math.MaxInt32, []byte{0x87, 0xFF, 0xFF, 0xFF, 0x7F}},
		{math.MinInt32, []byte{0xF8, 0x80, 0x80, 0x80, 0x00}},
	}

	for _, tt := range tests {
		got := AppendVLQInt(nil, tt.v)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("AppendVLQInt(%d) = % x, want % x", tt.v, got, tt.want)
		}

		data := got
		decoded, err := DecodeVLQInt(&data)
		if err != nil {
			t.Errorf("DecodeVLQInt(% x): %v", got, err)
			continue
		}
		if decoded != tt.v {
			t.Errorf("round trip %d: got %d", tt.v, decoded)
		}
		if len(data) != 0 {
			t.Errorf("round trip %d: %d bytes left", tt.v, len(data))
		}
	}
}

func TestVLQUint(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 65535, 24000000, 0xFFFFFFFF} {
		output := NewScratchOutput()
		EncodeVLQUint(output, v)
		data := output.Result()
		got, err := DecodeVLQUint(&data)
		if err != nil || got != v {
			t.Errorf("uint round trip %d: got %d, %v", v, got, err)
		}
	}
}

func TestVLQSequence(t *testing.T) {
	output := NewScratchOutput()
	EncodeVLQUint(output, 7)
	EncodeVLQInt(output, -500)
	EncodeVLQString(output, "pwm")
	EncodeVLQBytes(output, []byte{0xFF, 0x00})

	data := output.Result()
	a, _ := DecodeVLQUint(&data)
	b, _ := DecodeVLQInt(&data)
	s, _ := DecodeVLQString(&data)
	raw, err := DecodeVLQBytes(&data)
	if err != nil {
		t.Fatal(err)
	}
	if a != 7 || b != -500 || s != "pwm" || !bytes.Equal(raw, []byte{0xFF, 0x00}) {
		t.Errorf("decoded %d %d %q % x", a, b, s, raw)
	}
	if len(data) != 0 {
		t.Errorf("%d bytes left", len(data))
	}
}

func TestVLQErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, ErrBufferTooSmall},
		{"truncated", []byte{0x80}, ErrBufferTooSmall},
		{"too long", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}, ErrInvalidVLQ},
	}

	for _, tt := range tests {
		data := tt.data
		if _, err := DecodeVLQInt(&data); err != tt.err {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.err)
		}
		if len(data) != len(tt.data) {
			t.Errorf("%s: input advanced on error", tt.name)
		}
	}

	data := []byte{0x05, 'a', 'b'}
	if _, err := DecodeVLQBytes(&data); err != ErrBufferTooSmall {
		t.Errorf("short byte string: err = %v", err)
	}
}
