package command

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"io"
	"testing"
)

type dictJSON struct {
	Version       string                    `json:"version"`
	BuildVersions string                    `json:"build_versions"`
	Config        map[string]string         `json:"config"`
	Commands      map[string]int            `json:"commands"`
	Responses     map[string]int            `json:"responses"`
	Enumerations  map[string]map[string]int `json:"enumerations"`
}

func testDictionary() *Dictionary {
	r := NewRegistry()
	r.Register("identify_response", "offset=%u data=%*s", nil)
	r.Register("identify", "offset=%u count=%c", func(*[]byte) error { return nil })
	r.Register("pwm_query", "channel=%c", func(*[]byte) error { return nil })
	r.Register("pwm_state", "channel=%c ready=%c width=%u matches=%u cycles=%u", nil)

	d := NewDictionary(r)
	d.AddConstant("MCU", "sn32f24xb")
	d.AddConstant("CLOCK_FREQ", "24000000")
	d.AddConstant("QUOTED", `a"b\c`)
	d.AddEnumeration("pwm_mode", []string{"disabled", "active_high", "", "active_low"})
	return d
}

func TestDictionaryJSON(t *testing.T) {
	d := testDictionary()
	raw := d.JSON()
	t.Logf("dictionary: %s", raw)

	var dict dictJSON
	if err := json.Unmarshal(raw, &dict); err != nil {
		t.Fatalf("dictionary is not valid JSON: %v", err)
	}

	if dict.Commands["identify offset=%u count=%c"] != 1 || dict.Commands["pwm_query channel=%c"] != 2 {
		t.Errorf("commands = %v", dict.Commands)
	}
	if dict.Responses["identify_response offset=%u data=%*s"] != 0 || len(dict.Responses) != 2 {
		t.Errorf("responses = %v", dict.Responses)
	}
	if dict.Config["MCU"] != "sn32f24xb" || dict.Config["QUOTED"] != `a"b\c` {
		t.Errorf("config = %v", dict.Config)
	}
	modes := dict.Enumerations["pwm_mode"]
	if len(modes) != 3 || modes["active_low"] != 3 || modes["disabled"] != 0 {
		t.Errorf("pwm_mode = %v", modes)
	}
}

func TestDictionaryDeterministic(t *testing.T) {
	a, b := testDictionary().JSON(), testDictionary().JSON()
	if !bytes.Equal(a, b) {
		t.Error("dictionary output depends on map order")
	}
}

func TestDictionaryChunks(t *testing.T) {
	d := testDictionary()
	full := d.Build()

	var got []byte
	for offset := uint32(0); ; {
		chunk := d.Chunk(offset, 40)
		if len(chunk) == 0 {
			break
		}
		got = append(got, chunk...)
		offset += uint32(len(chunk))
	}
	if !bytes.Equal(got, full) {
		t.Fatalf("reassembled %d bytes, want %d", len(got), len(full))
	}

	zr, err := zlib.NewReader(bytes.NewReader(got))
	if err != nil {
		t.Fatal(err)
	}
	inflated, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(inflated, d.JSON()) {
		t.Error("inflated dictionary differs from JSON()")
	}

	if c := d.Chunk(uint32(len(full)), 40); len(c) != 0 {
		t.Errorf("chunk past end = % x", c)
	}
}

func TestDictionaryCacheInvalidation(t *testing.T) {
	d := testDictionary()
	before := len(d.Build())

	d.AddConstant("EXTRA", "1")
	if d.cached != nil {
		t.Fatal("cache survived AddConstant")
	}
	if after := len(d.Chunk(0, 255)); after <= before && after < 255 {
		t.Errorf("rebuilt dictionary is %d bytes, was %d", after, before)
	}
}
