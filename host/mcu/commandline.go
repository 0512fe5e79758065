package mcu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// ErrEmptyLine is returned by ParseCommandLine for a blank line.
var ErrEmptyLine = errors.New("mcu: empty command line")

// ParseCommandLine splits a shell line such as
//
//	pwm_enable_channel channel=3 width=250
//
// into the command name and its name=value arguments. Values may be quoted
// with shell rules, which matters for %*s parameters.
func ParseCommandLine(line string) (string, map[string]string, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return "", nil, fmt.Errorf("parse %q: %w", line, err)
	}
	if len(tokens) == 0 {
		return "", nil, ErrEmptyLine
	}

	args := make(map[string]string, len(tokens)-1)
	for _, tok := range tokens[1:] {
		name, value, ok := strings.Cut(tok, "=")
		if !ok || name == "" {
			return "", nil, fmt.Errorf("%w: %q is not name=value", ErrMalformedParam, tok)
		}
		if _, dup := args[name]; dup {
			return "", nil, fmt.Errorf("%w: %q given twice", ErrMalformedParam, name)
		}
		args[name] = value
	}
	return tokens[0], args, nil
}
