package hal

import "errors"

// Errors reported by the validation helpers. The drivers themselves do not
// check preconditions; callers that take input from outside the firmware
// validate first.
var (
	ErrInvalidChannel     = errors.New("hal: invalid PWM channel")
	ErrInvalidFrequency   = errors.New("hal: frequency is not an exact prescaler of the timer clock")
	ErrInvalidPeriod      = errors.New("hal: invalid PWM period")
	ErrInvalidMode        = errors.New("hal: invalid PWM output mode")
	ErrNotReady           = errors.New("hal: driver not started")
	ErrInvalidClockSource = errors.New("hal: invalid system clock source")
	ErrInvalidAHBDivider  = errors.New("hal: AHB prescaler code out of range")
	ErrInvalidCrystal     = errors.New("hal: EHS crystal frequency out of range")
	ErrPLLOutOfRange      = errors.New("hal: PLL setting out of range")
)
