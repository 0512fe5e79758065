// Package protocol implements the framed serial protocol spoken between the
// SN32F24xB firmware and the host tools.
//
// A frame is
//
//	len seq payload... crc_hi crc_lo 0x7E
//
// where len counts the whole frame, seq carries MessageDest in its high
// nibble and a 4-bit sequence number in the low nibble, and the CRC covers
// len, seq and the payload. The payload is a run of messages, each a VLQ
// command id followed by its VLQ-encoded arguments. A frame with an empty
// payload is an acknowledgement.
package protocol

import "errors"

// Version is the protocol/firmware version reported in the dictionary.
const Version = "sn32hal-0.1.0"

// Frame layout
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePayloadMax  = MessageLengthMax - MessageLengthMin

	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1

	MessageValueSync = 0x7E
	MessageDest      = 0x10
	MessageSeqMask   = 0x0F
)

var (
	ErrInvalidVLQ     = errors.New("protocol: invalid VLQ encoding")
	ErrBufferTooSmall = errors.New("protocol: buffer too small")
	ErrFrameTooLong   = errors.New("protocol: frame too long")
)

// NextSequence returns the sequence byte following seq.
func NextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}
