package protocol

import (
	"bytes"
	"sync/atomic"
)

// Frame is one validated frame. Payload aliases the receive buffer and is
// only valid until the bytes are popped.
type Frame struct {
	Seq     uint8
	Payload []byte
}

// IsAck reports whether f is an acknowledgement (empty payload).
func (f Frame) IsAck() bool { return len(f.Payload) == 0 }

// AppendFrame appends a complete frame carrying payload to dst.
func AppendFrame(dst []byte, seq uint8, payload []byte) ([]byte, error) {
	n := MessageLengthMin + len(payload)
	if n > MessageLengthMax {
		return dst, ErrFrameTooLong
	}
	start := len(dst)
	dst = append(dst, byte(n), seq)
	dst = append(dst, payload...)
	return appendTrailer(dst, start), nil
}

type frameEvent uint8

const (
	eventNone   frameEvent = iota // need more data
	eventFrame                    // a valid frame was consumed
	eventResync                   // sync byte found after a desync
)

// frameReader is the receive state machine shared by both ends. A bad
// length, destination, sync byte or CRC drops it out of sync; it then
// discards input up to the next sync byte.
type frameReader struct {
	synced uint32 // atomic bool
}

func (r *frameReader) isSynced() bool {
	return atomic.LoadUint32(&r.synced) != 0
}

func (r *frameReader) setSynced(v bool) {
	var u uint32
	if v {
		u = 1
	}
	atomic.StoreUint32(&r.synced, u)
}

// next scans data for the next event and returns the number of bytes
// consumed. eventNone means the rest of data is an incomplete frame.
func (r *frameReader) next(data []byte) (Frame, int, frameEvent) {
	n := 0
	for n < len(data) {
		rest := data[n:]
		if !r.isSynced() {
			i := bytes.IndexByte(rest, MessageValueSync)
			if i < 0 {
				return Frame{}, len(data), eventNone
			}
			r.setSynced(true)
			return Frame{}, n + i + 1, eventResync
		}

		if rest[0] == MessageValueSync {
			n++
			continue
		}
		if len(rest) < MessageLengthMin {
			break
		}

		msgLen := int(rest[MessagePositionLen])
		seq := rest[MessagePositionSeq]
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax || seq&^MessageSeqMask != MessageDest {
			r.setSynced(false)
			continue
		}
		if len(rest) < msgLen {
			break
		}
		if rest[msgLen-MessageTrailerSync] != MessageValueSync {
			r.setSynced(false)
			continue
		}
		crc := uint16(rest[msgLen-MessageTrailerCRC])<<8 | uint16(rest[msgLen-MessageTrailerCRC+1])
		if crc != CRC16(rest[:msgLen-MessageTrailerSize]) {
			r.setSynced(false)
			continue
		}

		f := Frame{Seq: seq, Payload: rest[MessageHeaderSize : msgLen-MessageTrailerSize]}
		return f, n + msgLen, eventFrame
	}
	return Frame{}, n, eventNone
}
