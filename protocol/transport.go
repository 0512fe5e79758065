package protocol

import (
	"errors"
	"sync/atomic"
)

// ErrHandlerPanic is reported when a command handler panics. The transport
// drops out of sync so the host retransmits.
var ErrHandlerPanic = errors.New("protocol: command handler panic")

// DispatchFunc decodes and runs one message. It must consume exactly the
// arguments of cmdID from data.
type DispatchFunc func(cmdID uint16, data *[]byte) error

// Transport is the firmware end of the link. It validates incoming frames,
// dispatches their messages in order and acknowledges every frame with the
// next expected sequence number.
type Transport struct {
	reader frameReader

	// Next sequence expected from the host. Responses and ACKs carry the
	// same value.
	nextSequence uint32

	output   OutputBuffer
	dispatch DispatchFunc

	resetCallback func()
	flushCallback func()
	errorCallback func(error)
	errorCount    uint32
}

// NewTransport returns a synchronized transport expecting sequence 0x10.
func NewTransport(output OutputBuffer, dispatch DispatchFunc) *Transport {
	t := &Transport{
		nextSequence: MessageDest,
		output:       output,
		dispatch:     dispatch,
	}
	t.reader.setSynced(true)
	return t
}

// Receive consumes every complete frame in input.
func (t *Transport) Receive(input InputBuffer) {
	data := input.Data()
	consumed := 0

scan:
	for {
		f, n, ev := t.reader.next(data[consumed:])
		consumed += n
		switch ev {
		case eventNone:
			break scan
		case eventResync:
			t.encodeAckNak()
		case eventFrame:
			t.handleFrame(f)
		}
	}

	if consumed > 0 {
		input.Pop(consumed)
	}
}

func (t *Transport) handleFrame(f Frame) {
	expected := uint8(atomic.LoadUint32(&t.nextSequence))

	// Sequence back at MessageDest means the host restarted
	if f.Seq == MessageDest && expected != MessageDest {
		atomic.StoreUint32(&t.nextSequence, MessageDest)
		expected = MessageDest
		if t.resetCallback != nil {
			t.resetCallback()
		}
	}

	// Out-of-order frames are not run; the ACK below then acts as a NAK
	// naming the sequence we still expect.
	if f.Seq == expected {
		atomic.StoreUint32(&t.nextSequence, uint32(NextSequence(f.Seq)))
		if err := t.parseFrame(f.Payload); err != nil {
			t.reportError(err)
		}
	}
	t.encodeAckNak()
}

// parseFrame runs each message of payload. A handler error stops the frame;
// a malformed id or a panic also drops sync.
func (t *Transport) parseFrame(payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			t.reader.setSynced(false)
			err = ErrHandlerPanic
		}
	}()

	for len(payload) > 0 {
		cmdID, derr := DecodeVLQUint(&payload)
		if derr != nil {
			t.reader.setSynced(false)
			return derr
		}
		if t.dispatch == nil {
			return nil
		}
		if herr := t.dispatch(uint16(cmdID), &payload); herr != nil {
			return herr
		}
	}
	return nil
}

func (t *Transport) reportError(err error) {
	atomic.AddUint32(&t.errorCount, 1)
	if t.errorCallback != nil {
		t.errorCallback(err)
	}
}

// encodeAckNak queues an empty frame carrying the next expected sequence
// and flushes it at once: the host waits for it before reading responses.
func (t *Transport) encodeAckNak() {
	var buf [MessageLengthMin]byte
	ack, _ := AppendFrame(buf[:0], uint8(atomic.LoadUint32(&t.nextSequence)), nil)
	t.output.Output(ack)
	if t.flushCallback != nil {
		t.flushCallback()
	}
}

// EncodeFrame writes one frame whose payload is produced by frameData.
// Every frame sent while handling a host frame carries the same sequence.
func (t *Transport) EncodeFrame(frameData func(output OutputBuffer)) {
	cursor := t.output.CurPosition()
	t.output.Output([]byte{0, uint8(atomic.LoadUint32(&t.nextSequence))})

	frameData(t.output)

	size := len(t.output.DataSince(cursor))
	t.output.Update(cursor, uint8(size+MessageTrailerSize))

	crc := CRC16(t.output.DataSince(cursor))
	t.output.Output([]byte{uint8(crc >> 8), uint8(crc), MessageValueSync})
}

// SendCommand sends one message with id cmdID.
func (t *Transport) SendCommand(cmdID uint16, args func(output OutputBuffer)) {
	t.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(cmdID))
		if args != nil {
			args(output)
		}
	})
}

// Reset returns the transport to its power-on state.
func (t *Transport) Reset() {
	t.reader.setSynced(true)
	atomic.StoreUint32(&t.nextSequence, MessageDest)
	if t.resetCallback != nil {
		t.resetCallback()
	}
}

// NextSequence returns the sequence number expected from the host.
func (t *Transport) NextSequence() uint8 {
	return uint8(atomic.LoadUint32(&t.nextSequence))
}

// Synchronized reports whether the receiver is in sync.
func (t *Transport) Synchronized() bool {
	return t.reader.isSynced()
}

// ErrorCount returns the number of frames that failed to dispatch.
func (t *Transport) ErrorCount() uint32 {
	return atomic.LoadUint32(&t.errorCount)
}

// SetResetCallback is called when the host restarts its sequence.
func (t *Transport) SetResetCallback(callback func()) {
	t.resetCallback = callback
}

// SetFlushCallback is called after every ACK is queued.
func (t *Transport) SetFlushCallback(callback func()) {
	t.flushCallback = callback
}

// SetErrorCallback receives dispatch errors. It runs in the receive path.
func (t *Transport) SetErrorCallback(callback func(error)) {
	t.errorCallback = callback
}
