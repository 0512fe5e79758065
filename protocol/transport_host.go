//go:build !tinygo

package protocol

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrTransportClosed = errors.New("protocol: transport closed")
	ErrNak             = errors.New("protocol: frame rejected")
	ErrTimeout         = errors.New("protocol: timeout")
)

// DefaultTimeout bounds SendCommand and ReceiveResponse.
const DefaultTimeout = 2 * time.Second

// Message is a frame received by the host.
type Message struct {
	Sequence uint8
	Payload  []byte // copied out of the receive buffer
}

// HostTransport is the host end of the link. A background goroutine reads
// the port; ACKs and responses are handed over on separate channels.
type HostTransport struct {
	port   io.ReadWriteCloser
	reader frameReader

	currentSeq uint32 // sequence of the next frame sent

	input *FifoBuffer

	ackChan      chan *Message
	responseChan chan *Message

	writeMutex sync.Mutex
	readMutex  sync.Mutex

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewHostTransport starts reading port immediately.
func NewHostTransport(port io.ReadWriteCloser) *HostTransport {
	t := &HostTransport{
		port:         port,
		currentSeq:   MessageDest,
		input:        NewFifoBuffer(1024),
		ackChan:      make(chan *Message, 4),
		responseChan: make(chan *Message, 32),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
	t.reader.setSynced(true)

	go t.readLoop()

	return t
}

// SendCommand sends one message and waits for its ACK.
func (t *HostTransport) SendCommand(cmdID uint16, args func(output OutputBuffer)) error {
	return t.SendCommandWithTimeout(cmdID, args, DefaultTimeout)
}

// SendCommandWithTimeout is SendCommand with an explicit ACK timeout.
func (t *HostTransport) SendCommandWithTimeout(cmdID uint16, args func(output OutputBuffer), timeout time.Duration) error {
	scratch := NewScratchOutput()
	EncodeVLQUint(scratch, uint32(cmdID))
	if args != nil {
		args(scratch)
	}
	if scratch.Overflow() {
		return ErrFrameTooLong
	}
	return t.SendPayload(scratch.Result(), timeout)
}

// SendPayload frames an already encoded payload, sends it and waits for
// the ACK.
func (t *HostTransport) SendPayload(payload []byte, timeout time.Duration) error {
	t.writeMutex.Lock()
	defer t.writeMutex.Unlock()

	seq := uint8(atomic.LoadUint32(&t.currentSeq))
	msg, err := AppendFrame(make([]byte, 0, MessageLengthMax), seq, payload)
	if err != nil {
		return err
	}

	// ACKs left over from a resync would be taken for ours
	for len(t.ackChan) > 0 {
		<-t.ackChan
	}

	n, err := t.port.Write(msg)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if n != len(msg) {
		return fmt.Errorf("incomplete write: %d/%d bytes", n, len(msg))
	}

	if err := t.waitForAck(seq, timeout); err != nil {
		return fmt.Errorf("seq 0x%02x: %w", seq, err)
	}
	return nil
}

// waitForAck waits for the MCU to acknowledge seq. The MCU acks with the
// sequence it expects next; any other value is a NAK naming the frame it
// is still waiting for.
func (t *HostTransport) waitForAck(seq uint8, timeout time.Duration) error {
	want := NextSequence(seq)
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case ack := <-t.ackChan:
		if ack.Sequence != want {
			return fmt.Errorf("MCU expects 0x%02x: %w", ack.Sequence, ErrNak)
		}
		atomic.StoreUint32(&t.currentSeq, uint32(want))
		return nil
	case <-deadline.C:
		return fmt.Errorf("ACK after %v: %w", timeout, ErrTimeout)
	case <-t.stopChan:
		return ErrTransportClosed
	}
}

// ReceiveResponse returns the next response frame.
func (t *HostTransport) ReceiveResponse(timeout time.Duration) (*Message, error) {
	select {
	case resp := <-t.responseChan:
		return resp, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("response after %v: %w", timeout, ErrTimeout)
	case <-t.stopChan:
		return nil, ErrTransportClosed
	}
}

func (t *HostTransport) stopped() bool {
	select {
	case <-t.stopChan:
		return true
	default:
		return false
	}
}

func (t *HostTransport) readLoop() {
	defer close(t.doneChan)

	buf := make([]byte, 256)
	for !t.stopped() {
		n, err := t.port.Read(buf)
		if n > 0 {
			t.input.Write(buf[:n])
			t.processMessages()
		}
		switch {
		case err == nil:
		case errors.Is(err, os.ErrClosed), errors.Is(err, io.ErrClosedPipe):
			return
		default:
			// Serial ports report read timeouts as io.EOF.
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (t *HostTransport) processMessages() {
	t.readMutex.Lock()
	defer t.readMutex.Unlock()

	data := t.input.Data()
	consumed := 0
	for {
		f, n, ev := t.reader.next(data[consumed:])
		consumed += n
		if ev == eventNone {
			break
		}
		if ev == eventFrame {
			t.dispatchMessage(f)
		}
	}
	t.input.Pop(consumed)
}

func (t *HostTransport) dispatchMessage(f Frame) {
	msg := &Message{Sequence: f.Seq, Payload: append([]byte(nil), f.Payload...)}

	if f.IsAck() {
		select {
		case t.ackChan <- msg:
		default:
		}
		return
	}

	// Drop the oldest response rather than block the reader.
	select {
	case t.responseChan <- msg:
	default:
		select {
		case <-t.responseChan:
		default:
		}
		t.responseChan <- msg
	}
}

// Close stops the reader and closes the port.
func (t *HostTransport) Close() error {
	var err error
	t.stopOnce.Do(func() {
		close(t.stopChan)
		if t.port != nil {
			err = t.port.Close()
		}
		<-t.doneChan
	})
	return err
}

// Reset restarts the sequence and drops queued input. The MCU treats the
// next frame at MessageDest as a host restart.
func (t *HostTransport) Reset() {
	t.readMutex.Lock()
	defer t.readMutex.Unlock()

	t.reader.setSynced(true)
	atomic.StoreUint32(&t.currentSeq, MessageDest)
	for len(t.ackChan) > 0 {
		<-t.ackChan
	}
	for len(t.responseChan) > 0 {
		<-t.responseChan
	}
	t.input.Reset()
}

// CurrentSequence returns the sequence of the next frame sent.
func (t *HostTransport) CurrentSequence() uint8 {
	return uint8(atomic.LoadUint32(&t.currentSeq))
}
