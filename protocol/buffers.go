package protocol

// InputBuffer is the receive side of a transport.
type InputBuffer interface {
	// Data returns the unconsumed bytes
	Data() []byte

	// Available returns len(Data())
	Available() int

	// Pop discards n bytes from the front
	Pop(n int)
}

// OutputBuffer is the send side of a transport. Frames are written in place
// and patched once their length is known.
type OutputBuffer interface {
	Output(data []byte)
	CurPosition() int
	Update(pos int, val byte)
	DataSince(pos int) []byte
}

// SliceInputBuffer is an InputBuffer over a fixed slice.
type SliceInputBuffer struct {
	data []byte
}

func NewSliceInputBuffer(data []byte) *SliceInputBuffer {
	return &SliceInputBuffer{data: data}
}

func (s *SliceInputBuffer) Data() []byte   { return s.data }
func (s *SliceInputBuffer) Available() int { return len(s.data) }

func (s *SliceInputBuffer) Pop(n int) {
	if n > len(s.data) {
		n = len(s.data)
	}
	s.data = s.data[n:]
}

// ScratchOutput builds a single payload on the stack. Writes past
// MessageLengthMax are dropped and reported by Overflow.
type ScratchOutput struct {
	buf      [MessageLengthMax]byte
	pos      int
	overflow bool
}

func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

func (s *ScratchOutput) Output(data []byte) {
	n := copy(s.buf[s.pos:], data)
	s.pos += n
	if n < len(data) {
		s.overflow = true
	}
}

func (s *ScratchOutput) CurPosition() int { return s.pos }

func (s *ScratchOutput) Update(pos int, val byte) {
	if pos < s.pos {
		s.buf[pos] = val
	}
}

func (s *ScratchOutput) DataSince(pos int) []byte {
	if pos > s.pos {
		return nil
	}
	return s.buf[pos:s.pos]
}

// Result returns the bytes written so far.
func (s *ScratchOutput) Result() []byte { return s.buf[:s.pos] }

// Overflow reports whether any write was truncated.
func (s *ScratchOutput) Overflow() bool { return s.overflow }

func (s *ScratchOutput) Reset() {
	s.pos = 0
	s.overflow = false
}

// QueueOutput accumulates outgoing frames until the platform drains them
// to the wire.
type QueueOutput struct {
	buf []byte
}

// NewQueueOutput preallocates capacity bytes so steady-state sends do not
// allocate.
func NewQueueOutput(capacity int) *QueueOutput {
	return &QueueOutput{buf: make([]byte, 0, capacity)}
}

func (q *QueueOutput) Output(data []byte) { q.buf = append(q.buf, data...) }
func (q *QueueOutput) CurPosition() int   { return len(q.buf) }

func (q *QueueOutput) Update(pos int, val byte) {
	if pos < len(q.buf) {
		q.buf[pos] = val
	}
}

func (q *QueueOutput) DataSince(pos int) []byte {
	if pos > len(q.buf) {
		return nil
	}
	return q.buf[pos:]
}

// Bytes returns the pending bytes. They stay valid until the next Reset.
func (q *QueueOutput) Bytes() []byte { return q.buf }

// Len returns the number of pending bytes.
func (q *QueueOutput) Len() int { return len(q.buf) }

// Reset drops the pending bytes, typically after they were written out.
func (q *QueueOutput) Reset() { q.buf = q.buf[:0] }

// FifoBuffer is a byte ring used as the receive queue of a serial line.
// One slot is kept free to tell full from empty.
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
}

func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{buf: make([]byte, capacity)}
}

func (f *FifoBuffer) next(i int) int {
	i++
	if i == len(f.buf) {
		return 0
	}
	return i
}

// Write queues as much of data as fits and returns the count queued.
func (f *FifoBuffer) Write(data []byte) int {
	n := 0
	for _, b := range data {
		w := f.next(f.write)
		if w == f.read {
			break
		}
		f.buf[f.write] = b
		f.write = w
		n++
	}
	return n
}

// Read dequeues up to len(data) bytes.
func (f *FifoBuffer) Read(data []byte) int {
	n := 0
	for n < len(data) && f.read != f.write {
		data[n] = f.buf[f.read]
		f.read = f.next(f.read)
		n++
	}
	return n
}

func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return len(f.buf) - f.read + f.write
}

// Free returns the number of bytes Write would accept.
func (f *FifoBuffer) Free() int {
	return len(f.buf) - f.Available() - 1
}

// Data returns the queued bytes. A wrapped ring is linearized first so the
// returned slice is contiguous; Pop keeps working afterwards.
func (f *FifoBuffer) Data() []byte {
	if f.read > f.write {
		f.linearize()
	}
	return f.buf[f.read:f.write]
}

// linearize rotates the ring so the queued bytes start at index 0.
func (f *FifoBuffer) linearize() {
	n := f.Available()
	tmp := make([]byte, n)
	f.Read(tmp)
	copy(f.buf, tmp)
	f.read, f.write = 0, n
}

func (f *FifoBuffer) Pop(n int) {
	if avail := f.Available(); n > avail {
		n = avail
	}
	f.read = (f.read + n) % len(f.buf)
}

func (f *FifoBuffer) IsEmpty() bool { return f.read == f.write }

func (f *FifoBuffer) Reset() {
	f.read, f.write = 0, 0
}
