// Package tinycompress writes zlib streams without the deflate compressor,
// which is too large for small flash parts. Data is emitted as stored
// (uncompressed) deflate blocks, so any zlib reader can inflate it.
package tinycompress

import (
	"errors"
	"hash"
	"hash/adler32"
	"io"
)

// maxStored is the largest stored deflate block.
const maxStored = 0xFFFF

// zlib header: CM=8 (deflate), CINFO=7 (32K window), FLEVEL=0, FCHECK so
// the 16-bit value is a multiple of 31.
var zlibHeader = [2]byte{0x78, 0x01}

var ErrClosed = errors.New("tinycompress: write to closed writer")

// Writer buffers input and writes it out as a zlib stream on Close.
type Writer struct {
	w      io.Writer
	buf    []byte
	sum    hash.Hash32
	closed bool
}

// NewWriter returns a Writer that writes the stream to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, sum: adler32.New()}
}

func (z *Writer) Write(p []byte) (int, error) {
	if z.closed {
		return 0, ErrClosed
	}
	z.buf = append(z.buf, p...)
	z.sum.Write(p)
	return len(p), nil
}

// Close writes the header, the stored blocks and the Adler-32 trailer.
// The underlying writer is not closed.
func (z *Writer) Close() error {
	if z.closed {
		return nil
	}
	z.closed = true

	if _, err := z.w.Write(zlibHeader[:]); err != nil {
		return err
	}

	data := z.buf
	for {
		n := len(data)
		final := byte(1)
		if n > maxStored {
			n = maxStored
			final = 0
		}
		hdr := [5]byte{final, byte(n), byte(n >> 8), ^byte(n), ^byte(n >> 8)}
		if _, err := z.w.Write(hdr[:]); err != nil {
			return err
		}
		if _, err := z.w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
		if final == 1 {
			break
		}
	}

	s := z.sum.Sum32()
	_, err := z.w.Write([]byte{byte(s >> 24), byte(s >> 16), byte(s >> 8), byte(s)})
	return err
}

// Compress returns data wrapped as a zlib stream.
func Compress(data []byte) []byte {
	var out sliceWriter
	z := NewWriter(&out)
	z.Write(data)
	z.Close()
	return out
}

type sliceWriter []byte

func (s *sliceWriter) Write(p []byte) (int, error) {
	*s = append(*s, p...)
	return len(p), nil
}
