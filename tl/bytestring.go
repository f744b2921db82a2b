package tl

import (
	"fmt"
)

// maxShortStringLen is the largest length encodable in the 1-byte short
// form (§4.1 "byte string serialization"). A length byte of 0xFE marks
// the long form; 0xFF is reserved and rejected on input.
const maxShortStringLen = 253

// WriteBytes writes b as a length-prefixed, zero-padded TL byte string.
// Lengths up to 253 use a 1-byte length prefix; longer strings use a
// 0xFE sentinel followed by a 3-byte little-endian length. Either form
// is padded with zero bytes so the total (header+payload+pad) is a
// multiple of 4.
func (w *Writer) WriteBytes(b []byte) error {
	n := len(b)
	if n <= maxShortStringLen {
		header := []byte{byte(n)}
		if err := w.write(header); err != nil {
			return err
		}
		if err := w.write(b); err != nil {
			return err
		}
		return w.writePad((1 + n) % 4)
	}

	var lenBuf [4]byte
	lenBuf[0] = 0xFE
	lenBuf[1] = byte(n)
	lenBuf[2] = byte(n >> 8)
	lenBuf[3] = byte(n >> 16)
	if err := w.write(lenBuf[:]); err != nil {
		return err
	}
	if err := w.write(b); err != nil {
		return err
	}
	return w.writePad(n % 4)
}

// WriteString is WriteBytes over the UTF-8 encoding of s.
func (w *Writer) WriteString(s string) error {
	return w.WriteBytes([]byte(s))
}

func (w *Writer) writePad(used int) error {
	pad := (4 - used) % 4
	if pad == 0 {
		return nil
	}
	var zero [3]byte
	return w.write(zero[:pad])
}

// ReadBytes reads a length-prefixed, zero-padded TL byte string. A
// leading 0xFF length byte is rejected as malformed input.
func (r *Reader) ReadBytes() ([]byte, error) {
	first, err := r.readFull(1)
	if err != nil {
		return nil, err
	}

	switch {
	case first[0] == 0xFF:
		return nil, fmt.Errorf("tl: byte string length prefix 0xff is reserved")
	case first[0] == 0xFE:
		lenBuf, err := r.readFull(3)
		if err != nil {
			return nil, err
		}
		n := int(lenBuf[0]) | int(lenBuf[1])<<8 | int(lenBuf[2])<<16
		b, err := r.readFull(n)
		if err != nil {
			return nil, err
		}
		if err := r.readPad(n % 4); err != nil {
			return nil, err
		}
		return b, nil
	default:
		n := int(first[0])
		b, err := r.readFull(n)
		if err != nil {
			return nil, err
		}
		if err := r.readPad((1 + n) % 4); err != nil {
			return nil, err
		}
		return b, nil
	}
}

// ReadString is ReadBytes with the result interpreted as UTF-8.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) readPad(used int) error {
	pad := (4 - used) % 4
	if pad == 0 {
		return nil
	}
	_, err := r.readFull(pad)
	return err
}
