package tl

import "encoding/binary"

// PeekConstructorID reports the next 4 bytes on the wire as a
// constructor ID without consuming them, letting a tagged-sum decoder
// pick a variant before committing to it (§4.1 "Polymorphic dispatch").
func (r *Reader) PeekConstructorID() (uint32, error) {
	buf, err := r.r.Peek(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadConstructorID consumes and returns the next 4 bytes as a
// constructor ID.
func (r *Reader) ReadConstructorID() (uint32, error) {
	return r.ReadUint32()
}

// WriteBoxed writes obj's constructor ID followed by its body, as
// produced by encode.
func WriteBoxed(w *Writer, obj Object, encode func(*Writer) error) error {
	if err := w.WriteUint32(obj.ConstructorID()); err != nil {
		return err
	}
	return encode(w)
}
