// Package tl implements the binary TL wire codec used by the MTProto
// key-exchange: primitive encodings, boxed constructor dispatch, tagged
// sums, vectors, and length-prefixed byte strings with 4-byte padding.
package tl

import (
	"bufio"
	"fmt"
	"io"
)

// VectorConstructorID is the boxed constructor ID for vector<T> (§3).
const VectorConstructorID uint32 = 0x1CB5C415

// MaxVectorAlloc is the largest element count ReadVector accepts; a
// larger claimed count is rejected before anything is allocated, to
// resist a hostile inflated length (§4.1 "Edge cases / policy").
const MaxVectorAlloc = 1 << 16

// Object is implemented by every boxed TL type: a value-independent
// constructor ID, obtainable without allocating an instance (§4.1
// "Polymorphic dispatch").
type Object interface {
	ConstructorID() uint32
}

// ErrNoVariant is returned by a tagged-sum decoder when the consumed
// constructor ID matches no known variant (§4.1, §3 "variant miss").
type ErrNoVariant struct {
	ConstructorID uint32
}

func (e *ErrNoVariant) Error() string {
	return fmt.Sprintf("tl: no variant matches constructor id 0x%08x", e.ConstructorID)
}

// ErrConstructorMismatch is returned when a decoder expecting one
// specific constructor ID reads a different one.
type ErrConstructorMismatch struct {
	Expected, Got uint32
}

func (e *ErrConstructorMismatch) Error() string {
	return fmt.Sprintf("tl: expected constructor 0x%08x, got 0x%08x", e.Expected, e.Got)
}

// Reader decodes TL primitives from a buffered byte source.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r for TL decoding. If r is not already a *bufio.Reader
// it is wrapped in one, mirroring cell.NewReader's contract.
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

func (r *Reader) readFull(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadRaw reads exactly n unframed bytes, for callers that already
// know a field's length from outside the TL type system (e.g. an
// envelope's declared message_length).
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	return r.readFull(n)
}

// Writer encodes TL primitives to a sink.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w for TL encoding.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) write(b []byte) error {
	_, err := w.w.Write(b)
	return err
}
