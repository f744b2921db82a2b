package tl

import "fmt"

// WriteVector writes a bare vector: a 4-byte little-endian element
// count followed by each element's encoding via enc, with no
// constructor ID of its own (§3 "vector<T> is bare unless the
// containing field is boxed").
func WriteVector[T any](w *Writer, items []T, enc func(*Writer, T) error) error {
	if err := w.WriteUint32(uint32(len(items))); err != nil {
		return err
	}
	for _, item := range items {
		if err := enc(w, item); err != nil {
			return err
		}
	}
	return nil
}

// WriteBoxedVector writes a boxed vector: the vector#1cb5c415
// constructor ID followed by a bare vector body (§3).
func WriteBoxedVector[T any](w *Writer, items []T, enc func(*Writer, T) error) error {
	if err := w.WriteUint32(VectorConstructorID); err != nil {
		return err
	}
	return WriteVector(w, items, enc)
}

// ReadVector reads a bare vector. The claimed count is bounded by
// MaxVectorAlloc before any allocation happens, so a hostile inflated
// length fails fast instead of exhausting memory; decoding then
// consumes exactly the claimed count of elements (§4.1 "Edge cases").
func ReadVector[T any](r *Reader, dec func(*Reader) (T, error)) ([]T, error) {
	count, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if count > MaxVectorAlloc {
		return nil, fmt.Errorf("tl: vector count %d exceeds max alloc %d", count, MaxVectorAlloc)
	}
	items := make([]T, 0, count)
	for i := uint32(0); i < count; i++ {
		item, err := dec(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ReadBoxedVector reads a boxed vector, checking the constructor ID
// before delegating to ReadVector for the body.
func ReadBoxedVector[T any](r *Reader, dec func(*Reader) (T, error)) ([]T, error) {
	id, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if id != VectorConstructorID {
		return nil, &ErrConstructorMismatch{Expected: VectorConstructorID, Got: id}
	}
	return ReadVector(r, dec)
}
