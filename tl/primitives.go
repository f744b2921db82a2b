package tl

import (
	"encoding/binary"
	"math"
)

// WriteInt writes a 32-bit signed integer, little-endian.
func (w *Writer) WriteInt(v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return w.write(buf[:])
}

// ReadInt reads a 32-bit signed integer, little-endian.
func (r *Reader) ReadInt() (int32, error) {
	buf, err := r.readFull(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf)), nil
}

// WriteUint32 writes a bare 32-bit unsigned integer, little-endian.
// Used for constructor IDs and vector element counts.
func (w *Writer) WriteUint32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return w.write(buf[:])
}

// ReadUint32 reads a bare 32-bit unsigned integer, little-endian.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.readFull(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// WriteLong writes a 64-bit signed integer, little-endian.
func (w *Writer) WriteLong(v int64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return w.write(buf[:])
}

// ReadLong reads a 64-bit signed integer, little-endian.
func (r *Reader) ReadLong() (int64, error) {
	buf, err := r.readFull(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf)), nil
}

// WriteDouble writes a 64-bit IEEE-754 float, little-endian.
func (w *Writer) WriteDouble(v float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return w.write(buf[:])
}

// ReadDouble reads a 64-bit IEEE-754 float, little-endian.
func (r *Reader) ReadDouble() (float64, error) {
	buf, err := r.readFull(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
}

// Int128 is a 128-bit value used for nonce/server_nonce, stored as two
// little-endian 64-bit limbs (Limbs[0] least significant).
type Int128 struct {
	Limbs [2]uint64
}

// WriteInt128 writes v as 16 little-endian bytes (Limbs[0] first).
func (w *Writer) WriteInt128(v Int128) error {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], v.Limbs[0])
	binary.LittleEndian.PutUint64(buf[8:16], v.Limbs[1])
	return w.write(buf[:])
}

// ReadInt128 reads a 128-bit value.
func (r *Reader) ReadInt128() (Int128, error) {
	buf, err := r.readFull(16)
	if err != nil {
		return Int128{}, err
	}
	var v Int128
	v.Limbs[0] = binary.LittleEndian.Uint64(buf[0:8])
	v.Limbs[1] = binary.LittleEndian.Uint64(buf[8:16])
	return v, nil
}

// Bytes returns the 16-byte little-endian encoding of v.
func (v Int128) Bytes() [16]byte {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], v.Limbs[0])
	binary.LittleEndian.PutUint64(buf[8:16], v.Limbs[1])
	return buf
}

// Int128FromBytes parses a 16-byte little-endian encoding.
func Int128FromBytes(buf [16]byte) Int128 {
	var v Int128
	v.Limbs[0] = binary.LittleEndian.Uint64(buf[0:8])
	v.Limbs[1] = binary.LittleEndian.Uint64(buf[8:16])
	return v
}

// Int256 is a 256-bit value used for new_nonce, stored as four
// little-endian 64-bit limbs (Limbs[0] least significant, Limbs[3] most
// significant). Limbs[0] is serialized first and Limbs[3] last: writing
// Limbs[0..3] in ascending order, each as an 8-byte little-endian
// chunk, yields the conventional little-endian 32-byte field, so
// Limbs{1, 0, 0, 0} encodes as 0x01 followed by 31 zero bytes.
type Int256 struct {
	Limbs [4]uint64
}

// WriteInt256 writes v as 32 little-endian bytes.
func (w *Writer) WriteInt256(v Int256) error {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:8], v.Limbs[0])
	binary.LittleEndian.PutUint64(buf[8:16], v.Limbs[1])
	binary.LittleEndian.PutUint64(buf[16:24], v.Limbs[2])
	binary.LittleEndian.PutUint64(buf[24:32], v.Limbs[3])
	return w.write(buf[:])
}

// ReadInt256 reads a 256-bit value.
func (r *Reader) ReadInt256() (Int256, error) {
	buf, err := r.readFull(32)
	if err != nil {
		return Int256{}, err
	}
	var v Int256
	v.Limbs[0] = binary.LittleEndian.Uint64(buf[0:8])
	v.Limbs[1] = binary.LittleEndian.Uint64(buf[8:16])
	v.Limbs[2] = binary.LittleEndian.Uint64(buf[16:24])
	v.Limbs[3] = binary.LittleEndian.Uint64(buf[24:32])
	return v, nil
}

// Bytes returns the 32-byte little-endian encoding of v.
func (v Int256) Bytes() [32]byte {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:8], v.Limbs[0])
	binary.LittleEndian.PutUint64(buf[8:16], v.Limbs[1])
	binary.LittleEndian.PutUint64(buf[16:24], v.Limbs[2])
	binary.LittleEndian.PutUint64(buf[24:32], v.Limbs[3])
	return buf
}

// Int256FromBytes parses a 32-byte little-endian encoding.
func Int256FromBytes(buf [32]byte) Int256 {
	var v Int256
	v.Limbs[0] = binary.LittleEndian.Uint64(buf[0:8])
	v.Limbs[1] = binary.LittleEndian.Uint64(buf[8:16])
	v.Limbs[2] = binary.LittleEndian.Uint64(buf[16:24])
	v.Limbs[3] = binary.LittleEndian.Uint64(buf[24:32])
	return v
}

// Bool encodes as the bare boxed constructors boolTrue#997275b5 /
// boolFalse#bc799737: a 4-byte constructor ID with no body (SPEC_FULL.md
// §4, added because the real MTProto schema needs it even though
// spec.md's primitive list doesn't name it explicitly).
const (
	BoolTrueID  uint32 = 0x997275B5
	BoolFalseID uint32 = 0xBC799737
)

// WriteBool writes v as its boxed boolTrue/boolFalse constructor.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteUint32(BoolTrueID)
	}
	return w.WriteUint32(BoolFalseID)
}

// ReadBool reads a boxed boolTrue/boolFalse constructor.
func (r *Reader) ReadBool() (bool, error) {
	id, err := r.ReadUint32()
	if err != nil {
		return false, err
	}
	switch id {
	case BoolTrueID:
		return true, nil
	case BoolFalseID:
		return false, nil
	default:
		return false, &ErrNoVariant{ConstructorID: id}
	}
}
