package transport

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

// maxPadBytes bounds the random trailing pad (§4.2: "0-15 random pad
// bytes").
const maxPadBytes = 16

// PaddedIntermediate is Intermediate with 0-15 random trailing bytes
// appended per frame, to obscure exact message boundaries. The frame
// length field covers payload+pad; the receiver has no way to recover
// the pad/payload boundary from the framing alone — this is by
// design, since the carried content is itself self-delimiting (each
// MTProto message on the wire carries its own length), so the
// transport layer simply hands the full payload+pad blob upward.
type PaddedIntermediate struct{}

func (PaddedIntermediate) MaxPayload() int64 { return maxIntermediatePayload }

func (PaddedIntermediate) Init(w io.Writer) error {
	_, err := w.Write([]byte{0xDD, 0xDD, 0xDD, 0xDD})
	return err
}

func (PaddedIntermediate) WriteFrame(w io.Writer, payload []byte) error {
	var padLen [1]byte
	if _, err := rand.Read(padLen[:]); err != nil {
		return err
	}
	pad := make([]byte, int(padLen[0])%maxPadBytes)
	if len(pad) > 0 {
		if _, err := rand.Read(pad); err != nil {
			return err
		}
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)+len(pad)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	_, err := w.Write(pad)
	return err
}

func (PaddedIntermediate) ReadFrame(r io.Reader) ([]byte, error) {
	lenBuf, err := recvExact(r, 4)
	if err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf)
	return recvExact(r, int(n))
}
