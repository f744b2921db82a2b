package transport

import (
	"encoding/binary"
	"io"
)

// maxIntermediatePayload is 4,294,967,295 bytes (§4.2 table): the
// largest value a 4-byte LE length prefix can express.
const maxIntermediatePayload = 4_294_967_295

// Intermediate frames each payload with a bare 4-byte LE length.
type Intermediate struct{}

func (Intermediate) MaxPayload() int64 { return maxIntermediatePayload }

func (Intermediate) Init(w io.Writer) error {
	_, err := w.Write([]byte{0xEE, 0xEE, 0xEE, 0xEE})
	return err
}

func (Intermediate) WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func (Intermediate) ReadFrame(r io.Reader) ([]byte, error) {
	lenBuf, err := recvExact(r, 4)
	if err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf)
	return recvExact(r, int(n))
}
