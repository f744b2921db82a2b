package transport

import (
	"encoding/binary"
	"errors"
	"io"
	"sync/atomic"

	"github.com/cvsouth/mtproto-go/mtcrypto"
)

// maxFullPayload is 4,294,967,287 bytes (§4.2 table): the largest
// payload whose 12-byte-overhead frame still fits the length field.
const maxFullPayload = 4_294_967_287

// fullFrameOverhead is length(4) + seq(4) + crc(4).
const fullFrameOverhead = 12

// ErrCRCMismatch is a fatal framing error for the Full variant (§4.2
// "a received Full frame whose CRC32 does not match is a fatal
// framing error").
var ErrCRCMismatch = errors.New("transport: full frame CRC32 mismatch")

// Full has no init sentinel and instead prefixes every frame with a
// monotonically increasing 32-bit sequence number plus a CRC32 of the
// whole prefix, seq, and payload (§4.2).
type Full struct {
	seq atomic.Uint32
}

func (*Full) MaxPayload() int64 { return maxFullPayload }

func (*Full) Init(io.Writer) error { return nil }

func (f *Full) WriteFrame(w io.Writer, payload []byte) error {
	seq := f.seq.Add(1) - 1

	frameLen := uint32(len(payload) + fullFrameOverhead)
	buf := make([]byte, 0, frameLen)
	var tmp [4]byte

	binary.LittleEndian.PutUint32(tmp[:], frameLen)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], seq)
	buf = append(buf, tmp[:]...)
	buf = append(buf, payload...)

	crc := mtcrypto.CRC32IEEE(buf)
	binary.LittleEndian.PutUint32(tmp[:], crc)
	buf = append(buf, tmp[:]...)

	_, err := w.Write(buf)
	return err
}

func (f *Full) ReadFrame(r io.Reader) ([]byte, error) {
	lenBuf, err := recvExact(r, 4)
	if err != nil {
		return nil, err
	}
	frameLen := binary.LittleEndian.Uint32(lenBuf)
	if frameLen < fullFrameOverhead {
		return nil, errors.New("transport: full frame length shorter than its own overhead")
	}

	rest, err := recvExact(r, int(frameLen-4))
	if err != nil {
		return nil, err
	}

	body := rest[:len(rest)-4]
	gotCRC := binary.LittleEndian.Uint32(rest[len(rest)-4:])
	wantCRC := mtcrypto.CRC32IEEE(append(lenBuf, body...))
	if gotCRC != wantCRC {
		return nil, ErrCRCMismatch
	}

	payload := body[4:] // skip the 4-byte seq
	return payload, nil
}
