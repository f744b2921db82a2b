// Package transport implements the four MTProto wire-level framing
// variants (abridged, intermediate, padded-intermediate, full) over a
// byte-stream or datagram connection, each carrying opaque payload
// blobs handed down from the handshake driver's TL layer.
package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

// Variant frames and unframes opaque payload blobs over a connection.
// Init is called exactly once, at the first send, to emit the
// variant's sentinel (§4.2 "initialized exactly once at the first
// send").
type Variant interface {
	Init(w io.Writer) error
	WriteFrame(w io.Writer, payload []byte) error
	ReadFrame(r io.Reader) ([]byte, error)
	MaxPayload() int64
}

// ErrServerCode is returned when a received frame's payload is
// exactly 4 bytes: per §4.2 this is a server-reported error code, not
// a normal message.
type ErrServerCode struct {
	Code int32
}

func (e *ErrServerCode) Error() string {
	return fmt.Sprintf("transport: server reported error code %d", e.Code)
}

// ErrOversizePayload is returned when a send would exceed the
// variant's maximum payload size.
var ErrOversizePayload = fmt.Errorf("transport: payload exceeds variant's maximum size")

// Conn pairs a byte connection with a chosen Variant, serializing
// access with a single mutex so interleaved concurrent sends or
// receives cannot corrupt frames (§4.2, §5 "a single mutex serializes
// access to the underlying socket"). Grounded on link.Link's
// bufio-wrapped reader/writer pair and staged sentinel-write-once
// handshake shape.
type Conn struct {
	rw          io.ReadWriter
	variant     Variant
	mu          sync.Mutex
	initialized bool
}

// NewConn wraps rw for framing under variant.
func NewConn(rw io.ReadWriter, variant Variant) *Conn {
	return &Conn{rw: rw, variant: variant}
}

// NewPreInitializedConn wraps rw for framing under variant, skipping
// the one-time Init sentinel on this Conn's own first send. This is
// for the peer that infers the variant from the other side's sentinel
// rather than announcing its own — the sentinel identifies framing for
// the whole bidirectional session, so the responding side's outgoing
// frames never carry a second one.
func NewPreInitializedConn(rw io.ReadWriter, variant Variant) *Conn {
	return &Conn{rw: rw, variant: variant, initialized: true}
}

// Send writes one payload frame, emitting the variant's init sentinel
// first if this is the connection's first send.
func (c *Conn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if int64(len(payload)) > c.variant.MaxPayload() {
		return ErrOversizePayload
	}

	if !c.initialized {
		if err := c.variant.Init(c.rw); err != nil {
			return fmt.Errorf("transport: init: %w", err)
		}
		c.initialized = true
	}
	return c.variant.WriteFrame(c.rw, payload)
}

// Recv reads one payload frame. A 4-byte payload is surfaced as
// *ErrServerCode instead of being returned as message content.
func (c *Conn) Recv() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.variant.ReadFrame(c.rw)
	if err != nil {
		return nil, err
	}
	if len(payload) == 4 {
		return nil, &ErrServerCode{Code: int32(binary.LittleEndian.Uint32(payload))}
	}
	return payload, nil
}

// recvExact is recv_exact (§4.2): loop over short reads until n bytes
// are satisfied, mirroring cell.Reader's io.ReadFull-based pattern.
func recvExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
