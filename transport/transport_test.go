package transport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestAbridgedRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	conn := NewConn(&buf, Abridged{})

	// 8 bytes: a 4-byte payload would be read back as a server error code.
	payload := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	if err := conn.Send(payload); err != nil {
		t.Fatal(err)
	}
	if buf.Bytes()[0] != 0xEF {
		t.Fatalf("expected init sentinel 0xEF, got %x", buf.Bytes()[0])
	}
	buf.Next(1) // consume the sentinel the way a peer's reader would

	readConn := NewConn(&buf, Abridged{})
	got, err := readConn.Recv()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %x, want %x", got, payload)
	}
}

func TestAbridgedLongForm(t *testing.T) {
	var buf bytes.Buffer
	v := Abridged{}
	if err := v.WriteFrame(&buf, make([]byte, 0x7F*4)); err != nil {
		t.Fatal(err)
	}
	if buf.Bytes()[0] != 0x7F {
		t.Fatalf("expected long-form marker, got %x", buf.Bytes()[0])
	}
	got, err := v.ReadFrame(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0x7F*4 {
		t.Fatalf("expected %d bytes, got %d", 0x7F*4, len(got))
	}
}

func TestAbridgedRejectsNonQuadPayload(t *testing.T) {
	var buf bytes.Buffer
	v := Abridged{}
	if err := v.WriteFrame(&buf, make([]byte, 5)); !errors.Is(err, ErrAbridgedNotQuadMultiple) {
		t.Fatalf("expected ErrAbridgedNotQuadMultiple, got %v", err)
	}
}

func TestIntermediateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	v := Intermediate{}
	payload := []byte("hello, intermediate")
	if err := v.WriteFrame(&buf, payload); err != nil {
		t.Fatal(err)
	}
	got, err := v.ReadFrame(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestPaddedIntermediateCarriesAtLeastThePayload(t *testing.T) {
	var buf bytes.Buffer
	v := PaddedIntermediate{}
	payload := []byte("padded payload content")
	if err := v.WriteFrame(&buf, payload); err != nil {
		t.Fatal(err)
	}
	got, err := v.ReadFrame(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) < len(payload) || !bytes.Equal(got[:len(payload)], payload) {
		t.Fatalf("expected frame to start with the original payload, got %x", got)
	}
}

func TestFullRoundTripAndSequence(t *testing.T) {
	var buf bytes.Buffer
	v := &Full{}
	for i, payload := range [][]byte{[]byte("first"), []byte("second"), []byte("third")} {
		start := buf.Len()
		if err := v.WriteFrame(&buf, payload); err != nil {
			t.Fatal(err)
		}
		if seq := binary.LittleEndian.Uint32(buf.Bytes()[start+4 : start+8]); seq != uint32(i) {
			t.Fatalf("frame %d: got seq %d, want %d", i, seq, i)
		}
	}

	reader := &Full{}
	for _, want := range [][]byte{[]byte("first"), []byte("second"), []byte("third")} {
		got, err := reader.ReadFrame(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func TestFullDetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	v := &Full{}
	if err := v.WriteFrame(&buf, []byte("integrity check")); err != nil {
		t.Fatal(err)
	}
	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xFF

	_, err := (&Full{}).ReadFrame(bytes.NewReader(corrupted))
	if !errors.Is(err, ErrCRCMismatch) {
		t.Fatalf("expected ErrCRCMismatch, got %v", err)
	}
}

func TestConnSurfacesServerErrorCode(t *testing.T) {
	var buf bytes.Buffer
	v := Intermediate{}
	// A 4-byte payload must be surfaced as a server error code, not
	// regular message content.
	if err := v.WriteFrame(&buf, []byte{0x02, 0x00, 0x00, 0x00}); err != nil {
		t.Fatal(err)
	}
	conn := NewConn(&buf, Intermediate{})
	conn.initialized = true // init sentinel already "sent" by the writer above in this unit test
	_, err := conn.Recv()
	var serverErr *ErrServerCode
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected *ErrServerCode, got %v", err)
	}
	if serverErr.Code != 2 {
		t.Fatalf("expected code 2, got %d", serverErr.Code)
	}
}
